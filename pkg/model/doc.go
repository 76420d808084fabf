// Package model defines the form template types shared by the builder, the
// filler, the catalog and the renderers. A Template is an ordered list of
// Field definitions; field order is significant and preserved across every
// transformation. Options are normalized at decode time so consumers only ever
// see the record shape, and patches merge nested sub-records independently so
// editing one validation setting never drops its siblings.
package model
