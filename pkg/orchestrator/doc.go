// Package orchestrator wires the store → decorators → theme → renderer
// sequence behind a single Generate call.
package orchestrator
