// Package openapi describes template submissions as OpenAPI 3 schemas so
// external clients can discover and pre-check the JSON answer payloads the
// HTTP API accepts. kin-openapi types are exposed directly.
package openapi
