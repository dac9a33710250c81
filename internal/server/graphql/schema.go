// Package graphql exposes the account operations as a GraphQL schema.
package graphql

import (
	_ "embed"
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

//go:embed schema.graphql
var schemaSDL string

// NewSchema parses the embedded schema against r. It panics when the
// resolver does not match the schema.
func NewSchema(r *Resolver) *graphqlgo.Schema {
	return graphqlgo.MustParseSchema(schemaSDL, r)
}

// NewHandler serves the schema over HTTP POST with a JSON body.
func NewHandler(r *Resolver) http.Handler {
	return &relay.Handler{Schema: NewSchema(r)}
}
