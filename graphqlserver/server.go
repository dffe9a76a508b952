package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"pos.GO/graphql"
)

// NewSchema parses the schema and returns a graphql-go Schema. The
// query resolver doubles as the root: Query fields bind straight to its
// methods, model structs resolve by field name.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), graphql.NewQueryResolver(db), gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
