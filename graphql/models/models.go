package models

import graphql "github.com/graph-gophers/graphql-go"

// GraphQL view models. Field names match the schema case-insensitively
// via UseFieldResolvers.

type Product struct {
	ID          graphql.ID
	SKU         string
	Name        string
	Description *string
	Price       float64
}

type StockMovement struct {
	ID           graphql.ID
	MovementUUID string
	ProductID    graphql.ID
	LocationCode *string
	QtyDelta     float64
	Reason       *string
	Reference    *string
}

type Sale struct {
	ID        graphql.ID
	LocalUUID string
	ProductID graphql.ID
	Qty       float64
	UnitPrice float64
	Total     float64
	Synced    bool
}

type SyncStatus struct {
	TokenSet      bool
	LastServerSeq float64
	Pending       float64
	Failed        float64
	LastError     *string
}
