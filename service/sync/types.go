package sync

// Wire types for the remote sync endpoint contract.
//
// Push:  POST {base}/sync/push   {"changes":[{entityType,entityUuid,payload}...]}
// Pull:  GET  {base}/sync/pull?since_seq=N
//
// Acks are correlated to request items by entityUuid, never by position:
// a server that reorders or drops results only affects the items it
// actually names.

// Change is one outbox item on the push wire.
type Change struct {
	EntityType string                 `json:"entityType"`
	EntityUUID string                 `json:"entityUuid"`
	Payload    map[string]interface{} `json:"payload"`
}

// PushRequest carries one bounded batch of changes.
type PushRequest struct {
	Changes []Change `json:"changes"`
}

// PushAck acknowledges a single change.
type PushAck struct {
	EntityUUID string `json:"entityUuid"`
	Status     string `json:"status,omitempty"`
}

// PushResponse is the server reply to a push batch.
type PushResponse struct {
	Results   []PushAck `json:"results"`
	ServerSeq *int64    `json:"serverSeq,omitempty"`
}

// PullChange is one server-side change from the stream.
type PullChange struct {
	EntityType string                 `json:"entityType"`
	Payload    map[string]interface{} `json:"payload"`
}

// PullResponse is the server change stream since a cursor.
type PullResponse struct {
	Changes   []PullChange `json:"changes"`
	ServerSeq *int64       `json:"serverSeq,omitempty"`
}

// Pull entityType tags.
const (
	PullProduct       = "Product"
	PullSale          = "Sale"
	PullStockMovement = "StockMovement"
	PullAdjustment    = "Adjustment"
)
