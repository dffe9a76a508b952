package sync

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	catalogEntity "pos.GO/model/entity/catalog"
	inventoryEntity "pos.GO/model/entity/inventory"
	ledgerEntity "pos.GO/model/entity/ledger"
	salesEntity "pos.GO/model/entity/sales"
	catalogRepo "pos.GO/model/repository/catalog"
	inventoryRepo "pos.GO/model/repository/inventory"
	ledgerRepo "pos.GO/model/repository/ledger"
	salesRepo "pos.GO/model/repository/sales"
)

// applier dispatches pull changes to the idempotent per-entity writes.
// Every apply is safe to repeat: a crash between apply and cursor
// persistence re-delivers the same range on the next tick.
type applier struct {
	db *gorm.DB
}

func (a *applier) apply(change PullChange) error {
	switch change.EntityType {
	case PullProduct:
		return a.applyProduct(change.Payload)
	case PullSale:
		return a.applySale(change.Payload)
	case PullStockMovement:
		return a.applyStockMovement(change.Payload)
	case PullAdjustment:
		return a.applyAdjustment(change.Payload)
	default:
		return fmt.Errorf("unknown entityType %q", change.EntityType)
	}
}

// decodePayload maps the opaque pull payload onto an entity using
// json tag names; numbers arrive as float64 and timestamps as RFC3339.
func decodePayload(payload map[string]interface{}, out interface{}) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

// applyProduct overwrites all mutable fields unconditionally, last
// pull wins.
func (a *applier) applyProduct(payload map[string]interface{}) error {
	var p catalogEntity.Product
	if err := decodePayload(payload, &p); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}
	_, err := catalogRepo.NewProductRepository(a.db).Upsert(&p)
	return err
}

// applySale inserts or ignores by local_uuid; pull-sourced sales are
// already confirmed by the server, so synced is true immediately.
func (a *applier) applySale(payload map[string]interface{}) error {
	var s salesEntity.LocalSale
	if err := decodePayload(payload, &s); err != nil {
		return fmt.Errorf("decode sale: %w", err)
	}
	if s.LocalUUID == "" {
		return fmt.Errorf("sale change missing local_uuid")
	}
	s.ID = 0
	s.Synced = true
	return salesRepo.NewSalesRepository(a.db).InsertIfAbsent(&s)
}

func (a *applier) applyStockMovement(payload map[string]interface{}) error {
	var m inventoryEntity.StockMovement
	if err := decodePayload(payload, &m); err != nil {
		return fmt.Errorf("decode stock movement: %w", err)
	}
	if m.MovementUUID == "" {
		return fmt.Errorf("stock movement change missing movement_uuid")
	}
	m.ID = 0
	repo, err := inventoryRepo.NewInventoryRepository(a.db)
	if err != nil {
		return err
	}
	_, _, err = repo.PushMovement(&m)
	return err
}

func (a *applier) applyAdjustment(payload map[string]interface{}) error {
	var e ledgerEntity.LedgerEntry
	if err := decodePayload(payload, &e); err != nil {
		return fmt.Errorf("decode adjustment: %w", err)
	}
	if e.LocalUUID == "" {
		return fmt.Errorf("adjustment change missing local_uuid")
	}
	e.ID = 0
	e.EntryType = ledgerEntity.TypeAdjustment
	e.Synced = true
	return ledgerRepo.NewLedgerRepository(a.db).InsertIfAbsent(&e)
}
