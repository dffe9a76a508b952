// Package sync implements the offline-first synchronization engine: a
// durable outbox drained in bounded batches, a pull loop behind a
// persisted device cursor, and a timer-driven cycle that degrades to
// "keep retrying quietly" on every transient failure.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"pos.GO/core/cache"
	syncqEntity "pos.GO/model/entity/syncq"
	deviceRepo "pos.GO/model/repository/device"
	ledgerRepo "pos.GO/model/repository/ledger"
	outboxRepo "pos.GO/model/repository/outbox"
	salesRepo "pos.GO/model/repository/sales"
)

// Worker orchestrates push and pull against the remote sync endpoint.
// Construct one per store (dependency-injected DB, no process-global
// state) and share it between the cron tick and the manual trigger.
type Worker struct {
	db     *gorm.DB
	client *Client
	cfg    Config

	// single-flight: a slow cycle must not overlap the next tick
	runMu sync.Mutex

	tokenMu sync.RWMutex
	token   string

	statsMu    sync.Mutex
	lastRunAt  time.Time
	lastError  string
	lastPushed int
	lastPulled int
}

var errUnacknowledged = errors.New("not acknowledged by server")

// decodeJSONMap turns a stored outbox payload back into the generic map
// the push wire carries. A corrupt payload degrades to an empty object
// rather than poisoning the whole batch.
func decodeJSONMap(raw []byte) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			log.Printf("[sync] push: undecodable payload: %v", err)
		}
	}
	return out
}

// RunResult summarizes one sync cycle.
type RunResult struct {
	Skipped bool `json:"skipped"` // another cycle was in flight
	Pushed  int  `json:"pushed"`  // outbox items acknowledged
	Pulled  int  `json:"pulled"`  // server changes applied
}

// Status is the worker state surfaced to diagnostics.
type Status struct {
	TokenSet   bool             `json:"token_set"`
	LastRunAt  *time.Time       `json:"last_run_at,omitempty"`
	LastError  string           `json:"last_error,omitempty"`
	LastPushed int              `json:"last_pushed"`
	LastPulled int              `json:"last_pulled"`
	Cursor     int64            `json:"last_server_seq"`
	Queue      map[string]int64 `json:"queue"`
}

func NewWorker(db *gorm.DB, cfg Config) *Worker {
	return &Worker{
		db:     db,
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		cfg:    cfg,
	}
}

// --- default worker (wired at bootstrap, used by cron job and API) ---

var (
	defaultMu     sync.RWMutex
	defaultWorker *Worker
)

// SetDefault installs the process default worker.
func SetDefault(w *Worker) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultWorker = w
}

// Default returns the process default worker, nil before bootstrap.
func Default() *Worker {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultWorker
}

// SetToken installs the bearer credential. Until set, push and pull are
// silent no-ops. The worker runs unattended and never surfaces the
// missing-credential precondition as an error.
func (w *Worker) SetToken(token string) {
	w.tokenMu.Lock()
	defer w.tokenMu.Unlock()
	w.token = token
}

func (w *Worker) tokenValue() string {
	w.tokenMu.RLock()
	defer w.tokenMu.RUnlock()
	return w.token
}

// ready reports whether the push/pull preconditions hold.
func (w *Worker) ready() bool {
	return w != nil && w.db != nil && w.tokenValue() != ""
}

// PushQueue drains one bounded batch of pending outbox items. Returns
// the number of items acknowledged. Transient failures are recorded as
// retry_count increments and logged, never raised: the batch stays
// pending for the next tick.
func (w *Worker) PushQueue(ctx context.Context) int {
	if !w.ready() {
		return 0
	}

	queue := outboxRepo.NewOutboxRepository(w.db)
	items, err := queue.PendingBatch(w.cfg.BatchSize, w.cfg.MaxRetries)
	if err != nil {
		log.Printf("[sync] push: read queue: %v", err)
		w.noteError(err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	req := &PushRequest{Changes: make([]Change, 0, len(items))}
	allIDs := make([]uint, 0, len(items))
	byUUID := make(map[string][]syncqEntity.OutboxItem, len(items))
	for _, item := range items {
		payload := decodeJSONMap([]byte(item.Payload))
		req.Changes = append(req.Changes, Change{
			EntityType: item.EntityType,
			EntityUUID: item.EntityUUID,
			Payload:    payload,
		})
		allIDs = append(allIDs, item.ID)
		byUUID[item.EntityUUID] = append(byUUID[item.EntityUUID], item)
	}

	resp, err := w.client.Push(ctx, w.tokenValue(), req)
	if err != nil {
		log.Printf("[sync] push: batch of %d failed: %v", len(items), err)
		if ferr := queue.RecordFailure(allIDs, w.cfg.MaxRetries, err); ferr != nil {
			log.Printf("[sync] push: record failure: %v", ferr)
		}
		w.noteError(err)
		return 0
	}

	// Correlate acks by entityUuid. A reordering or partially-failing
	// server only settles the items it actually names.
	acked := make([]uint, 0, len(items))
	ackedSet := make(map[uint]bool, len(items))
	sales := salesRepo.NewSalesRepository(w.db)
	entries := ledgerRepo.NewLedgerRepository(w.db)
	for _, ack := range resp.Results {
		for _, item := range byUUID[ack.EntityUUID] {
			if ackedSet[item.ID] {
				continue
			}
			ackedSet[item.ID] = true
			acked = append(acked, item.ID)

			switch item.EntityType {
			case syncqEntity.EntitySale:
				if err := sales.MarkSynced(item.EntityUUID); err != nil {
					log.Printf("[sync] push: mark sale %s synced: %v", item.EntityUUID, err)
				}
			case syncqEntity.EntityAdjustment:
				if err := entries.MarkSynced(item.EntityUUID); err != nil {
					log.Printf("[sync] push: mark adjustment %s synced: %v", item.EntityUUID, err)
				}
			}
		}
	}

	if err := queue.MarkSynced(acked); err != nil {
		log.Printf("[sync] push: mark synced: %v", err)
		w.noteError(err)
		return 0
	}

	// Items the server did not acknowledge count as failed attempts.
	var unacked []uint
	for _, id := range allIDs {
		if !ackedSet[id] {
			unacked = append(unacked, id)
		}
	}
	if len(unacked) > 0 {
		log.Printf("[sync] push: %d of %d items not acknowledged", len(unacked), len(items))
		if err := queue.RecordFailure(unacked, w.cfg.MaxRetries, errUnacknowledged); err != nil {
			log.Printf("[sync] push: record failure: %v", err)
		}
	}

	if resp.ServerSeq != nil {
		if err := deviceRepo.NewDeviceMetaRepository(w.db).SetCursor(*resp.ServerSeq); err != nil {
			log.Printf("[sync] push: advance cursor: %v", err)
		}
	}

	return len(acked)
}

// PullChanges fetches and applies server changes past the cursor.
// Returns the number of changes applied. The cursor advances only after
// the whole response is applied; every apply is idempotent, so a crash
// in between just re-applies the same range next tick.
func (w *Worker) PullChanges(ctx context.Context) int {
	if !w.ready() {
		return 0
	}

	device := deviceRepo.NewDeviceMetaRepository(w.db)
	cursor, err := device.Cursor()
	if err != nil {
		log.Printf("[sync] pull: read cursor: %v", err)
		w.noteError(err)
		return 0
	}

	resp, err := w.client.Pull(ctx, w.tokenValue(), cursor)
	if err != nil {
		log.Printf("[sync] pull: since_seq=%d failed: %v", cursor, err)
		w.noteError(err)
		return 0
	}

	a := &applier{db: w.db}
	applied := 0
	for _, change := range resp.Changes {
		if err := a.apply(change); err != nil {
			log.Printf("[sync] pull: apply %s: %v", change.EntityType, err)
			continue
		}
		applied++
	}

	if resp.ServerSeq != nil {
		if err := device.SetCursor(*resp.ServerSeq); err != nil {
			log.Printf("[sync] pull: advance cursor: %v", err)
			w.noteError(err)
		}
	}

	if applied > 0 {
		// Cached product projections are stale after a pull.
		cache.GetInstance().FlushTag(cache.TagProducts)
	}

	return applied
}

// RunOnce executes one push-then-pull cycle. Push goes first so locally
// originated changes reach the server before the client consumes the
// merged view. Overlapping calls are skipped, not queued.
func (w *Worker) RunOnce(ctx context.Context) RunResult {
	if !w.runMu.TryLock() {
		log.Printf("[sync] cycle already in flight, skipping tick")
		return RunResult{Skipped: true}
	}
	defer w.runMu.Unlock()

	w.clearError()
	pushed := w.PushQueue(ctx)
	pulled := w.PullChanges(ctx)

	w.statsMu.Lock()
	w.lastRunAt = time.Now()
	w.lastPushed = pushed
	w.lastPulled = pulled
	w.statsMu.Unlock()

	return RunResult{Pushed: pushed, Pulled: pulled}
}

// Status reports worker state plus queue counts and the cursor.
func (w *Worker) Status() Status {
	w.statsMu.Lock()
	st := Status{
		TokenSet:   w.tokenValue() != "",
		LastError:  w.lastError,
		LastPushed: w.lastPushed,
		LastPulled: w.lastPulled,
	}
	if !w.lastRunAt.IsZero() {
		t := w.lastRunAt
		st.LastRunAt = &t
	}
	w.statsMu.Unlock()

	if w.db != nil {
		if cursor, err := deviceRepo.NewDeviceMetaRepository(w.db).Cursor(); err == nil {
			st.Cursor = cursor
		}
		if counts, err := outboxRepo.NewOutboxRepository(w.db).CountByStatus(); err == nil {
			st.Queue = counts
		}
	}
	return st
}

func (w *Worker) noteError(err error) {
	w.statsMu.Lock()
	w.lastError = err.Error()
	w.statsMu.Unlock()
}

func (w *Worker) clearError() {
	w.statsMu.Lock()
	w.lastError = ""
	w.statsMu.Unlock()
}
