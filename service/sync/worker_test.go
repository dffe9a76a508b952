package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	catalogEntity "pos.GO/model/entity/catalog"
	deviceEntity "pos.GO/model/entity/device"
	inventoryEntity "pos.GO/model/entity/inventory"
	ledgerEntity "pos.GO/model/entity/ledger"
	salesEntity "pos.GO/model/entity/sales"
	syncqEntity "pos.GO/model/entity/syncq"
	deviceRepo "pos.GO/model/repository/device"
	outboxRepo "pos.GO/model/repository/outbox"
	salesRepo "pos.GO/model/repository/sales"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&catalogEntity.Product{},
		&salesEntity.LocalSale{},
		&inventoryEntity.StockMovement{},
		&ledgerEntity.LedgerEntry{},
		&syncqEntity.OutboxItem{},
		&deviceEntity.DeviceMeta{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testWorker(t *testing.T, db *gorm.DB, baseURL string) *Worker {
	w := NewWorker(db, Config{
		BaseURL:    baseURL,
		BatchSize:  50,
		MaxRetries: 5,
		Timeout:    5 * time.Second,
	})
	w.SetToken("test-token")
	return w
}

// seedSale writes a sale plus its outbox item the way the API handler
// does, inside one transaction.
func seedSale(t *testing.T, db *gorm.DB, uuid string) {
	err := db.Transaction(func(tx *gorm.DB) error {
		sale := &salesEntity.LocalSale{LocalUUID: uuid, ProductID: 1, Qty: 1, UnitPrice: 2, Total: 2}
		if err := salesRepo.NewSalesRepository(tx).Create(sale); err != nil {
			return err
		}
		_, err := outboxRepo.NewOutboxRepository(tx).Enqueue(syncqEntity.EntitySale, uuid, sale)
		return err
	})
	if err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func ackAll(seq int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := PushResponse{ServerSeq: &seq}
		for _, c := range req.Changes {
			resp.Results = append(resp.Results, PushAck{EntityUUID: c.EntityUUID, Status: "ok"})
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestPushQueue_SuccessDrainsQueueAndMarksEntities(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")
	seedSale(t, db, "sale-2")

	srv := httptest.NewServer(ackAll(17))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	if got := w.PushQueue(context.Background()); got != 2 {
		t.Fatalf("PushQueue = %d, want 2", got)
	}

	items, _ := outboxRepo.NewOutboxRepository(db).PeekAll()
	for _, item := range items {
		if item.Status != syncqEntity.StatusSynced {
			t.Errorf("item %d status = %q, want synced", item.ID, item.Status)
		}
	}

	sale, err := salesRepo.NewSalesRepository(db).FindByUUID("sale-1")
	if err != nil {
		t.Fatalf("FindByUUID: %v", err)
	}
	if !sale.Synced {
		t.Error("acknowledged sale not marked synced")
	}

	cursor, _ := deviceRepo.NewDeviceMetaRepository(db).Cursor()
	if cursor != 17 {
		t.Errorf("cursor = %d, want 17", cursor)
	}
}

func TestPushQueue_TransportFailureKeepsItemsPending(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	if got := w.PushQueue(context.Background()); got != 0 {
		t.Fatalf("PushQueue = %d, want 0", got)
	}

	items, _ := outboxRepo.NewOutboxRepository(db).PeekAll()
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Status != syncqEntity.StatusPending {
		t.Errorf("status = %q, want pending", items[0].Status)
	}
	if items[0].RetryCount != 1 {
		t.Errorf("retry_count = %d, want 1", items[0].RetryCount)
	}
	if items[0].LastError == "" {
		t.Error("last_error not recorded")
	}
}

func TestPushQueue_RetryCeilingMovesItemToFailed(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWorker(db, Config{BaseURL: srv.URL, BatchSize: 50, MaxRetries: 2, Timeout: 5 * time.Second})
	w.SetToken("t")

	w.PushQueue(context.Background())
	w.PushQueue(context.Background())
	// Item is at the ceiling now; no further request may be attempted.
	w.PushQueue(context.Background())

	if requests != 2 {
		t.Errorf("server saw %d requests, want 2", requests)
	}

	queue := outboxRepo.NewOutboxRepository(db)
	failed, _ := queue.Failed()
	if len(failed) != 1 {
		t.Fatalf("failed count = %d, want 1", len(failed))
	}
	if failed[0].RetryCount != 2 {
		t.Errorf("retry_count = %d, want 2", failed[0].RetryCount)
	}
	batch, _ := queue.PendingBatch(50, 2)
	if len(batch) != 0 {
		t.Errorf("failed item still eligible: %v", batch)
	}
}

func TestPushQueue_PartialAckSettlesOnlyNamedItems(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")
	seedSale(t, db, "sale-2")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only sale-2 is acknowledged, and out of request order.
		json.NewEncoder(w).Encode(PushResponse{
			Results: []PushAck{{EntityUUID: "sale-2", Status: "ok"}},
		})
	}))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	if got := w.PushQueue(context.Background()); got != 1 {
		t.Fatalf("PushQueue = %d, want 1", got)
	}

	items, _ := outboxRepo.NewOutboxRepository(db).PeekAll()
	byUUID := map[string]syncqEntity.OutboxItem{}
	for _, item := range items {
		byUUID[item.EntityUUID] = item
	}
	if byUUID["sale-2"].Status != syncqEntity.StatusSynced {
		t.Errorf("sale-2 status = %q, want synced", byUUID["sale-2"].Status)
	}
	if byUUID["sale-1"].Status != syncqEntity.StatusPending {
		t.Errorf("sale-1 status = %q, want pending", byUUID["sale-1"].Status)
	}
	if byUUID["sale-1"].RetryCount != 1 {
		t.Errorf("sale-1 retry_count = %d, want 1", byUUID["sale-1"].RetryCount)
	}
}

func TestPushQueue_WithoutTokenIsNoOp(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	w := NewWorker(db, Config{BaseURL: srv.URL, BatchSize: 50, MaxRetries: 5, Timeout: time.Second})
	if got := w.PushQueue(context.Background()); got != 0 {
		t.Errorf("PushQueue = %d, want 0", got)
	}
	if got := w.PullChanges(context.Background()); got != 0 {
		t.Errorf("PullChanges = %d, want 0", got)
	}
	if requests != 0 {
		t.Errorf("server saw %d requests, want 0", requests)
	}
}

func pullOnce(changes []PullChange, seq int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PullResponse{Changes: changes, ServerSeq: &seq})
	}
}

func TestPullChanges_AppliesAndAdvancesCursor(t *testing.T) {
	db := testDB(t)

	changes := []PullChange{
		{EntityType: PullProduct, Payload: map[string]interface{}{
			"id": float64(7), "sku": "A-1", "name": "Apple", "price": 1.5,
			"updated_at": "2026-08-30T10:00:00Z",
		}},
		{EntityType: PullSale, Payload: map[string]interface{}{
			"local_uuid": "remote-sale", "product_id": float64(7), "qty": float64(2),
		}},
	}
	srv := httptest.NewServer(pullOnce(changes, 42))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	if got := w.PullChanges(context.Background()); got != 2 {
		t.Fatalf("PullChanges = %d, want 2", got)
	}

	var p catalogEntity.Product
	if err := db.First(&p, 7).Error; err != nil {
		t.Fatalf("pulled product missing: %v", err)
	}
	if p.Name != "Apple" || p.Price != 1.5 {
		t.Errorf("product = %+v", p)
	}

	sale, err := salesRepo.NewSalesRepository(db).FindByUUID("remote-sale")
	if err != nil {
		t.Fatalf("pulled sale missing: %v", err)
	}
	if !sale.Synced {
		t.Error("pull-sourced sale must arrive synced")
	}

	cursor, _ := deviceRepo.NewDeviceMetaRepository(db).Cursor()
	if cursor != 42 {
		t.Errorf("cursor = %d, want 42", cursor)
	}
}

func TestPullChanges_DoubleDeliveryIsIdempotent(t *testing.T) {
	db := testDB(t)

	changes := []PullChange{
		{EntityType: PullSale, Payload: map[string]interface{}{
			"local_uuid": "dup-sale", "product_id": float64(1), "qty": float64(1),
		}},
		{EntityType: PullStockMovement, Payload: map[string]interface{}{
			"movement_uuid": "dup-move", "product_id": float64(1), "qty_delta": float64(3),
		}},
		{EntityType: PullAdjustment, Payload: map[string]interface{}{
			"local_uuid": "dup-adj", "amount": float64(-4),
		}},
	}
	srv := httptest.NewServer(pullOnce(changes, 9))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	w.PullChanges(context.Background())
	// Simulate a crash before cursor persistence: same range again.
	if got := w.PullChanges(context.Background()); got != 3 {
		t.Fatalf("second PullChanges = %d, want 3 (idempotent applies)", got)
	}

	var saleCount, moveCount, adjCount int64
	db.Model(&salesEntity.LocalSale{}).Count(&saleCount)
	db.Model(&inventoryEntity.StockMovement{}).Count(&moveCount)
	db.Model(&ledgerEntity.LedgerEntry{}).Count(&adjCount)
	if saleCount != 1 || moveCount != 1 || adjCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", saleCount, moveCount, adjCount)
	}
}

func TestPullChanges_FailureLeavesCursorThenRecovers(t *testing.T) {
	db := testDB(t)
	if err := deviceRepo.NewDeviceMetaRepository(db).SetCursor(5); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}

	broken := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		if got := r.URL.Query().Get("since_seq"); got != "5" {
			t.Errorf("since_seq = %q, want 5", got)
		}
		pullOnce(nil, 6)(w, r)
	}))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	device := deviceRepo.NewDeviceMetaRepository(db)

	w.PullChanges(context.Background())
	if cursor, _ := device.Cursor(); cursor != 5 {
		t.Errorf("cursor moved to %d on failed pull", cursor)
	}
	if w.Status().LastError == "" {
		t.Error("failed pull not surfaced in status")
	}

	broken = false
	w.PullChanges(context.Background())
	if cursor, _ := device.Cursor(); cursor != 6 {
		t.Errorf("cursor = %d after recovery, want 6", cursor)
	}
}

func TestRunOnce_PushesBeforePull(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/sync/push" {
			ackAll(3)(w, r)
			return
		}
		pullOnce(nil, 3)(w, r)
	}))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	res := w.RunOnce(context.Background())
	if res.Skipped {
		t.Fatal("unexpected skip")
	}
	if res.Pushed != 1 {
		t.Errorf("Pushed = %d, want 1", res.Pushed)
	}
	if len(paths) != 2 || paths[0] != "/sync/push" || paths[1] != "/sync/pull" {
		t.Errorf("request order = %v, want push then pull", paths)
	}

	st := w.Status()
	if st.LastRunAt == nil {
		t.Error("LastRunAt not recorded")
	}
	if st.Queue[syncqEntity.StatusPending] != 0 {
		t.Errorf("pending = %d, want 0", st.Queue[syncqEntity.StatusPending])
	}
}

func TestRunOnce_OverlappingCycleIsSkipped(t *testing.T) {
	db := testDB(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		pullOnce(nil, 1)(w, r)
	}))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)

	done := make(chan RunResult)
	go func() { done <- w.RunOnce(context.Background()) }()
	<-entered

	if res := w.RunOnce(context.Background()); !res.Skipped {
		t.Error("concurrent RunOnce not skipped")
	}

	close(release)
	if res := <-done; res.Skipped {
		t.Error("first RunOnce reported skipped")
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var pushAuth, pullAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sync/push":
			pushAuth = r.Header.Get("Authorization")
			ackAll(1)(w, r)
		case "/sync/pull":
			pullAuth = r.Header.Get("Authorization")
			pullOnce(nil, 1)(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Push(context.Background(), "secret", &PushRequest{}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := c.Pull(context.Background(), "secret", 0); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if pushAuth != "Bearer secret" || pullAuth != "Bearer secret" {
		t.Errorf("auth headers = %q / %q", pushAuth, pullAuth)
	}
}

func TestPushQueue_FailedAttemptThenSuccessfulDrain(t *testing.T) {
	db := testDB(t)
	seedSale(t, db, "sale-1")

	broken := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		ackAll(8)(w, r)
	}))
	defer srv.Close()

	w := testWorker(t, db, srv.URL)
	queue := outboxRepo.NewOutboxRepository(db)

	if got := w.PushQueue(context.Background()); got != 0 {
		t.Fatalf("failed push: PushQueue = %d, want 0", got)
	}
	items, _ := queue.PeekAll()
	if len(items) != 1 || items[0].Status != syncqEntity.StatusPending || items[0].RetryCount != 1 {
		t.Fatalf("after failure: %+v, want 1 pending item with retry_count=1", items)
	}

	broken = false
	if got := w.PushQueue(context.Background()); got != 1 {
		t.Fatalf("recovered push: PushQueue = %d, want 1", got)
	}
	batch, _ := queue.PendingBatch(50, 5)
	if len(batch) != 0 {
		t.Errorf("queue not drained: %v", batch)
	}
	sale, err := salesRepo.NewSalesRepository(db).FindByUUID("sale-1")
	if err != nil {
		t.Fatalf("FindByUUID: %v", err)
	}
	if !sale.Synced {
		t.Error("sale not marked synced after recovery")
	}
	if cursor, _ := deviceRepo.NewDeviceMetaRepository(db).Cursor(); cursor != 8 {
		t.Errorf("cursor = %d, want 8", cursor)
	}
}
