package graphql

import (
	"context"
	"encoding/json"
	"strconv"

	gql "github.com/graph-gophers/graphql-go"
	"gorm.io/gorm"

	gqlmodels "pos.GO/graphql/models"
	"pos.GO/graphql/registry"
	catalogEntity "pos.GO/model/entity/catalog"
	syncqEntity "pos.GO/model/entity/syncq"
	catalogRepo "pos.GO/model/repository/catalog"
	inventoryRepo "pos.GO/model/repository/inventory"
	salesRepo "pos.GO/model/repository/sales"
	syncService "pos.GO/service/sync"
)

// QueryResolver implements the Query fields over the local store.
type QueryResolver struct {
	db *gorm.DB
}

func NewQueryResolver(db *gorm.DB) *QueryResolver {
	return &QueryResolver{db: db}
}

func (r *QueryResolver) Products(ctx context.Context) ([]*gqlmodels.Product, error) {
	list, err := catalogRepo.NewProductRepository(r.db).List()
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Product, 0, len(list))
	for i := range list {
		out = append(out, mapProduct(&list[i]))
	}
	return out, nil
}

type ProductArgs struct {
	ID gql.ID
}

func (r *QueryResolver) Product(ctx context.Context, args ProductArgs) (*gqlmodels.Product, error) {
	id, err := strconv.ParseUint(string(args.ID), 10, 64)
	if err != nil {
		return nil, nil
	}
	p, err := catalogRepo.NewProductRepository(r.db).FindByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return mapProduct(p), nil
}

type LimitArgs struct {
	Limit int32
}

func (r *QueryResolver) StockMovements(ctx context.Context, args LimitArgs) ([]*gqlmodels.StockMovement, error) {
	repo, err := inventoryRepo.NewInventoryRepository(r.db)
	if err != nil {
		return nil, err
	}
	list, err := repo.List(int(args.Limit))
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.StockMovement, 0, len(list))
	for _, m := range list {
		out = append(out, &gqlmodels.StockMovement{
			ID:           gql.ID(strconv.FormatUint(uint64(m.ID), 10)),
			MovementUUID: m.MovementUUID,
			ProductID:    gql.ID(strconv.FormatUint(uint64(m.ProductID), 10)),
			LocationCode: strPtr(m.LocationCode),
			QtyDelta:     m.QtyDelta,
			Reason:       strPtr(m.Reason),
			Reference:    strPtr(m.Reference),
		})
	}
	return out, nil
}

func (r *QueryResolver) Sales(ctx context.Context, args LimitArgs) ([]*gqlmodels.Sale, error) {
	list, err := salesRepo.NewSalesRepository(r.db).List(int(args.Limit))
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Sale, 0, len(list))
	for _, s := range list {
		out = append(out, &gqlmodels.Sale{
			ID:        gql.ID(strconv.FormatUint(uint64(s.ID), 10)),
			LocalUUID: s.LocalUUID,
			ProductID: gql.ID(strconv.FormatUint(uint64(s.ProductID), 10)),
			Qty:       s.Qty,
			UnitPrice: s.UnitPrice,
			Total:     s.Total,
			Synced:    s.Synced,
		})
	}
	return out, nil
}

func (r *QueryResolver) SyncStatus(ctx context.Context) (*gqlmodels.SyncStatus, error) {
	out := &gqlmodels.SyncStatus{}
	if w := syncService.Default(); w != nil {
		st := w.Status()
		out.TokenSet = st.TokenSet
		out.LastServerSeq = float64(st.Cursor)
		out.Pending = float64(st.Queue[syncqEntity.StatusPending])
		out.Failed = float64(st.Queue[syncqEntity.StatusFailed])
		if st.LastError != "" {
			out.LastError = strPtr(st.LastError)
		}
	}
	return out, nil
}

// ExtensionArgs for extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func mapProduct(p *catalogEntity.Product) *gqlmodels.Product {
	return &gqlmodels.Product{
		ID:          gql.ID(strconv.FormatUint(uint64(p.ID), 10)),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: strPtr(p.Description),
		Price:       p.Price,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
