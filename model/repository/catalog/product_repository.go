package catalog

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogEntity "pos.GO/model/entity/catalog"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts or updates a cached product and returns the refreshed
// row. An id with no matching local row falls through to insert, so pull
// must never fail on a product this device has not seen yet.
func (r *ProductRepository) Upsert(p *catalogEntity.Product) (*catalogEntity.Product, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sku", "name", "description", "price", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}

	var refreshed catalogEntity.Product
	if err := r.db.First(&refreshed, p.ID).Error; err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// FindByID returns a product or gorm.ErrRecordNotFound.
func (r *ProductRepository) FindByID(id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySKU returns a product by SKU or gorm.ErrRecordNotFound.
func (r *ProductRepository) FindBySKU(sku string) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.Where("sku = ?", sku).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all cached products ordered by name for UI consumption.
func (r *ProductRepository) List() ([]catalogEntity.Product, error) {
	var products []catalogEntity.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

// Exists reports whether a product row is cached locally.
func (r *ProductRepository) Exists(id uint) (bool, error) {
	_, err := r.FindByID(id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
