package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	catalogEntity "pos.GO/model/entity/catalog"
	catalogRepo "pos.GO/model/repository/catalog"
)

// ImportOptions configures a catalog import run.
type ImportOptions struct {
	BatchSize int
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows int
	Created   int
	Updated   int
	Skipped   int
	Warnings  []string
	TotalTime time.Duration
}

// ImportProducts reads CSV data from r and upserts rows into the local
// catalog. Expected header: sku,name,description,price (id optional).
// A row without sku or with an unparsable price is skipped with a warning.
func ImportProducts(db *gorm.DB, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	startTotal := time.Now()

	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["sku"]; !ok {
		return nil, fmt.Errorf("CSV header missing sku column")
	}

	res := &ImportResult{}
	repo := catalogRepo.NewProductRepository(db)

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
			res.Skipped++
			continue
		}
		res.TotalRows++

		sku := field(row, "sku")
		if sku == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: empty sku", line))
			res.Skipped++
			continue
		}

		price := 0.0
		if raw := field(row, "price"); raw != "" {
			price, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: bad price %q", line, raw))
				res.Skipped++
				continue
			}
		}

		p := &catalogEntity.Product{
			SKU:         sku,
			Name:        field(row, "name"),
			Description: field(row, "description"),
			Price:       price,
		}
		if raw := field(row, "id"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				p.ID = uint(id)
			}
		}

		existing, err := repo.FindBySKU(sku)
		switch {
		case err == nil:
			p.ID = existing.ID
			if _, err := repo.Upsert(p); err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
				res.Skipped++
				continue
			}
			res.Updated++
		case err == gorm.ErrRecordNotFound:
			if _, err := repo.Upsert(p); err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
				res.Skipped++
				continue
			}
			res.Created++
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
			res.Skipped++
		}
	}

	res.TotalTime = time.Since(startTotal)
	return res, nil
}
