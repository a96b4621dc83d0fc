package models

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// Product is one catalog row. Name is the key every other table refers to.
// Once a product appears in the ledger only the minimum-stock threshold is
// editable; products are never deleted.
type Product struct {
	Name         string          `json:"name"`
	Type         ProductType     `json:"type"`
	Category     string          `json:"category"`
	UnitVolumeMl decimal.Decimal `json:"unit_volume_ml"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

func (p Product) toRecord() sheets.Record {
	return sheets.Record{
		"Nombre":    p.Name,
		"Tipo":      string(p.Type),
		"Categoria": p.Category,
		"ML":        p.UnitVolumeMl.String(),
		"Stock Min": p.MinimumStock.String(),
	}
}

func productFromRecord(rec sheets.Record) Product {
	return Product{
		Name:         strings.TrimSpace(rec.Get("Nombre")),
		Type:         ProductType(rec.Get("Tipo")),
		Category:     strings.TrimSpace(rec.Get("Categoria")),
		UnitVolumeMl: utils.DecimalFromSheet(rec.Get("ML")),
		MinimumStock: utils.DecimalFromSheet(rec.Get("Stock Min")),
	}
}

type NewProduct struct {
	Name         string          `json:"name" binding:"required" validate:"required"`
	Type         ProductType     `json:"type" binding:"required" validate:"required"`
	Category     string          `json:"category"`
	UnitVolumeMl decimal.Decimal `json:"unit_volume_ml"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

func (input *NewProduct) validate(s *State) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Type.Valid() {
		return errors.New("invalid product type")
	}
	if input.UnitVolumeMl.IsNegative() || input.MinimumStock.IsNegative() {
		return errors.New("volume and minimum stock cannot be negative")
	}
	if _, ok := s.findProduct(input.Name); ok {
		return errors.New("product already exists in catalog")
	}
	return nil
}

func (s *State) CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := input.validate(s); err != nil {
		return nil, err
	}

	product := Product{
		Name:         strings.TrimSpace(input.Name),
		Type:         input.Type,
		Category:     strings.TrimSpace(input.Category),
		UnitVolumeMl: input.UnitVolumeMl,
		MinimumStock: input.MinimumStock,
	}
	prev := len(s.Catalog)
	s.Catalog = append(s.Catalog, product)

	err := s.commit(ctx, func() { s.Catalog = s.Catalog[:prev] }, TableCatalog)
	return &product, err
}

// UpdateMinimumStock is the only edit allowed on a referenced product.
func (s *State) UpdateMinimumStock(ctx context.Context, name string, minimum decimal.Decimal) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if minimum.IsNegative() {
		return nil, errors.New("minimum stock cannot be negative")
	}
	for i := range s.Catalog {
		if s.Catalog[i].Name == name {
			old := s.Catalog[i].MinimumStock
			s.Catalog[i].MinimumStock = minimum
			err := s.commit(ctx, func() { s.Catalog[i].MinimumStock = old }, TableCatalog)
			p := s.Catalog[i]
			return &p, err
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func (s *State) GetCatalog() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product(nil), s.Catalog...)
}

// findProduct assumes the caller holds s.mu.
func (s *State) findProduct(name string) (Product, bool) {
	name = strings.TrimSpace(name)
	for _, p := range s.Catalog {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// minimumFor returns the configured threshold, zero (= no threshold) for
// products the catalog does not know. Caller holds s.mu.
func (s *State) minimumFor(name string) decimal.Decimal {
	if p, ok := s.findProduct(name); ok {
		return p.MinimumStock
	}
	return decimal.Zero
}
