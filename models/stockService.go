package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// StockRow is the derived on-hand quantity for one (product, location)
// pair. Always recomputed from the ledger, never stored.
type StockRow struct {
	Product  string          `json:"product"`
	Location Location        `json:"location"`
	Stock    decimal.Decimal `json:"stock"`
}

// ComputeStock groups ledger entries by (product, location) and sums the
// signed quantities. It is pure: the result depends only on the multiset
// of entries, not their order, and an empty ledger yields an empty result.
// Rows come back sorted by product then location so repeated calls on the
// same ledger compare equal.
func ComputeStock(ledger []Movement) []StockRow {
	type key struct {
		product  string
		location Location
	}
	sums := make(map[key]decimal.Decimal)
	for _, m := range ledger {
		k := key{m.Product, m.Location}
		sums[k] = sums[k].Add(m.Qty)
	}

	rows := make([]StockRow, 0, len(sums))
	for k, total := range sums {
		rows = append(rows, StockRow{Product: k.product, Location: k.location, Stock: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Product != rows[j].Product {
			return rows[i].Product < rows[j].Product
		}
		return rows[i].Location < rows[j].Location
	})
	return rows
}

// ClassifyStock grades on-hand stock against the configured minimum.
// A zero minimum means no threshold is configured.
func ClassifyStock(stock, minimum decimal.Decimal) StockStatus {
	switch {
	case minimum.IsZero():
		return StockStatusNoMinimum
	case stock.LessThan(minimum):
		return StockStatusCritical
	case stock.LessThan(minimum.Mul(decimal.NewFromInt(2))):
		return StockStatusLow
	default:
		return StockStatusSufficient
	}
}

// StockDetail is a StockRow joined with its catalog context for display.
type StockDetail struct {
	StockRow
	Category string      `json:"category"`
	Status   StockStatus `json:"status"`
}

type StockFilter struct {
	Locations  []Location `json:"locations"`
	Categories []string   `json:"categories"`
}

func (f StockFilter) matches(row StockRow, category string) bool {
	if len(f.Locations) > 0 {
		found := false
		for _, l := range f.Locations {
			if l == row.Location {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if c == category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CurrentStock computes the theoretical stock with status and category,
// optionally filtered by location and catalog category.
func (s *State) CurrentStock(filter StockFilter) []StockDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStock(filter)
}

// currentStock assumes the caller holds s.mu.
func (s *State) currentStock(filter StockFilter) []StockDetail {
	rows := ComputeStock(s.Ledger)
	out := make([]StockDetail, 0, len(rows))
	for _, row := range rows {
		var category string
		if p, ok := s.findProduct(row.Product); ok {
			category = p.Category
		}
		if !filter.matches(row, category) {
			continue
		}
		out = append(out, StockDetail{
			StockRow: row,
			Category: category,
			Status:   ClassifyStock(row.Stock, s.minimumFor(row.Product)),
		})
	}
	return out
}
