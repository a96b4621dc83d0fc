package reports

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/models"
)

// DashboardResponse is the panel summary: stock health counters, the
// products needing restock, today's movement totals and the all-time top
// sellers. Data only; rendering belongs to the client.
type DashboardResponse struct {
	StatusCounts    map[models.StockStatus]int `json:"status_counts"`
	Alerts          []models.StockDetail       `json:"alerts"`
	EntriesToday    decimal.Decimal            `json:"entries_today"`
	ExitsToday      decimal.Decimal            `json:"exits_today"`
	TopExits        []TopExitResponse          `json:"top_exits"`
	StockByCategory []CategoryStockResponse    `json:"stock_by_category"`
}

// TopExitResponse accumulates outbound quantity per product, largest first.
type TopExitResponse struct {
	Product string          `json:"product"`
	Qty     decimal.Decimal `json:"qty"`
}

type CategoryStockResponse struct {
	Category string          `json:"category"`
	Stock    decimal.Decimal `json:"stock"`
}

func GetDashboard(ctx context.Context, state *models.State) (*DashboardResponse, error) {
	started := time.Now()
	defer logSlowReport(ctx, "dashboard", started, nil)

	cacheKey := "Report:Dashboard"
	if reportCacheEnabled() {
		var cached DashboardResponse
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	details := state.CurrentStock(models.StockFilter{})

	resp := DashboardResponse{StatusCounts: make(map[models.StockStatus]int)}
	byCategory := make(map[string]decimal.Decimal)
	for _, d := range details {
		resp.StatusCounts[d.Status]++
		if d.Status == models.StockStatusCritical || d.Status == models.StockStatusLow {
			resp.Alerts = append(resp.Alerts, d)
		}
		category := d.Category
		if category == "" {
			category = "Sin categoría"
		}
		byCategory[category] = byCategory[category].Add(d.Stock)
	}
	for category, total := range byCategory {
		resp.StockByCategory = append(resp.StockByCategory, CategoryStockResponse{Category: category, Stock: total})
	}
	sort.Slice(resp.StockByCategory, func(i, j int) bool {
		return resp.StockByCategory[i].Category < resp.StockByCategory[j].Category
	})

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	topTotals := make(map[string]decimal.Decimal)
	for _, m := range state.MovementHistory(time.Time{}, time.Time{}) {
		if m.Kind.IsExit() {
			topTotals[m.Product] = topTotals[m.Product].Add(m.Qty.Abs())
		}
		if m.Timestamp.Before(dayStart) {
			continue
		}
		switch {
		case m.Kind == models.MovementEntry:
			resp.EntriesToday = resp.EntriesToday.Add(m.Qty)
		case m.Kind.IsExit():
			resp.ExitsToday = resp.ExitsToday.Add(m.Qty.Abs())
		}
	}
	for product, total := range topTotals {
		resp.TopExits = append(resp.TopExits, TopExitResponse{Product: product, Qty: total})
	}
	sort.Slice(resp.TopExits, func(i, j int) bool {
		if !resp.TopExits[i].Qty.Equal(resp.TopExits[j].Qty) {
			return resp.TopExits[i].Qty.GreaterThan(resp.TopExits[j].Qty)
		}
		return resp.TopExits[i].Product < resp.TopExits[j].Product
	})
	if len(resp.TopExits) > 10 {
		resp.TopExits = resp.TopExits[:10]
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, resp, reportCacheTTL())
	}
	return &resp, nil
}
