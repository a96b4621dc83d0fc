package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// WeeklyVariance is one Auditoria_Semanal row: the accumulated daily audit
// difference for one (product, location) over one calendar week.
type WeeklyVariance struct {
	Week       string          `json:"week"`
	Product    string          `json:"product"`
	Location   Location        `json:"location"`
	Difference decimal.Decimal `json:"difference"`
}

func (w WeeklyVariance) toRecord() sheets.Record {
	return sheets.Record{
		"Semana":               w.Week,
		"Producto":             w.Product,
		"Ubicación":            string(w.Location),
		"Diferencia_Acumulada": w.Difference.String(),
	}
}

func weeklyFromRecord(rec sheets.Record) WeeklyVariance {
	return WeeklyVariance{
		Week:       rec.Get("Semana"),
		Product:    rec.Get("Producto"),
		Location:   Location(rec.Get("Ubicación")),
		Difference: utils.DecimalFromSheet(rec.Get("Diferencia_Acumulada")),
	}
}

// PreviousWeek returns the Monday and Sunday bounding the last complete
// calendar week before the given day. The rollup never touches the week
// still in progress.
func PreviousWeek(now time.Time) (monday, sunday time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 { // time.Sunday
		weekday = 7
	}
	thisMonday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	monday = thisMonday.AddDate(0, 0, -7)
	sunday = thisMonday.AddDate(0, 0, -1)
	return monday, sunday
}

// WeekID tags a rollup with the ISO year and week of its Monday, e.g.
// "2026-35".
func WeekID(monday time.Time) string {
	year, week := monday.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// ComputeWeeklyVariance aggregates the daily audits of the previous
// Monday to Sunday window by (product, location). Pure read: any role may
// consult the rollup without persisting it.
func (s *State) ComputeWeeklyVariance(now time.Time) (string, []WeeklyVariance) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.computeWeeklyVariance(now)
}

func (s *State) computeWeeklyVariance(now time.Time) (string, []WeeklyVariance) {
	if now.IsZero() {
		now = time.Now()
	}
	monday, sunday := PreviousWeek(now)
	week := WeekID(monday)
	end := sunday.AddDate(0, 0, 1) // exclusive upper bound

	type key struct {
		product  string
		location Location
	}
	sums := make(map[key]decimal.Decimal)
	for _, a := range s.DailyAudits {
		if a.Date.Before(monday) || !a.Date.Before(end) {
			continue
		}
		k := key{a.Product, a.Location}
		sums[k] = sums[k].Add(a.Difference)
	}

	rows := make([]WeeklyVariance, 0, len(sums))
	for k, total := range sums {
		rows = append(rows, WeeklyVariance{
			Week:       week,
			Product:    k.product,
			Location:   k.location,
			Difference: total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Product != rows[j].Product {
			return rows[i].Product < rows[j].Product
		}
		return rows[i].Location < rows[j].Location
	})
	return week, rows
}

// SaveWeeklyRollup persists the previous week's variance rollup. The save
// is idempotent per week: rows already stored for the same week id are
// replaced, so triggering the rollup twice never duplicates them.
func (s *State) SaveWeeklyRollup(ctx context.Context, now time.Time) ([]WeeklyVariance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	week, rows := s.computeWeeklyVariance(now)

	prev := s.WeeklyAudits
	kept := make([]WeeklyVariance, 0, len(prev))
	for _, w := range prev {
		if w.Week != week {
			kept = append(kept, w)
		}
	}
	s.WeeklyAudits = append(kept, rows...)

	err := s.commit(ctx, func() {
		s.WeeklyAudits = prev
	}, TableWeeklyAudit)
	return rows, err
}

// GetWeeklyAudits returns stored rollups, optionally for one week id.
func (s *State) GetWeeklyAudits(week string) []WeeklyVariance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WeeklyVariance, 0, len(s.WeeklyAudits))
	for _, w := range s.WeeklyAudits {
		if week == "" || w.Week == week {
			out = append(out, w)
		}
	}
	return out
}
