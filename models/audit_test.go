package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/utils"
)

func stockTen(t *testing.T, state *models.State) {
	t.Helper()
	if _, err := state.RecordEntry(testCtx(), &models.NewEntry{
		Product: "Vodka", Qty: decimal.NewFromInt(10), Location: models.LocationBar,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
}

func TestAuditDifferenceIsPhysicalMinusTheoretical(t *testing.T) {
	state := newTestState(t)
	addProduct(t, state, "Vodka", 5)
	stockTen(t, state)

	session, err := state.NewAuditSession(time.Now(), models.ShiftClosing, models.StockFilter{})
	if err != nil {
		t.Fatalf("NewAuditSession: %v", err)
	}
	lines, err := session.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if len(lines) != 1 || !lines[0].Theoretical.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected session lines %+v", lines)
	}

	if err := session.SetCount("Vodka", models.LocationBar, decimal.NewFromInt(8)); err != nil {
		t.Fatalf("SetCount: %v", err)
	}
	records, err := session.Save(testCtx())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d audit records, want 1", len(records))
	}
	if !records[0].Difference.Equal(decimal.NewFromInt(-2)) {
		t.Fatalf("difference = %s, want -2", records[0].Difference)
	}
	if len(state.Physical) != 1 {
		t.Fatalf("physical count log has %d rows, want 1", len(state.Physical))
	}
}

func TestAuditMissingCountDefaultsToTheoretical(t *testing.T) {
	state := newTestState(t)
	addProduct(t, state, "Vodka", 5)
	stockTen(t, state)

	session, err := state.NewAuditSession(time.Now(), models.ShiftOpening, models.StockFilter{})
	if err != nil {
		t.Fatalf("NewAuditSession: %v", err)
	}
	records, err := session.Save(testCtx())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].Physical.Equal(records[0].Theoretical) || !records[0].Difference.IsZero() {
		t.Fatalf("uncounted line should default to theoretical, got %+v", records[0])
	}
}

func TestAuditSessionCannotBeSavedTwice(t *testing.T) {
	state := newTestState(t)
	addProduct(t, state, "Vodka", 5)
	stockTen(t, state)

	session, err := state.NewAuditSession(time.Now(), models.ShiftClosing, models.StockFilter{})
	if err != nil {
		t.Fatalf("NewAuditSession: %v", err)
	}
	if _, err := session.Save(testCtx()); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if session.Status() != models.SessionSaved {
		t.Fatalf("status = %s, want %s", session.Status(), models.SessionSaved)
	}
	if _, err := session.Save(testCtx()); !errors.Is(err, utils.ErrAuditSaved) {
		t.Fatalf("second Save: got %v, want ErrAuditSaved", err)
	}
	if err := session.SetCount("Vodka", models.LocationBar, decimal.NewFromInt(1)); !errors.Is(err, utils.ErrAuditSaved) {
		t.Fatalf("SetCount after save: got %v, want ErrAuditSaved", err)
	}
}

func TestReauditAppendsNewRecords(t *testing.T) {
	state := newTestState(t)
	addProduct(t, state, "Vodka", 5)
	stockTen(t, state)

	for i := 0; i < 2; i++ {
		session, err := state.NewAuditSession(time.Now(), models.ShiftClosing, models.StockFilter{})
		if err != nil {
			t.Fatalf("NewAuditSession: %v", err)
		}
		if _, err := session.Save(testCtx()); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	if len(state.DailyAudits) != 2 {
		t.Fatalf("got %d audit records, want 2 (append, not overwrite)", len(state.DailyAudits))
	}
}

func TestPreviousWeekBounds(t *testing.T) {
	// Wednesday 2026-08-26
	now := time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC)
	monday, sunday := models.PreviousWeek(now)
	if monday != time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("monday = %s", monday)
	}
	if sunday != time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("sunday = %s", sunday)
	}

	// Sunday must still resolve to the week before, not the running one
	sundayNow := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	monday, sunday = models.PreviousWeek(sundayNow)
	if monday != time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC) || sunday != time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("sunday input: got %s .. %s", monday, sunday)
	}
}

func TestWeeklyVarianceSumsPriorWeek(t *testing.T) {
	state := newTestState(t)
	addProduct(t, state, "Vodka", 5)
	stockTen(t, state)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	monday, _ := models.PreviousWeek(now)

	// three audits inside the window with differences -2, +1, -1
	for i, diff := range []int64{-2, 1, -1} {
		day := monday.AddDate(0, 0, i)
		session, err := state.NewAuditSession(day, models.ShiftClosing, models.StockFilter{})
		if err != nil {
			t.Fatalf("NewAuditSession: %v", err)
		}
		lines, err := session.Begin()
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		physical := lines[0].Theoretical.Add(decimal.NewFromInt(diff))
		if err := session.SetCount("Vodka", models.LocationBar, physical); err != nil {
			t.Fatalf("SetCount: %v", err)
		}
		if _, err := session.Save(testCtx()); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	// one audit outside the window must not count
	outside, err := state.NewAuditSession(now, models.ShiftClosing, models.StockFilter{})
	if err != nil {
		t.Fatalf("NewAuditSession: %v", err)
	}
	if _, err := outside.Save(testCtx()); err != nil {
		t.Fatalf("Save outside: %v", err)
	}

	week, rows := state.ComputeWeeklyVariance(now)
	if week != models.WeekID(monday) {
		t.Fatalf("week = %s, want %s", week, models.WeekID(monday))
	}
	if len(rows) != 1 {
		t.Fatalf("got %d variance rows, want 1", len(rows))
	}
	if !rows[0].Difference.Equal(decimal.NewFromInt(-2)) {
		t.Fatalf("accumulated difference = %s, want -2", rows[0].Difference)
	}
}

func TestSaveWeeklyRollupIsIdempotent(t *testing.T) {
	state := newTestState(t)
	addProduct(t, state, "Vodka", 5)
	stockTen(t, state)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	monday, _ := models.PreviousWeek(now)
	session, err := state.NewAuditSession(monday, models.ShiftClosing, models.StockFilter{})
	if err != nil {
		t.Fatalf("NewAuditSession: %v", err)
	}
	lines, err := session.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := session.SetCount("Vodka", models.LocationBar, lines[0].Theoretical.Sub(decimal.NewFromInt(1))); err != nil {
		t.Fatalf("SetCount: %v", err)
	}
	if _, err := session.Save(testCtx()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := state.SaveWeeklyRollup(testCtx(), now); err != nil {
		t.Fatalf("first rollup: %v", err)
	}
	if _, err := state.SaveWeeklyRollup(testCtx(), now); err != nil {
		t.Fatalf("second rollup: %v", err)
	}
	week := models.WeekID(monday)
	saved := state.GetWeeklyAudits(week)
	if len(saved) != 1 {
		t.Fatalf("got %d rollup rows for %s, want 1 (replace, not append)", len(saved), week)
	}
}
