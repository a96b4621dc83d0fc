package reports

import (
	"context"
	"errors"
	"time"

	"github.com/rr77/adminlicores/models"
)

// Quick ranges offered by the history screen. Personalizado expects
// explicit from/to values from the caller.
const (
	RangeToday     = "Hoy"
	RangeLastWeek  = "Última semana"
	RangeLastMonth = "Último mes"
	RangeAll       = "Todo"
	RangeCustom    = "Personalizado"
)

type HistoryRequest struct {
	Range string    `json:"range"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// resolve turns a quick range into absolute [from, to) bounds. Day-based
// ranges include the whole current day.
func (r HistoryRequest) resolve(now time.Time) (time.Time, time.Time, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Second)
	switch r.Range {
	case RangeToday:
		return dayStart, dayEnd, nil
	case RangeLastWeek:
		return dayStart.AddDate(0, 0, -6), dayEnd, nil
	case RangeLastMonth:
		return dayStart.AddDate(0, 0, -29), dayEnd, nil
	case RangeAll, "":
		return time.Time{}, time.Time{}, nil
	case RangeCustom:
		if r.From.IsZero() && r.To.IsZero() {
			return time.Time{}, time.Time{}, errors.New("custom range requires from/to dates")
		}
		return r.From, r.To, nil
	}
	return time.Time{}, time.Time{}, errors.New("unknown range: " + r.Range)
}

// GetMovementHistory returns ledger movements for the requested range,
// newest first.
func GetMovementHistory(ctx context.Context, state *models.State, req HistoryRequest) ([]models.Movement, error) {
	started := time.Now()
	defer logSlowReport(ctx, "movement_history", started, map[string]any{"range": req.Range})

	from, to, err := req.resolve(time.Now())
	if err != nil {
		return nil, err
	}
	return state.MovementHistory(from, to), nil
}
