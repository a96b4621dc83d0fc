package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// PhysicalCount is one StockFisico row: what the operator actually counted
// for one (product, location) during an audit shift.
type PhysicalCount struct {
	Date     time.Time       `json:"date"`
	Product  string          `json:"product"`
	Location Location        `json:"location"`
	Shift    Shift           `json:"shift"`
	Physical decimal.Decimal `json:"physical"`
}

func (c PhysicalCount) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":        formatDate(c.Date),
		"Producto":     c.Product,
		"Ubicación":    string(c.Location),
		"Turno":        string(c.Shift),
		"Stock_Fisico": c.Physical.String(),
	}
}

func physicalFromRecord(rec sheets.Record) PhysicalCount {
	return PhysicalCount{
		Date:     parseSheetTime(rec.Get("Fecha")),
		Product:  rec.Get("Producto"),
		Location: Location(rec.Get("Ubicación")),
		Shift:    Shift(rec.Get("Turno")),
		Physical: utils.DecimalFromSheet(rec.Get("Stock_Fisico")),
	}
}

// AuditRecord is one Auditoria_Diaria row: physical vs theoretical for one
// (product, location) pair at audit time. Difference is physical minus
// theoretical; never mutated after the save.
type AuditRecord struct {
	Date        time.Time       `json:"date"`
	Product     string          `json:"product"`
	Location    Location        `json:"location"`
	Shift       Shift           `json:"shift"`
	Theoretical decimal.Decimal `json:"theoretical"`
	Physical    decimal.Decimal `json:"physical"`
	Difference  decimal.Decimal `json:"difference"`
}

func (a AuditRecord) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":         formatDate(a.Date),
		"Producto":      a.Product,
		"Ubicación":     string(a.Location),
		"Turno":         string(a.Shift),
		"Stock_Teorico": a.Theoretical.String(),
		"Stock_Fisico":  a.Physical.String(),
		"Diferencia":    a.Difference.String(),
	}
}

func auditFromRecord(rec sheets.Record) AuditRecord {
	return AuditRecord{
		Date:        parseSheetTime(rec.Get("Fecha")),
		Product:     rec.Get("Producto"),
		Location:    Location(rec.Get("Ubicación")),
		Shift:       Shift(rec.Get("Turno")),
		Theoretical: utils.DecimalFromSheet(rec.Get("Stock_Teorico")),
		Physical:    utils.DecimalFromSheet(rec.Get("Stock_Fisico")),
		Difference:  utils.DecimalFromSheet(rec.Get("Diferencia")),
	}
}

// AuditLine is one row of an in-progress audit session. Physical stays nil
// until the operator enters a count; on save a nil count falls back to the
// theoretical value, which makes its difference zero.
type AuditLine struct {
	Product     string           `json:"product"`
	Location    Location         `json:"location"`
	Theoretical decimal.Decimal  `json:"theoretical"`
	Physical    *decimal.Decimal `json:"physical,omitempty"`
}

// AuditSession walks one daily audit for a (date, shift, scope) through
// NotStarted, InProgress and Saved. There is no way back from Saved:
// auditing the same scope again is a new session appending new records.
type AuditSession struct {
	state  *State
	date   time.Time
	shift  Shift
	filter StockFilter
	status SessionStatus
	lines  []AuditLine
}

// NewAuditSession prepares an audit over the products currently in stock
// within the filter scope. A zero date means today.
func (s *State) NewAuditSession(date time.Time, shift Shift, filter StockFilter) (*AuditSession, error) {
	if !shift.Valid() {
		return nil, utils.ErrorRecordNotFound
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &AuditSession{
		state:  s,
		date:   date,
		shift:  shift,
		filter: filter,
		status: SessionNotStarted,
	}, nil
}

func (a *AuditSession) Status() SessionStatus { return a.status }

// Begin snapshots the theoretical stock for the session scope. Calling it
// on a session already in progress just returns the existing lines, so the
// snapshot is taken once and count entry works against a stable base.
func (a *AuditSession) Begin() ([]AuditLine, error) {
	if a.status == SessionSaved {
		return nil, utils.ErrAuditSaved
	}
	if a.status == SessionInProgress {
		return a.lines, nil
	}
	details := a.state.CurrentStock(a.filter)
	a.lines = make([]AuditLine, 0, len(details))
	for _, d := range details {
		a.lines = append(a.lines, AuditLine{
			Product:     d.Product,
			Location:    d.Location,
			Theoretical: d.Stock,
		})
	}
	a.status = SessionInProgress
	return a.lines, nil
}

// SetCount records the physical count for one line. Counts are absolute
// on-hand quantities, so negatives are rejected.
func (a *AuditSession) SetCount(product string, location Location, physical decimal.Decimal) error {
	if a.status == SessionSaved {
		return utils.ErrAuditSaved
	}
	if a.status == SessionNotStarted {
		if _, err := a.Begin(); err != nil {
			return err
		}
	}
	if physical.IsNegative() {
		return utils.ErrInvalidQuantity
	}
	for i := range a.lines {
		if a.lines[i].Product == product && a.lines[i].Location == location {
			a.lines[i].Physical = utils.Ptr(physical)
			return nil
		}
	}
	return utils.ErrorRecordNotFound
}

// Save writes one AuditRecord and one PhysicalCount per line and seals the
// session. Lines the operator never counted default to the theoretical
// value, so their difference is zero; the save does not reject them.
func (a *AuditSession) Save(ctx context.Context) ([]AuditRecord, error) {
	if a.status == SessionSaved {
		return nil, utils.ErrAuditSaved
	}
	if a.status == SessionNotStarted {
		if _, err := a.Begin(); err != nil {
			return nil, err
		}
	}

	s := a.state
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]AuditRecord, 0, len(a.lines))
	counts := make([]PhysicalCount, 0, len(a.lines))
	for _, line := range a.lines {
		physical := utils.DereferencePtr(line.Physical, line.Theoretical)
		records = append(records, AuditRecord{
			Date:        a.date,
			Product:     line.Product,
			Location:    line.Location,
			Shift:       a.shift,
			Theoretical: line.Theoretical,
			Physical:    physical,
			Difference:  physical.Sub(line.Theoretical),
		})
		counts = append(counts, PhysicalCount{
			Date:     a.date,
			Product:  line.Product,
			Location: line.Location,
			Shift:    a.shift,
			Physical: physical,
		})
	}

	prevAudits, prevCounts := len(s.DailyAudits), len(s.Physical)
	s.DailyAudits = append(s.DailyAudits, records...)
	s.Physical = append(s.Physical, counts...)
	a.status = SessionSaved

	err := s.commit(ctx, func() {
		s.DailyAudits = s.DailyAudits[:prevAudits]
		s.Physical = s.Physical[:prevCounts]
	}, TableDailyAudit, TablePhysical)
	return records, err
}

// AuditFilter narrows audit consultation by date, shift and location.
// Zero-valued fields match everything.
type AuditFilter struct {
	Date     time.Time `json:"date"`
	Shift    Shift     `json:"shift"`
	Location Location  `json:"location"`
}

func (f AuditFilter) matches(a AuditRecord) bool {
	if !f.Date.IsZero() {
		y1, m1, d1 := f.Date.Date()
		y2, m2, d2 := a.Date.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	if f.Shift != "" && f.Shift != a.Shift {
		return false
	}
	if f.Location != "" && f.Location != a.Location {
		return false
	}
	return true
}

// GetDailyAudits returns recorded audits matching the filter.
func (s *State) GetDailyAudits(filter AuditFilter) []AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditRecord, 0, len(s.DailyAudits))
	for _, a := range s.DailyAudits {
		if filter.matches(a) {
			out = append(out, a)
		}
	}
	return out
}
