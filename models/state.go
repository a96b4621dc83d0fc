package models

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rr77/adminlicores/config"
	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
	"github.com/sirupsen/logrus"
)

// State owns every table of the application. It is created once at startup
// from the sheet store, mutated only through the recorder and audit
// operations, and flushed back to the store after each mutation.
type State struct {
	mu      sync.RWMutex
	store   sheets.Store
	journal *ledgerJournal
	logger  *logrus.Logger

	Catalog      []Product
	Recipes      []RecipeLine
	Ledger       []Movement
	Entries      []EntryRecord
	Exits        []ExitRecord
	Transfers    []TransferRecord
	Returns      []ReturnRecord
	Physical     []PhysicalCount
	DailyAudits  []AuditRecord
	WeeklyAudits []WeeklyVariance
	Consumptions []ConsumptionRecord
	Users        []User
}

// LoadState builds the application state from the store. Schema migration
// runs first, then every table is read; when the ledger journal is enabled
// it supersedes the Inventario sheet as the ledger of record.
func LoadState(ctx context.Context, store sheets.Store) (*State, error) {
	if err := EnsureSchema(ctx, store); err != nil {
		return nil, err
	}

	s := &State{store: store, logger: config.GetLogger()}
	if err := s.loadTables(ctx); err != nil {
		return nil, err
	}

	if path := config.LedgerJournalFile(); path != "" {
		j, err := openLedgerJournal(path)
		if err != nil {
			return nil, err
		}
		replayed, err := j.replay()
		if err != nil {
			return nil, err
		}
		switch {
		case len(replayed) > 0:
			s.Ledger = replayed
		case len(s.Ledger) > 0:
			// first run with a journal on an existing workbook
			if err := j.append(s.Ledger); err != nil {
				return nil, fmt.Errorf("seeding ledger journal: %w", err)
			}
		}
		s.journal = j
	}
	return s, nil
}

// Reload re-reads every table from the store, discarding in-memory copies.
// This is the "refresh from the spreadsheet" action; the state lock keeps
// it from interleaving with a recorder.
func (s *State) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadTables(ctx); err != nil {
		return err
	}
	if s.journal != nil {
		replayed, err := s.journal.replay()
		if err != nil {
			return err
		}
		if len(replayed) > 0 {
			s.Ledger = replayed
		}
	}
	return nil
}

func (s *State) loadTables(ctx context.Context) error {
	assigners := map[string]func([]sheets.Record){
		TableCatalog:     func(rows []sheets.Record) { s.Catalog = mapRecords(rows, productFromRecord) },
		TableRecipes:     func(rows []sheets.Record) { s.Recipes = mapRecords(rows, recipeLineFromRecord) },
		TableLedger:      func(rows []sheets.Record) { s.Ledger = mapRecords(rows, movementFromRecord) },
		TableEntries:     func(rows []sheets.Record) { s.Entries = mapRecords(rows, entryFromRecord) },
		TableExits:       func(rows []sheets.Record) { s.Exits = mapRecords(rows, exitFromRecord) },
		TableTransfers:   func(rows []sheets.Record) { s.Transfers = mapRecords(rows, transferFromRecord) },
		TableReturns:     func(rows []sheets.Record) { s.Returns = mapRecords(rows, returnFromRecord) },
		TablePhysical:    func(rows []sheets.Record) { s.Physical = mapRecords(rows, physicalFromRecord) },
		TableDailyAudit:  func(rows []sheets.Record) { s.DailyAudits = mapRecords(rows, auditFromRecord) },
		TableWeeklyAudit: func(rows []sheets.Record) { s.WeeklyAudits = mapRecords(rows, weeklyFromRecord) },
		TableConsumption: func(rows []sheets.Record) { s.Consumptions = mapRecords(rows, consumptionFromRecord) },
		TableUsers:       func(rows []sheets.Record) { s.Users = mapRecords(rows, userFromRecord) },
	}
	for table, assign := range assigners {
		rows, err := s.store.Load(ctx, table)
		if err != nil {
			return fmt.Errorf("loading %s: %w", table, err)
		}
		assign(rows)
	}
	return nil
}

func mapRecords[T any](rows []sheets.Record, from func(sheets.Record) T) []T {
	out := make([]T, 0, len(rows))
	for _, rec := range rows {
		out = append(out, from(rec))
	}
	return out
}

func (s *State) rowsFor(table string) []sheets.Record {
	switch table {
	case TableCatalog:
		return toRecords(s.Catalog, Product.toRecord)
	case TableRecipes:
		return toRecords(s.Recipes, RecipeLine.toRecord)
	case TableLedger:
		return toRecords(s.Ledger, Movement.toRecord)
	case TableEntries:
		return toRecords(s.Entries, EntryRecord.toRecord)
	case TableExits:
		return toRecords(s.Exits, ExitRecord.toRecord)
	case TableTransfers:
		return toRecords(s.Transfers, TransferRecord.toRecord)
	case TableReturns:
		return toRecords(s.Returns, ReturnRecord.toRecord)
	case TablePhysical:
		return toRecords(s.Physical, PhysicalCount.toRecord)
	case TableDailyAudit:
		return toRecords(s.DailyAudits, AuditRecord.toRecord)
	case TableWeeklyAudit:
		return toRecords(s.WeeklyAudits, WeeklyVariance.toRecord)
	case TableConsumption:
		return toRecords(s.Consumptions, ConsumptionRecord.toRecord)
	case TableUsers:
		return toRecords(s.Users, User.toRecord)
	}
	return nil
}

func toRecords[T any](items []T, to func(T) sheets.Record) []sheets.Record {
	out := make([]sheets.Record, 0, len(items))
	for _, item := range items {
		out = append(out, to(item))
	}
	return out
}

// RewriteAllTables flushes every table back to the store. Maintenance
// path: used to rebuild projection sheets after hand edits or a journal
// replay.
func (s *State) RewriteAllTables(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, tableOrder...)
}

// persist flushes the named tables to the store. Failures are collected
// and reported as one PersistenceError; tables that did save stay saved.
// When Redis is configured a best-effort lock serializes writers across
// processes, since a sheet save is a full overwrite.
//
// Callers hold s.mu.
func (s *State) persist(ctx context.Context, tables ...string) error {
	if lk := config.GetRedisLock(); lk != nil {
		if lock, err := lk.Obtain(ctx, "adminlicores:sheets:save", 30*time.Second, nil); err == nil {
			defer lock.Release(ctx)
		}
	}

	var failed []string
	var errs []error
	for _, table := range tables {
		if err := s.store.Save(ctx, table, TableColumns(table), s.rowsFor(table)); err != nil {
			failed = append(failed, table)
			errs = append(errs, err)
			config.LogError(s.logger, "state.go", "persist", "store.Save "+table, nil, err)
		}
	}
	if len(failed) > 0 {
		return &utils.PersistenceError{Tables: failed, Errs: errs}
	}
	return nil
}

// commit persists after a mutation. By default a failed write is reported
// but the in-memory mutation stays committed: the operation is "recorded"
// and only the flush is pending. Under STRICT_PERSISTENCE the rollback is
// run instead — except when the ledger journal already committed the
// batch, at which point undoing memory would contradict the record.
//
// Callers hold s.mu.
func (s *State) commit(ctx context.Context, rollback func(), tables ...string) error {
	err := s.persist(ctx, tables...)
	if err != nil && config.StrictPersistence() && s.journal == nil && rollback != nil {
		rollback()
		return err
	}
	// any mutation invalidates the cached dashboard rollup
	_ = config.RemoveRedisKey("Report:Dashboard")
	return err
}
