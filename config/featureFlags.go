package config

import (
	"os"
	"strings"
)

// StrictPersistence makes a failed sheet write fail the whole operation
// instead of reporting it after the in-memory commit. Off by default to
// keep the original best-effort behavior.
//
// Set via env:
// - STRICT_PERSISTENCE=true
func StrictPersistence() bool {
	return envBool("STRICT_PERSISTENCE")
}

// LedgerJournalFile points the movements ledger at an append-only journal
// file. When set, the journal is the ledger of record and the Inventario
// sheet becomes a rebuildable projection.
//
// Set via env:
// - LEDGER_JOURNAL_FILE=inventario.journal
func LedgerJournalFile() string {
	return strings.TrimSpace(os.Getenv("LEDGER_JOURNAL_FILE"))
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
