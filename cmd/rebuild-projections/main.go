// rebuild-projections rewrites every worksheet of the workbook from the
// loaded state under the canonical column schema. Run it after editing the
// workbook by hand or after enabling the ledger journal, so the Inventario
// sheet matches the ledger of record again.
//
// Usage:
//	SHEETS_FILE=Inventario_Licores.xlsx go run ./cmd/rebuild-projections
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rr77/adminlicores/config"
	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/utils"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Load and report table sizes without writing")
	flag.Parse()

	ctx := context.Background()
	if err := config.OpenStore(); err != nil {
		fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
		os.Exit(1)
	}
	ctx = utils.SetUsernameInContext(ctx, "rebuild-projections")

	state, err := models.LoadState(ctx, config.GetStore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading state: %v\n", err)
		os.Exit(1)
	}

	stock := models.ComputeStock(state.Ledger)
	fmt.Printf("loaded %d ledger movements, %d catalog products, %d stock rows\n",
		len(state.Ledger), len(state.Catalog), len(stock))

	if *dryRun {
		return
	}

	if err := state.RewriteAllTables(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rewriting tables: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("all projection sheets rewritten")
}
