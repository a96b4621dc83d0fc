// seed-catalog fills an empty workbook with the starter accounts, a demo
// catalog and two recipes so a fresh install has something to work with.
// Existing rows are left alone: the tool refuses to touch a workbook that
// already has catalog entries unless --force is set.
//
// Usage:
//	SHEETS_FILE=Inventario_Licores.xlsx go run ./cmd/seed-catalog
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/config"
	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/utils"
)

var seedUsers = []struct {
	username string
	password string
	role     string
}{
	{"bar1", "clave123", "bartender"},
	{"almacen", "almacen1", "almacenista"},
	{"gerente", "admin999", "admin"},
	{"supervisor", "super123", "supervisor"},
}

var seedProducts = []models.NewProduct{
	{Name: "Vodka", Type: models.ProductTypeBottle, Category: "Destilados", UnitVolumeMl: decimal.NewFromInt(750), MinimumStock: decimal.NewFromInt(5)},
	{Name: "Ron", Type: models.ProductTypeBottle, Category: "Destilados", UnitVolumeMl: decimal.NewFromInt(750), MinimumStock: decimal.NewFromInt(5)},
	{Name: "Ginebra", Type: models.ProductTypeBottle, Category: "Destilados", UnitVolumeMl: decimal.NewFromInt(700), MinimumStock: decimal.NewFromInt(3)},
	{Name: "Vino Tinto", Type: models.ProductTypeBottle, Category: "Vinos", UnitVolumeMl: decimal.NewFromInt(750), MinimumStock: decimal.NewFromInt(6)},
	{Name: "Jugo de Limón", Type: models.ProductTypeIngredient, Category: "Mezclas", UnitVolumeMl: decimal.NewFromInt(1000), MinimumStock: decimal.NewFromInt(2)},
}

var seedRecipes = []models.NewRecipe{
	{Drink: "Cuba Libre", Lines: []models.NewRecipeLine{
		{Ingredient: "Ron", VolumeMl: decimal.NewFromInt(60)},
	}},
	{Drink: "Vodka Sour", Lines: []models.NewRecipeLine{
		{Ingredient: "Vodka", VolumeMl: decimal.NewFromInt(60)},
		{Ingredient: "Jugo de Limón", VolumeMl: decimal.NewFromInt(30)},
	}},
}

func main() {
	force := flag.Bool("force", false, "Seed even when the catalog already has rows")
	flag.Parse()

	ctx := utils.SetUsernameInContext(context.Background(), "seed-catalog")
	ctx = utils.SetRoleInContext(ctx, string(models.RoleAdmin))

	if err := config.OpenStore(); err != nil {
		fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
		os.Exit(1)
	}
	state, err := models.LoadState(ctx, config.GetStore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading state: %v\n", err)
		os.Exit(1)
	}

	if len(state.Catalog) > 0 && !*force {
		fmt.Fprintln(os.Stderr, "catalog already has rows; rerun with --force to seed anyway")
		os.Exit(2)
	}

	for _, u := range seedUsers {
		input := models.NewUser{Username: u.username, Password: u.password, Role: u.role}
		if _, err := state.CreateUser(ctx, &input); err != nil {
			fmt.Fprintf(os.Stderr, "seeding user %s: %v\n", u.username, err)
			os.Exit(1)
		}
	}
	for i := range seedProducts {
		if _, err := state.CreateProduct(ctx, &seedProducts[i]); err != nil {
			fmt.Fprintf(os.Stderr, "seeding product %s: %v\n", seedProducts[i].Name, err)
			os.Exit(1)
		}
	}
	for i := range seedRecipes {
		if _, err := state.CreateRecipe(ctx, &seedRecipes[i]); err != nil {
			fmt.Fprintf(os.Stderr, "seeding recipe %s: %v\n", seedRecipes[i].Drink, err)
			os.Exit(1)
		}
	}

	fmt.Printf("seeded %d users, %d products, %d recipes\n", len(seedUsers), len(seedProducts), len(seedRecipes))
}
