package models

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// RecipeLine maps one ingredient of a drink to its volume per serving.
// A drink is the set of all lines sharing its name. The ingredient is a
// soft reference to a catalog product: it may be registered later, and
// stock math treats unknown ingredients as having no threshold.
type RecipeLine struct {
	Drink      string          `json:"drink"`
	Ingredient string          `json:"ingredient"`
	VolumeMl   decimal.Decimal `json:"volume_ml"`
}

func (l RecipeLine) toRecord() sheets.Record {
	return sheets.Record{
		"Trago":       l.Drink,
		"Ingrediente": l.Ingredient,
		"Cantidad_ml": l.VolumeMl.String(),
	}
}

func recipeLineFromRecord(rec sheets.Record) RecipeLine {
	return RecipeLine{
		Drink:      strings.TrimSpace(rec.Get("Trago")),
		Ingredient: strings.TrimSpace(rec.Get("Ingrediente")),
		VolumeMl:   utils.DecimalFromSheet(rec.Get("Cantidad_ml")),
	}
}

type NewRecipeLine struct {
	Ingredient string          `json:"ingredient" binding:"required" validate:"required"`
	VolumeMl   decimal.Decimal `json:"volume_ml" binding:"required"`
}

type NewRecipe struct {
	Drink string          `json:"drink" binding:"required" validate:"required"`
	Lines []NewRecipeLine `json:"lines" binding:"required,min=1" validate:"required,min=1,dive"`
}

func (input *NewRecipe) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	for _, line := range input.Lines {
		if !line.VolumeMl.IsPositive() {
			return errors.New("ingredient volume must be greater than zero")
		}
	}
	return nil
}

// CreateRecipe appends the drink's lines to the recipe book. Lines for an
// existing drink accumulate; there is no replace operation.
func (s *State) CreateRecipe(ctx context.Context, input *NewRecipe) ([]RecipeLine, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	drink := strings.TrimSpace(input.Drink)
	added := make([]RecipeLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		added = append(added, RecipeLine{
			Drink:      drink,
			Ingredient: strings.TrimSpace(line.Ingredient),
			VolumeMl:   line.VolumeMl,
		})
	}
	prev := len(s.Recipes)
	s.Recipes = append(s.Recipes, added...)

	err := s.commit(ctx, func() { s.Recipes = s.Recipes[:prev] }, TableRecipes)
	return added, err
}

func (s *State) GetRecipes() []RecipeLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RecipeLine(nil), s.Recipes...)
}

// DrinkNames lists the distinct drinks of the recipe book, insertion order.
func (s *State) DrinkNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, l := range s.Recipes {
		if !seen[l.Drink] {
			seen[l.Drink] = true
			out = append(out, l.Drink)
		}
	}
	return out
}

// recipeFor assumes the caller holds s.mu.
func (s *State) recipeFor(drink string) []RecipeLine {
	drink = strings.TrimSpace(drink)
	var out []RecipeLine
	for _, l := range s.Recipes {
		if l.Drink == drink {
			out = append(out, l)
		}
	}
	return out
}
