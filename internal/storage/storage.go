package storage

import (
	"github.com/fdg312/meal-hub/internal/mealplans"
	"github.com/fdg312/meal-hub/internal/mealslots"
	"github.com/fdg312/meal-hub/internal/recipes"
)

// Store bundles the repositories the API needs. The memory and postgres
// packages both implement it.
type Store interface {
	MealPlans() mealplans.Repository
	MealSlots() mealslots.Repository
	Recipes() recipes.Repository

	// Close закрывает соединение (для Postgres)
	Close() error
}
