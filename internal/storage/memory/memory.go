package memory

import (
	"github.com/fdg312/meal-hub/internal/mealplans"
	"github.com/fdg312/meal-hub/internal/mealslots"
	"github.com/fdg312/meal-hub/internal/recipes"
)

// MemoryStorage реализует storage.Store в памяти
type MemoryStorage struct {
	mealPlans *mealPlansStorage
	mealSlots *mealSlotsStorage
	recipes   *recipesStorage
}

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{
		mealPlans: newMealPlansStorage(),
		mealSlots: newMealSlotsStorage(),
		recipes:   newRecipesStorage(),
	}
}

func (m *MemoryStorage) MealPlans() mealplans.Repository {
	return m.mealPlans
}

func (m *MemoryStorage) MealSlots() mealslots.Repository {
	return m.mealSlots
}

func (m *MemoryStorage) Recipes() recipes.Repository {
	return m.recipes
}

func (m *MemoryStorage) Close() error {
	return nil
}
