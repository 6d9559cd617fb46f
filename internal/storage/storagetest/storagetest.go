// Package storagetest holds behaviour checks every storage.Store must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-hub/internal/mealplans"
	"github.com/fdg312/meal-hub/internal/mealslots"
	"github.com/fdg312/meal-hub/internal/recipes"
	"github.com/fdg312/meal-hub/internal/storage"
)

// Run exercises all repositories of the store returned by newStore. Every
// subtest uses a fresh family id so stores with shared state can be reused.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("MealPlans", func(t *testing.T) { testMealPlans(t, newStore(t).MealPlans()) })
	t.Run("MealSlots", func(t *testing.T) { testMealSlots(t, newStore(t).MealSlots()) })
	t.Run("Recipes", func(t *testing.T) { testRecipes(t, newStore(t).Recipes()) })
}

func strPtr(s string) *string { return &s }

func newPlan(familyID string) *mealplans.MealPlan {
	return &mealplans.MealPlan{
		Name:      "May",
		FamilyID:  familyID,
		StartDate: time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		MealSlots: []string{"breakfast", "dinner"},
		Assignments: map[string]*string{
			"2025-05-05_breakfast": strPtr("r-oats"),
			"2025-05-06_dinner":    strPtr("r-soup"),
		},
		CreatedBy: "user-1",
	}
}

func testMealPlans(t *testing.T, repo mealplans.Repository) {
	ctx := context.Background()
	family := uuid.NewString()

	saved, err := repo.Persist(ctx, newPlan(family))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID, "id is assigned")
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())

	loaded, err := repo.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "May", loaded.Name)
	assert.True(t, loaded.StartDate.Equal(saved.StartDate))
	assert.Equal(t, []string{"breakfast", "dinner"}, loaded.MealSlots)
	require.Len(t, loaded.Assignments, 2)
	assert.Equal(t, "r-oats", *loaded.Assignments["2025-05-05_breakfast"])

	loaded.Assignments["2025-05-07_dinner"] = strPtr("r-pie")
	again, err := repo.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Len(t, again.Assignments, 2, "loaded values are copies")

	loaded.Name = "May v2"
	loaded.UpdatedAt = time.Time{}
	updated, err := repo.Persist(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "May v2", updated.Name)
	assert.Len(t, updated.Assignments, 3)

	tmpl := newPlan(family)
	tmpl.IsTemplate = true
	tmpl.TemplateName = strPtr("Summer")
	tmpl.TemplateDescription = strPtr("light meals")
	tmpl.StartDate = mealplans.ReferenceStartDate
	savedTmpl, err := repo.Persist(ctx, tmpl)
	require.NoError(t, err)

	dup := newPlan(family)
	dup.IsTemplate = true
	dup.TemplateName = strPtr("SUMMER")
	_, err = repo.Persist(ctx, dup)
	assert.ErrorIs(t, err, mealplans.ErrDuplicateTemplateName)

	other := newPlan(uuid.NewString())
	other.IsTemplate = true
	other.TemplateName = strPtr("Summer")
	_, err = repo.Persist(ctx, other)
	assert.NoError(t, err, "template names are unique per family only")

	savedTmpl.TemplateDescription = nil
	_, err = repo.Persist(ctx, savedTmpl)
	assert.NoError(t, err, "re-saving a template keeps its own name")

	templates, err := repo.ListTemplates(ctx, family)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Summer", *templates[0].TemplateName)
	assert.Nil(t, templates[0].TemplateDescription)

	plans, err := repo.ListPlans(ctx, family)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, saved.ID, plans[0].ID)

	empty, err := repo.ListPlans(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.Load(ctx, saved.ID)
	assert.ErrorIs(t, err, mealplans.ErrPlanNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), mealplans.ErrPlanNotFound)
}

func testMealSlots(t *testing.T, repo mealslots.Repository) {
	ctx := context.Background()
	family := uuid.NewString()

	slots, err := repo.List(ctx, family)
	require.NoError(t, err)
	assert.Empty(t, slots)

	now := time.Now().UTC().Truncate(time.Second)
	defaults := mealslots.Defaults(family, now)
	require.NoError(t, repo.Replace(ctx, family, defaults))

	slots, err = repo.List(ctx, family)
	require.NoError(t, err)
	assert.Len(t, slots, len(defaults))

	kept := defaults[:2]
	require.NoError(t, repo.Replace(ctx, family, kept))
	slots, err = repo.List(ctx, family)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	ids := map[string]bool{}
	for _, s := range slots {
		ids[s.ID] = true
		assert.Equal(t, family, s.FamilyID)
	}
	assert.True(t, ids["breakfast"] && ids["lunch"])
}

func testRecipes(t *testing.T, repo recipes.Repository) {
	ctx := context.Background()
	family := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)

	r := &recipes.Recipe{
		ID:          uuid.NewString(),
		FamilyID:    family,
		Name:        "Borscht",
		Ingredients: []string{"beets", "cabbage"},
		Tags:        []string{"soup"},
		Servings:    6,
		CreatedBy:   "user-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Put(ctx, r))

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Borscht", got.Name)
	assert.Equal(t, []string{"beets", "cabbage"}, got.Ingredients)

	got.Tags[0] = "mutated"
	again, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"soup"}, again.Tags)

	again.PhotoKey = "recipes/x.jpg"
	again.PhotoContentType = "image/jpeg"
	require.NoError(t, repo.Put(ctx, again))
	withPhoto, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "recipes/x.jpg", withPhoto.PhotoKey)

	list, err := repo.List(ctx, family)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, r.ID))
	_, err = repo.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, recipes.ErrRecipeNotFound))
	assert.ErrorIs(t, repo.Delete(ctx, r.ID), recipes.ErrRecipeNotFound)
}
