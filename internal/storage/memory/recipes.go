package memory

import (
	"context"
	"sync"

	"github.com/fdg312/meal-hub/internal/recipes"
)

type recipesStorage struct {
	mu      sync.RWMutex
	recipes map[string]recipes.Recipe // key: recipe_id
}

func newRecipesStorage() *recipesStorage {
	return &recipesStorage{recipes: make(map[string]recipes.Recipe)}
}

func (s *recipesStorage) Get(ctx context.Context, id string) (*recipes.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, recipes.ErrRecipeNotFound
	}
	c := copyRecipe(r)
	return &c, nil
}

func (s *recipesStorage) Put(ctx context.Context, r *recipes.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[r.ID] = copyRecipe(*r)
	return nil
}

func (s *recipesStorage) List(ctx context.Context, familyID string) ([]recipes.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []recipes.Recipe{}
	for _, r := range s.recipes {
		if r.FamilyID == familyID {
			out = append(out, copyRecipe(r))
		}
	}
	return out, nil
}

func (s *recipesStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return recipes.ErrRecipeNotFound
	}
	delete(s.recipes, id)
	return nil
}

func copyRecipe(r recipes.Recipe) recipes.Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Tags = append([]string(nil), r.Tags...)
	return r
}
