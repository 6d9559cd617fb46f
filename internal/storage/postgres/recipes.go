package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/meal-hub/internal/recipes"
)

const recipeColumns = `
	id, family_id, name, description, ingredients, tags, prep_minutes, servings,
	photo_key, photo_content_type, created_by, created_at, updated_at`

type recipesStorage struct {
	pool *pgxpool.Pool
}

func newRecipesStorage(pool *pgxpool.Pool) *recipesStorage {
	return &recipesStorage{pool: pool}
}

func (s *recipesStorage) Get(ctx context.Context, id string) (*recipes.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`

	r, err := scanRecipe(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipes.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

func (s *recipesStorage) Put(ctx context.Context, r *recipes.Recipe) error {
	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			ingredients = EXCLUDED.ingredients,
			tags = EXCLUDED.tags,
			prep_minutes = EXCLUDED.prep_minutes,
			servings = EXCLUDED.servings,
			photo_key = EXCLUDED.photo_key,
			photo_content_type = EXCLUDED.photo_content_type,
			updated_at = EXCLUDED.updated_at
	`

	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.FamilyID,
		r.Name,
		r.Description,
		ingredients,
		tags,
		r.PrepMinutes,
		r.Servings,
		r.PhotoKey,
		r.PhotoContentType,
		r.CreatedBy,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put recipe: %w", err)
	}
	return nil
}

func (s *recipesStorage) List(ctx context.Context, familyID string) ([]recipes.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE family_id = $1 ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	list := []recipes.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		list = append(list, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}
	return list, nil
}

func (s *recipesStorage) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return recipes.ErrRecipeNotFound
	}
	return nil
}

func scanRecipe(row pgx.Row) (*recipes.Recipe, error) {
	var r recipes.Recipe
	err := row.Scan(
		&r.ID,
		&r.FamilyID,
		&r.Name,
		&r.Description,
		&r.Ingredients,
		&r.Tags,
		&r.PrepMinutes,
		&r.Servings,
		&r.PhotoKey,
		&r.PhotoContentType,
		&r.CreatedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}
