package recipes

import (
	"context"
	"errors"
	"time"
)

// Field limits.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
	MaxIngredients       = 100
	MaxIngredientLength  = 200
	MaxTags              = 20
	MaxTagLength         = 30
	MaxPrepMinutes       = 1440
	MaxServings          = 100
)

// ErrRecipeNotFound is returned by a Repository when no recipe has the id.
var ErrRecipeNotFound = errors.New("recipe not found")

// Recipe is a dish a family can put on a meal plan.
type Recipe struct {
	ID               string    `json:"id"`
	FamilyID         string    `json:"family_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Ingredients      []string  `json:"ingredients"`
	Tags             []string  `json:"tags"`
	PrepMinutes      int       `json:"prep_minutes"`
	Servings         int       `json:"servings"`
	PhotoKey         string    `json:"-"`
	PhotoContentType string    `json:"-"`
	HasPhoto         bool      `json:"has_photo"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Repository is the persistence gateway for recipes.
type Repository interface {
	Get(ctx context.Context, id string) (*Recipe, error)
	Put(ctx context.Context, r *Recipe) error
	List(ctx context.Context, familyID string) ([]Recipe, error)
	Delete(ctx context.Context, id string) error
}

// UsageChecker reports whether a recipe is still referenced by a plan.
type UsageChecker interface {
	RecipeInUse(ctx context.Context, familyID, recipeID string) (bool, error)
}

// PhotoStore holds photo bytes.
type PhotoStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type RecipeInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Tags        []string `json:"tags"`
	PrepMinutes int      `json:"prep_minutes"`
	Servings    int      `json:"servings"`
}

type UpdateRecipeRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Ingredients *[]string `json:"ingredients,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	PrepMinutes *int      `json:"prep_minutes,omitempty"`
	Servings    *int      `json:"servings,omitempty"`
}

type ListRecipesResponse struct {
	Recipes []Recipe `json:"recipes"`
}

// Photo is either inline bytes or a URL to fetch them from.
type Photo struct {
	Data        []byte
	ContentType string
	URL         string
	ExpiresIn   int
}

type PhotoURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}
