package recipes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/blob"
)

const defaultPresignTTLSeconds = 900

// Service handles recipe business logic.
type Service struct {
	repo   Repository
	usage  UsageChecker
	photos PhotoStore

	maxPhotoBytes int64
	allowedTypes  map[string]bool
	presignTTL    int

	now   func() time.Time
	newID func() string
}

// NewService creates a new recipes service. usage may be nil, in which case
// recipes can always be deleted.
func NewService(repo Repository, usage UsageChecker) *Service {
	return &Service{
		repo:          repo,
		usage:         usage,
		maxPhotoBytes: 10 << 20,
		allowedTypes:  map[string]bool{"image/jpeg": true, "image/png": true, "image/heic": true},
		presignTTL:    defaultPresignTTLSeconds,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

// WithPhotoStore enables photo uploads.
func (s *Service) WithPhotoStore(store PhotoStore, maxMB int, allowedTypes []string, presignTTLSeconds int) *Service {
	s.photos = store
	if maxMB > 0 {
		s.maxPhotoBytes = int64(maxMB) << 20
	}
	if len(allowedTypes) > 0 {
		s.allowedTypes = make(map[string]bool, len(allowedTypes))
		for _, t := range allowedTypes {
			s.allowedTypes[strings.ToLower(strings.TrimSpace(t))] = true
		}
	}
	if presignTTLSeconds > 0 {
		s.presignTTL = presignTTLSeconds
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithIDGenerator(newID func() string) *Service {
	s.newID = newID
	return s
}

// Create stores a new recipe for the family.
func (s *Service) Create(ctx context.Context, familyID, userID string, in RecipeInput) (*Recipe, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r := &Recipe{
		ID:          s.newID(),
		FamilyID:    familyID,
		Name:        in.Name,
		Description: in.Description,
		Ingredients: in.Ingredients,
		Tags:        in.Tags,
		PrepMinutes: in.PrepMinutes,
		Servings:    in.Servings,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("put recipe: %w", err)
	}
	return withDerived(r), nil
}

// Get returns a recipe of the family.
func (s *Service) Get(ctx context.Context, familyID, id string) (*Recipe, error) {
	r, err := s.load(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	return withDerived(r), nil
}

// List returns the family's recipes. With a query, only fuzzy name matches are
// returned, best match first; otherwise recipes are sorted by name. A tag
// filter is applied before matching.
func (s *Service) List(ctx context.Context, familyID, query, tag string) ([]Recipe, error) {
	all, err := s.repo.List(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	tag = strings.ToLower(strings.TrimSpace(tag))
	filtered := make([]Recipe, 0, len(all))
	for _, r := range all {
		if tag == "" || hasTag(r.Tags, tag) {
			filtered = append(filtered, *withDerived(&r))
		}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
		return filtered, nil
	}

	matches := fuzzy.FindFrom(query, recipeNames(filtered))
	out := make([]Recipe, 0, len(matches))
	for _, m := range matches {
		out = append(out, filtered[m.Index])
	}
	return out, nil
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, familyID, id string, req UpdateRecipeRequest) (*Recipe, error) {
	r, err := s.load(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	in := RecipeInput{
		Name:        r.Name,
		Description: r.Description,
		Ingredients: r.Ingredients,
		Tags:        r.Tags,
		PrepMinutes: r.PrepMinutes,
		Servings:    r.Servings,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Ingredients != nil {
		in.Ingredients = *req.Ingredients
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	if req.PrepMinutes != nil {
		in.PrepMinutes = *req.PrepMinutes
	}
	if req.Servings != nil {
		in.Servings = *req.Servings
	}

	in, err = normalize(in)
	if err != nil {
		return nil, err
	}
	r.Name, r.Description, r.Ingredients, r.Tags = in.Name, in.Description, in.Ingredients, in.Tags
	r.PrepMinutes, r.Servings = in.PrepMinutes, in.Servings
	r.UpdatedAt = s.now()

	if err := s.repo.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("put recipe: %w", err)
	}
	return withDerived(r), nil
}

// Delete removes a recipe that no plan or template references.
func (s *Service) Delete(ctx context.Context, familyID, id string) error {
	r, err := s.load(ctx, familyID, id)
	if err != nil {
		return err
	}

	if s.usage != nil {
		inUse, err := s.usage.RecipeInUse(ctx, familyID, id)
		if err != nil {
			return fmt.Errorf("check recipe usage: %w", err)
		}
		if inUse {
			return apperr.Newf(apperr.CodeRecipeInUse, "recipe %s is used by a meal plan", id)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			return apperr.Newf(apperr.CodeNotFound, "recipe %s not found", id)
		}
		return fmt.Errorf("delete recipe: %w", err)
	}

	if r.PhotoKey != "" && s.photos != nil {
		if err := s.photos.DeleteObject(ctx, r.PhotoKey); err != nil {
			log.Warn().Err(err).Str("recipe_id", id).Str("key", r.PhotoKey).Msg("failed to delete recipe photo")
		}
	}
	return nil
}

// PutPhoto stores the photo of a recipe, replacing any previous one.
func (s *Service) PutPhoto(ctx context.Context, familyID, id string, data []byte, contentType string) (*Recipe, error) {
	if s.photos == nil {
		return nil, apperr.New(apperr.CodeValidation, "photo uploads are disabled")
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !s.allowedTypes[contentType] {
		return nil, apperr.Newf(apperr.CodeValidation, "content type %q is not allowed", contentType)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "photo is empty")
	}
	if int64(len(data)) > s.maxPhotoBytes {
		return nil, apperr.Newf(apperr.CodeValidation, "photo must be at most %d MB", s.maxPhotoBytes>>20)
	}

	r, err := s.load(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("recipes/%s/%s/%s", familyID, id, s.newID())
	if _, err := s.photos.PutObject(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("upload recipe photo: %w", err)
	}

	previous := r.PhotoKey
	r.PhotoKey = key
	r.PhotoContentType = contentType
	r.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("put recipe: %w", err)
	}

	if previous != "" {
		if err := s.photos.DeleteObject(ctx, previous); err != nil {
			log.Warn().Err(err).Str("recipe_id", id).Str("key", previous).Msg("failed to delete replaced recipe photo")
		}
	}
	return withDerived(r), nil
}

// Photo returns a presigned URL when the store supports one and the bytes
// otherwise.
func (s *Service) Photo(ctx context.Context, familyID, id string) (*Photo, error) {
	r, err := s.load(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if r.PhotoKey == "" || s.photos == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "recipe %s has no photo", id)
	}

	url, err := s.photos.PresignGet(ctx, r.PhotoKey, s.presignTTL)
	if err == nil {
		return &Photo{URL: url, ExpiresIn: s.presignTTL, ContentType: r.PhotoContentType}, nil
	}
	if !errors.Is(err, blob.ErrPresignUnsupported) {
		return nil, fmt.Errorf("presign recipe photo: %w", err)
	}

	data, err := s.photos.GetObject(ctx, r.PhotoKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, apperr.Newf(apperr.CodeNotFound, "recipe %s has no photo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe photo: %w", err)
	}
	return &Photo{Data: data, ContentType: r.PhotoContentType}, nil
}

// RecipeNames maps each known id of the family to its recipe name. Unknown
// ids are left out.
func (s *Service) RecipeNames(ctx context.Context, familyID string, ids []string) (map[string]string, error) {
	all, err := s.repo.List(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	names := make(map[string]string, len(ids))
	for _, r := range all {
		if want[r.ID] {
			names[r.ID] = r.Name
		}
	}
	return names, nil
}

func (s *Service) load(ctx context.Context, familyID, id string) (*Recipe, error) {
	r, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrRecipeNotFound) || (err == nil && r.FamilyID != familyID) {
		return nil, apperr.Newf(apperr.CodeNotFound, "recipe %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func withDerived(r *Recipe) *Recipe {
	r.HasPhoto = r.PhotoKey != ""
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

type recipeNames []Recipe

func (n recipeNames) String(i int) string { return n[i].Name }
func (n recipeNames) Len() int            { return len(n) }
