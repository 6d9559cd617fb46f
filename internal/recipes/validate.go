package recipes

import (
	"strings"
	"unicode/utf8"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/sanitize"
)

// normalize sanitizes the free-text fields of in and checks every limit.
func normalize(in RecipeInput) (RecipeInput, error) {
	out := RecipeInput{
		Name:        sanitize.Text(in.Name),
		Description: sanitize.Text(in.Description),
		Ingredients: sanitize.Lines(in.Ingredients),
		Tags:        normalizeTags(in.Tags),
		PrepMinutes: in.PrepMinutes,
		Servings:    in.Servings,
	}

	switch {
	case out.Name == "":
		return out, apperr.New(apperr.CodeInvalidName, "name is required")
	case utf8.RuneCountInString(out.Name) > MaxNameLength:
		return out, apperr.Newf(apperr.CodeInvalidName, "name must be at most %d characters", MaxNameLength)
	case utf8.RuneCountInString(out.Description) > MaxDescriptionLength:
		return out, apperr.Newf(apperr.CodeValidation, "description must be at most %d characters", MaxDescriptionLength)
	case len(out.Ingredients) > MaxIngredients:
		return out, apperr.Newf(apperr.CodeValidation, "at most %d ingredients are allowed", MaxIngredients)
	case len(out.Tags) > MaxTags:
		return out, apperr.Newf(apperr.CodeValidation, "at most %d tags are allowed", MaxTags)
	case out.PrepMinutes < 0 || out.PrepMinutes > MaxPrepMinutes:
		return out, apperr.Newf(apperr.CodeValidation, "prep_minutes must be 0-%d", MaxPrepMinutes)
	case out.Servings < 0 || out.Servings > MaxServings:
		return out, apperr.Newf(apperr.CodeValidation, "servings must be 0-%d", MaxServings)
	}

	for _, line := range out.Ingredients {
		if utf8.RuneCountInString(line) > MaxIngredientLength {
			return out, apperr.Newf(apperr.CodeValidation, "each ingredient must be at most %d characters", MaxIngredientLength)
		}
	}
	for _, tag := range out.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return out, apperr.Newf(apperr.CodeValidation, "each tag must be at most %d characters", MaxTagLength)
		}
	}
	return out, nil
}

// normalizeTags lower-cases, trims and de-duplicates tags, keeping first
// occurrence order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(sanitize.Text(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
