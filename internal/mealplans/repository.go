package mealplans

import (
	"context"
	"errors"
)

var (
	// ErrPlanNotFound is returned by a Repository when no plan has the id.
	ErrPlanNotFound = errors.New("meal plan not found")
	// ErrDuplicateTemplateName is returned by a Repository whose storage
	// enforces template name uniqueness and rejected a write.
	ErrDuplicateTemplateName = errors.New("template name already exists in family")
)

// Repository is the persistence gateway for meal plans and templates.
//
// Implementations return copies: callers own the values they receive and the
// values they pass to Persist.
type Repository interface {
	// Load returns the plan or ErrPlanNotFound.
	Load(ctx context.Context, planID string) (*MealPlan, error)

	// Persist inserts or replaces the plan by id. A missing id or missing
	// timestamps are assigned.
	Persist(ctx context.Context, plan *MealPlan) (*MealPlan, error)

	// ListTemplates returns the family's templates.
	ListTemplates(ctx context.Context, familyID string) ([]MealPlan, error)

	// ListPlans returns the family's non-template plans.
	ListPlans(ctx context.Context, familyID string) ([]MealPlan, error)

	// Delete removes the plan or returns ErrPlanNotFound.
	Delete(ctx context.Context, planID string) error
}

// Recorder receives template engine outcomes, typically for metrics.
type Recorder interface {
	RecordTemplateSaved()
	RecordTemplateApplied()
	RecordTemplateFailure(operation, code string)
}

type nopRecorder struct{}

func (nopRecorder) RecordTemplateSaved() {}
func (nopRecorder) RecordTemplateApplied() {}
func (nopRecorder) RecordTemplateFailure(string, string) {}
