package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/meal-hub/internal/mealplans"
)

type mealPlansStorage struct {
	mu    sync.RWMutex
	plans map[string]*mealplans.MealPlan // key: plan_id
}

func newMealPlansStorage() *mealPlansStorage {
	return &mealPlansStorage{
		plans: make(map[string]*mealplans.MealPlan),
	}
}

func (s *mealPlansStorage) Load(ctx context.Context, planID string) (*mealplans.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[planID]
	if !ok {
		return nil, mealplans.ErrPlanNotFound
	}
	return plan.Clone(), nil
}

func (s *mealPlansStorage) Persist(ctx context.Context, plan *mealplans.MealPlan) (*mealplans.MealPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := plan.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if s.templateNameTakenLocked(stored) {
		return nil, mealplans.ErrDuplicateTemplateName
	}

	now := time.Now().UTC()
	if existing, ok := s.plans[stored.ID]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	if stored.Assignments == nil {
		stored.Assignments = map[string]*string{}
	}

	s.plans[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *mealPlansStorage) ListTemplates(ctx context.Context, familyID string) ([]mealplans.MealPlan, error) {
	return s.list(familyID, true), nil
}

func (s *mealPlansStorage) ListPlans(ctx context.Context, familyID string) ([]mealplans.MealPlan, error) {
	return s.list(familyID, false), nil
}

func (s *mealPlansStorage) Delete(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[planID]; !ok {
		return mealplans.ErrPlanNotFound
	}
	delete(s.plans, planID)
	return nil
}

func (s *mealPlansStorage) list(familyID string, templates bool) []mealplans.MealPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []mealplans.MealPlan{}
	for _, p := range s.plans {
		if p.FamilyID == familyID && p.IsTemplate == templates {
			out = append(out, *p.Clone())
		}
	}
	return out
}

// templateNameTakenLocked mirrors the partial unique index on
// (family_id, lower(template_name)) WHERE is_template.
func (s *mealPlansStorage) templateNameTakenLocked(plan *mealplans.MealPlan) bool {
	if !plan.IsTemplate || plan.TemplateName == nil {
		return false
	}
	for id, other := range s.plans {
		if id == plan.ID || !other.IsTemplate || other.FamilyID != plan.FamilyID || other.TemplateName == nil {
			continue
		}
		if strings.EqualFold(*other.TemplateName, *plan.TemplateName) {
			return true
		}
	}
	return false
}
