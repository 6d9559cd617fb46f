package mealplans

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// fakeRepo is a minimal in-package Repository. It enforces template name
// uniqueness the way the Postgres index does so the engine's error mapping can
// be exercised.
type fakeRepo struct {
	mu       sync.Mutex
	plans    map[string]*MealPlan
	persists int
	failList error
}

func newFakeRepo(plans ...*MealPlan) *fakeRepo {
	r := &fakeRepo{plans: map[string]*MealPlan{}}
	for _, p := range plans {
		r.plans[p.ID] = p.Clone()
	}
	return r
}

func (r *fakeRepo) Load(_ context.Context, id string) (*MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p.Clone(), nil
}

func (r *fakeRepo) Persist(_ context.Context, plan *MealPlan) (*MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.IsTemplate && plan.TemplateName != nil {
		for id, other := range r.plans {
			if id != plan.ID && other.IsTemplate && other.FamilyID == plan.FamilyID &&
				other.TemplateName != nil && strings.EqualFold(*other.TemplateName, *plan.TemplateName) {
				return nil, ErrDuplicateTemplateName
			}
		}
	}
	r.persists++
	c := plan.Clone()
	if c.ID == "" {
		c.ID = fmt.Sprintf("auto-%d", r.persists)
	}
	r.plans[c.ID] = c
	return c.Clone(), nil
}

func (r *fakeRepo) list(familyID string, templates bool) ([]MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	var out []MealPlan
	for _, p := range r.plans {
		if p.FamilyID == familyID && p.IsTemplate == templates {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) ListTemplates(_ context.Context, familyID string) ([]MealPlan, error) {
	return r.list(familyID, true)
}

func (r *fakeRepo) ListPlans(_ context.Context, familyID string) ([]MealPlan, error) {
	return r.list(familyID, false)
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return ErrPlanNotFound
	}
	delete(r.plans, id)
	return nil
}

type countingRecorder struct {
	saved, applied int
	failures       []string
}

func (c *countingRecorder) RecordTemplateSaved()   { c.saved++ }
func (c *countingRecorder) RecordTemplateApplied() { c.applied++ }
func (c *countingRecorder) RecordTemplateFailure(op, code string) {
	c.failures = append(c.failures, op+":"+code)
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePlan(id string, start time.Time, assignments map[string]*string) *MealPlan {
	return &MealPlan{
		ID:          id,
		Name:        "January",
		FamilyID:    "fam-1",
		StartDate:   start,
		MealSlots:   []string{"breakfast", "lunch", "dinner"},
		Assignments: assignments,
		CreatedBy:   "user-1",
	}
}
