package mealplans

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/calendar"
	"github.com/fdg312/meal-hub/internal/slotkey"
	"github.com/fdg312/meal-hub/internal/userctx"
)

// SlotInfo is a family meal slot as seen by plans.
type SlotInfo struct {
	ID   string
	Name string
}

// SlotSource supplies a family's configured meal slots in display order.
type SlotSource interface {
	ListSlots(ctx context.Context, familyID string) ([]SlotInfo, error)
}

// RecipeNamer resolves recipe ids to display names.
type RecipeNamer interface {
	RecipeNames(ctx context.Context, familyID string, ids []string) (map[string]string, error)
}

// Service handles meal plan business logic.
type Service struct {
	repo    Repository
	slots   SlotSource
	recipes RecipeNamer
	now     func() time.Time
	newID   func() string
}

// NewService creates a new meal plans service.
func NewService(repo Repository, slots SlotSource) *Service {
	return &Service{
		repo:  repo,
		slots: slots,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) WithRecipeNamer(recipes RecipeNamer) *Service {
	s.recipes = recipes
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

// Create validates and persists a new plan. Without explicit meal slots the
// family's configured slots are used.
func (s *Service) Create(ctx context.Context, req CreatePlanRequest) (*MealPlan, error) {
	familyID := familyFromContext(ctx)

	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	slots := normalizeSlots(req.MealSlots)
	if len(slots) == 0 && s.slots != nil {
		configured, err := s.slots.ListSlots(ctx, familyID)
		if err != nil {
			return nil, fmt.Errorf("list meal slots: %w", err)
		}
		for _, slot := range configured {
			slots = append(slots, slot.ID)
		}
	}

	now := s.now()
	plan := &MealPlan{
		ID:          s.newID(),
		Name:        strings.TrimSpace(req.Name),
		FamilyID:    familyID,
		StartDate:   start,
		MealSlots:   slots,
		Assignments: map[string]*string{},
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actorFromContext(ctx, userctx.DefaultUserID),
	}
	if err := plan.Validate(now); err != nil {
		return nil, err
	}

	saved, err := s.repo.Persist(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("persist meal plan: %w", err)
	}
	return saved, nil
}

// Get returns a plan or template of the caller's family.
func (s *Service) Get(ctx context.Context, id string) (*MealPlan, error) {
	return loadForFamily(ctx, s.repo, id)
}

// List returns the family's plans, newest start date first.
func (s *Service) List(ctx context.Context) ([]MealPlan, error) {
	plans, err := s.repo.ListPlans(ctx, familyFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].StartDate.After(plans[j].StartDate)
	})
	return plans, nil
}

// ListTemplates returns the family's templates ordered by name.
func (s *Service) ListTemplates(ctx context.Context) ([]MealPlan, error) {
	templates, err := s.repo.ListTemplates(ctx, familyFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return strings.ToLower(templates[i].Name) < strings.ToLower(templates[j].Name)
	})
	return templates, nil
}

// Update renames a plan or replaces its meal slots. Assignments for slots
// that are no longer part of the plan are removed.
func (s *Service) Update(ctx context.Context, id string, req UpdatePlanRequest) (*MealPlan, error) {
	current, err := loadForFamily(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	plan := current.Clone()
	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
		if plan.IsTemplate {
			plan.TemplateName = &plan.Name
		}
	}
	if req.MealSlots != nil {
		plan.MealSlots = normalizeSlots(req.MealSlots)
		plan.Assignments = pruneAssignments(plan.Assignments, plan.MealSlots)
	}

	now := s.now()
	if err := ValidateName(plan.Name); err != nil {
		return nil, err
	}
	if err := ValidateMealSlots(plan.MealSlots); err != nil {
		return nil, err
	}
	if plan.IsTemplate && req.Name != nil {
		taken, err := templateNameTaken(ctx, s.repo, plan.FamilyID, plan.Name, plan.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Newf(apperr.CodeDuplicateName, "a template named %q already exists", plan.Name)
		}
	}
	plan.UpdatedAt = now

	saved, err := s.repo.Persist(ctx, plan)
	if errors.Is(err, ErrDuplicateTemplateName) {
		return nil, apperr.Wrap(apperr.CodeDuplicateName, "a template with this name already exists", err)
	}
	if err != nil {
		return nil, fmt.Errorf("persist meal plan: %w", err)
	}
	return saved, nil
}

// Assign sets or, with a nil recipe id, clears one day×slot cell.
func (s *Service) Assign(ctx context.Context, id string, req AssignRequest) (*MealPlan, error) {
	current, err := loadForFamily(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "date must be YYYY-MM-DD", err)
	}
	if !calendar.InWindow(current.StartDate, date) {
		return nil, apperr.Newf(apperr.CodeOutOfRange, "date %s is outside the plan window %s",
			req.Date, calendar.FormatRange(current.StartDate, current.EndDate()))
	}
	if !current.HasSlot(req.SlotID) {
		return nil, apperr.Newf(apperr.CodeUnknownSlot, "meal slot %q is not part of this plan", req.SlotID)
	}

	assignments := copyAssignments(current.Assignments)
	key := slotkey.Encode(date, req.SlotID)
	if req.RecipeID == nil || strings.TrimSpace(*req.RecipeID) == "" {
		delete(assignments, key)
	} else {
		recipeID := strings.TrimSpace(*req.RecipeID)
		assignments[key] = &recipeID
	}

	plan := current.Clone()
	plan.Assignments = assignments
	plan.UpdatedAt = s.now()

	saved, err := s.repo.Persist(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("persist meal plan: %w", err)
	}
	return saved, nil
}

// WeekView lays out week weekIndex of the plan by day and slot.
func (s *Service) WeekView(ctx context.Context, id string, weekIndex int) (*WeekView, error) {
	plan, err := loadForFamily(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return buildWeekView(plan, weekIndex)
}

func buildWeekView(plan *MealPlan, weekIndex int) (*WeekView, error) {
	dates, err := plan.WeekDates(weekIndex)
	if err != nil {
		return nil, err
	}

	view := &WeekView{
		WeekIndex: weekIndex,
		DateRange: calendar.FormatRange(dates[0], dates[len(dates)-1]),
		Days:      make([]DayView, 0, len(dates)),
	}
	for _, d := range dates {
		day := DayView{
			Date:    calendar.FormatDate(d),
			Weekday: d.Weekday().String(),
			Slots:   make(map[string]*string, len(plan.MealSlots)),
		}
		for _, slotID := range plan.MealSlots {
			if recipeID, ok := plan.RecipeForSlot(d, slotID); ok {
				day.Slots[slotID] = &recipeID
			} else {
				day.Slots[slotID] = nil
			}
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}

// Delete removes a plan or template.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := loadForFamily(ctx, s.repo, id); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrPlanNotFound) {
		return apperr.Newf(apperr.CodeNotFound, "meal plan %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("delete meal plan: %w", err)
	}
	return nil
}

// Validation returns every failing field of a stored plan.
func (s *Service) Validation(ctx context.Context, id string) (map[string]string, error) {
	plan, err := loadForFamily(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return plan.ValidationErrors(s.now()), nil
}

// RecipeInUse reports whether any plan or template of the family references
// recipeID.
func (s *Service) RecipeInUse(ctx context.Context, familyID, recipeID string) (bool, error) {
	plans, err := s.repo.ListPlans(ctx, familyID)
	if err != nil {
		return false, fmt.Errorf("list meal plans: %w", err)
	}
	templates, err := s.repo.ListTemplates(ctx, familyID)
	if err != nil {
		return false, fmt.Errorf("list templates: %w", err)
	}
	for _, group := range [][]MealPlan{plans, templates} {
		for i := range group {
			if group[i].ContainsRecipe(recipeID) {
				return true, nil
			}
		}
	}
	return false, nil
}

func parseStartDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, apperr.New(apperr.CodeInvalidStartDate, "start_date is required")
	}
	d, err := calendar.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.CodeInvalidStartDate, "start_date must be YYYY-MM-DD", err)
	}
	return d, nil
}

func normalizeSlots(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func pruneAssignments(src map[string]*string, slots []string) map[string]*string {
	keep := make(map[string]bool, len(slots))
	for _, s := range slots {
		keep[s] = true
	}
	out := make(map[string]*string, len(src))
	for key, v := range src {
		_, slotID, err := slotkey.Decode(key)
		if err == nil && !keep[slotID] {
			continue
		}
		out[key] = copyString(v)
	}
	return out
}
