package mealplans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/calendar"
	"github.com/fdg312/meal-hub/internal/sanitize"
	"github.com/fdg312/meal-hub/internal/slotkey"
	"github.com/fdg312/meal-hub/internal/userctx"
)

// TemplateEngine converts plans to date-agnostic templates and back.
type TemplateEngine struct {
	repo     Repository
	now      func() time.Time
	newID    func() string
	recorder Recorder
}

// NewTemplateEngine creates a template engine over repo.
func NewTemplateEngine(repo Repository) *TemplateEngine {
	return &TemplateEngine{
		repo:     repo,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		recorder: nopRecorder{},
	}
}

// WithClock replaces the time source.
func (e *TemplateEngine) WithClock(now func() time.Time) *TemplateEngine {
	e.now = now
	return e
}

// WithIDGenerator replaces the id source used for new plans.
func (e *TemplateEngine) WithIDGenerator(newID func() string) *TemplateEngine {
	e.newID = newID
	return e
}

// WithRecorder sets the outcome recorder.
func (e *TemplateEngine) WithRecorder(r Recorder) *TemplateEngine {
	if r != nil {
		e.recorder = r
	}
	return e
}

// SaveAsTemplate copies the source plan's in-window assignments onto
// ReferenceStartDate and persists the result as a new template.
func (e *TemplateEngine) SaveAsTemplate(ctx context.Context, sourcePlanID, templateName string, description *string) (_ *MealPlan, err error) {
	defer e.recordFailure("save", &err)

	source, err := loadForFamily(ctx, e.repo, sourcePlanID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(templateName)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	available, err := e.IsTemplateNameAvailable(ctx, name, source.FamilyID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperr.Newf(apperr.CodeDuplicateName, "a template named %q already exists", name)
	}

	now := e.now()
	tmpl := &MealPlan{
		ID:                  e.newID(),
		Name:                name,
		FamilyID:            source.FamilyID,
		StartDate:           ReferenceStartDate,
		MealSlots:           append([]string(nil), source.MealSlots...),
		Assignments:         remapAssignments(source.Assignments, source.StartDate, ReferenceStartDate),
		IsTemplate:          true,
		TemplateName:        &name,
		TemplateDescription: sanitize.OptionalText(description),
		CreatedAt:           now,
		UpdatedAt:           now,
		CreatedBy:           actorFromContext(ctx, source.CreatedBy),
	}

	saved, err := e.persist(ctx, tmpl)
	if err != nil {
		return nil, err
	}

	e.recorder.RecordTemplateSaved()
	log.Info().
		Str("template_id", saved.ID).
		Str("source_plan_id", source.ID).
		Str("family_id", saved.FamilyID).
		Int("assignments", len(saved.Assignments)).
		Msg("meal plan saved as template")
	return saved, nil
}

// ApplyTemplate projects a template onto newStartDate and persists the result
// as a new plan.
func (e *TemplateEngine) ApplyTemplate(ctx context.Context, templateID string, newStartDate time.Time) (_ *MealPlan, err error) {
	defer e.recordFailure("apply", &err)

	tmpl, err := loadForFamily(ctx, e.repo, templateID)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsTemplate {
		return nil, apperr.Newf(apperr.CodeNotATemplate, "meal plan %s is not a template", templateID)
	}

	now := e.now()
	start := calendar.Date(newStartDate)
	if err := ValidateStartDate(start, now); err != nil {
		return nil, err
	}

	templateName := tmpl.Name
	if tmpl.TemplateName != nil {
		templateName = *tmpl.TemplateName
	}

	plan := &MealPlan{
		ID:          e.newID(),
		Name:        appliedPlanName(templateName),
		FamilyID:    tmpl.FamilyID,
		StartDate:   start,
		MealSlots:   append([]string(nil), tmpl.MealSlots...),
		Assignments: remapAssignments(tmpl.Assignments, tmpl.StartDate, start),
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actorFromContext(ctx, tmpl.CreatedBy),
	}

	saved, err := e.persist(ctx, plan)
	if err != nil {
		return nil, err
	}

	e.recorder.RecordTemplateApplied()
	log.Info().
		Str("template_id", tmpl.ID).
		Str("plan_id", saved.ID).
		Str("start_date", calendar.FormatDate(start)).
		Msg("template applied")
	return saved, nil
}

// appliedPlanName derives the name of a plan created from a template, cut to
// MaxNameLength runes.
func appliedPlanName(templateName string) string {
	name := []rune("Meal Plan from " + strings.TrimSpace(templateName))
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return strings.TrimRightFunc(string(name), unicode.IsSpace)
}

// TemplateStats reports how many of the template's day×slot cells are filled.
func (e *TemplateEngine) TemplateStats(tmpl *MealPlan) (TemplateStats, error) {
	return ComputeTemplateStats(tmpl)
}

// ComputeTemplateStats is TemplateStats without an engine.
func ComputeTemplateStats(tmpl *MealPlan) (TemplateStats, error) {
	if tmpl == nil || !tmpl.IsTemplate {
		return TemplateStats{}, apperr.New(apperr.CodeNotATemplate, "stats are only available for templates")
	}

	total := len(tmpl.MealSlots) * calendar.PlanDays
	assigned := tmpl.AssignedCount()
	empty := total - assigned
	if empty < 0 {
		empty = 0
	}

	completion := 0
	if total > 0 {
		completion = int(math.Round(float64(assigned) / float64(total) * 100))
	}

	return TemplateStats{
		TotalSlots:           total,
		AssignedSlots:        assigned,
		EmptySlots:           empty,
		UniqueRecipes:        len(tmpl.DistinctRecipeIDs()),
		CompletionPercentage: completion,
		MealSlotsCount:       len(tmpl.MealSlots),
	}, nil
}

// IsTemplateNameAvailable reports whether no template in the family already
// uses name, compared case-insensitively after trimming.
func (e *TemplateEngine) IsTemplateNameAvailable(ctx context.Context, name, familyID string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	taken, err := templateNameTaken(ctx, e.repo, familyID, name, "")
	return !taken, err
}

// templateNameTaken reports whether a template other than exceptID already
// uses name in the family.
func templateNameTaken(ctx context.Context, repo Repository, familyID, name, exceptID string) (bool, error) {
	templates, err := repo.ListTemplates(ctx, familyID)
	if err != nil {
		return false, fmt.Errorf("list templates: %w", err)
	}
	for _, t := range templates {
		if t.ID == exceptID || t.TemplateName == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(*t.TemplateName), name) {
			return true, nil
		}
	}
	return false, nil
}

func (e *TemplateEngine) persist(ctx context.Context, plan *MealPlan) (*MealPlan, error) {
	saved, err := e.repo.Persist(ctx, plan)
	if errors.Is(err, ErrDuplicateTemplateName) {
		return nil, apperr.Wrap(apperr.CodeDuplicateName, "a template with this name already exists", err)
	}
	if err != nil {
		return nil, fmt.Errorf("persist meal plan: %w", err)
	}
	return saved, nil
}

func (e *TemplateEngine) recordFailure(operation string, errp *error) {
	if *errp == nil {
		return
	}
	code := apperr.CodeOf(*errp)
	if code == "" {
		code = "INTERNAL"
	}
	e.recorder.RecordTemplateFailure(operation, code)
}

// remapAssignments moves every decodable assignment inside the 28-day window
// starting at from onto the same day offset from to. Keys outside the window
// or that fail to decode are dropped.
func remapAssignments(src map[string]*string, from, to time.Time) map[string]*string {
	out := make(map[string]*string, len(src))
	for key, recipeID := range src {
		date, slotID, err := slotkey.Decode(key)
		if err != nil {
			log.Debug().Err(err).Str("key", key).Msg("dropping undecodable assignment key")
			continue
		}
		offset := calendar.DaysBetween(from, date)
		if offset < 0 || offset >= calendar.PlanDays {
			log.Debug().Str("key", key).Int("day_offset", offset).Msg("dropping assignment outside plan window")
			continue
		}
		out[slotkey.Encode(calendar.AddDays(to, offset), slotID)] = copyString(recipeID)
	}
	return out
}

// loadForFamily loads a plan and hides it when it belongs to a family other
// than the one in ctx.
func loadForFamily(ctx context.Context, repo Repository, planID string) (*MealPlan, error) {
	plan, err := repo.Load(ctx, planID)
	if errors.Is(err, ErrPlanNotFound) {
		return nil, apperr.Newf(apperr.CodeNotFound, "meal plan %s not found", planID)
	}
	if err != nil {
		return nil, fmt.Errorf("load meal plan: %w", err)
	}
	if familyID, ok := userctx.GetFamilyID(ctx); ok && familyID != plan.FamilyID {
		return nil, apperr.Newf(apperr.CodeNotFound, "meal plan %s not found", planID)
	}
	return plan, nil
}

func actorFromContext(ctx context.Context, fallback string) string {
	if userID, ok := userctx.GetUserID(ctx); ok {
		return userID
	}
	return fallback
}

func familyFromContext(ctx context.Context) string {
	if familyID, ok := userctx.GetFamilyID(ctx); ok {
		return familyID
	}
	return userctx.DefaultFamilyID
}
