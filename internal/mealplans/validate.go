package mealplans

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/calendar"
	"github.com/fdg312/meal-hub/internal/slotkey"
)

// Field names used as keys of ValidationErrors.
const (
	FieldName         = "name"
	FieldStartDate    = "start_date"
	FieldMealSlots    = "meal_slots"
	FieldAssignments  = "assignments"
	FieldTemplateName = "template_name"
)

type fieldCheck struct {
	field string
	check func(p *MealPlan, now time.Time) error
}

var planChecks = []fieldCheck{
	{FieldName, func(p *MealPlan, _ time.Time) error { return ValidateName(p.Name) }},
	{FieldStartDate, validatePlanStart},
	{FieldMealSlots, func(p *MealPlan, _ time.Time) error { return ValidateMealSlots(p.MealSlots) }},
	{FieldAssignments, func(p *MealPlan, _ time.Time) error { return validateAssignmentKeys(p.Assignments) }},
	{FieldTemplateName, func(p *MealPlan, _ time.Time) error { return validateTemplateName(p) }},
}

// Validate returns the first failing rule.
func (p *MealPlan) Validate(now time.Time) error {
	for _, c := range planChecks {
		if err := c.check(p, now); err != nil {
			return err
		}
	}
	return nil
}

// ValidationErrors runs every rule and maps each failing field to its message.
// The map is empty for a valid plan.
func (p *MealPlan) ValidationErrors(now time.Time) map[string]string {
	errs := make(map[string]string)
	for _, c := range planChecks {
		if err := c.check(p, now); err != nil {
			if typed, ok := apperr.As(err); ok {
				errs[c.field] = typed.Message
			} else {
				errs[c.field] = err.Error()
			}
		}
	}
	return errs
}

// IsValid reports whether Validate passes.
func (p *MealPlan) IsValid(now time.Time) bool {
	return p.Validate(now) == nil
}

// ValidateName checks a plan or template name: 1-50 characters after trimming.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return apperr.New(apperr.CodeInvalidName, "name is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return apperr.Newf(apperr.CodeInvalidName, "name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// ValidateStartDate rejects start dates more than MaxStartDateAgeDays before now.
func ValidateStartDate(start, now time.Time) error {
	if start.IsZero() {
		return apperr.New(apperr.CodeInvalidStartDate, "start_date is required")
	}
	earliest := calendar.AddDays(now, -MaxStartDateAgeDays)
	if calendar.Date(start).Before(earliest) {
		return apperr.Newf(apperr.CodeInvalidStartDate, "start_date cannot be more than %d days in the past", MaxStartDateAgeDays)
	}
	return nil
}

// validatePlanStart applies the age rule to plans only. Templates are pinned
// to ReferenceStartDate instead, whatever the current date.
func validatePlanStart(p *MealPlan, now time.Time) error {
	if !p.IsTemplate {
		return ValidateStartDate(p.StartDate, now)
	}
	if !calendar.Date(p.StartDate).Equal(ReferenceStartDate) {
		return apperr.Newf(apperr.CodeInvalidStartDate, "template must start on %s", calendar.FormatDate(ReferenceStartDate))
	}
	return nil
}

// ValidateMealSlots checks the slot list: 1-8 non-blank, distinct ids.
func ValidateMealSlots(slots []string) error {
	if len(slots) == 0 {
		return apperr.New(apperr.CodeInvalidMealSlots, "at least one meal slot is required")
	}
	if len(slots) > MaxMealSlots {
		return apperr.Newf(apperr.CodeInvalidMealSlots, "at most %d meal slots are allowed", MaxMealSlots)
	}
	seen := make(map[string]bool, len(slots))
	for _, s := range slots {
		if strings.TrimSpace(s) == "" {
			return apperr.New(apperr.CodeInvalidMealSlots, "meal slot ids cannot be empty")
		}
		if seen[s] {
			return apperr.Newf(apperr.CodeInvalidMealSlots, "meal slot %q is listed twice", s)
		}
		seen[s] = true
	}
	return nil
}

func validateAssignmentKeys(assignments map[string]*string) error {
	keys := make([]string, 0, len(assignments))
	for k := range assignments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, _, err := slotkey.Decode(k); err != nil {
			return apperr.Wrap(apperr.CodeMalformedKey, "assignment key "+k+" must look like YYYY-MM-DD_slot", err)
		}
	}
	return nil
}

func validateTemplateName(p *MealPlan) error {
	if !p.IsTemplate {
		return nil
	}
	if p.TemplateName == nil || strings.TrimSpace(*p.TemplateName) == "" {
		return apperr.New(apperr.CodeInvalidName, "template_name is required for templates")
	}
	return ValidateName(*p.TemplateName)
}
