package mealplans

import (
	"sort"
	"time"

	"github.com/fdg312/meal-hub/internal/calendar"
	"github.com/fdg312/meal-hub/internal/slotkey"
)

const (
	MaxNameLength = 50
	MaxMealSlots  = 8

	// MaxStartDateAgeDays bounds how far in the past a plan may start.
	MaxStartDateAgeDays = 365
)

// ReferenceStartDate anchors every template. It is a Monday so weekday
// alignment survives a save/apply round trip onto a Monday start.
var ReferenceStartDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// MealPlan is a 4-week calendar of recipe assignments, or a reusable template
// of one when IsTemplate is set.
type MealPlan struct {
	ID        string
	Name      string
	FamilyID  string
	StartDate time.Time
	// MealSlots is ordered for display only.
	MealSlots []string
	// Assignments maps slotkey keys to a recipe id. A missing key or a nil
	// value both mean "unassigned".
	Assignments map[string]*string

	IsTemplate          bool
	TemplateName        *string
	TemplateDescription *string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// EndDate is the last day of the plan window.
func (p *MealPlan) EndDate() time.Time {
	return calendar.EndDate(p.StartDate)
}

// RecipeForSlot returns the recipe assigned to slotID on date.
func (p *MealPlan) RecipeForSlot(date time.Time, slotID string) (string, bool) {
	v, ok := p.Assignments[slotkey.Encode(date, slotID)]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// ContainsRecipe reports whether any assignment references recipeID.
func (p *MealPlan) ContainsRecipe(recipeID string) bool {
	for _, v := range p.Assignments {
		if v != nil && *v == recipeID {
			return true
		}
	}
	return false
}

// DistinctRecipeIDs returns the sorted set of referenced recipe ids.
func (p *MealPlan) DistinctRecipeIDs() []string {
	seen := make(map[string]struct{}, len(p.Assignments))
	for _, v := range p.Assignments {
		if v != nil {
			seen[*v] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AssignedCount counts assignments that carry a recipe.
func (p *MealPlan) AssignedCount() int {
	n := 0
	for _, v := range p.Assignments {
		if v != nil {
			n++
		}
	}
	return n
}

// IsCurrentlyActive reports whether now falls inside the plan window widened by
// one day on each edge. The slack covers "today" checks made from a timezone
// adjacent to the one the plan was written in.
func (p *MealPlan) IsCurrentlyActive(now time.Time) bool {
	today := calendar.Date(now)
	from := calendar.AddDays(p.StartDate, -1)
	to := calendar.AddDays(p.EndDate(), 1)
	return !today.Before(from) && !today.After(to)
}

// WeekDates returns the 7 dates of week weekIndex of this plan.
func (p *MealPlan) WeekDates(weekIndex int) ([]time.Time, error) {
	return calendar.WeekDates(p.StartDate, weekIndex)
}

// HasSlot reports whether slotID is one of the plan's meal slots.
func (p *MealPlan) HasSlot(slotID string) bool {
	for _, s := range p.MealSlots {
		if s == slotID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p *MealPlan) Clone() *MealPlan {
	c := *p
	c.MealSlots = append([]string(nil), p.MealSlots...)
	c.Assignments = copyAssignments(p.Assignments)
	c.TemplateName = copyString(p.TemplateName)
	c.TemplateDescription = copyString(p.TemplateDescription)
	return &c
}

func copyAssignments(src map[string]*string) map[string]*string {
	dst := make(map[string]*string, len(src))
	for k, v := range src {
		dst[k] = copyString(v)
	}
	return dst
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// TemplateStats summarizes how filled in a template is.
type TemplateStats struct {
	TotalSlots           int `json:"total_slots"`
	AssignedSlots        int `json:"assigned_slots"`
	EmptySlots           int `json:"empty_slots"`
	UniqueRecipes        int `json:"unique_recipes"`
	CompletionPercentage int `json:"completion_percentage"`
	MealSlotsCount       int `json:"meal_slots_count"`
}

// MealPlanDTO is the wire form of a MealPlan.
type MealPlanDTO struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	FamilyID            string             `json:"family_id"`
	StartDate           string             `json:"start_date"`
	EndDate             string             `json:"end_date"`
	DateRange           string             `json:"date_range"`
	MealSlots           []string           `json:"meal_slots"`
	Assignments         map[string]*string `json:"assignments"`
	IsTemplate          bool               `json:"is_template"`
	TemplateName        *string            `json:"template_name,omitempty"`
	TemplateDescription *string            `json:"template_description,omitempty"`
	IsActive            bool               `json:"is_active"`
	CreatedBy           string             `json:"created_by"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func toDTO(p *MealPlan, now time.Time) MealPlanDTO {
	return MealPlanDTO{
		ID:                  p.ID,
		Name:                p.Name,
		FamilyID:            p.FamilyID,
		StartDate:           calendar.FormatDate(p.StartDate),
		EndDate:             calendar.FormatDate(p.EndDate()),
		DateRange:           calendar.FormatRange(p.StartDate, p.EndDate()),
		MealSlots:           append([]string{}, p.MealSlots...),
		Assignments:         copyAssignments(p.Assignments),
		IsTemplate:          p.IsTemplate,
		TemplateName:        p.TemplateName,
		TemplateDescription: p.TemplateDescription,
		IsActive:            !p.IsTemplate && p.IsCurrentlyActive(now),
		CreatedBy:           p.CreatedBy,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

type CreatePlanRequest struct {
	Name      string   `json:"name"`
	StartDate string   `json:"start_date"`
	MealSlots []string `json:"meal_slots,omitempty"`
}

type UpdatePlanRequest struct {
	Name      *string  `json:"name,omitempty"`
	MealSlots []string `json:"meal_slots,omitempty"`
}

type AssignRequest struct {
	Date     string  `json:"date"`
	SlotID   string  `json:"slot_id"`
	RecipeID *string `json:"recipe_id"`
}

type SaveTemplateRequest struct {
	TemplateName string  `json:"template_name"`
	Description  *string `json:"description,omitempty"`
}

type ApplyTemplateRequest struct {
	StartDate string `json:"start_date"`
}

type ListPlansResponse struct {
	Plans []MealPlanDTO `json:"plans"`
}

type ListTemplatesResponse struct {
	Templates []MealPlanDTO `json:"templates"`
}

type NameAvailableResponse struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// WeekView is one week of a plan laid out by day and slot.
type WeekView struct {
	WeekIndex int       `json:"week_index"`
	DateRange string    `json:"date_range"`
	Days      []DayView `json:"days"`
}

type DayView struct {
	Date    string             `json:"date"`
	Weekday string             `json:"weekday"`
	Slots   map[string]*string `json:"slots"`
}
