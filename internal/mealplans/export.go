package mealplans

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/calendar"
	"github.com/fdg312/meal-hub/internal/sanitize"
	"github.com/fdg312/meal-hub/internal/slotkey"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TemplateDocument is the portable form of a template. Assignments are
// expressed as day offsets so the document carries no calendar dates.
type TemplateDocument struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	MealSlots   []string        `json:"meal_slots" yaml:"meal_slots"`
	Assignments []TemplateEntry `json:"assignments" yaml:"assignments"`
}

type TemplateEntry struct {
	DayOffset int    `json:"day_offset" yaml:"day_offset"`
	SlotID    string `json:"slot_id" yaml:"slot_id"`
	RecipeID  string `json:"recipe_id" yaml:"recipe_id"`
}

// ExportTemplate builds the portable document for tmpl. Empty assignments are
// omitted; entries are ordered by day, then by slot display order.
func ExportTemplate(tmpl *MealPlan) (*TemplateDocument, error) {
	if tmpl == nil || !tmpl.IsTemplate {
		return nil, apperr.New(apperr.CodeNotATemplate, "only templates can be exported")
	}

	slotOrder := make(map[string]int, len(tmpl.MealSlots))
	for i, s := range tmpl.MealSlots {
		slotOrder[s] = i
	}

	doc := &TemplateDocument{
		Name:        tmpl.Name,
		MealSlots:   append([]string{}, tmpl.MealSlots...),
		Assignments: []TemplateEntry{},
	}
	if tmpl.TemplateName != nil {
		doc.Name = *tmpl.TemplateName
	}
	if tmpl.TemplateDescription != nil {
		doc.Description = *tmpl.TemplateDescription
	}

	for key, recipeID := range tmpl.Assignments {
		if recipeID == nil {
			continue
		}
		date, slotID, err := slotkey.Decode(key)
		if err != nil {
			continue
		}
		offset := calendar.DaysBetween(tmpl.StartDate, date)
		if offset < 0 || offset >= calendar.PlanDays {
			continue
		}
		doc.Assignments = append(doc.Assignments, TemplateEntry{DayOffset: offset, SlotID: slotID, RecipeID: *recipeID})
	}

	sort.Slice(doc.Assignments, func(i, j int) bool {
		a, b := doc.Assignments[i], doc.Assignments[j]
		if a.DayOffset != b.DayOffset {
			return a.DayOffset < b.DayOffset
		}
		oa, aKnown := slotOrder[a.SlotID]
		ob, bKnown := slotOrder[b.SlotID]
		if aKnown != bKnown {
			return aKnown
		}
		if oa != ob {
			return oa < ob
		}
		return a.SlotID < b.SlotID
	})

	return doc, nil
}

// Encode serializes the document in format, returning the body and its content
// type.
func (d *TemplateDocument) Encode(format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		body, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode template json: %w", err)
		}
		return body, "application/json", nil
	case FormatYAML, "yml":
		body, err := yaml.Marshal(d)
		if err != nil {
			return nil, "", fmt.Errorf("encode template yaml: %w", err)
		}
		return body, "application/yaml", nil
	default:
		return nil, "", apperr.Newf(apperr.CodeValidation, "unsupported export format %q", format)
	}
}

// DecodeTemplateDocument parses a JSON or YAML template document.
func DecodeTemplateDocument(body []byte, format string) (*TemplateDocument, error) {
	var doc TemplateDocument
	switch strings.ToLower(format) {
	case "", FormatJSON:
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, "template document is not valid JSON", err)
		}
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(body, &doc); err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, "template document is not valid YAML", err)
		}
	default:
		return nil, apperr.Newf(apperr.CodeValidation, "unsupported import format %q", format)
	}
	return &doc, nil
}

// ImportTemplate creates a template in the caller's family from doc.
func (e *TemplateEngine) ImportTemplate(ctx context.Context, doc *TemplateDocument) (_ *MealPlan, err error) {
	defer e.recordFailure("import", &err)

	name := strings.TrimSpace(doc.Name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateMealSlots(doc.MealSlots); err != nil {
		return nil, err
	}

	familyID := familyFromContext(ctx)
	available, err := e.IsTemplateNameAvailable(ctx, name, familyID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperr.Newf(apperr.CodeDuplicateName, "a template named %q already exists", name)
	}

	slots := make(map[string]bool, len(doc.MealSlots))
	for _, s := range doc.MealSlots {
		slots[s] = true
	}

	assignments := make(map[string]*string, len(doc.Assignments))
	for i, entry := range doc.Assignments {
		if entry.DayOffset < 0 || entry.DayOffset >= calendar.PlanDays {
			return nil, apperr.Newf(apperr.CodeOutOfRange, "assignments[%d]: day_offset must be 0-%d", i, calendar.PlanDays-1)
		}
		if !slots[entry.SlotID] {
			return nil, apperr.Newf(apperr.CodeUnknownSlot, "assignments[%d]: slot %q is not in meal_slots", i, entry.SlotID)
		}
		recipeID := strings.TrimSpace(entry.RecipeID)
		if recipeID == "" {
			continue
		}
		key := slotkey.Encode(calendar.AddDays(ReferenceStartDate, entry.DayOffset), entry.SlotID)
		assignments[key] = &recipeID
	}

	now := e.now()
	tmpl := &MealPlan{
		ID:                  e.newID(),
		Name:                name,
		FamilyID:            familyID,
		StartDate:           ReferenceStartDate,
		MealSlots:           append([]string(nil), doc.MealSlots...),
		Assignments:         assignments,
		IsTemplate:          true,
		TemplateName:        &name,
		TemplateDescription: sanitize.OptionalText(&doc.Description),
		CreatedAt:           now,
		UpdatedAt:           now,
		CreatedBy:           actorFromContext(ctx, ""),
	}
	saved, err := e.persist(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	e.recorder.RecordTemplateSaved()
	return saved, nil
}
