package mealplans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-hub/internal/apperr"
)

type staticSlots []SlotInfo

func (s staticSlots) ListSlots(context.Context, string) ([]SlotInfo, error) {
	return s, nil
}

type staticNames map[string]string

func (n staticNames) RecipeNames(context.Context, string, []string) (map[string]string, error) {
	return n, nil
}

var defaultSlots = staticSlots{
	{ID: "breakfast", Name: "Breakfast"},
	{ID: "lunch", Name: "Lunch"},
	{ID: "dinner", Name: "Dinner"},
	{ID: "snacks", Name: "Snacks"},
}

func newTestService(repo Repository) *Service {
	return NewService(repo, defaultSlots).
		WithClock(fixedClock(testNow)).
		WithIDGenerator(sequentialIDs("plan"))
}

func TestCreate_DefaultsToFamilySlots(t *testing.T) {
	svc := newTestService(newFakeRepo())

	plan, err := svc.Create(familyCtx(), CreatePlanRequest{Name: " May ", StartDate: "2025-05-05"})
	require.NoError(t, err)

	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, "May", plan.Name)
	assert.Equal(t, "fam-1", plan.FamilyID)
	assert.Equal(t, "user-1", plan.CreatedBy)
	assert.Equal(t, []string{"breakfast", "lunch", "dinner", "snacks"}, plan.MealSlots)
	assert.Empty(t, plan.Assignments)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := familyCtx()

	cases := []struct {
		name string
		req  CreatePlanRequest
		code string
	}{
		{"empty name", CreatePlanRequest{Name: " ", StartDate: "2025-05-05"}, apperr.CodeInvalidName},
		{"missing start", CreatePlanRequest{Name: "May"}, apperr.CodeInvalidStartDate},
		{"bad start", CreatePlanRequest{Name: "May", StartDate: "05/05/2025"}, apperr.CodeInvalidStartDate},
		{"stale start", CreatePlanRequest{Name: "May", StartDate: "2024-04-01"}, apperr.CodeInvalidStartDate},
		{"duplicate slots", CreatePlanRequest{Name: "May", StartDate: "2025-05-05", MealSlots: []string{"a", "a"}}, apperr.CodeInvalidMealSlots},
		{"too many slots", CreatePlanRequest{Name: "May", StartDate: "2025-05-05", MealSlots: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}}, apperr.CodeInvalidMealSlots},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.Equal(t, tc.code, apperr.CodeOf(err))
		})
	}
}

func TestAssign(t *testing.T) {
	repo := newFakeRepo(samplePlan("p1", date(2025, 5, 5), map[string]*string{}))
	svc := newTestService(repo)
	ctx := familyCtx()

	plan, err := svc.Assign(ctx, "p1", AssignRequest{Date: "2025-05-06", SlotID: "lunch", RecipeID: strPtr("r1")})
	require.NoError(t, err)
	assert.Equal(t, map[string]*string{"2025-05-06_lunch": strPtr("r1")}, plan.Assignments)

	plan, err = svc.Assign(ctx, "p1", AssignRequest{Date: "2025-05-06", SlotID: "lunch"})
	require.NoError(t, err)
	assert.Empty(t, plan.Assignments)

	_, err = svc.Assign(ctx, "p1", AssignRequest{Date: "2025-06-02", SlotID: "lunch", RecipeID: strPtr("r1")})
	assert.ErrorIs(t, err, apperr.OutOfRange)

	_, err = svc.Assign(ctx, "p1", AssignRequest{Date: "2025-05-06", SlotID: "brunch", RecipeID: strPtr("r1")})
	assert.Equal(t, apperr.CodeUnknownSlot, apperr.CodeOf(err))

	_, err = svc.Assign(ctx, "p1", AssignRequest{Date: "tomorrow", SlotID: "lunch"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestUpdate_PrunesRemovedSlots(t *testing.T) {
	repo := newFakeRepo(samplePlan("p1", date(2025, 5, 5), map[string]*string{
		"2025-05-05_breakfast": strPtr("r1"),
		"2025-05-05_dinner":    strPtr("r2"),
	}))
	svc := newTestService(repo)

	plan, err := svc.Update(familyCtx(), "p1", UpdatePlanRequest{
		Name:      strPtr("Renamed"),
		MealSlots: []string{"breakfast", "lunch"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", plan.Name)
	assert.Equal(t, map[string]*string{"2025-05-05_breakfast": strPtr("r1")}, plan.Assignments)

	_, err = svc.Update(familyCtx(), "p1", UpdatePlanRequest{MealSlots: []string{}})
	assert.Equal(t, apperr.CodeInvalidMealSlots, apperr.CodeOf(err))
}

func TestWeekView(t *testing.T) {
	repo := newFakeRepo(samplePlan("p1", date(2025, 5, 5), map[string]*string{
		"2025-05-12_dinner": strPtr("r9"),
	}))
	svc := newTestService(repo)

	view, err := svc.WeekView(familyCtx(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "5/12 - 5/18", view.DateRange)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "2025-05-12", view.Days[0].Date)
	assert.Equal(t, "Monday", view.Days[0].Weekday)
	assert.Equal(t, "r9", *view.Days[0].Slots["dinner"])
	assert.Nil(t, view.Days[0].Slots["breakfast"])

	for _, week := range []int{-1, 4} {
		_, err := svc.WeekView(familyCtx(), "p1", week)
		assert.ErrorIs(t, err, apperr.OutOfRange, "week %d", week)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	repo := newFakeRepo(
		samplePlan("old", date(2025, 1, 6), nil),
		samplePlan("new", date(2025, 5, 5), nil),
		samplePlan("mid", date(2025, 3, 3), nil),
	)
	svc := newTestService(repo)

	plans, err := svc.List(familyCtx())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{plans[0].ID, plans[1].ID, plans[2].ID})
}

func TestValidationReport(t *testing.T) {
	bad := samplePlan("p1", date(2023, 1, 2), map[string]*string{"nope": strPtr("r1")})
	bad.Name = ""
	svc := newTestService(newFakeRepo(bad))

	errs, err := svc.Validation(familyCtx(), "p1")
	require.NoError(t, err)
	assert.Contains(t, errs, FieldName)
	assert.Contains(t, errs, FieldStartDate)
	assert.Contains(t, errs, FieldAssignments)
	assert.NotContains(t, errs, FieldMealSlots)
}

func TestRecipeInUseAndDelete(t *testing.T) {
	repo := newFakeRepo(samplePlan("p1", date(2025, 5, 5), map[string]*string{
		"2025-05-05_lunch": strPtr("r1"),
	}))
	svc := newTestService(repo)
	ctx := familyCtx()

	used, err := svc.RecipeInUse(ctx, "fam-1", "r1")
	require.NoError(t, err)
	assert.True(t, used)

	used, err = svc.RecipeInUse(ctx, "fam-1", "r2")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, svc.Delete(ctx, "p1"))
	assert.ErrorIs(t, svc.Delete(ctx, "p1"), apperr.NotFound)
}

func TestPrintable(t *testing.T) {
	repo := newFakeRepo(samplePlan("p1", date(2025, 5, 5), map[string]*string{
		"2025-05-05_lunch": strPtr("r1"),
	}))
	svc := newTestService(repo).WithRecipeNamer(staticNames{"r1": "Crème brûlée with a very long name that will not fit"})

	body, err := svc.Printable(familyCtx(), "p1")
	require.NoError(t, err)
	assert.True(t, len(body) > 4 && string(body[:4]) == "%PDF")
}

func TestUpdate_TemplateRenameChecksNameAvailability(t *testing.T) {
	summer := samplePlan("t1", ReferenceStartDate, map[string]*string{})
	summer.IsTemplate = true
	summer.Name = "Summer"
	summer.TemplateName = strPtr("Summer")
	winter := summer.Clone()
	winter.ID = "t2"
	winter.Name = "Winter"
	winter.TemplateName = strPtr("Winter")

	repo := newFakeRepo(summer, winter)
	svc := newTestService(repo)
	ctx := familyCtx()

	_, err := svc.Update(ctx, "t2", UpdatePlanRequest{Name: strPtr(" SUMMER ")})
	assert.Equal(t, apperr.CodeDuplicateName, apperr.CodeOf(err))
	assert.Zero(t, repo.persists, "nothing is written on a clash")

	renamed, err := svc.Update(ctx, "t1", UpdatePlanRequest{Name: strPtr("summer")})
	require.NoError(t, err, "a template may change the case of its own name")
	assert.Equal(t, "summer", *renamed.TemplateName)
}
