package mealslots

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-hub/internal/apperr"
)

type fakeRepo struct {
	mu    sync.Mutex
	slots map[string][]MealSlot
}

func (r *fakeRepo) List(_ context.Context, familyID string) ([]MealSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MealSlot(nil), r.slots[familyID]...), nil
}

func (r *fakeRepo) Replace(_ context.Context, familyID string, slots []MealSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots == nil {
		r.slots = map[string][]MealSlot{}
	}
	r.slots[familyID] = append([]MealSlot(nil), slots...)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	n := 0
	nextID := func() string {
		n++
		return fmt.Sprintf("slot-%d", n)
	}
	svc := NewService(repo).
		WithClock(func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }).
		WithIDGenerator(nextID)
	return svc, repo
}

func ids(slots []MealSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.ID
	}
	return out
}

func TestList_SeedsDefaults(t *testing.T) {
	svc, repo := newTestService()

	slots, err := svc.List(context.Background(), "fam-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast", "lunch", "dinner", "snacks"}, ids(slots))
	for i, s := range slots {
		assert.Equal(t, i+1, s.Order)
		assert.True(t, s.IsDefault)
	}
	assert.Len(t, repo.slots["fam-1"], 4)
}

func TestCreate_UpToEight(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 5; i <= MaxSlots; i++ {
		slot, err := svc.Create(ctx, "fam-1", fmt.Sprintf("Meal %d", i))
		require.NoError(t, err)
		assert.Equal(t, i, slot.Order)
		assert.False(t, slot.IsDefault)
	}

	_, err := svc.Create(ctx, "fam-1", "Ninth")
	assert.Equal(t, apperr.CodeTooManySlots, apperr.CodeOf(err))
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "fam-1", "  ")
	assert.Equal(t, apperr.CodeInvalidName, apperr.CodeOf(err))

	_, err = svc.Create(ctx, "fam-1", "This name is far too long for a slot")
	assert.Equal(t, apperr.CodeInvalidName, apperr.CodeOf(err))

	_, err = svc.Create(ctx, "fam-1", "lunch")
	assert.Equal(t, apperr.CodeDuplicateName, apperr.CodeOf(err))
}

func TestRename(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	slot, err := svc.Rename(ctx, "fam-1", "snacks", "Afternoon tea")
	require.NoError(t, err)
	assert.Equal(t, "Afternoon tea", slot.Name)
	assert.True(t, slot.IsDefault)

	_, err = svc.Rename(ctx, "fam-1", "missing", "X")
	assert.ErrorIs(t, err, apperr.NotFound)
}

func TestReorder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	slots, err := svc.Reorder(ctx, "fam-1", []string{"dinner", "breakfast", "snacks", "lunch"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner", "breakfast", "snacks", "lunch"}, ids(slots))

	listed, err := svc.List(ctx, "fam-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner", "breakfast", "snacks", "lunch"}, ids(listed))

	for _, bad := range [][]string{
		{"dinner", "breakfast", "snacks"},
		{"dinner", "dinner", "snacks", "lunch"},
		{"dinner", "breakfast", "snacks", "brunch"},
	} {
		_, err := svc.Reorder(ctx, "fam-1", bad)
		assert.Equal(t, apperr.CodeInvalidOrder, apperr.CodeOf(err), "%v", bad)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	custom, err := svc.Create(ctx, "fam-1", "Brunch")
	require.NoError(t, err)
	_, err = svc.Reorder(ctx, "fam-1", []string{"breakfast", custom.ID, "lunch", "dinner", "snacks"})
	require.NoError(t, err)

	err = svc.Delete(ctx, "fam-1", "lunch")
	assert.Equal(t, apperr.CodeSlotIsDefault, apperr.CodeOf(err))

	require.NoError(t, svc.Delete(ctx, "fam-1", custom.ID))
	slots, err := svc.List(ctx, "fam-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast", "lunch", "dinner", "snacks"}, ids(slots))
	assert.Equal(t, 2, slots[1].Order)

	assert.ErrorIs(t, svc.Delete(ctx, "fam-1", custom.ID), apperr.NotFound)
}
