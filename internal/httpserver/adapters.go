package httpserver

import (
	"context"

	"github.com/fdg312/meal-hub/internal/mealplans"
	"github.com/fdg312/meal-hub/internal/mealslots"
)

// slotSource exposes the family's configured meal slots to plans.
type slotSource struct {
	slots *mealslots.Service
}

func (a slotSource) ListSlots(ctx context.Context, familyID string) ([]mealplans.SlotInfo, error) {
	slots, err := a.slots.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	out := make([]mealplans.SlotInfo, len(slots))
	for i, slot := range slots {
		out[i] = mealplans.SlotInfo{ID: slot.ID, Name: slot.Name}
	}
	return out, nil
}
