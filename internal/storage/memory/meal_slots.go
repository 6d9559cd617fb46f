package memory

import (
	"context"
	"sync"

	"github.com/fdg312/meal-hub/internal/mealslots"
)

type mealSlotsStorage struct {
	mu    sync.RWMutex
	slots map[string][]mealslots.MealSlot // key: family_id
}

func newMealSlotsStorage() *mealSlotsStorage {
	return &mealSlotsStorage{slots: make(map[string][]mealslots.MealSlot)}
}

func (s *mealSlotsStorage) List(ctx context.Context, familyID string) ([]mealslots.MealSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]mealslots.MealSlot{}, s.slots[familyID]...), nil
}

func (s *mealSlotsStorage) Replace(ctx context.Context, familyID string, slots []mealslots.MealSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]mealslots.MealSlot, len(slots))
	for i, slot := range slots {
		slot.FamilyID = familyID
		stored[i] = slot
	}
	s.slots[familyID] = stored
	return nil
}
