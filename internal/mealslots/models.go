package mealslots

import (
	"context"
	"time"
)

const (
	MaxSlots          = 8
	MaxSlotNameLength = 30
)

// MealSlot is one meal of the day a family plans for.
type MealSlot struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var defaultSlots = []struct {
	id, name string
}{
	{"breakfast", "Breakfast"},
	{"lunch", "Lunch"},
	{"dinner", "Dinner"},
	{"snacks", "Snacks"},
}

// Defaults returns the slots a family starts with.
func Defaults(familyID string, now time.Time) []MealSlot {
	out := make([]MealSlot, len(defaultSlots))
	for i, d := range defaultSlots {
		out[i] = MealSlot{
			ID:        d.id,
			FamilyID:  familyID,
			Name:      d.name,
			Order:     i + 1,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return out
}

// Repository stores a family's slot configuration as a whole.
type Repository interface {
	// List returns the family's slots in any order; empty when none are stored.
	List(ctx context.Context, familyID string) ([]MealSlot, error)
	// Replace atomically swaps the family's stored slots for slots.
	Replace(ctx context.Context, familyID string, slots []MealSlot) error
}

type CreateSlotRequest struct {
	Name string `json:"name"`
}

type RenameSlotRequest struct {
	Name string `json:"name"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type ListSlotsResponse struct {
	Slots []MealSlot `json:"slots"`
}
