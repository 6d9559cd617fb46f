package mealslots

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/sanitize"
)

// Service manages the meal slot configuration of a family.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// NewService creates a new meal slots service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithIDGenerator(newID func() string) *Service {
	s.newID = newID
	return s
}

// List returns the family's slots ordered for display. A family with no
// stored configuration is seeded with the defaults.
func (s *Service) List(ctx context.Context, familyID string) ([]MealSlot, error) {
	slots, err := s.repo.List(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("list meal slots: %w", err)
	}
	if len(slots) == 0 {
		slots = Defaults(familyID, s.now())
		if err := s.repo.Replace(ctx, familyID, slots); err != nil {
			return nil, fmt.Errorf("seed default meal slots: %w", err)
		}
		log.Debug().Str("family_id", familyID).Msg("seeded default meal slots")
	}
	sortByOrder(slots)
	return slots, nil
}

// Create appends a custom slot after the existing ones.
func (s *Service) Create(ctx context.Context, familyID, name string) (*MealSlot, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	slots, err := s.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(slots) >= MaxSlots {
		return nil, apperr.Newf(apperr.CodeTooManySlots, "a family can have at most %d meal slots", MaxSlots)
	}
	if err := checkUniqueName(slots, "", name); err != nil {
		return nil, err
	}

	now := s.now()
	slot := MealSlot{
		ID:        s.newID(),
		FamilyID:  familyID,
		Name:      name,
		Order:     slots[len(slots)-1].Order + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Replace(ctx, familyID, append(slots, slot)); err != nil {
		return nil, fmt.Errorf("save meal slots: %w", err)
	}
	return &slot, nil
}

// Rename changes the display name of any slot, default or custom.
func (s *Service) Rename(ctx context.Context, familyID, id, name string) (*MealSlot, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	slots, err := s.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	i := indexOf(slots, id)
	if i < 0 {
		return nil, apperr.Newf(apperr.CodeNotFound, "meal slot %s not found", id)
	}
	if err := checkUniqueName(slots, id, name); err != nil {
		return nil, err
	}

	slots[i].Name = name
	slots[i].UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, familyID, slots); err != nil {
		return nil, fmt.Errorf("save meal slots: %w", err)
	}
	renamed := slots[i]
	return &renamed, nil
}

// Reorder rewrites the display order. ids must name every slot exactly once.
func (s *Service) Reorder(ctx context.Context, familyID string, ids []string) ([]MealSlot, error) {
	slots, err := s.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(slots) {
		return nil, apperr.Newf(apperr.CodeInvalidOrder, "expected %d slot ids, got %d", len(slots), len(ids))
	}

	byID := make(map[string]MealSlot, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
	}

	now := s.now()
	reordered := make([]MealSlot, 0, len(ids))
	for i, id := range ids {
		slot, ok := byID[id]
		if !ok {
			return nil, apperr.Newf(apperr.CodeInvalidOrder, "slot id %q is unknown or repeated", id)
		}
		delete(byID, id)
		slot.Order = i + 1
		slot.UpdatedAt = now
		reordered = append(reordered, slot)
	}

	if err := s.repo.Replace(ctx, familyID, reordered); err != nil {
		return nil, fmt.Errorf("save meal slots: %w", err)
	}
	return reordered, nil
}

// Delete removes a custom slot and closes the gap in the order.
func (s *Service) Delete(ctx context.Context, familyID, id string) error {
	slots, err := s.List(ctx, familyID)
	if err != nil {
		return err
	}
	i := indexOf(slots, id)
	if i < 0 {
		return apperr.Newf(apperr.CodeNotFound, "meal slot %s not found", id)
	}
	if slots[i].IsDefault {
		return apperr.Newf(apperr.CodeSlotIsDefault, "meal slot %s is a default slot", id)
	}

	remaining := append(slots[:i:i], slots[i+1:]...)
	for j := range remaining {
		remaining[j].Order = j + 1
	}
	if err := s.repo.Replace(ctx, familyID, remaining); err != nil {
		return fmt.Errorf("save meal slots: %w", err)
	}
	return nil
}

func validateName(name string) (string, error) {
	name = sanitize.Text(name)
	if name == "" {
		return "", apperr.New(apperr.CodeInvalidName, "name is required")
	}
	if utf8.RuneCountInString(name) > MaxSlotNameLength {
		return "", apperr.Newf(apperr.CodeInvalidName, "name must be at most %d characters", MaxSlotNameLength)
	}
	return name, nil
}

func checkUniqueName(slots []MealSlot, exceptID, name string) error {
	for _, slot := range slots {
		if slot.ID != exceptID && strings.EqualFold(slot.Name, name) {
			return apperr.Newf(apperr.CodeDuplicateName, "a meal slot named %q already exists", name)
		}
	}
	return nil
}

func indexOf(slots []MealSlot, id string) int {
	for i, slot := range slots {
		if slot.ID == id {
			return i
		}
	}
	return -1
}

func sortByOrder(slots []MealSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Order < slots[j].Order
	})
}
