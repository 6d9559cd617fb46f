package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/meal-hub/internal/mealslots"
)

type mealSlotsStorage struct {
	pool *pgxpool.Pool
}

func newMealSlotsStorage(pool *pgxpool.Pool) *mealSlotsStorage {
	return &mealSlotsStorage{pool: pool}
}

func (s *mealSlotsStorage) List(ctx context.Context, familyID string) ([]mealslots.MealSlot, error) {
	query := `
		SELECT id, family_id, name, sort_order, is_default, created_at, updated_at
		FROM meal_slots
		WHERE family_id = $1
		ORDER BY sort_order
	`

	rows, err := s.pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal slots: %w", err)
	}
	defer rows.Close()

	slots := []mealslots.MealSlot{}
	for rows.Next() {
		var slot mealslots.MealSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.FamilyID,
			&slot.Name,
			&slot.Order,
			&slot.IsDefault,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meal slot: %w", err)
		}
		slot.CreatedAt = slot.CreatedAt.UTC()
		slot.UpdatedAt = slot.UpdatedAt.UTC()
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal slots: %w", err)
	}
	return slots, nil
}

func (s *mealSlotsStorage) Replace(ctx context.Context, familyID string, slots []mealslots.MealSlot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM meal_slots WHERE family_id = $1`, familyID); err != nil {
		return fmt.Errorf("failed to clear meal slots: %w", err)
	}

	batch := &pgx.Batch{}
	for _, slot := range slots {
		batch.Queue(`
			INSERT INTO meal_slots (id, family_id, name, sort_order, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, slot.ID, familyID, slot.Name, slot.Order, slot.IsDefault, slot.CreatedAt, slot.UpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert meal slots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
