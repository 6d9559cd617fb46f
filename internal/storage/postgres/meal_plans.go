package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/meal-hub/internal/mealplans"
)

const uniqueViolation = "23505"

const mealPlanColumns = `
	id, name, family_id, start_date, meal_slots, assignments,
	is_template, template_name, template_description,
	created_by, created_at, updated_at`

type mealPlansStorage struct {
	pool *pgxpool.Pool
}

func newMealPlansStorage(pool *pgxpool.Pool) *mealPlansStorage {
	return &mealPlansStorage{pool: pool}
}

func (s *mealPlansStorage) Load(ctx context.Context, planID string) (*mealplans.MealPlan, error) {
	query := `SELECT ` + mealPlanColumns + ` FROM meal_plans WHERE id = $1`

	plan, err := scanMealPlan(s.pool.QueryRow(ctx, query, planID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mealplans.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	return plan, nil
}

func (s *mealPlansStorage) Persist(ctx context.Context, plan *mealplans.MealPlan) (*mealplans.MealPlan, error) {
	stored := plan.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	if stored.Assignments == nil {
		stored.Assignments = map[string]*string{}
	}

	assignments, err := json.Marshal(stored.Assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assignments: %w", err)
	}

	// created_at is kept from the first insert.
	query := `
		INSERT INTO meal_plans (` + mealPlanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			family_id = EXCLUDED.family_id,
			start_date = EXCLUDED.start_date,
			meal_slots = EXCLUDED.meal_slots,
			assignments = EXCLUDED.assignments,
			is_template = EXCLUDED.is_template,
			template_name = EXCLUDED.template_name,
			template_description = EXCLUDED.template_description,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + mealPlanColumns

	saved, err := scanMealPlan(s.pool.QueryRow(ctx, query,
		stored.ID,
		stored.Name,
		stored.FamilyID,
		stored.StartDate,
		stored.MealSlots,
		assignments,
		stored.IsTemplate,
		stored.TemplateName,
		stored.TemplateDescription,
		stored.CreatedBy,
		stored.CreatedAt,
		stored.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, mealplans.ErrDuplicateTemplateName
		}
		return nil, fmt.Errorf("failed to persist meal plan: %w", err)
	}
	return saved, nil
}

func (s *mealPlansStorage) ListTemplates(ctx context.Context, familyID string) ([]mealplans.MealPlan, error) {
	return s.list(ctx, familyID, true)
}

func (s *mealPlansStorage) ListPlans(ctx context.Context, familyID string) ([]mealplans.MealPlan, error) {
	return s.list(ctx, familyID, false)
}

func (s *mealPlansStorage) Delete(ctx context.Context, planID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meal_plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mealplans.ErrPlanNotFound
	}
	return nil
}

func (s *mealPlansStorage) list(ctx context.Context, familyID string, templates bool) ([]mealplans.MealPlan, error) {
	query := `SELECT ` + mealPlanColumns + `
		FROM meal_plans
		WHERE family_id = $1 AND is_template = $2
		ORDER BY start_date DESC, created_at DESC`

	rows, err := s.pool.Query(ctx, query, familyID, templates)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	plans := []mealplans.MealPlan{}
	for rows.Next() {
		plan, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal plans: %w", err)
	}
	return plans, nil
}

func scanMealPlan(row pgx.Row) (*mealplans.MealPlan, error) {
	var (
		plan        mealplans.MealPlan
		assignments []byte
	)
	err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.FamilyID,
		&plan.StartDate,
		&plan.MealSlots,
		&assignments,
		&plan.IsTemplate,
		&plan.TemplateName,
		&plan.TemplateDescription,
		&plan.CreatedBy,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	plan.Assignments = map[string]*string{}
	if len(assignments) > 0 {
		if err := json.Unmarshal(assignments, &plan.Assignments); err != nil {
			return nil, fmt.Errorf("decode assignments of %s: %w", plan.ID, err)
		}
	}
	plan.StartDate = plan.StartDate.UTC()
	plan.CreatedAt = plan.CreatedAt.UTC()
	plan.UpdatedAt = plan.UpdatedAt.UTC()
	return &plan, nil
}
