package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/mealplans"
	"github.com/fdg312/meal-hub/internal/mealslots"
	"github.com/fdg312/meal-hub/internal/recipes"
	"github.com/fdg312/meal-hub/internal/retry"
)

// PostgresStorage реализует storage.Store поверх Postgres
type PostgresStorage struct {
	pool      *pgxpool.Pool
	mealPlans *mealPlansStorage
	mealSlots *mealSlotsStorage
	recipes   *recipesStorage
}

// New открывает пул и ждёт, пока база ответит на ping. maxAttempts ограничивает
// число попыток подключения, значение меньше 1 означает одну попытку.
func New(ctx context.Context, databaseURL string, maxAttempts int) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	policy := retry.Policy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxAttempts:     maxAttempts,
	}
	if err := retry.Do(ctx, policy, "postgres.ping", pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info().Int32("max_conns", pool.Config().MaxConns).Msg("postgres connected")

	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{
		pool:      pool,
		mealPlans: newMealPlansStorage(pool),
		mealSlots: newMealSlotsStorage(pool),
		recipes:   newRecipesStorage(pool),
	}
}

func (p *PostgresStorage) MealPlans() mealplans.Repository {
	return p.mealPlans
}

func (p *PostgresStorage) MealSlots() mealslots.Repository {
	return p.mealSlots
}

func (p *PostgresStorage) Recipes() recipes.Repository {
	return p.recipes
}

// Pool exposes the pool for health checks.
func (p *PostgresStorage) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
