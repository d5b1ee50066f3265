package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx connection pool.
// Schema lives in migrations/ and is applied with pkg/pg.Migrate.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed subscription store.
// Panics on a nil pool to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("subscription: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

const getSubscriptionQuery = `
SELECT id, subscriber_id, plan_id, previous_plan_id, provider_sub_id,
       quantity, trial_ends_at, ends_at, created_at, updated_at
FROM subscriptions
WHERE id = $1`

// Get retrieves a subscription by ID.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	var sub Subscription
	err := s.pool.QueryRow(ctx, getSubscriptionQuery, id).Scan(
		&sub.ID,
		&sub.SubscriberID,
		&sub.PlanID,
		&sub.PreviousPlanID,
		&sub.ProviderSubID,
		&sub.Quantity,
		&sub.TrialEndsAt,
		&sub.EndsAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

const saveSubscriptionQuery = `
INSERT INTO subscriptions (
	id, subscriber_id, plan_id, previous_plan_id, provider_sub_id,
	quantity, trial_ends_at, ends_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	plan_id          = EXCLUDED.plan_id,
	previous_plan_id = EXCLUDED.previous_plan_id,
	provider_sub_id  = EXCLUDED.provider_sub_id,
	quantity         = EXCLUDED.quantity,
	trial_ends_at    = EXCLUDED.trial_ends_at,
	ends_at          = EXCLUDED.ends_at,
	updated_at       = EXCLUDED.updated_at`

// Save creates or updates a subscription row keyed by ID.
// SubscriberID and CreatedAt are immutable after the first insert.
func (s *PostgresStore) Save(ctx context.Context, sub *Subscription) error {
	_, err := s.pool.Exec(ctx, saveSubscriptionQuery,
		sub.ID,
		sub.SubscriberID,
		sub.PlanID,
		sub.PreviousPlanID,
		sub.ProviderSubID,
		sub.Quantity,
		sub.TrialEndsAt,
		sub.EndsAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	return err
}

var _ Store = (*PostgresStore)(nil)
