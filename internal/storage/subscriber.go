package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"newsbot/internal/model"
)

type SubscriberPostgresStorage struct {
	db *sqlx.DB
}

type dbSubscriber struct {
	ID                   int64     `db:"id"`
	Username             string    `db:"username"`
	FirstName            string    `db:"first_name"`
	NotificationsEnabled bool      `db:"notifications_enabled"`
	DeliveryCount        int64     `db:"delivery_count"`
	LastActivityAt       time.Time `db:"last_activity_at"`
	CreatedAt            time.Time `db:"created_at"`
}

func NewSubscriberStorage(db *sqlx.DB) *SubscriberPostgresStorage {
	return &SubscriberPostgresStorage{
		db: db,
	}
}

// Upsert registers a subscriber, or refreshes the profile and activity
// timestamp of a known one. Notification preference survives re-registration.
func (s *SubscriberPostgresStorage) Upsert(ctx context.Context, sub model.Subscriber) error {
	conn, err := s.db.Connx(ctx)

	if err != nil {
		return err
	}
	defer conn.Close()

	_, execErr := conn.ExecContext(
		ctx,
		`INSERT INTO subscribers (id, username, first_name, last_activity_at)
						VALUES ($1, $2, $3, NOW())
						ON CONFLICT (id) DO UPDATE
						SET username = EXCLUDED.username,
							first_name = EXCLUDED.first_name,
							last_activity_at = NOW();`,
		sub.ID,
		sub.Username,
		sub.FirstName,
	)

	if execErr != nil {
		return execErr
	}

	return nil
}

// Touch bumps the subscriber's activity timestamp, keeping them inside the
// broadcast eligibility window.
func (s *SubscriberPostgresStorage) Touch(ctx context.Context, id int64) error {
	conn, err := s.db.Connx(ctx)

	if err != nil {
		return err
	}
	defer conn.Close()

	_, execErr := conn.ExecContext(
		ctx,
		`UPDATE subscribers SET last_activity_at = NOW() WHERE id = $1;`,
		id,
	)

	if execErr != nil {
		return execErr
	}

	return nil
}

func (s *SubscriberPostgresStorage) SetNotifications(ctx context.Context, id int64, enabled bool) error {
	conn, err := s.db.Connx(ctx)

	if err != nil {
		return err
	}
	defer conn.Close()

	_, execErr := conn.ExecContext(
		ctx,
		`UPDATE subscribers SET notifications_enabled = $1 WHERE id = $2;`,
		enabled,
		id,
	)

	if execErr != nil {
		return execErr
	}

	return nil
}

// ListEligible returns subscribers with notifications enabled whose last
// activity falls within the window.
func (s *SubscriberPostgresStorage) ListEligible(ctx context.Context, window time.Duration) ([]model.Subscriber, error) {
	conn, err := s.db.Connx(ctx)

	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var subscribers []dbSubscriber

	if err := conn.SelectContext(
		ctx,
		&subscribers,
		`SELECT * FROM subscribers
			WHERE notifications_enabled = TRUE AND last_activity_at >= $1::TIMESTAMP
			ORDER BY id`,
		time.Now().Add(-window).UTC().Format(time.RFC3339),
	); err != nil {
		return nil, err
	}

	return lo.Map(subscribers, func(sub dbSubscriber, _ int) model.Subscriber {
		return model.Subscriber{
			ID:        sub.ID,
			Username:  sub.Username,
			FirstName: sub.FirstName,
		}
	}), nil
}

// IncrementDeliveryCount records one successful digest delivery.
func (s *SubscriberPostgresStorage) IncrementDeliveryCount(ctx context.Context, id int64) error {
	conn, err := s.db.Connx(ctx)

	if err != nil {
		return err
	}
	defer conn.Close()

	_, execErr := conn.ExecContext(
		ctx,
		`UPDATE subscribers SET delivery_count = delivery_count + 1 WHERE id = $1;`,
		id,
	)

	if execErr != nil {
		return execErr
	}

	return nil
}
