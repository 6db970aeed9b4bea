package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*DB)(nil)

// AddSubscription inserts a subscription. UNIQUE(subscriber_id, author_id)
// is the duplicate guard; the self-subscription rule lives in the service
// layer.
func (db *DB) AddSubscription(ctx context.Context, subscriberID, authorID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO subscriptions (subscriber_id, author_id, created_at) VALUES (?, ?, ?)`,
		subscriberID, authorID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("already subscribed to this author")
		}
		return fmt.Errorf("sqlite: adding subscription: %w", err)
	}

	return nil
}

func (db *DB) RemoveSubscription(ctx context.Context, subscriberID, authorID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND author_id = ?`,
		subscriberID, authorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("subscription", authorID)
	}

	return nil
}

func (db *DB) SubscriptionExists(ctx context.Context, subscriberID, authorID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ? AND author_id = ?`,
		subscriberID, authorID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking subscription: %w", err)
	}
	return count > 0, nil
}

// ListSubscribedAuthors returns a page of the authors the subscriber
// follows, oldest subscription first, plus the total count.
func (db *DB) ListSubscribedAuthors(ctx context.Context, subscriberID string, opts repository.ListOptions) ([]model.User, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ?`, subscriberID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting subscriptions: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.email, u.username, u.first_name, u.last_name,
		        u.password_hash, u.is_admin, u.created_at, u.updated_at
		 FROM subscriptions s
		 JOIN users u ON u.id = s.author_id
		 WHERE s.subscriber_id = ?
		 ORDER BY s.created_at, u.id
		 LIMIT ? OFFSET ?`,
		subscriberID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing subscribed authors: %w", err)
	}
	defer rows.Close()

	authors := make([]model.User, 0, opts.Limit)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
			&u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning author row: %w", err)
		}
		authors = append(authors, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating authors: %w", err)
	}

	return authors, total, nil
}
