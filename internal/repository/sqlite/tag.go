package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.TagRepository
var _ repository.TagRepository = (*DB)(nil)

// CreateTag inserts a tag. Name, color and slug are each UNIQUE.
func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, color, slug) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Color, tag.Slug,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a tag with this name, color or slug already exists")
		}
		return fmt.Errorf("sqlite: creating tag: %w", err)
	}

	return nil
}

func (db *DB) GetTagByID(ctx context.Context, id string) (*model.Tag, error) {
	return db.getTag(ctx, `WHERE id = ?`, id)
}

func (db *DB) GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	return db.getTag(ctx, `WHERE slug = ?`, slug)
}

func (db *DB) getTag(ctx context.Context, where string, arg any) (*model.Tag, error) {
	var tag model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, color, slug FROM tags `+where, arg,
	).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting tag: %w", err)
	}

	return &tag, nil
}

// ListTags returns the full tag catalogue, name order. Unpaginated — the
// catalogue is a handful of rows.
func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, color, slug FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}
