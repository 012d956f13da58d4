package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, comment.Created.Millis())
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// GetCommentsByItems returns comments of the given items in creation order.
func (db *DB) GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return []*models.Comment{}, nil
	}

	query, args, err := db.qb.From("comments").Prepared(true).
		Select("id", "text", "item_id", "author_id", "created").
		Where(goqu.Ex{"item_id": itemIDs}).
		Order(goqu.C("created").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build comments query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		c := &models.Comment{}
		var created int64
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Created = models.DateTimeFromMillis(created)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
