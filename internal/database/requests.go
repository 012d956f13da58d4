package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) CreateItemRequest(ctx context.Context, req *models.ItemRequest) error {
	query := `INSERT INTO item_requests (description, requestor_id, created) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, req.Description, req.RequestorID, req.Created.Millis())
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created FROM item_requests WHERE id = ?`
	req, err := scanItemRequest(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "item request")
	}
	return req, nil
}

// GetItemRequestsByRequestor lists a user's own requests, newest first.
func (db *DB) GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	ds := db.itemRequests().
		Where(goqu.Ex{"requestor_id": requestorID}).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())
	return db.queryItemRequests(ctx, ds)
}

// GetItemRequestsExcept lists everybody else's requests, newest first.
func (db *DB) GetItemRequestsExcept(ctx context.Context, userID int64, page *models.Page) ([]*models.ItemRequest, error) {
	ds := db.itemRequests().
		Where(goqu.C("requestor_id").Neq(userID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())
	return db.queryItemRequests(ctx, paginate(ds, page))
}

func (db *DB) itemRequests() *goqu.SelectDataset {
	return db.qb.From("item_requests").Prepared(true).
		Select("id", "description", "requestor_id", "created")
}

func (db *DB) queryItemRequests(ctx context.Context, ds *goqu.SelectDataset) ([]*models.ItemRequest, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build item requests query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]*models.ItemRequest, 0)
	for rows.Next() {
		req, err := scanItemRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func scanItemRequest(row rowScanner) (*models.ItemRequest, error) {
	req := &models.ItemRequest{}
	var created int64
	if err := row.Scan(&req.ID, &req.Description, &req.RequestorID, &created); err != nil {
		return nil, err
	}
	req.Created = models.DateTimeFromMillis(created)
	return req, nil
}
