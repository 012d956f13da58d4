package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

var itemColumns = []any{"id", "owner_id", "name", "description", "available", "request_id"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var requestID sql.NullInt64
	if err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description, &item.Available, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return item, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (owner_id, name, description, available, request_id) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Available,
		nullableID(item.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT id, owner_id, name, description, available, request_id FROM items WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "item")
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// GetItemsByOwner lists an owner's items by id.
func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Item, error) {
	ds := db.qb.From("items").Prepared(true).
		Select(itemColumns...).
		Where(goqu.Ex{"owner_id": ownerID}).
		Order(goqu.I("id").Asc())

	return db.queryItems(ctx, paginate(ds, page))
}

// SearchItems matches text against name or description, case-insensitively, among available items.
func (db *DB) SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"

	ds := db.qb.From("items").Prepared(true).
		Select(itemColumns...).
		Where(
			goqu.Ex{"available": true},
			goqu.Or(
				goqu.L(`unicode_lower("name") LIKE ? ESCAPE '\'`, pattern),
				goqu.L(`unicode_lower("description") LIKE ? ESCAPE '\'`, pattern),
			),
		).
		Order(goqu.I("id").Asc())

	return db.queryItems(ctx, paginate(ds, page))
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return []*models.Item{}, nil
	}

	ds := db.qb.From("items").Prepared(true).
		Select(itemColumns...).
		Where(goqu.Ex{"request_id": requestIDs}).
		Order(goqu.I("id").Asc())

	return db.queryItems(ctx, ds)
}

func (db *DB) queryItems(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Item, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func paginate(ds *goqu.SelectDataset, page *models.Page) *goqu.SelectDataset {
	if page == nil {
		return ds
	}
	return ds.Limit(uint(page.Size)).Offset(uint(page.From))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
