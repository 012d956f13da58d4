package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/apperrors"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_at, end_at, item_id, booker_id, status, created_at, updated_at, version)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UnixMilli()
	result, err := db.ExecContext(ctx, query,
		booking.Start.Millis(),
		booking.End.Millis(),
		booking.ItemID,
		booking.BookerID,
		booking.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT id, start_at, end_at, item_id, booker_id, status, version FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion changes status only if nobody else did since fromVersion was read.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UnixMilli(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return requireAffected(result, ErrConcurrentModification)
}

// GetBookingsByBooker selects the bookings a user made, newest start first.
func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, page *models.Page) ([]*models.BookingView, error) {
	return db.listBookingViews(ctx, goqu.I("b.booker_id").Eq(bookerID), state, now, page)
}

// GetBookingsByOwner selects bookings of every item the user owns, newest start first.
func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, page *models.Page) ([]*models.BookingView, error) {
	return db.listBookingViews(ctx, goqu.I("i.owner_id").Eq(ownerID), state, now, page)
}

// stateCondition translates a state token into a WHERE clause against the b alias.
func stateCondition(state models.State, now time.Time) (exp.Expression, error) {
	ts := now.UnixMilli()
	switch state {
	case models.StateAll:
		return nil, nil
	case models.StateCurrent:
		return goqu.And(goqu.I("b.start_at").Lt(ts), goqu.I("b.end_at").Gt(ts)), nil
	case models.StateFuture:
		return goqu.Or(goqu.I("b.start_at").Gt(ts), goqu.I("b.end_at").Gt(ts)), nil
	case models.StatePast:
		return goqu.I("b.end_at").Lt(ts), nil
	case models.StateWaiting:
		return goqu.I("b.status").Eq(string(models.StatusWaiting)), nil
	case models.StateRejected:
		return goqu.I("b.status").Eq(string(models.StatusRejected)), nil
	default:
		return nil, apperrors.UnsupportedState()
	}
}

func (db *DB) listBookingViews(ctx context.Context, who exp.Expression, state models.State, now time.Time, page *models.Page) ([]*models.BookingView, error) {
	cond, err := stateCondition(state, now)
	if err != nil {
		return nil, err
	}

	ds := db.qb.From(goqu.T("bookings").As("b")).Prepared(true).
		Select(
			goqu.I("b.id"), goqu.I("b.start_at"), goqu.I("b.end_at"), goqu.I("b.status"),
			goqu.I("i.id"), goqu.I("i.owner_id"), goqu.I("i.name"), goqu.I("i.description"),
			goqu.I("i.available"), goqu.I("i.request_id"),
			goqu.I("u.id"), goqu.I("u.name"), goqu.I("u.email"),
		).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Where(who).
		Order(goqu.I("b.start_at").Desc(), goqu.I("b.id").Desc())

	if cond != nil {
		ds = ds.Where(cond)
	}
	ds = paginate(ds, page)

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build bookings query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	views := make([]*models.BookingView, 0)
	for rows.Next() {
		v := &models.BookingView{}
		var start, end int64
		var requestID sql.NullInt64
		err := rows.Scan(
			&v.ID, &start, &end, &v.Status,
			&v.Item.ID, &v.Item.OwnerID, &v.Item.Name, &v.Item.Description,
			&v.Item.Available, &requestID,
			&v.Booker.ID, &v.Booker.Name, &v.Booker.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		v.Start = models.DateTimeFromMillis(start)
		v.End = models.DateTimeFromMillis(end)
		if requestID.Valid {
			id := requestID.Int64
			v.Item.RequestID = &id
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// GetLastBooking is the booking of the item that started most recently before now.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	ds := db.bookingsOfItem(itemID).
		Where(goqu.C("start_at").Lt(now.UnixMilli())).
		Order(goqu.C("start_at").Desc()).
		Limit(1)
	return db.firstBooking(ctx, ds)
}

// GetNextBooking is the nearest upcoming booking of the item that was not rejected.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	ds := db.bookingsOfItem(itemID).
		Where(
			goqu.C("start_at").Gt(now.UnixMilli()),
			goqu.C("status").Neq(string(models.StatusRejected)),
		).
		Order(goqu.C("start_at").Asc()).
		Limit(1)
	return db.firstBooking(ctx, ds)
}

// HasCompletedBooking reports whether the user finished a non-rejected booking of the item.
func (db *DB) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
                SELECT 1 FROM bookings
                WHERE booker_id = ? AND item_id = ? AND end_at < ? AND status <> ?
              )`
	var exists bool
	err := db.QueryRowContext(ctx, query, bookerID, itemID, now.UnixMilli(), models.StatusRejected).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return exists, nil
}

func (db *DB) bookingsOfItem(itemID int64) *goqu.SelectDataset {
	return db.qb.From("bookings").Prepared(true).
		Select("id", "start_at", "end_at", "item_id", "booker_id", "status", "version").
		Where(goqu.Ex{"item_id": itemID})
}

// firstBooking returns nil without error when nothing matches.
func (db *DB) firstBooking(ctx context.Context, ds *goqu.SelectDataset) (*models.Booking, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build booking query: %w", err)
	}

	booking, err := scanBooking(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var start, end int64
	if err := row.Scan(&b.ID, &start, &end, &b.ItemID, &b.BookerID, &b.Status, &b.Version); err != nil {
		return nil, err
	}
	b.Start = models.DateTimeFromMillis(start)
	b.End = models.DateTimeFromMillis(end)
	return b, nil
}
