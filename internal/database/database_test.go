package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func createItem(t *testing.T, db *DB, ownerID int64, name, description string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{OwnerID: ownerID, Name: name, Description: description, Available: available}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func createBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    models.NewDateTime(start),
		End:      models.NewDateTime(end),
		Status:   status,
	}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestNewDB_ReopenFile(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "shareit.db")

	db, err := NewDB(path, &logger)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	u := createUser(t, db, "alice")
	require.NoError(t, db.Close())

	db, err = NewDB(path, &logger)
	require.NoError(t, err, "schema migration must be idempotent")
	defer db.Close()

	got, err := db.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := setupTestDB(t)
	err := db.CreateItem(context.Background(), &models.Item{OwnerID: 999, Name: "x", Description: "y"})
	assert.Error(t, err)
}

func TestClosedDatabaseErrors(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := db.GetUserByID(ctx, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = db.GetBookingsByBooker(ctx, 1, models.StateAll, time.Now(), nil)
	assert.Error(t, err)

	_, err = db.HasCompletedBooking(ctx, 1, 1, time.Now())
	assert.Error(t, err)

	_, err = db.GetItemRequestsExcept(ctx, 1, nil)
	assert.Error(t, err)
}

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(stubResult{rows: 1}, ErrNotFound))
	assert.ErrorIs(t, requireAffected(stubResult{rows: 0}, ErrNotFound), ErrNotFound)
	assert.ErrorIs(t, requireAffected(stubResult{rows: 0}, ErrConcurrentModification), ErrConcurrentModification)

	driverErr := errors.New("rows affected unsupported")
	err := requireAffected(stubResult{err: driverErr}, ErrNotFound)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUnicodeLowerRegistered(t *testing.T) {
	db := setupTestDB(t)
	var lowered string
	require.NoError(t, db.QueryRow(`SELECT unicode_lower('ДРЕЛЬ Ёж')`).Scan(&lowered))
	assert.Equal(t, "дрель ёж", lowered)
}
