package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// env wires every service to one in-memory database with a shared clock.
type env struct {
	db       *database.DB
	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *ItemRequestService
	bus      *events.EventBus
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	v := validation.New()
	bus := events.NewEventBus()
	e := &env{
		db:       db,
		users:    NewUserService(db, v, &logger),
		items:    NewItemService(db, v, &logger),
		bookings: NewBookingService(db, bus, v, &logger),
		requests: NewItemRequestService(db, v, &logger),
		bus:      bus,
		now:      time.Now(),
	}
	clock := func() time.Time { return e.now }
	e.items.now = clock
	e.bookings.now = clock
	e.requests.now = clock
	return e
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), models.UserCreate{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (e *env) item(t *testing.T, ownerID int64, name string) *models.Item {
	t.Helper()
	available := true
	it, err := e.items.Create(context.Background(), ownerID, models.ItemCreate{Name: name, Description: name + " for rent", Available: &available})
	require.NoError(t, err)
	return it
}

// booking books and decides at the current clock, then lets time pass by advancing the clock.
func (e *env) booking(t *testing.T, bookerID, ownerID, itemID int64, start, end time.Duration, approved *bool) *models.BookingView {
	t.Helper()
	ctx := context.Background()
	view, err := e.bookings.Create(ctx, bookerID, models.BookingCreate{
		ItemID: itemID,
		Start:  models.NewDateTime(e.now.Add(start)),
		End:    models.NewDateTime(e.now.Add(end)),
	})
	require.NoError(t, err)
	if approved != nil {
		view, err = e.bookings.Approve(ctx, ownerID, view.ID, *approved)
		require.NoError(t, err)
	}
	return view
}

func boolPtr(v bool) *bool { return &v }
