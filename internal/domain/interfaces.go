package domain

import (
	"context"
	"io"
	"time"

	"shareit/internal/models"
)

// Repository is the persistence surface the services depend on.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)

	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, page *models.Page) ([]*models.BookingView, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, page *models.Page) ([]*models.BookingView, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)

	CreateItemRequest(ctx context.Context, req *models.ItemRequest) error
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetItemRequestsExcept(ctx context.Context, userID int64, page *models.Page) ([]*models.ItemRequest, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

// RateLimitRepository counts calls per caller inside a fixed window.
type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type UserService interface {
	Create(ctx context.Context, dto models.UserCreate) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, dto models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, dto models.ItemCreate) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, dto models.ItemUpdate) (*models.Item, error)
	Get(ctx context.Context, itemID int64, viewerID *int64) (*models.ItemDetails, error)
	ListByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.ItemDetails, error)
	Search(ctx context.Context, text string, page *models.Page) ([]*models.Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, dto models.CommentCreate) (*models.CommentView, error)
}

type BookingService interface {
	Create(ctx context.Context, bookerID int64, dto models.BookingCreate) (*models.BookingView, error)
	Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.BookingView, error)
	Get(ctx context.Context, userID, bookingID int64) (*models.BookingView, error)
	ListForBooker(ctx context.Context, userID int64, state models.State, page *models.Page) ([]*models.BookingView, error)
	ListForOwner(ctx context.Context, userID int64, state models.State, page *models.Page) ([]*models.BookingView, error)
	ExportForOwner(ctx context.Context, userID int64, state models.State, w io.Writer) error
}

type ItemRequestService interface {
	Create(ctx context.Context, requestorID int64, dto models.ItemRequestCreate) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequestView, error)
	ListOthers(ctx context.Context, userID int64, page *models.Page) ([]*models.ItemRequestView, error)
	Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestView, error)
}
