package models

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64         `json:"id"`
	Start    DateTime      `json:"start"`
	End      DateTime      `json:"end"`
	ItemID   int64         `json:"itemId"`
	BookerID int64         `json:"bookerId"`
	Status   BookingStatus `json:"status"`
	Version  int64         `json:"-"`
}

// BookingView is a booking with its item and booker resolved.
type BookingView struct {
	ID     int64         `json:"id"`
	Start  DateTime      `json:"start"`
	End    DateTime      `json:"end"`
	Status BookingStatus `json:"status"`
	Item   Item          `json:"item"`
	Booker User          `json:"booker"`
}

type BookingCreate struct {
	ItemID int64    `json:"itemId" validate:"required,gt=0"`
	Start  DateTime `json:"start" validate:"required"`
	End    DateTime `json:"end" validate:"required"`
}
