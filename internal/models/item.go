package models

type Item struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

// ItemDetails is an item enriched for display. Bookings are only filled for the owner.
type ItemDetails struct {
	Item
	LastBooking *Booking      `json:"lastBooking"`
	NextBooking *Booking      `json:"nextBooking"`
	Comments    []CommentView `json:"comments"`
}

type ItemCreate struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

// ItemUpdate carries only the fields to change.
type ItemUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}
