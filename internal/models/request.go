package models

type ItemRequest struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	RequestorID int64    `json:"requestorId"`
	Created     DateTime `json:"created"`
}

// ItemRequestView lists the items offered in answer to a request.
type ItemRequestView struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Created     DateTime `json:"created"`
	Items       []Item   `json:"items"`
}

type ItemRequestCreate struct {
	Description string `json:"description" validate:"notblank"`
}
