package models

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserCreate is the signup payload.
type UserCreate struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

// UserUpdate is a partial update; empty fields keep the stored value.
type UserUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}
