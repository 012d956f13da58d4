package models

type Comment struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	ItemID   int64    `json:"itemId"`
	AuthorID int64    `json:"authorId"`
	Created  DateTime `json:"created"`
}

type CommentView struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	AuthorName string   `json:"authorName"`
	Created    DateTime `json:"created"`
}

type CommentCreate struct {
	Text string `json:"text" validate:"notblank"`
}
