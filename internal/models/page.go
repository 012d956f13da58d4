package models

import "shareit/internal/apperrors"

const (
	DefaultPageFrom = 0
	DefaultPageSize = 100
)

// Page is a row window: skip From rows, return at most Size.
type Page struct {
	From int
	Size int
}

// NewPage returns nil when neither bound is given.
func NewPage(from, size *int) (*Page, error) {
	if from == nil && size == nil {
		return nil, nil
	}

	p := &Page{From: DefaultPageFrom, Size: DefaultPageSize}
	if from != nil {
		p.From = *from
	}
	if size != nil {
		p.Size = *size
	}

	if p.From < 0 || p.Size <= 0 {
		return nil, apperrors.Validation("invalid pagination: from=%d size=%d", p.From, p.Size)
	}
	return p, nil
}
