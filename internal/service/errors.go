package service

import (
	"errors"
	"fmt"

	"shareit/internal/apperrors"
	"shareit/internal/database"
)

// notFoundOr maps a repository miss to a NotFound error and wraps anything else.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return fmt.Errorf("repository: %w", err)
}
