package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/apperrors"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo      domain.Repository
	validator *validation.Validator
	logger    *zerolog.Logger
}

func NewUserService(repo domain.Repository, v *validation.Validator, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, validator: v, logger: logger}
}

func (s *UserService) Create(ctx context.Context, dto models.UserCreate) (*models.User, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	user := &models.User{Name: strings.TrimSpace(dto.Name), Email: strings.TrimSpace(dto.Email)}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email %s is already registered", user.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// Update overwrites only the fields that are non-blank in dto.
func (s *UserService) Update(ctx context.Context, id int64, dto models.UserUpdate) (*models.User, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(dto.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(dto.Email); email != "" {
		user.Email = email
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateEmail):
			return nil, apperrors.Conflict("email %s is already registered", user.Email)
		default:
			return nil, notFoundOr(err, "user %d not found", id)
		}
	}

	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return notFoundOr(err, "user %d not found", id)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// requireUser fails with NotFound unless the user exists.
func requireUser(ctx context.Context, repo domain.Repository, id int64) error {
	exists, err := repo.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user %d: %w", id, err)
	}
	if !exists {
		return apperrors.NotFound("user %d not found", id)
	}
	return nil
}
