package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

type ItemRequestService struct {
	repo      domain.Repository
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewItemRequestService(repo domain.Repository, v *validation.Validator, logger *zerolog.Logger) *ItemRequestService {
	return &ItemRequestService{repo: repo, validator: v, logger: logger, now: time.Now}
}

func (s *ItemRequestService) Create(ctx context.Context, requestorID int64, dto models.ItemRequestCreate) (*models.ItemRequest, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.repo, requestorID); err != nil {
		return nil, err
	}

	req := &models.ItemRequest{
		Description: strings.TrimSpace(dto.Description),
		RequestorID: requestorID,
		Created:     models.NewDateTime(s.now()),
	}
	if err := s.repo.CreateItemRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create item request: %w", err)
	}

	s.logger.Info().Int64("request_id", req.ID).Int64("requestor_id", requestorID).Msg("item request created")
	return req, nil
}

// ListOwn returns the caller's requests, newest first, with the items offered for each.
func (s *ItemRequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequestView, error) {
	if err := requireUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	reqs, err := s.repo.GetItemRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests of user %d: %w", userID, err)
	}
	return s.withItems(ctx, reqs)
}

// ListOthers pages through requests made by everyone except the caller.
func (s *ItemRequestService) ListOthers(ctx context.Context, userID int64, page *models.Page) ([]*models.ItemRequestView, error) {
	if err := requireUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	reqs, err := s.repo.GetItemRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return s.withItems(ctx, reqs)
}

func (s *ItemRequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestView, error) {
	if err := requireUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetItemRequest(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "item request %d not found", requestID)
	}

	views, err := s.withItems(ctx, []*models.ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ItemRequestService) withItems(ctx context.Context, reqs []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load items for requests: %w", err)
	}

	byRequest := make(map[int64][]models.Item, len(reqs))
	for _, item := range items {
		if item.RequestID != nil {
			byRequest[*item.RequestID] = append(byRequest[*item.RequestID], *item)
		}
	}

	views := make([]*models.ItemRequestView, 0, len(reqs))
	for _, r := range reqs {
		answers := byRequest[r.ID]
		if answers == nil {
			answers = []models.Item{}
		}
		views = append(views, &models.ItemRequestView{
			ID:          r.ID,
			Description: r.Description,
			Created:     r.Created,
			Items:       answers,
		})
	}
	return views, nil
}
