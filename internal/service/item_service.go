package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/apperrors"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo      domain.Repository
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewItemService(repo domain.Repository, v *validation.Validator, logger *zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, validator: v, logger: logger, now: time.Now}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, dto models.ItemCreate) (*models.Item, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	if dto.RequestID != nil {
		if _, err := s.repo.GetItemRequest(ctx, *dto.RequestID); err != nil {
			return nil, notFoundOr(err, "item request %d not found", *dto.RequestID)
		}
	}

	item := &models.Item{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(dto.Name),
		Description: strings.TrimSpace(dto.Description),
		Available:   *dto.Available,
		RequestID:   dto.RequestID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// Update changes only the fields present in dto. Items of other owners look missing.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, dto models.ItemUpdate) (*models.Item, error) {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(dto.Name); name != "" {
		item.Name = name
	}
	if description := strings.TrimSpace(dto.Description); description != "" {
		item.Description = description
	}
	if dto.Available != nil {
		item.Available = *dto.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, notFoundOr(err, "item %d not found", itemID)
	}

	s.logger.Info().Int64("item_id", itemID).Msg("item updated")
	return item, nil
}

// Get returns the item with its comments. Booking neighbours are shown to the owner only.
func (s *ItemService) Get(ctx context.Context, itemID int64, viewerID *int64) (*models.ItemDetails, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, "item %d not found", itemID)
	}

	details, err := s.enrich(ctx, []*models.Item{item}, viewerID != nil && *viewerID == item.OwnerID)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.ItemDetails, error) {
	if err := requireUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("list items of owner %d: %w", ownerID, err)
	}
	return s.enrich(ctx, items, true)
}

// Search returns nothing for blank text instead of matching every item.
func (s *ItemService) Search(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, dto models.CommentCreate) (*models.CommentView, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", authorID)
	}
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, notFoundOr(err, "item %d not found", itemID)
	}

	now := s.now()
	rented, err := s.repo.HasCompletedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, fmt.Errorf("check bookings: %w", err)
	}
	if !rented {
		return nil, apperrors.Validation("item was not rented by this user")
	}

	comment := &models.Comment{
		Text:     strings.TrimSpace(dto.Text),
		ItemID:   itemID,
		AuthorID: authorID,
		Created:  models.NewDateTime(now),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info().Int64("item_id", itemID).Int64("author_id", authorID).Msg("comment added")
	return &models.CommentView{ID: comment.ID, Text: comment.Text, AuthorName: author.Name, Created: comment.Created}, nil
}

func (s *ItemService) ownedItem(ctx context.Context, ownerID, itemID int64) (*models.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, "item %d not found", itemID)
	}
	if item.OwnerID != ownerID {
		return nil, apperrors.NotFound("item %d not found for owner %d", itemID, ownerID)
	}
	return item, nil
}

func (s *ItemService) enrich(ctx context.Context, items []*models.Item, withBookings bool) ([]*models.ItemDetails, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	comments, err := s.commentViews(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d := &models.ItemDetails{Item: *item, Comments: comments[item.ID]}
		if d.Comments == nil {
			d.Comments = []models.CommentView{}
		}
		if withBookings {
			if d.LastBooking, err = s.repo.GetLastBooking(ctx, item.ID, now); err != nil {
				return nil, fmt.Errorf("last booking of item %d: %w", item.ID, err)
			}
			if d.NextBooking, err = s.repo.GetNextBooking(ctx, item.ID, now); err != nil {
				return nil, fmt.Errorf("next booking of item %d: %w", item.ID, err)
			}
		}
		details = append(details, d)
	}
	return details, nil
}

// commentViews groups comments by item and resolves author names.
func (s *ItemService) commentViews(ctx context.Context, itemIDs []int64) (map[int64][]models.CommentView, error) {
	comments, err := s.repo.GetCommentsByItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	authorIDs := make([]int64, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.repo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}

	byItem := make(map[int64][]models.CommentView, len(itemIDs))
	for _, c := range comments {
		view := models.CommentView{ID: c.ID, Text: c.Text, Created: c.Created}
		if author, ok := authors[c.AuthorID]; ok {
			view.AuthorName = author.Name
		}
		byItem[c.ItemID] = append(byItem[c.ItemID], view)
	}
	return byItem, nil
}
