package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const (
	itemsCachePrefix = "items:"
	itemsCacheTTL    = models.ItemsCacheTTL * time.Second
)

// ItemService manages items, the search listing and comment creation,
// including the rented-before eligibility check.
type ItemService struct {
	repo     domain.Repository
	clock    domain.Clock
	cache    domain.CacheRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(repo domain.Repository, clock domain.Clock, cache domain.CacheRepository,
	eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ItemService{
		repo:     repo,
		clock:    clock,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", ownerID)
		}
		return nil, err
	}
	if item.RequestID != 0 {
		if _, err := s.repo.GetRequest(ctx, item.RequestID); err != nil {
			if errors.Is(err, database.ErrNoRows) {
				return nil, notFoundf("request %d", item.RequestID)
			}
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventItemCreated, events.ItemEventPayload{
			ItemID: item.ID, OwnerID: ownerID, Name: item.Name,
		})
	}
	return item, nil
}

// GetByID returns the item with its comments. The owner additionally sees
// the adjacent bookings.
func (s *ItemService) GetByID(ctx context.Context, id, viewerID int64) (*models.ItemDetails, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("item %d", id)
		}
		return nil, err
	}

	details := &models.ItemDetails{Item: *item}
	details.Comments, err = s.repo.GetCommentsByItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if details.Comments == nil {
		details.Comments = []*models.Comment{}
	}

	if IsOwner(viewerID, item) {
		if err := s.attachBookings(ctx, details); err != nil {
			return nil, err
		}
	}
	return details, nil
}

func (s *ItemService) GetAllByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error) {
	cacheKey := fmt.Sprintf("%sowner:%d:%d:%d", itemsCachePrefix, ownerID, from, size)
	var cached []*models.ItemDetails
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d := &models.ItemDetails{Item: *item}
		d.Comments, err = s.repo.GetCommentsByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if d.Comments == nil {
			d.Comments = []*models.Comment{}
		}
		if err := s.attachBookings(ctx, d); err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	s.cacheSet(ctx, cacheKey, details)
	return details, nil
}

// Update applies a partial update; only the owner may change an item, and
// a non-owner cannot tell the item exists.
func (s *ItemService) Update(ctx context.Context, id, ownerID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("item %d", id)
		}
		return nil, err
	}
	if !IsOwner(ownerID, item) {
		return nil, notFoundf("item %d for user %d", id, ownerID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)
	return item, nil
}

// Delete removes an item. Like Update, it is owner-only and hides the
// item's existence from everyone else.
func (s *ItemService) Delete(ctx context.Context, id, ownerID int64) error {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return notFoundf("item %d", id)
		}
		return err
	}
	if !IsOwner(ownerID, item) {
		return notFoundf("item %d for user %d", id, ownerID)
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// Search matches available items by name or description. A blank query
// returns an empty result without touching the store.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}

	cacheKey := fmt.Sprintf("%ssearch:%s:%d:%d", itemsCachePrefix, strings.ToLower(text), from, size)
	var cached []*models.Item
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	items, err := s.repo.SearchItems(ctx, text, from, size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}

	s.cacheSet(ctx, cacheKey, items)
	return items, nil
}

// CreateComment persists a comment when the author has an APPROVED
// booking on the item that ended before now.
func (s *ItemService) CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	author, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", authorID)
		}
		return nil, err
	}
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("item %d", itemID)
		}
		return nil, err
	}

	now := s.clock.Now()
	rented, err := s.repo.HasFinishedApprovedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !rented {
		return nil, badRequestf("item was not rented, or rental period has not ended")
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		CreatedAt:  now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	metrics.IncCommentCreated()
	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventCommentCreated, events.CommentEventPayload{
			CommentID: comment.ID, ItemID: itemID, AuthorID: authorID,
		})
	}
	return comment, nil
}

func (s *ItemService) attachBookings(ctx context.Context, details *models.ItemDetails) error {
	now := s.clock.Now()
	last, err := s.repo.GetLastBooking(ctx, details.ID, now)
	if err != nil {
		return err
	}
	next, err := s.repo.GetNextBooking(ctx, details.ID, now)
	if err != nil {
		return err
	}
	details.LastBooking = last
	details.NextBooking = next
	return nil
}

func (s *ItemService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache get error")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache decode error")
		return false
	}
	return true
}

func (s *ItemService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, itemsCacheTTL); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache set error")
	}
}

func (s *ItemService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, itemsCachePrefix+"*"); err != nil {
		s.logger.Debug().Err(err).Msg("cache invalidate error")
	}
}
