package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	clock  domain.Clock
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, clock domain.Clock, logger *zerolog.Logger) *RequestService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RequestService{repo: repo, clock: clock, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", userID)
		}
		return nil, err
	}
	if description == "" {
		return nil, badRequestf("description is required")
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: userID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// GetAllByUser lists the user's own requests, oldest first, each with the
// items offered against it.
func (s *RequestService) GetAllByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", userID)
		}
		return nil, err
	}

	requests, err := s.repo.GetRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// GetAll lists other users' requests, paginated.
func (s *RequestService) GetAll(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", userID)
		}
		return nil, err
	}

	requests, err := s.repo.GetRequestsFromOthers(ctx, userID, from, size)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, requestID, userID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", userID)
		}
		return nil, err
	}

	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("request %d", requestID)
		}
		return nil, err
	}

	attached, err := s.attachItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return attached[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequest, error) {
	for _, r := range requests {
		items, err := s.repo.GetItemsByRequest(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*models.Item{}
		}
		r.Items = items
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	return requests, nil
}
