package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Create registers a user. When the insert fails, the non-unique email
// lookup decides whether the cause was a taken email (conflict) or bad
// input.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.repo.CreateUser(ctx, user); err != nil {
		existing, lookupErr := s.repo.GetUsersByEmail(ctx, user.Email)
		if lookupErr == nil && len(existing) > 0 {
			return nil, conflictf("email %s is taken", user.Email)
		}
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflictf("email %s is taken", user.Email)
		}
		return nil, badRequestf("invalid user data")
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// Update applies a partial update. Each changed field is re-checked for
// uniqueness against all other users.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", id)
		}
		return nil, err
	}

	if patch.Email != nil && *patch.Email != "" {
		taken, err := s.repo.OtherUserHasEmail(ctx, id, *patch.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, conflictf("email %s is taken", *patch.Email)
		}
		user.Email = *patch.Email
	}
	if patch.Name != nil && *patch.Name != "" {
		taken, err := s.repo.OtherUserHasName(ctx, id, *patch.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, conflictf("name %s is taken", *patch.Name)
		}
		user.Name = *patch.Name
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflictf("email %s is taken", user.Email)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
