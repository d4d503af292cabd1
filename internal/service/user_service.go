package service

import (
	"fmt"
	"log/slog"

	"github.com/condo-care/backend/internal/domain"
)

// UserService handles user administration
type UserService struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:  users,
		logger: logger,
	}
}

// List returns all user summaries (no password hashes)
func (s *UserService) List() ([]*domain.User, error) {
	return s.users.List()
}

// Get returns one user by id
func (s *UserService) Get(id int64) (*domain.User, error) {
	return s.users.GetByID(id)
}

// UpdateInput carries the mutable profile fields; empty fields are left
// unchanged.
type UpdateInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Update patches a user's profile
func (s *UserService) Update(id int64, in UpdateInput) (*domain.User, error) {
	if in.Role != "" && !domain.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, in.Role)
	}

	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Email != "" {
		user.Email = in.Email
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Role != "" {
		user.Role = in.Role
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.Int64("user_id", id))
	return user, nil
}

// Delete removes a user account
func (s *UserService) Delete(id int64) error {
	if err := s.users.Delete(id); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
