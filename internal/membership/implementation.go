// internal/membership/implementation.go
package membership

import (
	"context"
	"fmt"
)

// service implements the Service interface.
type service struct {
	users map[string]*User
}

// NewService creates a new, empty member directory.
func NewService() Service {
	return &service{users: make(map[string]*User)}
}

// RegisterUser adds a member to the directory.
func (s *service) RegisterUser(_ context.Context, name, id string, tier Tier) (*User, error) {
	parsed, err := ParseTier(string(tier))
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", id, err)
	}
	if _, exists := s.users[id]; exists {
		return nil, fmt.Errorf("failed to register %s: %w", id, ErrDuplicateUser)
	}

	user := NewUserWithTier(name, id, parsed)
	s.users[id] = user
	return user, nil
}

// GetUser retrieves a member by id.
func (s *service) GetUser(_ context.Context, id string) (*User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return user, nil
}
