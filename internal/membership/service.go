// internal/membership/service.go
package membership

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user id already registered")
)

// Service defines the interface for the member directory.
type Service interface {
	RegisterUser(ctx context.Context, name, id string, tier Tier) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}
