// internal/membership/domain.go
package membership

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the membership level a user belongs to.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierStudent Tier = "student"
	TierPremium Tier = "premium"
)

var ErrUnknownTier = errors.New("unknown membership tier")

// ParseTier accepts a tier name in any letter case.
func ParseTier(name string) (Tier, error) {
	switch tier := Tier(strings.ToLower(strings.TrimSpace(name))); tier {
	case TierBasic, TierStudent, TierPremium:
		return tier, nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrUnknownTier)
	}
}

// User represents a library member. Users are immutable once created.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier Tier   `json:"membership_tier"`
}

// NewUser creates a basic-tier user.
func NewUser(name, id string) *User {
	return NewUserWithTier(name, id, TierBasic)
}

func NewUserWithTier(name, id string, tier Tier) *User {
	return &User{ID: id, Name: name, Tier: tier}
}
