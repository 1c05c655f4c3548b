package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Principal is the authenticated caller carried by a token.
type Principal struct {
	UserID int64
	Role   model.Role
}

// IsStaff reports whether the caller acts for the support team.
func (p Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

type Strategy interface {
	IssueToken(p Principal) (string, error)
	ParseToken(token string) (Principal, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
