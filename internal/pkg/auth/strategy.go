package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// Strategy issues and verifies auth tokens. The profile role travels inside the
// signed token, so administrative privilege is a verified claim rather than a
// request header.
type Strategy interface {
	IssueToken(profileID uuid.UUID, role model.Role) (string, error)
	ParseToken(token string) (uuid.UUID, model.Role, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
