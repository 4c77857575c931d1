package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTStrategy implements auth token creation/verification with HS256 JWTs.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTStrategy{secret: []byte(secret), ttl: ttl}
}

// IssueToken generates a signed token carrying the profile id and role.
func (s *JWTStrategy) IssueToken(profileID uuid.UUID, role model.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: string(role),
	})
	return token.SignedString(s.secret)
}

// ParseToken validates the token and returns the encoded profile id and role.
func (s *JWTStrategy) ParseToken(token string) (uuid.UUID, model.Role, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	profileID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	role := model.Role(parsed.Role)
	switch role {
	case model.RoleClient, model.RoleProvider, model.RoleAdmin:
	default:
		return uuid.Nil, "", ErrInvalidToken
	}

	return profileID, role, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
