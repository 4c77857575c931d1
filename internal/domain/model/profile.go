package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the capacity in which a principal acts on an order or dispute.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Profile is an authenticated principal record.
type Profile struct {
	ID           uuid.UUID
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Provider is the secondary provider record. Providers are referenced on orders
// by this id, not by their underlying profile id.
type Provider struct {
	ID          uuid.UUID
	ProfileID   uuid.UUID
	DisplayName string
	CreatedAt   time.Time
}
