package errors

import "errors"

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyResolved     = errors.New("request already resolved")
	ErrRulesNotAccepted    = errors.New("mediation rules not accepted")
	ErrSessionNotActive    = errors.New("mediation session not active")
	ErrNotPresent          = errors.New("role not present in session")
)
