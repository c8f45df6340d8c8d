package domain

import (
	"errors"
	"time"
)

// RegistrationStatus is the review state of a registration request.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationReviewed = errors.New("registration already reviewed")
	ErrInvalidDecision      = errors.New("invalid registration decision")
)

// IsDecision reports whether s is a terminal review outcome.
func (s RegistrationStatus) IsDecision() bool {
	return s == RegistrationApproved || s == RegistrationRejected
}

// Registration is a self-service sign-up waiting for admin review.
type Registration struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	University        string             `json:"university"`
	PreferredUsername string             `json:"preferred_username"`
	GitHubID          string             `json:"github_id,omitempty"`
	Status            RegistrationStatus `json:"status"`
	Comments          string             `json:"comments,omitempty"`
	ReviewedBy        string             `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}
