package handler

import "github.com/adminflow/adminflow-api/internal/core/domain"

type registerRequest struct {
	Name              string `json:"name"               validate:"required,min=2"`
	Email             string `json:"email"              validate:"required,email"`
	University        string `json:"university"         validate:"required,min=2"`
	PreferredUsername string `json:"preferred_username" validate:"required,min=3"`
	GitHubID          string `json:"github_id"`
}

type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type reviewRequest struct {
	Status   string `json:"status"   validate:"required,oneof=APPROVED REJECTED"`
	Comments string `json:"comments"`
}

type reviewResponse struct {
	Message       string               `json:"message"`
	Status        string               `json:"status"`
	Registration  *domain.Registration `json:"registration"`
	UserID        string               `json:"user_id,omitempty"`
	GitHubInvited bool                 `json:"github_invited"`
}

type registrationListResponse struct {
	Registrations []*domain.Registration `json:"registrations"`
}
