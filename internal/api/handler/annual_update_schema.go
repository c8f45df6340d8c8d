package handler

import "github.com/adminflow/adminflow-api/internal/core/domain"

type annualUpdateStartResponse struct {
	Message       string                      `json:"message"`
	UpdateRequest *domain.AnnualUpdateRequest `json:"update_request"`
}

type annualUpdateStatusResponse struct {
	UpdateRequests []*domain.AnnualUpdateRequest `json:"update_requests"`
	Stats          domain.AnnualUpdateStats      `json:"stats"`
}

type confirmUpdateRequest struct {
	Token string `json:"token" validate:"required"`
}

type confirmUpdateResponse struct {
	Message        string `json:"message"`
	LastInfoUpdate string `json:"last_info_update"`
}
