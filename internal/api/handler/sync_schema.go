package handler

import "github.com/adminflow/adminflow-api/internal/core/domain"

type syncAllResponse struct {
	Results []domain.ReconciliationResult `json:"results"`
	Errors  []string                      `json:"errors,omitempty"`
}

type syncRunsResponse struct {
	Runs []*domain.SyncRun `json:"runs"`
}

type directoriesResponse struct {
	Directories []string `json:"directories"`
}
