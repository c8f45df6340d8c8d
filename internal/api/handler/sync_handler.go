package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

// SyncHandler triggers and audits directory reconciliation passes.
type SyncHandler struct {
	service ports.SyncService
}

func NewSyncHandler(service ports.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Directories handles GET /v1/admin/sync.
//
// @Summary      List synchronised directories
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  directoriesResponse
// @Router       /v1/admin/sync [get]
func (h *SyncHandler) Directories(c echo.Context) error {
	return c.JSON(http.StatusOK, directoriesResponse{Directories: h.service.Directories()})
}

// Sync handles POST /v1/admin/sync/:directory.
//
// @Summary      Reconcile one directory
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Param        directory  path      string  true  "github or slack"
// @Success      200        {object}  domain.ReconciliationResult
// @Failure      404        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Failure      502        {object}  errorResponse
// @Router       /v1/admin/sync/{directory} [post]
func (h *SyncHandler) Sync(c echo.Context) error {
	result, err := h.service.Sync(c.Request().Context(), c.Param("directory"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// SyncAll handles POST /v1/admin/sync.
//
// @Summary      Reconcile every directory
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  syncAllResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/admin/sync [post]
func (h *SyncHandler) SyncAll(c echo.Context) error {
	results, err := h.service.SyncAll(c.Request().Context())
	if err != nil && len(results) == 0 {
		return err
	}

	resp := syncAllResponse{Results: results}
	if err != nil {
		resp.Errors = unwrapJoined(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Runs handles GET /v1/admin/sync/runs.
//
// @Summary      Recent reconciliation passes
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Param        directory  query     string  false  "Filter by directory"
// @Param        limit      query     int     false  "Maximum runs (default 20, max 100)"
// @Success      200        {object}  syncRunsResponse
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/admin/sync/runs [get]
func (h *SyncHandler) Runs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	runs, err := h.service.Runs(c.Request().Context(), c.QueryParam("directory"), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*domain.SyncRun{}
	}
	return c.JSON(http.StatusOK, syncRunsResponse{Runs: runs})
}

func unwrapJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		msgs := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
