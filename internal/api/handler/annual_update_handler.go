package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

type AnnualUpdateHandler struct {
	service ports.AnnualUpdateService
}

func NewAnnualUpdateHandler(service ports.AnnualUpdateService) *AnnualUpdateHandler {
	return &AnnualUpdateHandler{service: service}
}

// Start handles POST /v1/admin/annual-update.
//
// @Summary      Launch this year's information update campaign
// @Tags         annual-update
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  annualUpdateStartResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/annual-update [post]
func (h *AnnualUpdateHandler) Start(c echo.Context) error {
	start, err := h.service.Start(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, annualUpdateStartResponse{
		Message:       fmt.Sprintf("Annual update request created and emails sent to %d users", start.Recipients),
		UpdateRequest: start.Request,
	})
}

// Status handles GET /v1/admin/annual-update.
//
// @Summary      This year's campaign and completion stats
// @Tags         annual-update
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  annualUpdateStatusResponse
// @Router       /v1/admin/annual-update [get]
func (h *AnnualUpdateHandler) Status(c echo.Context) error {
	status, err := h.service.Status(c.Request().Context())
	if err != nil {
		return err
	}
	requests := status.Requests
	if requests == nil {
		requests = []*domain.AnnualUpdateRequest{}
	}
	return c.JSON(http.StatusOK, annualUpdateStatusResponse{UpdateRequests: requests, Stats: status.Stats})
}

// Confirm handles POST /v1/annual-update/confirm.
//
// @Summary      Confirm a member's information via their emailed link
// @Tags         annual-update
// @Accept       json
// @Produce      json
// @Param        body  body      confirmUpdateRequest  true  "Token from the email link"
// @Success      200   {object}  confirmUpdateResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/annual-update/confirm [post]
func (h *AnnualUpdateHandler) Confirm(c echo.Context) error {
	var req confirmUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Confirm(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}

	resp := confirmUpdateResponse{Message: "Information confirmed"}
	if user.LastInfoUpdate != nil {
		resp.LastInfoUpdate = user.LastInfoUpdate.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}
