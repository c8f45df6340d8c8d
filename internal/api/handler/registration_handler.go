package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

// RegistrationHandler serves self-service sign-up and its admin review.
type RegistrationHandler struct {
	service ports.RegistrationService
}

func NewRegistrationHandler(service ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Register handles POST /v1/registrations.
//
// @Summary      Submit a registration request
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Applicant details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/registrations [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	reg, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:              req.Name,
		Email:             req.Email,
		University:        req.University,
		PreferredUsername: req.PreferredUsername,
		GitHubID:          req.GitHubID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "Registration submitted successfully", ID: reg.ID})
}

// List handles GET /v1/admin/registrations.
//
// @Summary      List registrations
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "PENDING, APPROVED or REJECTED"
// @Success      200     {object}  registrationListResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/admin/registrations [get]
func (h *RegistrationHandler) List(c echo.Context) error {
	status := domain.RegistrationStatus(strings.ToUpper(c.QueryParam("status")))

	regs, err := h.service.List(c.Request().Context(), status)
	if err != nil {
		return err
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return c.JSON(http.StatusOK, registrationListResponse{Registrations: regs})
}

// Review handles PATCH /v1/admin/registrations/:id.
//
// @Summary      Approve or reject a registration
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Registration id"
// @Param        body  body      reviewRequest  true  "Decision"
// @Success      200   {object}  reviewResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/registrations/{id} [patch]
func (h *RegistrationHandler) Review(c echo.Context) error {
	reviewerID, err := reviewerFrom(c)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Review(c.Request().Context(), ports.ReviewInput{
		ID:         c.Param("id"),
		Status:     domain.RegistrationStatus(req.Status),
		Comments:   req.Comments,
		ReviewerID: reviewerID,
	})
	if err != nil {
		return err
	}

	resp := reviewResponse{
		Message:       "Registration " + strings.ToLower(req.Status) + " successfully",
		Status:        req.Status,
		Registration:  res.Registration,
		GitHubInvited: res.GitHubInvited,
	}
	if res.User != nil {
		resp.UserID = res.User.ID
	}
	return c.JSON(http.StatusOK, resp)
}
