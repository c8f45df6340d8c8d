package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

type TeamHandler struct {
	service ports.TeamService
}

func NewTeamHandler(service ports.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

// List handles GET /v1/teams.
//
// @Summary      List teams and their members
// @Tags         teams
// @Produce      json
// @Success      200  {object}  teamListResponse
// @Router       /v1/teams [get]
func (h *TeamHandler) List(c echo.Context) error {
	teams, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if teams == nil {
		teams = []*domain.Team{}
	}
	return c.JSON(http.StatusOK, teamListResponse{Teams: teams})
}

// Create handles POST /v1/admin/teams.
//
// @Summary      Create a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTeamRequest  true  "Team"
// @Success      201   {object}  domain.Team
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/teams [post]
func (h *TeamHandler) Create(c echo.Context) error {
	var req createTeamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	team, err := h.service.Create(c.Request().Context(), toTeam(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, team)
}
