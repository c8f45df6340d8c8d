package handler

import "github.com/adminflow/adminflow-api/internal/core/domain"

type teamMemberRequest struct {
	Name       string `json:"name"       validate:"required"`
	Username   string `json:"username"   validate:"required"`
	University string `json:"university"`
	Role       string `json:"role"`
}

type createTeamRequest struct {
	Name        string              `json:"name"        validate:"required,min=2"`
	Description string              `json:"description"`
	Members     []teamMemberRequest `json:"members"     validate:"dive"`
}

type teamListResponse struct {
	Teams []*domain.Team `json:"teams"`
}

func toTeam(req createTeamRequest) domain.Team {
	team := domain.Team{
		Name:        req.Name,
		Description: req.Description,
		Members:     make([]domain.TeamMember, 0, len(req.Members)),
	}
	for _, m := range req.Members {
		team.Members = append(team.Members, domain.TeamMember(m))
	}
	return team
}
