package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

type teamService struct {
	repo ports.TeamRepository
}

func NewTeamService(repo ports.TeamRepository) ports.TeamService {
	return &teamService{repo: repo}
}

func (s *teamService) List(ctx context.Context) ([]*domain.Team, error) {
	return s.repo.List(ctx)
}

func (s *teamService) Create(ctx context.Context, team domain.Team) (*domain.Team, error) {
	team.ID = ""
	team.Name = strings.TrimSpace(team.Name)
	team.Description = strings.TrimSpace(team.Description)
	team.CreatedAt = time.Now().UTC()
	if team.Members == nil {
		team.Members = []domain.TeamMember{}
	}

	created, err := s.repo.Create(ctx, &team)
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	return created, nil
}
