package domain

import (
	"errors"
	"time"
)

var ErrTeamExists = errors.New("team already exists")

// TeamMember is a user's seat on a team.
type TeamMember struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	University string `json:"university"`
	Role       string `json:"role"`
}

// Team groups members under a named research area.
type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Members     []TeamMember `json:"members"`
	CreatedAt   time.Time    `json:"created_at"`
}
