package domain

import (
	"errors"
	"time"
)

var (
	ErrAnnualUpdateExists   = errors.New("annual update request for this year already exists")
	ErrAnnualUpdateNotFound = errors.New("annual update request not found")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// AnnualUpdateRequest marks the yearly campaign asking members to review
// their information.
type AnnualUpdateRequest struct {
	ID     string    `json:"id"`
	Year   int       `json:"year"`
	SentAt time.Time `json:"sent_at"`
}

// AnnualUpdateStats summarises how many active users answered this year.
type AnnualUpdateStats struct {
	TotalActiveUsers int64 `json:"total_active_users"`
	UsersWithUpdates int64 `json:"users_with_updates"`
	PendingUpdates   int64 `json:"pending_updates"`
	CompletionRate   int   `json:"completion_rate"`
}

// NewAnnualUpdateStats derives pending count and rounded completion percent.
func NewAnnualUpdateStats(total, updated int64) AnnualUpdateStats {
	stats := AnnualUpdateStats{
		TotalActiveUsers: total,
		UsersWithUpdates: updated,
		PendingUpdates:   total - updated,
	}
	if total > 0 {
		stats.CompletionRate = int((updated*100 + total/2) / total)
	}
	return stats
}
