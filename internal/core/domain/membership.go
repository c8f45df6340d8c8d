package domain

import (
	"errors"
	"time"
)

var (
	ErrDirectoryUnavailable   = errors.New("directory unreachable")
	ErrDirectoryNotConfigured = errors.New("directory not configured")
	ErrUnknownDirectory       = errors.New("unknown directory")
	ErrSyncInProgress         = errors.New("sync already in progress")
)

// LocalUser is the per-pass snapshot of a user as seen by one directory.
// An empty ExternalID means the user has no identity in that directory.
type LocalUser struct {
	ExternalID  string
	IsActive    bool
	DisplayName string
}

// DirectoryMember is one entry of an external directory's current roster.
type DirectoryMember struct {
	Identity   string            `json:"identity"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ReconciliationResult reports the mutations applied by one sync pass.
type ReconciliationResult struct {
	Directory   string   `json:"directory"`
	Added       []string `json:"added"`
	Removed     []string `json:"removed"`
	FetchFailed bool     `json:"fetch_failed"`
}

// SyncRun is the audit record of a reconciliation pass.
type SyncRun struct {
	ID          string    `json:"id"`
	Directory   string    `json:"directory"`
	Added       []string  `json:"added"`
	Removed     []string  `json:"removed"`
	FetchFailed bool      `json:"fetch_failed"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
