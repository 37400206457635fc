package remote

import (
	"context"
	"time"

	"aula-backend/internal/models"
)

// Recording is one stored recording of a remote session.
type Recording struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// Client is the capability surface this service needs from the conferencing
// provider. Any returned error means the request failed; callers that manage
// link bookkeeping convert errors into partition outcomes rather than
// propagating them (the deletion engine owns retries).
type Client interface {
	// CreateSession provisions a remote session for an activity, optionally
	// scoped to a group, and returns the remote session id.
	CreateSession(ctx context.Context, activity *models.Activity, course *models.Course, groupID *int64) (string, error)

	// UpdateSession pushes the activity's current parameters (times,
	// duration) to an existing remote session.
	UpdateSession(ctx context.Context, activity *models.Activity, course *models.Course, link *models.SessionLink) error

	// DeleteSession removes a remote session.
	DeleteSession(ctx context.Context, sessionID string) error

	// GuestURL builds the guest join URL for a session.
	GuestURL(ctx context.Context, sessionID string) (string, error)

	// ListRecordings returns the recordings stored for a session.
	ListRecordings(ctx context.Context, sessionID string) ([]Recording, error)

	// DeleteRecording removes a stored recording.
	DeleteRecording(ctx context.Context, recordingID string) error

	// CheckConfiguration verifies the provider is reachable and configured
	// (returns the provider's advertised configuration check).
	CheckConfiguration(ctx context.Context) error
}
