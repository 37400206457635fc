package services

import (
	"context"
	"errors"

	"aula-backend/internal/models"
)

// Contract violations. These indicate a programming error upstream and are
// surfaced immediately; they are never converted to boolean outcomes.
var (
	ErrActivityIDRequired       = errors.New("services: session link candidate requires an activity id")
	ErrUnconstrainedGroupFilter = errors.New("services: active-link query must constrain group")
)

// LinkStore is the persistence surface for session link rows. Implemented by
// repository.SessionLinkRepo; tests substitute an in-memory store.
type LinkStore interface {
	GetByCandidate(ctx context.Context, c models.LinkCandidate) (*models.SessionLink, error)
	GetByActivityAndGroup(ctx context.Context, activityID int64, groupID *int64) (*models.SessionLink, error)
	ListByActivity(ctx context.Context, activityID int64) ([]*models.SessionLink, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*models.SessionLink, error)
	ListPendingDeletion(ctx context.Context) ([]*models.SessionLink, error)
	ListActive(ctx context.Context, activityID int64, groupIDs []int64, includeNullGroup bool) ([]*models.SessionLink, error)
	Insert(ctx context.Context, l *models.SessionLink) error
	Update(ctx context.Context, l *models.SessionLink) error
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error
	DeleteByActivity(ctx context.Context, activityID int64) error
	DeleteByGroup(ctx context.Context, groupID int64) error
	DeletePendingDeletion(ctx context.Context) error
	IncrementDeletionAttempts(ctx context.Context, sessionIDs []string) error
}

// RecordingInfoStore is the persistence surface for the per-link recording
// counters.
type RecordingInfoStore interface {
	IncrementViews(ctx context.Context, linkID int64, recordingID string) error
	ViewCounts(ctx context.Context, linkIDs []int64) (map[string]int, error)
	DeleteByLinkIDs(ctx context.Context, linkIDs []int64) error
	DeleteByRecording(ctx context.Context, activityID int64, recordingID string) error
}

// ActivityDirectory reads host-platform activity and course records.
type ActivityDirectory interface {
	GetActivity(ctx context.Context, id int64) (*models.Activity, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	UpdateGuestURL(ctx context.Context, activityID int64, url string) error
}

// GroupDirectory reads host-platform group membership and capabilities.
type GroupDirectory interface {
	CourseGroups(ctx context.Context, courseID, groupingID int64) ([]*models.Group, error)
	UserGroups(ctx context.Context, courseID, userID int64) ([]*models.Group, error)
	HasAccessAllGroups(ctx context.Context, courseID, userID int64) (bool, error)
}

// EventBus publishes activity events and invalidates derived caches.
// Implemented by events.Publisher over redis.
type EventBus interface {
	Publish(ctx context.Context, event models.ActivityEvent) error
	InvalidateRecordingCounts(ctx context.Context, activityID int64) error
}
