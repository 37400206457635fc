package models

import "time"

// RecordingInfo is the auxiliary per-link counter row (view counts for a
// recording). Rows are purged unconditionally whenever their link's session is
// put through the deletion engine, even if the remote delete failed.
type RecordingInfo struct {
	ID          int64  `json:"id"`
	LinkID      int64  `json:"link_id"`
	RecordingID string `json:"recording_id"`
	Views       int    `json:"views"`
}

// Event types published on the activity event channel.
const (
	EventRecordingDeleted = "recording_deleted"
	EventLinksApplied     = "links_applied"
)

// ActivityEvent is the payload published to redis and relayed to websocket
// subscribers of the owning course.
type ActivityEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	CourseID      int64     `json:"course_id"`
	ActivityID    int64     `json:"activity_id"`
	RecordingID   string    `json:"recording_id,omitempty"`
	RecordingName string    `json:"recording_name,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
