package models

import "time"

// Group modes, matching the host LMS semantics.
const (
	GroupModeNone     = 0
	GroupModeSeparate = 1
	GroupModeVisible  = 2
)

// Activity is a course item owning one or more remote sessions. The record is
// owned by the host LMS; this service reads it and caches the guest URL back.
type Activity struct {
	ID                 int64     `json:"id"`
	CourseID           int64     `json:"course_id"`
	Name               string    `json:"name"`
	TimeStart          int64     `json:"time_start"`
	Duration           int64     `json:"duration"`
	GroupingID         int64     `json:"grouping_id"`
	GroupMode          int       `json:"group_mode"`
	SessionID          *string   `json:"session_id,omitempty"`
	GuestAccessEnabled bool      `json:"guest_access_enabled"`
	GuestURL           *string   `json:"guest_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// GroupsEnabled reports whether per-group sessions should be provisioned.
func (a *Activity) GroupsEnabled() bool {
	return a.GroupMode > GroupModeNone
}

type Course struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	ShortName string `json:"short_name"`
}

type Group struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Name     string `json:"name"`
}
