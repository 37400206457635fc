package models

// SessionLink maps an activity (and optionally one of its groups) to a session
// on the remote conferencing service. Exactly one link exists per
// (activity, group) pair; GroupID nil means the whole-activity session.
type SessionLink struct {
	ID                int64  `json:"id"`
	ActivityID        int64  `json:"activity_id"`
	GroupID           *int64 `json:"group_id,omitempty"`
	SessionID         string `json:"session_id"`
	DeletionAttempted int    `json:"deletion_attempted"`
}

// Active reports whether the link is usable. A link marked for deletion
// (one or more failed remote deletes) is never active again; the only way
// out is a successful delete.
func (l *SessionLink) Active() bool {
	return l.DeletionAttempted == 0
}

// LinkCandidate carries the fields for a link being ensured. Presence, not
// just value, drives the ensure branching: a candidate without a group id set
// is a fresh whole-activity record and skips the existing-record lookup, while
// a candidate with GroupIDSet (even to nil) is matched against stored rows.
type LinkCandidate struct {
	ActivityID int64
	GroupID    *int64
	GroupIDSet bool
	SessionID  string
}

// WithGroup returns a candidate for the given group. A nil groupID still
// marks the group field as set.
func (c LinkCandidate) WithGroup(groupID *int64) LinkCandidate {
	c.GroupID = groupID
	c.GroupIDSet = true
	return c
}
