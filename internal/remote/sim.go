package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"aula-backend/internal/models"
)

// SimClient is an in-memory Client for fixtures and local development. It
// issues deterministic session ids and lets tests inject per-session delete
// failures without a live provider.
type SimClient struct {
	mu          sync.Mutex
	nextID      int
	sessions    map[string]simSession
	recordings  map[string][]Recording
	failDeletes map[string]bool
	failCreates map[int64]bool

	// Calls records every operation name in order, for assertions.
	Calls []string
}

type simSession struct {
	activityID int64
	groupID    *int64
}

func NewSimClient() *SimClient {
	return &SimClient{
		sessions:    make(map[string]simSession),
		recordings:  make(map[string][]Recording),
		failDeletes: make(map[string]bool),
		failCreates: make(map[int64]bool),
	}
}

// FailCreateForGroup makes CreateSession fail for one group until cleared.
func (c *SimClient) FailCreateForGroup(groupID int64, fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fail {
		c.failCreates[groupID] = true
	} else {
		delete(c.failCreates, groupID)
	}
}

// FailDelete makes future DeleteSession calls for sessionID fail until
// cleared.
func (c *SimClient) FailDelete(sessionID string, fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fail {
		c.failDeletes[sessionID] = true
	} else {
		delete(c.failDeletes, sessionID)
	}
}

// SeedRecording attaches a recording to a session.
func (c *SimClient) SeedRecording(sessionID string, rec Recording) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordings[sessionID] = append(c.recordings[sessionID], rec)
}

// HasSession reports whether a session still exists remotely.
func (c *SimClient) HasSession(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionID]
	return ok
}

func (c *SimClient) CreateSession(_ context.Context, activity *models.Activity, _ *models.Course, groupID *int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "CreateSession")

	if groupID != nil && c.failCreates[*groupID] {
		return "", fmt.Errorf("simulated create failure for group %d", *groupID)
	}

	c.nextID++
	id := fmt.Sprintf("sim-session-%d", c.nextID)
	c.sessions[id] = simSession{activityID: activity.ID, groupID: groupID}
	return id, nil
}

func (c *SimClient) UpdateSession(_ context.Context, _ *models.Activity, _ *models.Course, link *models.SessionLink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "UpdateSession")

	if _, ok := c.sessions[link.SessionID]; !ok {
		// Pre-seeded fixture ids are adopted on first update.
		c.sessions[link.SessionID] = simSession{activityID: link.ActivityID, groupID: link.GroupID}
	}
	return nil
}

func (c *SimClient) DeleteSession(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "DeleteSession")

	if c.failDeletes[sessionID] {
		return fmt.Errorf("simulated delete failure for session %s", sessionID)
	}
	delete(c.sessions, sessionID)
	delete(c.recordings, sessionID)
	return nil
}

func (c *SimClient) GuestURL(_ context.Context, sessionID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "GuestURL")

	if _, ok := c.sessions[sessionID]; !ok {
		return "", fmt.Errorf("unknown session %s", sessionID)
	}
	return "https://sim.invalid/guest/" + sessionID, nil
}

func (c *SimClient) ListRecordings(_ context.Context, sessionID string) ([]Recording, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "ListRecordings")

	recs := make([]Recording, len(c.recordings[sessionID]))
	copy(recs, c.recordings[sessionID])
	return recs, nil
}

func (c *SimClient) DeleteRecording(_ context.Context, recordingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "DeleteRecording")

	for sessionID, recs := range c.recordings {
		for i, rec := range recs {
			if rec.ID == recordingID {
				c.recordings[sessionID] = append(recs[:i], recs[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("unknown recording %s", recordingID)
}

func (c *SimClient) CheckConfiguration(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "CheckConfiguration")
	return nil
}

// NewSimSessionID returns an id in the sim client's namespace that is not
// tied to the issued-id sequence, for seeding fixture rows.
func NewSimSessionID() string {
	return "sim-seed-" + uuid.NewString()
}
