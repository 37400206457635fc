package services

import (
	"context"
	"fmt"
	"sync"

	"aula-backend/internal/models"
)

// In-memory stores standing in for the pgx repositories.

type fakeLinkStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.SessionLink
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{rows: make(map[int64]*models.SessionLink)}
}

func (f *fakeLinkStore) clone(l *models.SessionLink) *models.SessionLink {
	c := *l
	return &c
}

func (f *fakeLinkStore) GetByCandidate(_ context.Context, c models.LinkCandidate) (*models.SessionLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ActivityID != c.ActivityID || row.DeletionAttempted != 0 {
			continue
		}
		if c.GroupIDSet && !sameGroup(row.GroupID, c.GroupID) {
			continue
		}
		if c.SessionID != "" && row.SessionID != c.SessionID {
			continue
		}
		return f.clone(row), nil
	}
	return nil, nil
}

func (f *fakeLinkStore) GetByActivityAndGroup(_ context.Context, activityID int64, groupID *int64) (*models.SessionLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ActivityID == activityID && sameGroup(row.GroupID, groupID) {
			return f.clone(row), nil
		}
	}
	return nil, nil
}

func (f *fakeLinkStore) ListByActivity(_ context.Context, activityID int64) ([]*models.SessionLink, error) {
	return f.collect(func(row *models.SessionLink) bool { return row.ActivityID == activityID }), nil
}

func (f *fakeLinkStore) ListByGroup(_ context.Context, groupID int64) ([]*models.SessionLink, error) {
	return f.collect(func(row *models.SessionLink) bool {
		return row.GroupID != nil && *row.GroupID == groupID
	}), nil
}

func (f *fakeLinkStore) ListPendingDeletion(_ context.Context) ([]*models.SessionLink, error) {
	return f.collect(func(row *models.SessionLink) bool { return row.DeletionAttempted > 0 }), nil
}

func (f *fakeLinkStore) ListActive(_ context.Context, activityID int64, groupIDs []int64, includeNullGroup bool) ([]*models.SessionLink, error) {
	if !includeNullGroup && len(groupIDs) == 0 {
		return nil, ErrUnconstrainedGroupFilter
	}
	inSet := make(map[int64]bool, len(groupIDs))
	for _, id := range groupIDs {
		inSet[id] = true
	}
	return f.collect(func(row *models.SessionLink) bool {
		if row.ActivityID != activityID || row.DeletionAttempted != 0 {
			return false
		}
		if row.GroupID == nil {
			return includeNullGroup
		}
		return inSet[*row.GroupID]
	}), nil
}

func (f *fakeLinkStore) collect(match func(*models.SessionLink) bool) []*models.SessionLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SessionLink
	for id := int64(1); id <= f.nextID; id++ {
		if row, ok := f.rows[id]; ok && match(row) {
			out = append(out, f.clone(row))
		}
	}
	return out
}

func (f *fakeLinkStore) Insert(_ context.Context, l *models.SessionLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	f.rows[l.ID] = f.clone(l)
	return nil
}

func (f *fakeLinkStore) Update(_ context.Context, l *models.SessionLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[l.ID]; !ok {
		return fmt.Errorf("no link row %d", l.ID)
	}
	f.rows[l.ID] = f.clone(l)
	return nil
}

func (f *fakeLinkStore) DeleteBySessionIDs(_ context.Context, sessionIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sid := range sessionIDs {
		for id, row := range f.rows {
			if row.SessionID == sid {
				delete(f.rows, id)
			}
		}
	}
	return nil
}

func (f *fakeLinkStore) DeleteByActivity(_ context.Context, activityID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.ActivityID == activityID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeLinkStore) DeleteByGroup(_ context.Context, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.GroupID != nil && *row.GroupID == groupID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeLinkStore) DeletePendingDeletion(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.DeletionAttempted > 0 {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeLinkStore) IncrementDeletionAttempts(_ context.Context, sessionIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sid := range sessionIDs {
		for _, row := range f.rows {
			if row.SessionID == sid {
				row.DeletionAttempted++
			}
		}
	}
	return nil
}

func (f *fakeLinkStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeLinkStore) bySession(sessionID string) *models.SessionLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.SessionID == sessionID {
			return f.clone(row)
		}
	}
	return nil
}

func sameGroup(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeRecordingStore struct {
	mu   sync.Mutex
	rows map[string]int // "linkID/recordingID" -> views
}

func newFakeRecordingStore() *fakeRecordingStore {
	return &fakeRecordingStore{rows: make(map[string]int)}
}

func recKey(linkID int64, recordingID string) string {
	return fmt.Sprintf("%d/%s", linkID, recordingID)
}

func (f *fakeRecordingStore) IncrementViews(_ context.Context, linkID int64, recordingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[recKey(linkID, recordingID)]++
	return nil
}

func (f *fakeRecordingStore) ViewCounts(_ context.Context, linkIDs []int64) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for key, views := range f.rows {
		var linkID int64
		var recordingID string
		fmt.Sscanf(key, "%d/%s", &linkID, &recordingID)
		for _, id := range linkIDs {
			if id == linkID {
				counts[recordingID] += views
			}
		}
	}
	return counts, nil
}

func (f *fakeRecordingStore) DeleteByLinkIDs(_ context.Context, linkIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.rows {
		var linkID int64
		var recordingID string
		fmt.Sscanf(key, "%d/%s", &linkID, &recordingID)
		for _, id := range linkIDs {
			if id == linkID {
				delete(f.rows, key)
			}
		}
	}
	return nil
}

func (f *fakeRecordingStore) DeleteByRecording(_ context.Context, _ int64, recordingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.rows {
		var linkID int64
		var rec string
		fmt.Sscanf(key, "%d/%s", &linkID, &rec)
		if rec == recordingID {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeRecordingStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeActivityDirectory struct {
	courses   map[int64]*models.Course
	guestURLs map[int64]string
}

func newFakeActivityDirectory() *fakeActivityDirectory {
	return &fakeActivityDirectory{
		courses:   make(map[int64]*models.Course),
		guestURLs: make(map[int64]string),
	}
}

func (f *fakeActivityDirectory) GetActivity(_ context.Context, _ int64) (*models.Activity, error) {
	return nil, nil
}

func (f *fakeActivityDirectory) GetCourse(_ context.Context, id int64) (*models.Course, error) {
	return f.courses[id], nil
}

func (f *fakeActivityDirectory) UpdateGuestURL(_ context.Context, activityID int64, url string) error {
	f.guestURLs[activityID] = url
	return nil
}

type fakeGroupDirectory struct {
	courseGroups map[int64][]*models.Group // course id -> groups
	userGroups   map[int64][]*models.Group // user id -> groups
	allGroups    map[int64]bool            // user id -> access-all-groups
}

func newFakeGroupDirectory() *fakeGroupDirectory {
	return &fakeGroupDirectory{
		courseGroups: make(map[int64][]*models.Group),
		userGroups:   make(map[int64][]*models.Group),
		allGroups:    make(map[int64]bool),
	}
}

func (f *fakeGroupDirectory) CourseGroups(_ context.Context, courseID, _ int64) ([]*models.Group, error) {
	return f.courseGroups[courseID], nil
}

func (f *fakeGroupDirectory) UserGroups(_ context.Context, _, userID int64) ([]*models.Group, error) {
	return f.userGroups[userID], nil
}

func (f *fakeGroupDirectory) HasAccessAllGroups(_ context.Context, _, userID int64) (bool, error) {
	return f.allGroups[userID], nil
}

type fakeEventBus struct {
	events      []models.ActivityEvent
	invalidated []int64
}

func (f *fakeEventBus) Publish(_ context.Context, event models.ActivityEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventBus) InvalidateRecordingCounts(_ context.Context, activityID int64) error {
	f.invalidated = append(f.invalidated, activityID)
	return nil
}
