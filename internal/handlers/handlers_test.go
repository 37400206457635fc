package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"aula-backend/internal/middleware"
	"aula-backend/internal/models"
	"aula-backend/internal/services"
)

type stubActivities struct {
	activity *models.Activity
}

func (s *stubActivities) GetActivity(_ context.Context, _ int64) (*models.Activity, error) {
	return s.activity, nil
}
func (s *stubActivities) GetCourse(_ context.Context, _ int64) (*models.Course, error) {
	return &models.Course{ID: 3}, nil
}
func (s *stubActivities) UpdateGuestURL(_ context.Context, _ int64, _ string) error { return nil }

type stubGroups struct {
	accessAll bool
}

func (s *stubGroups) CourseGroups(_ context.Context, _, _ int64) ([]*models.Group, error) {
	return nil, nil
}
func (s *stubGroups) UserGroups(_ context.Context, _, _ int64) ([]*models.Group, error) {
	return nil, nil
}
func (s *stubGroups) HasAccessAllGroups(_ context.Context, _, _ int64) (bool, error) {
	return s.accessAll, nil
}

type stubLinks struct {
	applied  int
	links    []*models.SessionLink
	guestURL string
}

func (s *stubLinks) ApplySessionLinks(_ context.Context, _ *models.Activity) error {
	s.applied++
	return nil
}
func (s *stubLinks) MyActiveLinks(_ context.Context, _ *models.Activity, _ int64) ([]*models.SessionLink, error) {
	return s.links, nil
}
func (s *stubLinks) GetGroupSessionLink(_ context.Context, _ *models.Activity, groupID int64) (*models.SessionLink, error) {
	return &models.SessionLink{ID: 1, ActivityID: 7, GroupID: &groupID, SessionID: "sess-group"}, nil
}
func (s *stubLinks) GuestURL(_ context.Context, _ *models.Activity) (string, error) {
	return s.guestURL, nil
}

type stubDeleter struct {
	done bool
}

func (s *stubDeleter) DeleteSessionsForActivity(_ context.Context, _ int64) (bool, error) {
	return s.done, nil
}
func (s *stubDeleter) DeleteSessionsForGroup(_ context.Context, _ int64) (bool, error) {
	return s.done, nil
}

type stubRecordings struct {
	deleted []string
	views   []string
}

func (s *stubRecordings) ListRecordings(_ context.Context, _ *models.Activity, _ int64) ([]services.ActivityRecording, error) {
	return []services.ActivityRecording{}, nil
}
func (s *stubRecordings) RecordView(_ context.Context, _ int64, recordingID string) error {
	s.views = append(s.views, recordingID)
	return nil
}
func (s *stubRecordings) DeleteRecording(_ context.Context, _ *models.Activity, recordingID, _ string) error {
	s.deleted = append(s.deleted, recordingID)
	return nil
}

func doRequest(handler http.HandlerFunc, method, path string, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, int64(42)))

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestLinkHandlerApply(t *testing.T) {
	links := &stubLinks{links: []*models.SessionLink{{ID: 1, ActivityID: 7, SessionID: "sess-1"}}}
	h := NewLinkHandler(links, &stubDeleter{}, &stubActivities{activity: &models.Activity{ID: 7, CourseID: 3}}, &stubGroups{})

	rec := doRequest(h.Apply, http.MethodPost, "/activities/7/links/apply", map[string]string{"activityID": "7"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if links.applied != 1 {
		t.Errorf("Expected one apply call, got %d", links.applied)
	}

	var resp struct {
		Links []*models.SessionLink `json:"links"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Links) != 1 || resp.Links[0].SessionID != "sess-1" {
		t.Errorf("Unexpected links %+v", resp.Links)
	}
}

func TestLinkHandlerApply_InvalidID(t *testing.T) {
	h := NewLinkHandler(&stubLinks{}, &stubDeleter{}, &stubActivities{}, &stubGroups{})

	rec := doRequest(h.Apply, http.MethodPost, "/activities/abc/links/apply", map[string]string{"activityID": "abc"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestLinkHandlerApply_NotFound(t *testing.T) {
	h := NewLinkHandler(&stubLinks{}, &stubDeleter{}, &stubActivities{activity: nil}, &stubGroups{})

	rec := doRequest(h.Apply, http.MethodPost, "/activities/7/links/apply", map[string]string{"activityID": "7"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestLinkHandlerGroupLink(t *testing.T) {
	h := NewLinkHandler(&stubLinks{}, &stubDeleter{}, &stubActivities{activity: &models.Activity{ID: 7, CourseID: 3}}, &stubGroups{})

	rec := doRequest(h.GroupLink, http.MethodGet, "/activities/7/groups/31/link", map[string]string{"activityID": "7", "groupID": "31"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var link models.SessionLink
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if link.SessionID != "sess-group" {
		t.Errorf("Unexpected link %+v", link)
	}
}

func TestLinkHandlerGuestURL_Disabled(t *testing.T) {
	h := NewLinkHandler(&stubLinks{guestURL: ""}, &stubDeleter{}, &stubActivities{activity: &models.Activity{ID: 7}}, &stubGroups{})

	rec := doRequest(h.GuestURL, http.MethodGet, "/activities/7/guest-url", map[string]string{"activityID": "7"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when guest access is off, got %d", rec.Code)
	}
}

func TestLinkHandlerDeleteActivitySessions_RetryPending(t *testing.T) {
	h := NewLinkHandler(&stubLinks{}, &stubDeleter{done: false}, &stubActivities{activity: &models.Activity{ID: 7}}, &stubGroups{})

	rec := doRequest(h.DeleteActivitySessions, http.MethodDelete, "/activities/7/sessions", map[string]string{"activityID": "7"})
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected 202 when deletes are pending retry, got %d", rec.Code)
	}
}

func TestLinkHandlerDeleteActivitySessions_Done(t *testing.T) {
	h := NewLinkHandler(&stubLinks{}, &stubDeleter{done: true}, &stubActivities{activity: &models.Activity{ID: 7}}, &stubGroups{})

	rec := doRequest(h.DeleteActivitySessions, http.MethodDelete, "/activities/7/sessions", map[string]string{"activityID": "7"})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 on full deletion, got %d", rec.Code)
	}
}

func TestRecordingHandlerDelete_RequiresCapability(t *testing.T) {
	recordings := &stubRecordings{}
	h := NewRecordingHandler(recordings, &stubActivities{activity: &models.Activity{ID: 7, CourseID: 3}}, &stubGroups{accessAll: false})

	rec := doRequest(h.Delete, http.MethodDelete, "/activities/7/recordings/rec-1", map[string]string{"activityID": "7", "recordingID": "rec-1"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 without course-wide access, got %d", rec.Code)
	}
	if len(recordings.deleted) != 0 {
		t.Error("Expected no delete call")
	}
}

func TestRecordingHandlerDelete(t *testing.T) {
	recordings := &stubRecordings{}
	h := NewRecordingHandler(recordings, &stubActivities{activity: &models.Activity{ID: 7, CourseID: 3}}, &stubGroups{accessAll: true})

	rec := doRequest(h.Delete, http.MethodDelete, "/activities/7/recordings/rec-1", map[string]string{"activityID": "7", "recordingID": "rec-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(recordings.deleted) != 1 || recordings.deleted[0] != "rec-1" {
		t.Errorf("Expected rec-1 deleted, got %v", recordings.deleted)
	}
}

func TestRecordingHandlerRecordView(t *testing.T) {
	recordings := &stubRecordings{}
	h := NewRecordingHandler(recordings, &stubActivities{}, &stubGroups{})

	rec := doRequest(h.RecordView, http.MethodPost, "/links/1/recordings/rec-1/view", map[string]string{"linkID": "1", "recordingID": "rec-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if len(recordings.views) != 1 {
		t.Errorf("Expected one view recorded, got %d", len(recordings.views))
	}
}
