package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aula-backend/internal/middleware"
	"aula-backend/internal/models"
	"aula-backend/internal/services"
)

type recordingProvider interface {
	ListRecordings(ctx context.Context, activity *models.Activity, userID int64) ([]services.ActivityRecording, error)
	RecordView(ctx context.Context, linkID int64, recordingID string) error
	DeleteRecording(ctx context.Context, activity *models.Activity, recordingID, recordingName string) error
}

type RecordingHandler struct {
	recordings recordingProvider
	activities services.ActivityDirectory
	groups     services.GroupDirectory
}

func NewRecordingHandler(recordings recordingProvider, activities services.ActivityDirectory, groups services.GroupDirectory) *RecordingHandler {
	return &RecordingHandler{
		recordings: recordings,
		activities: activities,
		groups:     groups,
	}
}

func (h *RecordingHandler) loadActivity(w http.ResponseWriter, r *http.Request) (*models.Activity, bool) {
	id, ok := pathID(r, "activityID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid activity id", r))
		return nil, false
	}

	activity, err := h.activities.GetActivity(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load activity", r))
		return nil, false
	}
	if activity == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Activity not found", r))
		return nil, false
	}
	return activity, true
}

// List returns the recordings on every session the user can see, with view
// counts.
func (h *RecordingHandler) List(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}

	recordings, err := h.recordings.ListRecordings(r.Context(), activity, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recordings": recordings})
}

// RecordView bumps a recording's view counter.
func (h *RecordingHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	linkID, ok := pathID(r, "linkID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid link id", r))
		return
	}
	recordingID := chi.URLParam(r, "recordingID")
	if recordingID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid recording id", r))
		return
	}

	if err := h.recordings.RecordView(r.Context(), linkID, recordingID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "counted"})
}

// Delete removes a recording on the provider. Restricted to users holding the
// access-all-groups capability on the course.
func (h *RecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}
	recordingID := chi.URLParam(r, "recordingID")
	if recordingID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid recording id", r))
		return
	}

	allowed, err := h.groups.HasAccessAllGroups(r.Context(), activity.CourseID, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !allowed {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Deleting recordings requires course-wide access", r))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.recordings.DeleteRecording(r.Context(), activity, recordingID, req.Name); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
