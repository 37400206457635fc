package handlers

import (
	"context"
	"net/http"

	"aula-backend/internal/middleware"
	"aula-backend/internal/models"
	"aula-backend/internal/services"
)

// linkProvider is the slice of the link service the handler consumes.
type linkProvider interface {
	ApplySessionLinks(ctx context.Context, activity *models.Activity) error
	MyActiveLinks(ctx context.Context, activity *models.Activity, userID int64) ([]*models.SessionLink, error)
	GetGroupSessionLink(ctx context.Context, activity *models.Activity, groupID int64) (*models.SessionLink, error)
	GuestURL(ctx context.Context, activity *models.Activity) (string, error)
}

type sessionDeleter interface {
	DeleteSessionsForActivity(ctx context.Context, activityID int64) (bool, error)
	DeleteSessionsForGroup(ctx context.Context, groupID int64) (bool, error)
}

type LinkHandler struct {
	links      linkProvider
	deletions  sessionDeleter
	activities services.ActivityDirectory
	groups     services.GroupDirectory
}

func NewLinkHandler(links linkProvider, deletions sessionDeleter, activities services.ActivityDirectory, groups services.GroupDirectory) *LinkHandler {
	return &LinkHandler{
		links:      links,
		deletions:  deletions,
		activities: activities,
		groups:     groups,
	}
}

// loadActivity resolves the {activityID} URL parameter, answering 400/404
// itself. The bool reports whether the caller should proceed.
func (h *LinkHandler) loadActivity(w http.ResponseWriter, r *http.Request) (*models.Activity, bool) {
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

// Apply reconciles the activity's link table with the provider: the
// whole-activity link plus one per group when a group mode is active.
func (h *LinkHandler) Apply(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}

	if err := h.links.ApplySessionLinks(r.Context(), activity); err != nil {
		handleServiceError(w, r, err)
		return
	}

	links, err := h.links.MyActiveLinks(r.Context(), activity, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"links": links})
}

// MyLinks lists the sessions the current user may join on this activity.
func (h *LinkHandler) MyLinks(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}

	links, err := h.links.MyActiveLinks(r.Context(), activity, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"links": links})
}

// GroupLink returns the session link for one group, provisioning it on first
// access.
func (h *LinkHandler) GroupLink(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid group id", r))
		return
	}

	link, err := h.links.GetGroupSessionLink(r.Context(), activity, groupID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// GuestURL returns the cached or freshly built guest join URL.
func (h *LinkHandler) GuestURL(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}

	url, err := h.links.GuestURL(r.Context(), activity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if url == "" {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Guest access is not enabled", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// DeleteActivitySessions tears down every session of an activity. Answers 202
// when some remote deletes failed and the rows stayed behind for the retry
// sweep.
func (h *LinkHandler) DeleteActivitySessions(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.loadActivity(w, r)
	if !ok {
		return
	}

	done, err := h.deletions.DeleteSessionsForActivity(r.Context(), activity.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !done {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "retry_pending"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteGroupSessions tears down a group's sessions across activities, for
// group removal.
func (h *LinkHandler) DeleteGroupSessions(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid group id", r))
		return
	}

	done, err := h.deletions.DeleteSessionsForGroup(r.Context(), groupID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !done {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "retry_pending"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
