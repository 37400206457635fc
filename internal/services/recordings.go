package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"aula-backend/internal/models"
	"aula-backend/internal/remote"
)

// ActivityRecording is a remote recording joined with its local bookkeeping.
type ActivityRecording struct {
	remote.Recording
	LinkID  int64  `json:"link_id"`
	GroupID *int64 `json:"group_id,omitempty"`
	Views   int    `json:"views"`
}

// RecordingService lists and deletes session recordings for the links a user
// can see.
type RecordingService struct {
	links  *LinkService
	store  RecordingInfoStore
	remote remote.Client
	bus    EventBus
}

func NewRecordingService(links *LinkService, store RecordingInfoStore, client remote.Client, bus EventBus) *RecordingService {
	return &RecordingService{
		links:  links,
		store:  store,
		remote: client,
		bus:    bus,
	}
}

// ListRecordings returns the recordings of every session the user can see on
// this activity, annotated with view counts. A provider failure on one
// session yields no recordings for that session rather than failing the
// whole listing.
func (s *RecordingService) ListRecordings(ctx context.Context, activity *models.Activity, userID int64) ([]ActivityRecording, error) {
	links, err := s.links.MyActiveLinks(ctx, activity, userID)
	if err != nil {
		return nil, err
	}

	linkIDs := make([]int64, 0, len(links))
	for _, link := range links {
		linkIDs = append(linkIDs, link.ID)
	}
	counts, err := s.store.ViewCounts(ctx, linkIDs)
	if err != nil {
		return nil, fmt.Errorf("load view counts: %w", err)
	}

	var recordings []ActivityRecording
	for _, link := range links {
		if link.SessionID == "" {
			continue
		}
		recs, err := s.remote.ListRecordings(ctx, link.SessionID)
		if err != nil {
			log.Printf("list recordings for session %s failed: %v", link.SessionID, err)
			continue
		}
		for _, rec := range recs {
			recordings = append(recordings, ActivityRecording{
				Recording: rec,
				LinkID:    link.ID,
				GroupID:   link.GroupID,
				Views:     counts[rec.ID],
			})
		}
	}
	return recordings, nil
}

// RecordView bumps the view counter for a recording under a link.
func (s *RecordingService) RecordView(ctx context.Context, linkID int64, recordingID string) error {
	return s.store.IncrementViews(ctx, linkID, recordingID)
}

// DeleteRecording removes a recording on the provider, drops its counter
// rows, invalidates the activity's cached counts and announces the deletion
// on the activity event channel.
func (s *RecordingService) DeleteRecording(ctx context.Context, activity *models.Activity, recordingID, recordingName string) error {
	if err := s.remote.DeleteRecording(ctx, recordingID); err != nil {
		return fmt.Errorf("delete remote recording: %w", err)
	}

	if err := s.store.DeleteByRecording(ctx, activity.ID, recordingID); err != nil {
		return fmt.Errorf("remove recording counters: %w", err)
	}

	if err := s.bus.InvalidateRecordingCounts(ctx, activity.ID); err != nil {
		log.Printf("invalidate recording counts for activity %d: %v", activity.ID, err)
	}

	event := models.ActivityEvent{
		ID:            uuid.NewString(),
		Type:          models.EventRecordingDeleted,
		CourseID:      activity.CourseID,
		ActivityID:    activity.ID,
		RecordingID:   recordingID,
		RecordingName: recordingName,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		log.Printf("publish recording-deleted event for activity %d: %v", activity.ID, err)
	}
	return nil
}
