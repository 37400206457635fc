package services

import (
	"context"
	"fmt"
	"log"

	"aula-backend/internal/models"
	"aula-backend/internal/remote"
)

// DeletionService removes sessions remotely and keeps the local rows honest
// about it. A remote delete that fails leaves the row behind with its
// deletion_attempted counter bumped; the cleanup sweep retries those until
// the provider lets go.
type DeletionService struct {
	links      LinkStore
	recordings RecordingInfoStore
	remote     remote.Client
}

func NewDeletionService(links LinkStore, recordings RecordingInfoStore, client remote.Client) *DeletionService {
	return &DeletionService{
		links:      links,
		recordings: recordings,
		remote:     client,
	}
}

// AttemptDeleteSessions deletes the given links' sessions on the provider and
// partitions the outcome. Link rows for successful deletes are removed here
// only when the batch is partial; on a fully successful batch the caller owns
// removing the rows (it knows which scope it loaded them by). Recording
// counters for every input link are purged unconditionally; stale counts
// must not survive even a partial failure.
//
// The returned bool reports whether every remote delete succeeded; remote
// failures are never returned as errors, only local store failures are.
func (s *DeletionService) AttemptDeleteSessions(ctx context.Context, links []*models.SessionLink) (bool, error) {
	if len(links) == 0 {
		return true, nil
	}

	linkIDs := make([]int64, 0, len(links))
	var succeeded, failed []string
	for _, link := range links {
		linkIDs = append(linkIDs, link.ID)
		if err := s.remote.DeleteSession(ctx, link.SessionID); err != nil {
			log.Printf("delete session %s failed, queued for retry: %v", link.SessionID, err)
			failed = append(failed, link.SessionID)
		} else {
			succeeded = append(succeeded, link.SessionID)
		}
	}

	if err := s.recordings.DeleteByLinkIDs(ctx, linkIDs); err != nil {
		return false, fmt.Errorf("purge recording counters: %w", err)
	}

	if len(failed) == 0 {
		return true, nil
	}

	if err := s.links.DeleteBySessionIDs(ctx, succeeded); err != nil {
		return false, fmt.Errorf("remove deleted links: %w", err)
	}
	if err := s.links.IncrementDeletionAttempts(ctx, failed); err != nil {
		return false, fmt.Errorf("mark failed deletions: %w", err)
	}

	return false, nil
}

// DeleteSessionsForActivity deletes every session of an activity, including
// all its group sessions, and removes the activity's link rows once the
// provider confirms.
func (s *DeletionService) DeleteSessionsForActivity(ctx context.Context, activityID int64) (bool, error) {
	links, err := s.links.ListByActivity(ctx, activityID)
	if err != nil {
		return false, fmt.Errorf("list links for activity %d: %w", activityID, err)
	}

	ok, err := s.AttemptDeleteSessions(ctx, links)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.links.DeleteByActivity(ctx, activityID); err != nil {
		return false, fmt.Errorf("remove links for activity %d: %w", activityID, err)
	}
	return true, nil
}

// DeleteSessionsForGroup deletes the sessions linked to one group. Rows for
// other groups are untouched even on shared activities.
func (s *DeletionService) DeleteSessionsForGroup(ctx context.Context, groupID int64) (bool, error) {
	links, err := s.links.ListByGroup(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("list links for group %d: %w", groupID, err)
	}

	ok, err := s.AttemptDeleteSessions(ctx, links)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.links.DeleteByGroup(ctx, groupID); err != nil {
		return false, fmt.Errorf("remove links for group %d: %w", groupID, err)
	}
	return true, nil
}

// CleanupFailedDeletions retries every link whose earlier remote delete
// failed and drops the rows once the provider finally confirms.
func (s *DeletionService) CleanupFailedDeletions(ctx context.Context) error {
	links, err := s.links.ListPendingDeletion(ctx)
	if err != nil {
		return fmt.Errorf("list pending deletions: %w", err)
	}
	if len(links) == 0 {
		return nil
	}

	ok, err := s.AttemptDeleteSessions(ctx, links)
	if err != nil {
		return err
	}
	if ok {
		if err := s.links.DeletePendingDeletion(ctx); err != nil {
			return fmt.Errorf("remove retried links: %w", err)
		}
	}
	return nil
}
