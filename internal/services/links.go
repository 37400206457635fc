package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"aula-backend/internal/models"
	"aula-backend/internal/remote"
)

// LinkService keeps the local session-link table and the remote conferencing
// service consistent: one link (and one remote session) per activity, plus
// one per group when the activity runs in a group mode.
type LinkService struct {
	links      LinkStore
	activities ActivityDirectory
	groups     GroupDirectory
	remote     remote.Client

	// simulation reuses an activity's pre-seeded session id for the
	// whole-activity link instead of calling the provider, so fixtures stay
	// deterministic without a live remote dependency.
	simulation bool
}

func NewLinkService(links LinkStore, activities ActivityDirectory, groups GroupDirectory, client remote.Client, simulation bool) *LinkService {
	return &LinkService{
		links:      links,
		activities: activities,
		groups:     groups,
		remote:     client,
		simulation: simulation,
	}
}

// EnsureSessionLink makes sure a link row and a matching remote session exist
// for the candidate, creating or updating either side as needed, and returns
// the persisted link.
//
// A candidate with no group field set is a fresh whole-activity record and
// skips the existing-record lookup; a candidate with the group field set
// (even to nil) is matched against stored rows first and adopts the stored
// session id.
func (s *LinkService) EnsureSessionLink(ctx context.Context, activity *models.Activity, course *models.Course, candidate models.LinkCandidate) (*models.SessionLink, error) {
	if candidate.ActivityID == 0 {
		return nil, ErrActivityIDRequired
	}

	link := &models.SessionLink{
		ActivityID:        candidate.ActivityID,
		SessionID:         candidate.SessionID,
		DeletionAttempted: 0,
	}

	var existing *models.SessionLink
	if candidate.GroupIDSet {
		link.GroupID = candidate.GroupID
		found, err := s.links.GetByCandidate(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("look up session link: %w", err)
		}
		if found != nil {
			existing = found
			link.SessionID = found.SessionID
		}
	}

	if link.SessionID == "" {
		if s.simulation && activity.SessionID != nil && link.GroupID == nil {
			link.SessionID = *activity.SessionID
		} else {
			sessionID, err := s.remote.CreateSession(ctx, activity, course, link.GroupID)
			if err != nil {
				return nil, fmt.Errorf("provision remote session: %w", err)
			}
			link.SessionID = sessionID
		}
	} else {
		if err := s.remote.UpdateSession(ctx, activity, course, link); err != nil {
			return nil, fmt.Errorf("update remote session %s: %w", link.SessionID, err)
		}
	}

	// Re-check before insert: another unit of work may have created the row
	// between the lookup above and the remote call.
	if existing == nil {
		found, err := s.links.GetByActivityAndGroup(ctx, link.ActivityID, link.GroupID)
		if err != nil {
			return nil, fmt.Errorf("re-check session link: %w", err)
		}
		existing = found
	}

	if existing == nil {
		if err := s.links.Insert(ctx, link); err != nil {
			return nil, fmt.Errorf("insert session link: %w", err)
		}
	} else {
		link.ID = existing.ID
		if err := s.links.Update(ctx, link); err != nil {
			return nil, fmt.Errorf("update session link %d: %w", link.ID, err)
		}
	}

	return link, nil
}

// GetGroupSessionLink returns the link for an (activity, group) pair,
// provisioning it on first access.
func (s *LinkService) GetGroupSessionLink(ctx context.Context, activity *models.Activity, groupID int64) (*models.SessionLink, error) {
	link, err := s.links.GetByActivityAndGroup(ctx, activity.ID, &groupID)
	if err != nil {
		return nil, fmt.Errorf("look up group session link: %w", err)
	}
	if link != nil {
		return link, nil
	}

	course, err := s.activities.GetCourse(ctx, activity.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load course %d: %w", activity.CourseID, err)
	}
	if course == nil {
		return nil, fmt.Errorf("course %d not found", activity.CourseID)
	}

	candidate := models.LinkCandidate{ActivityID: activity.ID}.WithGroup(&groupID)
	return s.EnsureSessionLink(ctx, activity, course, candidate)
}

// ApplySessionLinks ensures the whole-activity link always exists and, when
// the activity runs in a group mode, one link per group of its grouping.
// Each link is provisioned independently; failures are collected and joined
// so one group's broken provisioning does not strand the others.
func (s *LinkService) ApplySessionLinks(ctx context.Context, activity *models.Activity) error {
	course, err := s.activities.GetCourse(ctx, activity.CourseID)
	if err != nil {
		return fmt.Errorf("load course %d: %w", activity.CourseID, err)
	}
	if course == nil {
		return fmt.Errorf("course %d not found", activity.CourseID)
	}

	var errs []error

	candidate := models.LinkCandidate{ActivityID: activity.ID}
	if activity.SessionID != nil {
		candidate.SessionID = *activity.SessionID
	}
	if _, err := s.EnsureSessionLink(ctx, activity, course, candidate); err != nil {
		if errors.Is(err, ErrActivityIDRequired) {
			return err
		}
		errs = append(errs, fmt.Errorf("whole-activity link: %w", err))
	}

	if activity.GroupsEnabled() {
		groups, err := s.groups.CourseGroups(ctx, course.ID, activity.GroupingID)
		if err != nil {
			errs = append(errs, fmt.Errorf("list groups for course %d: %w", course.ID, err))
		}
		for _, group := range groups {
			candidate := models.LinkCandidate{ActivityID: activity.ID}.WithGroup(&group.ID)
			if _, err := s.EnsureSessionLink(ctx, activity, course, candidate); err != nil {
				log.Printf("apply session links: group %d failed: %v", group.ID, err)
				errs = append(errs, fmt.Errorf("group %d link: %w", group.ID, err))
			}
		}
	}

	return errors.Join(errs...)
}

// MyActiveLinks returns the links the user may join for an activity: only
// active rows, restricted to the user's groups, with the whole-activity link
// as fallback for users without groups and the full course group set for
// users holding the access-all-groups capability.
func (s *LinkService) MyActiveLinks(ctx context.Context, activity *models.Activity, userID int64) ([]*models.SessionLink, error) {
	allGroups, err := s.groups.HasAccessAllGroups(ctx, activity.CourseID, userID)
	if err != nil {
		return nil, fmt.Errorf("check access-all-groups: %w", err)
	}

	var groupIDs []int64
	includeNullGroup := false

	if allGroups {
		groups, err := s.groups.CourseGroups(ctx, activity.CourseID, 0)
		if err != nil {
			return nil, fmt.Errorf("list course groups: %w", err)
		}
		groupIDs = groupIDList(groups)
		includeNullGroup = true
	} else {
		groups, err := s.groups.UserGroups(ctx, activity.CourseID, userID)
		if err != nil {
			return nil, fmt.Errorf("list user groups: %w", err)
		}
		if len(groups) > 0 {
			groupIDs = groupIDList(groups)
		} else {
			// Not in any group: only the whole-activity session applies.
			includeNullGroup = true
		}
	}

	if !includeNullGroup && len(groupIDs) == 0 {
		return nil, ErrUnconstrainedGroupFilter
	}

	return s.links.ListActive(ctx, activity.ID, groupIDs, includeNullGroup)
}

// GuestURL returns the guest join URL for an activity's whole-activity
// session, building and caching it on first use. Returns empty when guest
// access is disabled.
func (s *LinkService) GuestURL(ctx context.Context, activity *models.Activity) (string, error) {
	if !activity.GuestAccessEnabled {
		return "", nil
	}
	if activity.GuestURL != nil && *activity.GuestURL != "" {
		return *activity.GuestURL, nil
	}

	link, err := s.links.GetByActivityAndGroup(ctx, activity.ID, nil)
	if err != nil {
		return "", fmt.Errorf("look up whole-activity link: %w", err)
	}
	if link == nil {
		return "", fmt.Errorf("activity %d has no session link", activity.ID)
	}

	url, err := s.remote.GuestURL(ctx, link.SessionID)
	if err != nil {
		return "", fmt.Errorf("build guest url: %w", err)
	}

	if err := s.activities.UpdateGuestURL(ctx, activity.ID, url); err != nil {
		return "", fmt.Errorf("cache guest url: %w", err)
	}
	activity.GuestURL = &url
	return url, nil
}

func groupIDList(groups []*models.Group) []int64 {
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}
