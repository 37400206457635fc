package services

import (
	"context"
	"testing"

	"aula-backend/internal/models"
	"aula-backend/internal/remote"
)

func newRecordingFixture() (*RecordingService, *LinkService, *fakeLinkStore, *fakeRecordingStore, *fakeGroupDirectory, *fakeEventBus, *remote.SimClient) {
	links := newFakeLinkStore()
	activities := newFakeActivityDirectory()
	groups := newFakeGroupDirectory()
	recordings := newFakeRecordingStore()
	bus := &fakeEventBus{}
	sim := remote.NewSimClient()
	linkSvc := NewLinkService(links, activities, groups, sim, false)
	svc := NewRecordingService(linkSvc, recordings, sim, bus)
	return svc, linkSvc, links, recordings, groups, bus, sim
}

func TestListRecordings_AnnotatesViews(t *testing.T) {
	svc, linkSvc, _, recordings, _, _, sim := newRecordingFixture()
	activity := testActivity()

	link, err := linkSvc.EnsureSessionLink(context.Background(), activity, testCourse(), models.LinkCandidate{ActivityID: activity.ID})
	if err != nil {
		t.Fatalf("EnsureSessionLink returned error: %v", err)
	}
	sim.SeedRecording(link.SessionID, remote.Recording{ID: "rec-1", Name: "Week 1", URL: "https://collab.example/rec-1"})
	sim.SeedRecording(link.SessionID, remote.Recording{ID: "rec-2", Name: "Week 2", URL: "https://collab.example/rec-2"})

	recordings.IncrementViews(context.Background(), link.ID, "rec-1")
	recordings.IncrementViews(context.Background(), link.ID, "rec-1")

	got, err := svc.ListRecordings(context.Background(), activity, 101)
	if err != nil {
		t.Fatalf("ListRecordings returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 recordings, got %d", len(got))
	}

	byID := map[string]ActivityRecording{}
	for _, rec := range got {
		byID[rec.ID] = rec
	}
	if byID["rec-1"].Views != 2 {
		t.Errorf("Expected rec-1 to have 2 views, got %d", byID["rec-1"].Views)
	}
	if byID["rec-2"].Views != 0 {
		t.Errorf("Expected rec-2 to have 0 views, got %d", byID["rec-2"].Views)
	}
	if byID["rec-1"].LinkID != link.ID {
		t.Errorf("Expected rec-1 tied to link %d, got %d", link.ID, byID["rec-1"].LinkID)
	}
}

func TestRecordView(t *testing.T) {
	svc, _, _, recordings, _, _, _ := newRecordingFixture()

	if err := svc.RecordView(context.Background(), 12, "rec-1"); err != nil {
		t.Fatalf("RecordView returned error: %v", err)
	}
	if err := svc.RecordView(context.Background(), 12, "rec-1"); err != nil {
		t.Fatalf("RecordView returned error: %v", err)
	}

	counts, err := recordings.ViewCounts(context.Background(), []int64{12})
	if err != nil {
		t.Fatalf("ViewCounts returned error: %v", err)
	}
	if counts["rec-1"] != 2 {
		t.Errorf("Expected 2 views, got %d", counts["rec-1"])
	}
}

func TestDeleteRecording(t *testing.T) {
	svc, linkSvc, _, recordings, _, bus, sim := newRecordingFixture()
	activity := testActivity()

	link, err := linkSvc.EnsureSessionLink(context.Background(), activity, testCourse(), models.LinkCandidate{ActivityID: activity.ID})
	if err != nil {
		t.Fatalf("EnsureSessionLink returned error: %v", err)
	}
	sim.SeedRecording(link.SessionID, remote.Recording{ID: "rec-1", Name: "Week 1"})
	recordings.IncrementViews(context.Background(), link.ID, "rec-1")

	if err := svc.DeleteRecording(context.Background(), activity, "rec-1", "Week 1"); err != nil {
		t.Fatalf("DeleteRecording returned error: %v", err)
	}

	recs, err := sim.ListRecordings(context.Background(), link.SessionID)
	if err != nil {
		t.Fatalf("ListRecordings returned error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Expected remote recording gone, got %d", len(recs))
	}
	if recordings.count() != 0 {
		t.Errorf("Expected view counters purged, got %d", recordings.count())
	}

	if len(bus.invalidated) != 1 || bus.invalidated[0] != activity.ID {
		t.Errorf("Expected cached counts invalidated for activity %d, got %v", activity.ID, bus.invalidated)
	}
	if len(bus.events) != 1 {
		t.Fatalf("Expected one published event, got %d", len(bus.events))
	}
	event := bus.events[0]
	if event.Type != models.EventRecordingDeleted {
		t.Errorf("Expected event type %q, got %q", models.EventRecordingDeleted, event.Type)
	}
	if event.CourseID != activity.CourseID || event.ActivityID != activity.ID {
		t.Errorf("Expected event scoped to course %d activity %d, got course %d activity %d",
			activity.CourseID, activity.ID, event.CourseID, event.ActivityID)
	}
	if event.RecordingID != "rec-1" || event.RecordingName != "Week 1" {
		t.Errorf("Unexpected recording fields on event: %+v", event)
	}
	if event.ID == "" {
		t.Error("Expected event to carry an id")
	}
}
