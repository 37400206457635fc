package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"aula-backend/internal/models"
)

// CourseChannel is the redis pub/sub channel carrying a course's activity
// events; the websocket hub subscribes to it per connected course.
func CourseChannel(courseID int64) string {
	return fmt.Sprintf("activity_events:%d", courseID)
}

func recordingCountsKey(activityID int64) string {
	return fmt.Sprintf("recordingcounts:%d", activityID)
}

// Publisher emits activity events over redis pub/sub and owns the
// recording-count cache keys.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

func (p *Publisher) Publish(ctx context.Context, event models.ActivityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.redis.Publish(ctx, CourseChannel(event.CourseID), data).Err()
}

func (p *Publisher) InvalidateRecordingCounts(ctx context.Context, activityID int64) error {
	return p.redis.Del(ctx, recordingCountsKey(activityID)).Err()
}
