package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordingInfoRepo struct {
	pool *pgxpool.Pool
}

func NewRecordingInfoRepo(pool *pgxpool.Pool) *RecordingInfoRepo {
	return &RecordingInfoRepo{pool: pool}
}

// IncrementViews bumps the view counter for a recording under a link,
// creating the row on first view.
func (r *RecordingInfoRepo) IncrementViews(ctx context.Context, linkID int64, recordingID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO recording_info (link_id, recording_id, views)
		VALUES ($1, $2, 1)
		ON CONFLICT (link_id, recording_id)
		DO UPDATE SET views = recording_info.views + 1
	`, linkID, recordingID)
	return err
}

// ViewCounts returns recording id → view count across the given links.
func (r *RecordingInfoRepo) ViewCounts(ctx context.Context, linkIDs []int64) (map[string]int, error) {
	counts := make(map[string]int)
	if len(linkIDs) == 0 {
		return counts, nil
	}

	rows, err := r.pool.Query(ctx,
		"SELECT recording_id, views FROM recording_info WHERE link_id = ANY($1)", linkIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var recordingID string
		var views int
		if err := rows.Scan(&recordingID, &views); err != nil {
			return nil, err
		}
		counts[recordingID] += views
	}
	return counts, rows.Err()
}

// DeleteByLinkIDs purges all counter rows for the given links. The deletion
// engine calls this unconditionally, before it knows whether the remote
// deletes stuck.
func (r *RecordingInfoRepo) DeleteByLinkIDs(ctx context.Context, linkIDs []int64) error {
	if len(linkIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM recording_info WHERE link_id = ANY($1)", linkIDs)
	return err
}

// DeleteByRecording removes the counter rows for one recording of an
// activity's links.
func (r *RecordingInfoRepo) DeleteByRecording(ctx context.Context, activityID int64, recordingID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM recording_info
		WHERE recording_id = $1
		  AND link_id IN (SELECT id FROM session_links WHERE activity_id = $2)
	`, recordingID, activityID)
	return err
}
