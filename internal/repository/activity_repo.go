package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aula-backend/internal/models"
)

// ActivityRepo reads the host platform's activity and course records. This
// service does not own them; the only writes are the cached guest URL and the
// fixture session id.
type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	a := &models.Activity{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, course_id, name, time_start, duration, grouping_id, group_mode,
		       session_id, guest_access_enabled, guest_url, created_at
		FROM activities WHERE id = $1
	`, id).Scan(
		&a.ID, &a.CourseID, &a.Name, &a.TimeStart, &a.Duration, &a.GroupingID, &a.GroupMode,
		&a.SessionID, &a.GuestAccessEnabled, &a.GuestURL, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *ActivityRepo) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	c := &models.Course{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, full_name, short_name FROM courses WHERE id = $1", id,
	).Scan(&c.ID, &c.FullName, &c.ShortName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ActivityRepo) UpdateGuestURL(ctx context.Context, activityID int64, url string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE activities SET guest_url = $1 WHERE id = $2", url, activityID)
	return err
}
