package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aula-backend/internal/models"
)

// GroupRepo reads the host platform's group, grouping and enrollment tables.
type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

func scanGroups(rows pgx.Rows) ([]*models.Group, error) {
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.CourseID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CourseGroups returns a course's groups, restricted to a grouping when
// groupingID is non-zero.
func (r *GroupRepo) CourseGroups(ctx context.Context, courseID, groupingID int64) ([]*models.Group, error) {
	if groupingID > 0 {
		rows, err := r.pool.Query(ctx, `
			SELECT g.id, g.course_id, g.name
			FROM groups g
			JOIN groupings_groups gg ON gg.group_id = g.id
			WHERE g.course_id = $1 AND gg.grouping_id = $2
			ORDER BY g.id
		`, courseID, groupingID)
		if err != nil {
			return nil, err
		}
		return scanGroups(rows)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT id, course_id, name FROM groups WHERE course_id = $1 ORDER BY id", courseID)
	if err != nil {
		return nil, err
	}
	return scanGroups(rows)
}

// UserGroups returns the groups a user belongs to within a course.
func (r *GroupRepo) UserGroups(ctx context.Context, courseID, userID int64) ([]*models.Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.course_id, g.name
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE g.course_id = $1 AND gm.user_id = $2
		ORDER BY g.id
	`, courseID, userID)
	if err != nil {
		return nil, err
	}
	return scanGroups(rows)
}

// HasAccessAllGroups reports whether the user's enrollment carries the
// access-all-groups capability (teaching and managing roles do).
func (r *GroupRepo) HasAccessAllGroups(ctx context.Context, courseID, userID int64) (bool, error) {
	var has bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE course_id = $1 AND user_id = $2 AND role IN ('teacher', 'manager')
		)
	`, courseID, userID).Scan(&has)
	return has, err
}
