package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aula-backend/internal/models"
)

const sessionLinkColumns = "id, activity_id, group_id, session_id, deletion_attempted"

type SessionLinkRepo struct {
	pool *pgxpool.Pool
}

func NewSessionLinkRepo(pool *pgxpool.Pool) *SessionLinkRepo {
	return &SessionLinkRepo{pool: pool}
}

func scanSessionLink(row pgx.Row) (*models.SessionLink, error) {
	l := &models.SessionLink{}
	err := row.Scan(&l.ID, &l.ActivityID, &l.GroupID, &l.SessionID, &l.DeletionAttempted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetByCandidate finds the link matching every field the candidate has set.
// The candidate's unset fields are not part of the predicate. Returns nil
// when no row matches.
func (r *SessionLinkRepo) GetByCandidate(ctx context.Context, c models.LinkCandidate) (*models.SessionLink, error) {
	clauses := []string{"activity_id = $1", "deletion_attempted = 0"}
	args := []interface{}{c.ActivityID}

	if c.GroupIDSet {
		args = append(args, c.GroupID)
		clauses = append(clauses, fmt.Sprintf("group_id IS NOT DISTINCT FROM $%d", len(args)))
	}
	if c.SessionID != "" {
		args = append(args, c.SessionID)
		clauses = append(clauses, fmt.Sprintf("session_id = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM session_links WHERE %s",
		sessionLinkColumns, strings.Join(clauses, " AND "))
	return scanSessionLink(r.pool.QueryRow(ctx, query, args...))
}

// GetByActivityAndGroup finds the link for an (activity, group) pair; a nil
// groupID addresses the whole-activity link. Returns nil when absent.
func (r *SessionLinkRepo) GetByActivityAndGroup(ctx context.Context, activityID int64, groupID *int64) (*models.SessionLink, error) {
	query := "SELECT " + sessionLinkColumns + ` FROM session_links
		WHERE activity_id = $1 AND group_id IS NOT DISTINCT FROM $2`
	return scanSessionLink(r.pool.QueryRow(ctx, query, activityID, groupID))
}

func (r *SessionLinkRepo) queryLinks(ctx context.Context, query string, args ...interface{}) ([]*models.SessionLink, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.SessionLink
	for rows.Next() {
		l := &models.SessionLink{}
		if err := rows.Scan(&l.ID, &l.ActivityID, &l.GroupID, &l.SessionID, &l.DeletionAttempted); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SessionLinkRepo) ListByActivity(ctx context.Context, activityID int64) ([]*models.SessionLink, error) {
	return r.queryLinks(ctx,
		"SELECT "+sessionLinkColumns+" FROM session_links WHERE activity_id = $1 ORDER BY id", activityID)
}

func (r *SessionLinkRepo) ListByGroup(ctx context.Context, groupID int64) ([]*models.SessionLink, error) {
	return r.queryLinks(ctx,
		"SELECT "+sessionLinkColumns+" FROM session_links WHERE group_id = $1 ORDER BY id", groupID)
}

func (r *SessionLinkRepo) ListPendingDeletion(ctx context.Context) ([]*models.SessionLink, error) {
	return r.queryLinks(ctx,
		"SELECT "+sessionLinkColumns+" FROM session_links WHERE deletion_attempted > 0 ORDER BY id")
}

// ListActive returns the usable links of an activity restricted to a group
// set. The predicate must be constrained: includeNullGroup, a non-empty
// groupIDs, or both. An unconstrained call is a programming error upstream.
func (r *SessionLinkRepo) ListActive(ctx context.Context, activityID int64, groupIDs []int64, includeNullGroup bool) ([]*models.SessionLink, error) {
	var groupClauses []string
	args := []interface{}{activityID}

	if includeNullGroup {
		groupClauses = append(groupClauses, "group_id IS NULL")
	}
	if len(groupIDs) > 0 {
		args = append(args, groupIDs)
		groupClauses = append(groupClauses, fmt.Sprintf("group_id = ANY($%d)", len(args)))
	}
	if len(groupClauses) == 0 {
		return nil, fmt.Errorf("repository: active-link query must constrain group")
	}

	query := fmt.Sprintf(`SELECT %s FROM session_links
		WHERE activity_id = $1 AND deletion_attempted = 0 AND (%s) ORDER BY id`,
		sessionLinkColumns, strings.Join(groupClauses, " OR "))
	return r.queryLinks(ctx, query, args...)
}

func (r *SessionLinkRepo) Insert(ctx context.Context, l *models.SessionLink) error {
	query := `INSERT INTO session_links (activity_id, group_id, session_id, deletion_attempted)
		VALUES ($1, $2, $3, $4) RETURNING id`
	return r.pool.QueryRow(ctx, query,
		l.ActivityID, l.GroupID, l.SessionID, l.DeletionAttempted).Scan(&l.ID)
}

func (r *SessionLinkRepo) Update(ctx context.Context, l *models.SessionLink) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE session_links SET activity_id = $1, group_id = $2, session_id = $3, deletion_attempted = $4
		 WHERE id = $5`,
		l.ActivityID, l.GroupID, l.SessionID, l.DeletionAttempted, l.ID)
	return err
}

func (r *SessionLinkRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM session_links WHERE session_id = ANY($1)", sessionIDs)
	return err
}

func (r *SessionLinkRepo) DeleteByActivity(ctx context.Context, activityID int64) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM session_links WHERE activity_id = $1", activityID)
	return err
}

func (r *SessionLinkRepo) DeleteByGroup(ctx context.Context, groupID int64) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM session_links WHERE group_id = $1", groupID)
	return err
}

func (r *SessionLinkRepo) DeletePendingDeletion(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM session_links WHERE deletion_attempted > 0")
	return err
}

// IncrementDeletionAttempts bumps the retry counter for every link whose
// session id is listed, inside one transaction: either all counters advance
// or none do. The transaction covers only the counter updates; the remote
// calls that produced the failures are not rollback-able.
func (r *SessionLinkRepo) IncrementDeletionAttempts(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin deletion-attempt transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sessionID := range sessionIDs {
		if _, err := tx.Exec(ctx,
			"UPDATE session_links SET deletion_attempted = deletion_attempted + 1 WHERE session_id = $1",
			sessionID); err != nil {
			return fmt.Errorf("increment deletion attempt for session %s: %w", sessionID, err)
		}
	}

	return tx.Commit(ctx)
}
