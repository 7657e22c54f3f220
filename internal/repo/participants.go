package repo

import (
	"context"
	"database/sql"

	"teamboard/internal/domain"
)

// InsertParticipant enforces the (task,user) uniqueness invariant via
// the store's unique index; a duplicate surfaces as ErrConflict, so
// two concurrent joins resolve to exactly one success.
func (r Repo) InsertParticipant(ctx context.Context, tx *sql.Tx, p domain.TaskParticipant) error {
	exec := func(query string, args ...any) (sql.Result, error) {
		if tx != nil {
			return tx.ExecContext(ctx, query, args...)
		}
		return r.DB.ExecContext(ctx, query, args...)
	}
	_, err := exec(`INSERT INTO task_participants(task_id,user_id,joined_at) VALUES (?,?,?)`,
		p.TaskID, p.UserID, p.JoinedAt)
	return conflictErr(err)
}

func (r Repo) DeleteParticipant(ctx context.Context, taskID, userID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM task_participants WHERE task_id=? AND user_id=?`, taskID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListParticipants(ctx context.Context, taskID int64) ([]domain.UserSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT u.id,u.username,u.nickname,u.avatar
FROM users u JOIN task_participants p ON p.user_id=u.id WHERE p.task_id=? ORDER BY p.joined_at ASC, p.id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUserSummaries(rows)
}

// ListParticipantUserIDs is the notification fan-out audience.
func (r Repo) ListParticipantUserIDs(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT user_id FROM task_participants WHERE task_id=?`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r Repo) CountParticipants(ctx context.Context, taskID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM task_participants WHERE task_id=?`, taskID).Scan(&n)
	return n, err
}
