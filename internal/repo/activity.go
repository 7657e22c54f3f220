package repo

import (
	"context"
	"database/sql"

	"teamboard/internal/domain"
)

// InsertActivity appends one audit row. Callers treat this as
// fire-and-forget: a failure here never rolls back the mutation that
// triggered it.
func (r Repo) InsertActivity(ctx context.Context, a domain.TaskActivity) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO task_activities(task_id,user_id,action,detail_json,created_at) VALUES (?,?,?,?,?)`,
		a.TaskID, a.UserID, a.Action, nullable(a.DetailJSON), a.CreatedAt)
	return err
}

// ActivityWithUser pairs an audit row with its actor's display fields.
type ActivityWithUser struct {
	Activity domain.TaskActivity
	User     domain.UserSummary
}

// ListActivities returns a task's audit trail, newest first.
func (r Repo) ListActivities(ctx context.Context, taskID int64) ([]ActivityWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT a.id,a.task_id,a.user_id,a.action,a.detail_json,a.created_at,u.id,u.username,u.nickname,u.avatar
FROM task_activities a JOIN users u ON u.id=a.user_id WHERE a.task_id=? ORDER BY a.created_at DESC, a.id DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ActivityWithUser
	for rows.Next() {
		var item ActivityWithUser
		var detail, nickname, avatar sql.NullString
		if err := rows.Scan(&item.Activity.ID, &item.Activity.TaskID, &item.Activity.UserID, &item.Activity.Action,
			&detail, &item.Activity.CreatedAt, &item.User.ID, &item.User.Username, &nickname, &avatar); err != nil {
			return nil, err
		}
		if detail.Valid {
			item.Activity.DetailJSON = detail.String
		}
		if nickname.Valid {
			item.User.Nickname = nickname.String
		}
		if avatar.Valid {
			item.User.Avatar = avatar.String
		}
		res = append(res, item)
	}
	return res, rows.Err()
}
