package repo

import (
	"context"
	"database/sql"

	"teamboard/internal/domain"
)

// MessageWithUser pairs a chat message with its sender's display
// fields, the shape both histories and live broadcasts carry.
type MessageWithUser struct {
	ID        int64
	Content   string
	CreatedAt string
	User      domain.UserSummary
}

func (r Repo) InsertTaskMessage(ctx context.Context, m domain.TaskMessage) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO task_messages(task_id,user_id,content,created_at) VALUES (?,?,?,?)`,
		m.TaskID, m.UserID, m.Content, m.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) ListTaskMessages(ctx context.Context, taskID int64) ([]MessageWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT m.id,m.content,m.created_at,u.id,u.username,u.nickname,u.avatar
FROM task_messages m JOIN users u ON u.id=m.user_id WHERE m.task_id=? ORDER BY m.created_at ASC, m.id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r Repo) InsertTeamMessage(ctx context.Context, m domain.TeamMessage) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO team_messages(team_id,user_id,content,created_at) VALUES (?,?,?,?)`,
		m.TeamID, m.UserID, m.Content, m.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListTeamMessages returns the most recent page of team chat,
// reversed to oldest-first for display.
func (r Repo) ListTeamMessages(ctx context.Context, teamID int64, limit int) ([]MessageWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT m.id,m.content,m.created_at,u.id,u.username,u.nickname,u.avatar
FROM team_messages m JOIN users u ON u.id=m.user_id WHERE m.team_id=? ORDER BY m.created_at DESC, m.id DESC LIMIT ?`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	page, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func collectMessages(rows *sql.Rows) ([]MessageWithUser, error) {
	var res []MessageWithUser
	for rows.Next() {
		var m MessageWithUser
		var nickname, avatar sql.NullString
		if err := rows.Scan(&m.ID, &m.Content, &m.CreatedAt, &m.User.ID, &m.User.Username, &nickname, &avatar); err != nil {
			return nil, err
		}
		if nickname.Valid {
			m.User.Nickname = nickname.String
		}
		if avatar.Valid {
			m.User.Avatar = avatar.String
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
