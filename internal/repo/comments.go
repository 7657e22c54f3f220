package repo

import (
	"context"
	"database/sql"

	"teamboard/internal/domain"
)

func (r Repo) InsertComment(ctx context.Context, c domain.TaskComment) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO task_comments(task_id,user_id,content,reply_to,created_at) VALUES (?,?,?,?,?)`,
		c.TaskID, c.UserID, c.Content, nullableInt64Ptr(c.ReplyTo), c.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CommentWithUser pairs a comment with its author's display fields.
type CommentWithUser struct {
	Comment domain.TaskComment
	User    domain.UserSummary
}

// ListComments returns a task's comments oldest first, the order a
// discussion thread reads in.
func (r Repo) ListComments(ctx context.Context, taskID int64) ([]CommentWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT c.id,c.task_id,c.user_id,c.content,c.reply_to,c.created_at,u.id,u.username,u.nickname,u.avatar
FROM task_comments c JOIN users u ON u.id=c.user_id WHERE c.task_id=? ORDER BY c.created_at ASC, c.id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []CommentWithUser
	for rows.Next() {
		var item CommentWithUser
		var replyTo sql.NullInt64
		var nickname, avatar sql.NullString
		if err := rows.Scan(&item.Comment.ID, &item.Comment.TaskID, &item.Comment.UserID, &item.Comment.Content,
			&replyTo, &item.Comment.CreatedAt, &item.User.ID, &item.User.Username, &nickname, &avatar); err != nil {
			return nil, err
		}
		if replyTo.Valid {
			item.Comment.ReplyTo = &replyTo.Int64
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
