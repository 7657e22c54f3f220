package repo

import (
	"context"
	"database/sql"

	"teamboard/internal/domain"
)

func (r Repo) InsertNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO notifications(user_id,type,content,related_id,is_read,created_at) VALUES (?,?,?,?,?,?)`,
		n.UserID, n.Type, n.Content, nullableInt64Ptr(n.RelatedID), boolToInt(n.IsRead), n.CreatedAt)
	return err
}

func (r Repo) GetNotification(ctx context.Context, id int64) (domain.Notification, error) {
	var n domain.Notification
	var related sql.NullInt64
	var isRead int
	err := r.DB.QueryRowContext(ctx, `SELECT id,user_id,type,content,related_id,is_read,created_at FROM notifications WHERE id=?`, id).
		Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &related, &isRead, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return n, ErrNotFound
	}
	if err != nil {
		return n, err
	}
	if related.Valid {
		n.RelatedID = &related.Int64
	}
	n.IsRead = isRead != 0
	return n, nil
}

// ListNotifications returns a user's notifications, newest first.
func (r Repo) ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,user_id,type,content,related_id,is_read,created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var related sql.NullInt64
		var isRead int
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &related, &isRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if related.Valid {
			n.RelatedID = &related.Int64
		}
		n.IsRead = isRead != 0
		res = append(res, n)
	}
	return res, rows.Err()
}

// MarkNotificationRead flips is_read; the only mutation a
// notification row ever sees.
func (r Repo) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0`, userID)
	return err
}

func (r Repo) CountUnreadNotifications(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM notifications WHERE user_id=? AND is_read=0`, userID).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
