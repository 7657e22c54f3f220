package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"teamboard/internal/domain"
)

func (r Repo) InsertLink(ctx context.Context, l domain.TaskLink) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO task_links(source,target,type) VALUES (?,?,?)`,
		l.Source, l.Target, l.Type)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetLink(ctx context.Context, id int64) (domain.TaskLink, error) {
	var l domain.TaskLink
	err := r.DB.QueryRowContext(ctx, `SELECT id,source,target,type FROM task_links WHERE id=?`, id).
		Scan(&l.ID, &l.Source, &l.Target, &l.Type)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	return l, err
}

func (r Repo) DeleteLink(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM task_links WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LinksForTasks returns links whose source lies in the given set.
// Links whose target falls outside the set are still returned; the
// Gantt client renders those tolerantly.
func (r Repo) LinksForTasks(ctx context.Context, taskIDs []int64) ([]domain.TaskLink, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(taskIDs)), ",")
	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`SELECT id,source,target,type FROM task_links WHERE source IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TaskLink
	for rows.Next() {
		var l domain.TaskLink
		if err := rows.Scan(&l.ID, &l.Source, &l.Target, &l.Type); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}
