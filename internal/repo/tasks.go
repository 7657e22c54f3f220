package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"teamboard/internal/domain"
)

const taskCols = `id,parent_id,project_id,title,description,status,priority,progress,start_date,end_date,level,sort_order,created_by,created_at,updated_at`

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO tasks(parent_id,project_id,title,description,status,priority,progress,start_date,end_date,level,sort_order,created_by,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		nullableInt64Ptr(t.ParentID), t.ProjectID, t.Title, nullable(t.Description), t.Status, t.Priority, t.Progress,
		nullableStringPtr(t.StartDate), nullableStringPtr(t.EndDate), t.Level, t.SortOrder, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var t domain.Task
	var parentID sql.NullInt64
	var desc, start, end sql.NullString
	err := scan(&t.ID, &parentID, &t.ProjectID, &t.Title, &desc, &t.Status, &t.Priority, &t.Progress,
		&start, &end, &t.Level, &t.SortOrder, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if parentID.Valid {
		t.ParentID = &parentID.Int64
	}
	if desc.Valid {
		t.Description = desc.String
	}
	if start.Valid {
		t.StartDate = &start.String
	}
	if end.Valid {
		t.EndDate = &end.String
	}
	return t, nil
}

func (r Repo) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id=?`, id)
	t, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

// TaskFilters selects tasks for a project. Exactly one mode applies:
// All returns the full flat set for client-side tree assembly;
// otherwise Parent selects direct children, and a nil Parent selects
// root tasks. Results are ordered by sort_order.
type TaskFilters struct {
	ProjectID int64
	Parent    *int64
	All       bool
}

func (r Repo) ListTasks(ctx context.Context, f TaskFilters) ([]domain.Task, error) {
	clauses := []string{"project_id=?"}
	args := []any{f.ProjectID}
	if !f.All {
		if f.Parent != nil {
			clauses = append(clauses, "parent_id=?")
			args = append(args, *f.Parent)
		} else {
			clauses = append(clauses, "parent_id IS NULL")
		}
	}
	query := `SELECT ` + taskCols + ` FROM tasks WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY sort_order ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// HasChildren flags expandable tree nodes; indexed on parent_id.
func (r Repo) HasChildren(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE parent_id=? LIMIT 1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r Repo) ListChildIDs(ctx context.Context, tx *sql.Tx, parentID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM tasks WHERE parent_id=?`, parentID)
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

// TaskUpdate carries a partial update. Nil fields are untouched;
// the date Set flags distinguish "clear" (Set with nil value) from
// "leave alone" (not Set).
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	Progress     *int
	StartDateSet bool
	StartDate    *string
	EndDateSet   bool
	EndDate      *string
	SortOrder    *int
	UpdatedAt    string
}

func (r Repo) UpdateTask(ctx context.Context, id int64, u TaskUpdate) error {
	var (
		fields []string
		args   []any
	)
	if u.Title != nil {
		fields = append(fields, "title=?")
		args = append(args, *u.Title)
	}
	if u.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*u.Description))
	}
	if u.Status != nil {
		fields = append(fields, "status=?")
		args = append(args, *u.Status)
	}
	if u.Priority != nil {
		fields = append(fields, "priority=?")
		args = append(args, *u.Priority)
	}
	if u.Progress != nil {
		fields = append(fields, "progress=?")
		args = append(args, *u.Progress)
	}
	if u.StartDateSet {
		fields = append(fields, "start_date=?")
		args = append(args, nullableStringPtr(u.StartDate))
	}
	if u.EndDateSet {
		fields = append(fields, "end_date=?")
		args = append(args, nullableStringPtr(u.EndDate))
	}
	if u.SortOrder != nil {
		fields = append(fields, "sort_order=?")
		args = append(args, *u.SortOrder)
	}
	if len(fields) == 0 {
		return nil
	}
	fields = append(fields, "updated_at=?")
	args = append(args, u.UpdatedAt, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE tasks SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTaskRows removes the given task ids. The caller orders ids so
// children precede parents; the self-referential foreign key holds at
// every step.
func (r Repo) DeleteTaskRows(ctx context.Context, tx *sql.Tx, ids []int64) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTaskDependents clears every row referencing any task in ids:
// links touching the set from either end (so no dangling targets
// survive), participants, comments, messages and activities.
func (r Repo) DeleteTaskDependents(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, 2*len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM task_links WHERE source IN (%s) OR target IN (%s)`, placeholders, placeholders), args...); err != nil {
		return err
	}
	single := args[:len(ids)]
	for _, table := range []string{"task_participants", "task_comments", "task_messages", "task_activities"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE task_id IN (%s)`, table, placeholders), single...); err != nil {
			return err
		}
	}
	return nil
}

// CountTasksByStatus powers the CLI project summary.
func (r Repo) CountTasksByStatus(ctx context.Context, projectID int64) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, count(*) FROM tasks WHERE project_id=? GROUP BY status`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		res[status] = count
	}
	return res, rows.Err()
}
