package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"teamboard/internal/domain"
)

const projectCols = `id,team_id,name,description,status,start_date,end_date,created_by,created_at`

func (r Repo) InsertProject(ctx context.Context, p domain.Project) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO projects(team_id,name,description,status,start_date,end_date,created_by,created_at) VALUES (?,?,?,?,?,?,?,?)`,
		p.TeamID, p.Name, nullable(p.Description), p.Status, nullableStringPtr(p.StartDate), nullableStringPtr(p.EndDate), p.CreatedBy, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanProject(row *sql.Row) (domain.Project, error) {
	var p domain.Project
	var desc, start, end sql.NullString
	err := row.Scan(&p.ID, &p.TeamID, &p.Name, &desc, &p.Status, &start, &end, &p.CreatedBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	if start.Valid {
		p.StartDate = &start.String
	}
	if end.Valid {
		p.EndDate = &end.String
	}
	return p, nil
}

func (r Repo) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	return scanProject(r.DB.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id=?`, id))
}

func (r Repo) ListProjects(ctx context.Context, teamID int64) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+projectCols+` FROM projects WHERE team_id=? ORDER BY created_at DESC, id DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		var p domain.Project
		var desc, start, end sql.NullString
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &desc, &p.Status, &start, &end, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = desc.String
		}
		if start.Valid {
			p.StartDate = &start.String
		}
		if end.Valid {
			p.EndDate = &end.String
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
}

func (r Repo) UpdateProject(ctx context.Context, id int64, u ProjectUpdate) error {
	var (
		fields []string
		args   []any
	)
	if u.Name != nil {
		fields = append(fields, "name=?")
		args = append(args, *u.Name)
	}
	if u.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*u.Description))
	}
	if u.Status != nil {
		fields = append(fields, "status=?")
		args = append(args, *u.Status)
	}
	if len(fields) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE projects SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
