package repo

import (
	"context"
	"database/sql"

	"teamboard/internal/domain"
)

func (r Repo) InsertTeam(ctx context.Context, tx *sql.Tx, t domain.Team) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO teams(name,description,avatar,invite_code,creator_id,created_at) VALUES (?,?,?,?,?,?)`,
		t.Name, nullable(t.Description), nullable(t.Avatar), t.InviteCode, t.CreatorID, t.CreatedAt)
	if err != nil {
		return 0, conflictErr(err)
	}
	return res.LastInsertId()
}

const teamCols = `id,name,description,avatar,invite_code,creator_id,created_at`

func scanTeam(row *sql.Row) (domain.Team, error) {
	var t domain.Team
	var desc, avatar, invite sql.NullString
	err := row.Scan(&t.ID, &t.Name, &desc, &avatar, &invite, &t.CreatorID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if desc.Valid {
		t.Description = desc.String
	}
	if avatar.Valid {
		t.Avatar = avatar.String
	}
	if invite.Valid {
		t.InviteCode = invite.String
	}
	return t, nil
}

func (r Repo) GetTeam(ctx context.Context, id int64) (domain.Team, error) {
	return scanTeam(r.DB.QueryRowContext(ctx, `SELECT `+teamCols+` FROM teams WHERE id=?`, id))
}

func (r Repo) GetTeamByInviteCode(ctx context.Context, code string) (domain.Team, error) {
	return scanTeam(r.DB.QueryRowContext(ctx, `SELECT `+teamCols+` FROM teams WHERE invite_code=?`, code))
}

// ListTeamsForUser returns teams the user is a member of, newest first.
func (r Repo) ListTeamsForUser(ctx context.Context, userID int64) ([]domain.Team, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT t.id,t.name,t.description,t.avatar,t.invite_code,t.creator_id,t.created_at
FROM teams t JOIN team_members m ON m.team_id=t.id WHERE m.user_id=? ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Team
	for rows.Next() {
		var t domain.Team
		var desc, avatar, invite sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &desc, &avatar, &invite, &t.CreatorID, &t.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			t.Description = desc.String
		}
		if avatar.Valid {
			t.Avatar = avatar.String
		}
		if invite.Valid {
			t.InviteCode = invite.String
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) InsertTeamMember(ctx context.Context, tx *sql.Tx, m domain.TeamMember) error {
	exec := func(query string, args ...any) (sql.Result, error) {
		if tx != nil {
			return tx.ExecContext(ctx, query, args...)
		}
		return r.DB.ExecContext(ctx, query, args...)
	}
	_, err := exec(`INSERT INTO team_members(team_id,user_id,role,joined_at) VALUES (?,?,?,?)`,
		m.TeamID, m.UserID, m.Role, m.JoinedAt)
	return conflictErr(err)
}

// IsTeamMember is the membership check every task, project and link
// operation authorizes through.
func (r Repo) IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM team_members WHERE team_id=? AND user_id=? LIMIT 1`, teamID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r Repo) ListTeamMembers(ctx context.Context, teamID int64) ([]domain.UserSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT u.id,u.username,u.nickname,u.avatar
FROM users u JOIN team_members m ON m.user_id=u.id WHERE m.team_id=? ORDER BY m.joined_at ASC, m.id ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUserSummaries(rows)
}

func collectUserSummaries(rows *sql.Rows) ([]domain.UserSummary, error) {
	var res []domain.UserSummary
	for rows.Next() {
		var s domain.UserSummary
		var nickname, avatar sql.NullString
		if err := rows.Scan(&s.ID, &s.Username, &nickname, &avatar); err != nil {
			return nil, err
		}
		if nickname.Valid {
			s.Nickname = nickname.String
		}
		if avatar.Valid {
			s.Avatar = avatar.String
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) DeleteTeam(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
