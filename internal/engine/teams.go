package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teamboard/internal/domain"
)

// CreateTeam inserts the team and its creator membership in one
// transaction. The invite code is the first 8 characters of a random
// UUID, short enough to paste into a chat.
func (e Engine) CreateTeam(ctx context.Context, name, description, avatar string, creatorID int64) (domain.Team, error) {
	if name == "" {
		return domain.Team{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	now := e.now().UTC().Format(time.RFC3339)
	t := domain.Team{
		Name:        name,
		Description: description,
		Avatar:      avatar,
		InviteCode:  uuid.NewString()[:8],
		CreatorID:   creatorID,
		CreatedAt:   now,
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Team{}, err
	}
	defer tx.Rollback()

	id, err := e.Repo.InsertTeam(ctx, tx, t)
	if err != nil {
		return domain.Team{}, err
	}
	t.ID = id
	if err := e.Repo.InsertTeamMember(ctx, tx, domain.TeamMember{
		TeamID:   id,
		UserID:   creatorID,
		Role:     "creator",
		JoinedAt: now,
	}); err != nil {
		return domain.Team{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

// JoinTeam adds the user as a member via invite code. Joining twice
// surfaces repo.ErrConflict.
func (e Engine) JoinTeam(ctx context.Context, inviteCode string, userID int64) (domain.Team, error) {
	t, err := e.Repo.GetTeamByInviteCode(ctx, inviteCode)
	if err != nil {
		return domain.Team{}, err
	}
	err = e.Repo.InsertTeamMember(ctx, nil, domain.TeamMember{
		TeamID:   t.ID,
		UserID:   userID,
		Role:     "member",
		JoinedAt: e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

// DeleteTeam is creator-only.
func (e Engine) DeleteTeam(ctx context.Context, teamID, actorID int64) error {
	t, err := e.Repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if t.CreatorID != actorID {
		return ErrForbidden
	}
	return e.Repo.DeleteTeam(ctx, teamID)
}

func (e Engine) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.Name == "" {
		return domain.Project{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if err := validateDate(p.StartDate); err != nil {
		return domain.Project{}, err
	}
	if err := validateDate(p.EndDate); err != nil {
		return domain.Project{}, err
	}
	if _, err := e.Repo.GetTeam(ctx, p.TeamID); err != nil {
		return domain.Project{}, err
	}
	p.CreatedAt = e.now().UTC().Format(time.RFC3339)
	id, err := e.Repo.InsertProject(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	p.ID = id
	return p, nil
}

// PostTeamMessage persists one chat message and returns it hydrated
// with the sender's display fields, ready for broadcast.
func (e Engine) PostTeamMessage(ctx context.Context, teamID, userID int64, content string) (domain.TeamMessage, domain.UserSummary, error) {
	m := domain.TeamMessage{
		TeamID:    teamID,
		UserID:    userID,
		Content:   content,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	id, err := e.Repo.InsertTeamMessage(ctx, m)
	if err != nil {
		return domain.TeamMessage{}, domain.UserSummary{}, err
	}
	m.ID = id
	u, err := e.Repo.GetUserSummary(ctx, userID)
	if err != nil {
		return domain.TeamMessage{}, domain.UserSummary{}, err
	}
	return m, u, nil
}
