package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/engine"
)

func registerTeams(api huma.API, e engine.Engine) {
	type teamPath struct {
		TeamID int64 `path:"team_id"`
	}

	type teamCreateInput struct {
		Body struct {
			Name        string `json:"name" minLength:"1"`
			Description string `json:"description,omitempty"`
			Avatar      string `json:"avatar,omitempty"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "team-create",
		Method:      http.MethodPost,
		Path:        "/teams",
		Summary:     "Create a team",
	}, func(ctx context.Context, input *teamCreateInput) (*teamBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.CreateTeam(ctx, input.Body.Name, input.Body.Description, input.Body.Avatar, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &teamBody{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team-list",
		Method:      http.MethodGet,
		Path:        "/teams",
		Summary:     "Teams the caller belongs to",
	}, func(ctx context.Context, _ *struct{}) (*teamListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		teams, err := e.Repo.ListTeamsForUser(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &teamListBody{Body: teams}, nil
	})

	type joinInput struct {
		Body struct {
			InviteCode string `json:"invite_code" minLength:"1"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "team-join",
		Method:      http.MethodPost,
		Path:        "/teams/join",
		Summary:     "Join a team by invite code",
	}, func(ctx context.Context, input *joinInput) (*teamBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.JoinTeam(ctx, input.Body.InviteCode, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &teamBody{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team-get",
		Method:      http.MethodGet,
		Path:        "/teams/{team_id}",
		Summary:     "Team details",
	}, func(ctx context.Context, input *teamPath) (*teamBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := requireTeamMember(ctx, e, input.TeamID, userID); err != nil {
			return nil, handleError(err)
		}
		t, err := e.Repo.GetTeam(ctx, input.TeamID)
		if err != nil {
			return nil, handleError(err)
		}
		return &teamBody{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team-members",
		Method:      http.MethodGet,
		Path:        "/teams/{team_id}/members",
		Summary:     "Team member roster",
	}, func(ctx context.Context, input *teamPath) (*membersBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := requireTeamMember(ctx, e, input.TeamID, userID); err != nil {
			return nil, handleError(err)
		}
		members, err := e.Repo.ListTeamMembers(ctx, input.TeamID)
		if err != nil {
			return nil, handleError(err)
		}
		return &membersBody{Body: members}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team-delete",
		Method:      http.MethodDelete,
		Path:        "/teams/{team_id}",
		Summary:     "Delete a team (creator only)",
	}, func(ctx context.Context, input *teamPath) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteTeam(ctx, input.TeamID, userID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})

	type messagesInput struct {
		TeamID int64 `path:"team_id"`
		Limit  int   `query:"limit" default:"50" minimum:"1" maximum:"500"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "team-messages",
		Method:      http.MethodGet,
		Path:        "/teams/{team_id}/messages",
		Summary:     "Recent team chat history, oldest first",
	}, func(ctx context.Context, input *messagesInput) (*messageListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := requireTeamMember(ctx, e, input.TeamID, userID); err != nil {
			return nil, handleError(err)
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 50
		}
		msgs, err := e.Repo.ListTeamMessages(ctx, input.TeamID, limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &messageListBody{Body: messageItems(msgs)}, nil
	})
}
