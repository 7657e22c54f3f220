package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/domain"
	"teamboard/internal/engine"
)

func registerAuth(api huma.API, e engine.Engine, cfg AuthConfig) {
	type registerInput struct {
		Body struct {
			Username string `json:"username" minLength:"1"`
			Email    string `json:"email" minLength:"1"`
			Password string `json:"password" minLength:"6"`
			Nickname string `json:"nickname,omitempty"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "auth-register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new account",
	}, func(ctx context.Context, input *registerInput) (*tokenBody, error) {
		now := time.Now().UTC().Format(time.RFC3339)
		hash, err := hashPassword(input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		u := domain.User{
			Username:  input.Body.Username,
			Email:     input.Body.Email,
			Nickname:  input.Body.Nickname,
			CreatedAt: now,
			UpdatedAt: now,
		}
		id, err := e.Repo.InsertUser(ctx, u, hash)
		if err != nil {
			return nil, handleError(err)
		}
		u.ID = id
		token, err := issueToken(cfg, id, time.Now())
		if err != nil {
			return nil, handleError(err)
		}
		out := &tokenBody{}
		out.Body.Token = token
		out.Body.User = u
		return out, nil
	})

	type loginInput struct {
		Body struct {
			Username string `json:"username" minLength:"1"`
			Password string `json:"password" minLength:"1"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in with username and password",
	}, func(ctx context.Context, input *loginInput) (*tokenBody, error) {
		u, hash, err := e.Repo.GetUserByUsername(ctx, input.Body.Username)
		if err != nil || !checkPassword(hash, input.Body.Password) {
			return nil, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		}
		token, err := issueToken(cfg, u.ID, time.Now())
		if err != nil {
			return nil, handleError(err)
		}
		out := &tokenBody{}
		out.Body.Token = token
		out.Body.User = u
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Current account",
	}, func(ctx context.Context, _ *struct{}) (*userBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := e.Repo.GetUser(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &userBody{Body: u}, nil
	})
}
