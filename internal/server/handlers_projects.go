package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/domain"
	"teamboard/internal/engine"
	"teamboard/internal/repo"
)

func registerProjects(api huma.API, e engine.Engine) {
	type projectCreateInput struct {
		TeamID int64 `path:"team_id"`
		Body   struct {
			Name        string  `json:"name" minLength:"1"`
			Description string  `json:"description,omitempty"`
			Status      string  `json:"status,omitempty" enum:"active,archived,completed"`
			StartDate   *string `json:"start_date,omitempty" format:"date"`
			EndDate     *string `json:"end_date,omitempty" format:"date"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "project-create",
		Method:      http.MethodPost,
		Path:        "/teams/{team_id}/projects",
		Summary:     "Create a project",
	}, func(ctx context.Context, input *projectCreateInput) (*projectBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := requireTeamMember(ctx, e, input.TeamID, userID); err != nil {
			return nil, handleError(err)
		}
		p, err := e.CreateProject(ctx, domain.Project{
			TeamID:      input.TeamID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			StartDate:   input.Body.StartDate,
			EndDate:     input.Body.EndDate,
			CreatedBy:   userID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &projectBody{Body: p}, nil
	})

	type teamPath struct {
		TeamID int64 `path:"team_id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "project-list",
		Method:      http.MethodGet,
		Path:        "/teams/{team_id}/projects",
		Summary:     "Projects of a team",
	}, func(ctx context.Context, input *teamPath) (*projectListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := requireTeamMember(ctx, e, input.TeamID, userID); err != nil {
			return nil, handleError(err)
		}
		projects, err := e.Repo.ListProjects(ctx, input.TeamID)
		if err != nil {
			return nil, handleError(err)
		}
		return &projectListBody{Body: projects}, nil
	})

	type projectPath struct {
		ProjectID int64 `path:"project_id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "project-get",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Project details",
	}, func(ctx context.Context, input *projectPath) (*projectBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		p, err := requireProjectMember(ctx, e, input.ProjectID, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &projectBody{Body: p}, nil
	})

	type projectUpdateInput struct {
		ProjectID int64 `path:"project_id"`
		Body      struct {
			Name        *string `json:"name,omitempty" minLength:"1"`
			Description *string `json:"description,omitempty"`
			Status      *string `json:"status,omitempty" enum:"active,archived,completed"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "project-update",
		Method:      http.MethodPut,
		Path:        "/projects/{project_id}",
		Summary:     "Update a project",
	}, func(ctx context.Context, input *projectUpdateInput) (*projectBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireProjectMember(ctx, e, input.ProjectID, userID); err != nil {
			return nil, handleError(err)
		}
		err := e.Repo.UpdateProject(ctx, input.ProjectID, repo.ProjectUpdate{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Status:      input.Body.Status,
		})
		if err != nil {
			return nil, handleError(err)
		}
		p, err := e.Repo.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &projectBody{Body: p}, nil
	})
}
