package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/domain"
	"teamboard/internal/engine"
)

func registerLinks(api huma.API, e engine.Engine) {
	type linkCreateInput struct {
		Body struct {
			Source int64  `json:"source"`
			Target int64  `json:"target"`
			Type   string `json:"type" enum:"0,1,2,3"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "link-create",
		Method:      http.MethodPost,
		Path:        "/links",
		Summary:     "Create a scheduling link between tasks",
		Description: "Authorization is scoped through the source task. Targets are not validated; a link to a later-deleted task is removed with that task's subtree.",
	}, func(ctx context.Context, input *linkCreateInput) (*linkBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.Body.Source, userID); err != nil {
			return nil, handleError(err)
		}
		l, err := e.CreateLink(ctx, domain.TaskLink{
			Source: input.Body.Source,
			Target: input.Body.Target,
			Type:   input.Body.Type,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &linkBody{Body: l}, nil
	})

	type linkPath struct {
		LinkID int64 `path:"link_id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "link-delete",
		Method:      http.MethodDelete,
		Path:        "/links/{link_id}",
		Summary:     "Delete a scheduling link",
	}, func(ctx context.Context, input *linkPath) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		l, err := e.Repo.GetLink(ctx, input.LinkID)
		if err != nil {
			return nil, handleError(err)
		}
		if _, err := requireTaskMember(ctx, e, l.Source, userID); err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteLink(ctx, input.LinkID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})
}
