package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/engine"
)

// registerTaskSocial covers the collaboration surface of a task:
// participation, comments, chat history and the activity trail.
func registerTaskSocial(api huma.API, e engine.Engine) {
	type taskPath struct {
		TaskID int64 `path:"task_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "task-join",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/join",
		Summary:     "Join a task as a participant",
	}, func(ctx context.Context, input *taskPath) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		if err := e.JoinTask(ctx, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-leave",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/leave",
		Summary:     "Leave a task",
	}, func(ctx context.Context, input *taskPath) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		if err := e.LeaveTask(ctx, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-participants",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/participants",
		Summary:     "Participants of a task",
	}, func(ctx context.Context, input *taskPath) (*membersBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		participants, err := e.Repo.ListParticipants(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &membersBody{Body: participants}, nil
	})

	type commentInput struct {
		TaskID int64 `path:"task_id"`
		Body   struct {
			Content string `json:"content" minLength:"1"`
			ReplyTo *int64 `json:"reply_to,omitempty"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "comment-create",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/comments",
		Summary:     "Comment on a task",
	}, func(ctx context.Context, input *commentInput) (*commentBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		c, err := e.AddComment(ctx, input.TaskID, userID, input.Body.Content, input.Body.ReplyTo)
		if err != nil {
			return nil, handleError(err)
		}
		u, err := e.Repo.GetUserSummary(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &commentBody{Body: commentItem{TaskComment: c, User: u}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "comment-list",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/comments",
		Summary:     "Comments of a task, oldest first",
	}, func(ctx context.Context, input *taskPath) (*commentListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		comments, err := e.Repo.ListComments(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		items := make([]commentItem, 0, len(comments))
		for _, c := range comments {
			items = append(items, commentItem{TaskComment: c.Comment, User: c.User})
		}
		return &commentListBody{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-messages",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/messages",
		Summary:     "Chat messages of a task, oldest first",
	}, func(ctx context.Context, input *taskPath) (*messageListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		msgs, err := e.Repo.ListTaskMessages(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &messageListBody{Body: messageItems(msgs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-activities",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/activities",
		Summary:     "Activity trail of a task, newest first",
	}, func(ctx context.Context, input *taskPath) (*activityListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		activities, err := e.Repo.ListActivities(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		items := make([]activityItem, 0, len(activities))
		for _, a := range activities {
			items = append(items, activityItem{TaskActivity: a.Activity, User: a.User})
		}
		return &activityListBody{Body: items}, nil
	})
}
