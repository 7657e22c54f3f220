package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/engine"
	"teamboard/internal/repo"
)

func registerTasks(api huma.API, e engine.Engine) {
	type taskCreateInput struct {
		ProjectID int64 `path:"project_id"`
		Body      struct {
			Title       string  `json:"title" minLength:"1"`
			Description string  `json:"description,omitempty"`
			ParentID    *int64  `json:"parent_id,omitempty"`
			Status      string  `json:"status,omitempty" enum:"pending,in_progress,completed"`
			Priority    string  `json:"priority,omitempty" enum:"high,medium,low"`
			Progress    int     `json:"progress,omitempty" minimum:"0" maximum:"100"`
			StartDate   *string `json:"start_date,omitempty" format:"date"`
			EndDate     *string `json:"end_date,omitempty" format:"date"`
			SortOrder   int     `json:"sort_order,omitempty"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "task-create",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/tasks",
		Summary:     "Create a task",
		Description: "A task created with parent_id becomes a child at the parent's level plus one. The creator automatically joins the task as its first participant.",
	}, func(ctx context.Context, input *taskCreateInput) (*taskBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireProjectMember(ctx, e, input.ProjectID, userID); err != nil {
			return nil, handleError(err)
		}
		t, err := e.CreateTask(ctx, engine.TaskCreateOptions{
			ProjectID:   input.ProjectID,
			ParentID:    input.Body.ParentID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			Priority:    input.Body.Priority,
			Progress:    input.Body.Progress,
			StartDate:   input.Body.StartDate,
			EndDate:     input.Body.EndDate,
			SortOrder:   input.Body.SortOrder,
			ActorID:     userID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &taskBody{Body: taskItem{Task: t}}, nil
	})

	type listInput struct {
		ProjectID int64  `path:"project_id"`
		ParentID  int64  `query:"parent_id"`
		FetchAll  bool   `query:"fetch_all"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "task-list",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/tasks",
		Summary:     "List tasks",
		Description: "Without parameters this returns root tasks; parent_id selects one level of children; fetch_all returns the whole flat set for client-side tree assembly.",
	}, func(ctx context.Context, input *listInput) (*taskListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireProjectMember(ctx, e, input.ProjectID, userID); err != nil {
			return nil, handleError(err)
		}
		var parent *int64
		if input.ParentID != 0 {
			parent = &input.ParentID
		}
		tasks, err := e.Repo.ListTasks(ctx, repo.TaskFilters{
			ProjectID: input.ProjectID,
			Parent:    parent,
			All:       input.FetchAll,
		})
		if err != nil {
			return nil, handleError(err)
		}
		items := make([]taskItem, 0, len(tasks))
		for _, t := range tasks {
			hasChildren, err := e.Repo.HasChildren(ctx, t.ID)
			if err != nil {
				return nil, handleError(err)
			}
			items = append(items, taskItem{Task: t, HasChildren: hasChildren})
		}
		return &taskListBody{Body: items}, nil
	})

	type taskPath struct {
		TaskID int64 `path:"task_id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "task-get",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}",
		Summary:     "Task details with participants",
	}, func(ctx context.Context, input *taskPath) (*taskDetailBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := requireTaskMember(ctx, e, input.TaskID, userID)
		if err != nil {
			return nil, handleError(err)
		}
		hasChildren, err := e.Repo.HasChildren(ctx, t.ID)
		if err != nil {
			return nil, handleError(err)
		}
		participants, err := e.Repo.ListParticipants(ctx, t.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &taskDetailBody{Body: taskDetail{
			taskItem:     taskItem{Task: t, HasChildren: hasChildren},
			Participants: participants,
		}}, nil
	})

	type taskUpdateInput struct {
		TaskID int64 `path:"task_id"`
		Body   struct {
			Title       *string `json:"title,omitempty" minLength:"1"`
			Description *string `json:"description,omitempty"`
			Status      *string `json:"status,omitempty" enum:"pending,in_progress,completed"`
			Priority    *string `json:"priority,omitempty" enum:"high,medium,low"`
			Progress    *int    `json:"progress,omitempty" minimum:"0" maximum:"100"`
			StartDate   *string `json:"start_date,omitempty" format:"date"`
			EndDate     *string `json:"end_date,omitempty" format:"date"`
			ClearDates  bool    `json:"clear_dates,omitempty"`
			SortOrder   *int    `json:"sort_order,omitempty"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "task-update",
		Method:      http.MethodPut,
		Path:        "/tasks/{task_id}",
		Summary:     "Update a task",
		Description: "Omitted fields are untouched. clear_dates removes both dates; a date field wins over clear_dates for that side. Participants other than the caller are notified.",
	}, func(ctx context.Context, input *taskUpdateInput) (*taskBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		opts := engine.TaskUpdateOptions{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			Priority:    input.Body.Priority,
			Progress:    input.Body.Progress,
			SortOrder:   input.Body.SortOrder,
			ActorID:     userID,
		}
		if input.Body.StartDate != nil || input.Body.ClearDates {
			opts.StartDateSet = true
			opts.StartDate = input.Body.StartDate
		}
		if input.Body.EndDate != nil || input.Body.ClearDates {
			opts.EndDateSet = true
			opts.EndDate = input.Body.EndDate
		}
		t, err := e.UpdateTask(ctx, input.TaskID, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &taskBody{Body: taskItem{Task: t}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-delete",
		Method:      http.MethodDelete,
		Path:        "/tasks/{task_id}",
		Summary:     "Delete a task and its whole subtree",
	}, func(ctx context.Context, input *taskPath) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireTaskMember(ctx, e, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteTask(ctx, input.TaskID, userID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})

	type ganttPath struct {
		ProjectID int64 `path:"project_id"`
	}
	type ganttBody struct {
		Body engine.GanttData `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "project-gantt",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/gantt-data",
		Summary:     "Gantt chart projection of a project",
	}, func(ctx context.Context, input *ganttPath) (*ganttBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := requireProjectMember(ctx, e, input.ProjectID, userID); err != nil {
			return nil, handleError(err)
		}
		data, err := e.ProjectGantt(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &ganttBody{Body: data}, nil
	})
}
