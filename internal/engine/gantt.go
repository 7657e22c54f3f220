package engine

import (
	"context"
	"time"

	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

// GanttTask is one bar in the chart payload. Field names follow the
// dhtmlx-gantt data contract.
type GanttTask struct {
	ID        int64   `json:"id"`
	Text      string  `json:"text"`
	StartDate string  `json:"start_date,omitempty"`
	Duration  int     `json:"duration"`
	Progress  float64 `json:"progress"`
	Parent    int64   `json:"parent"`
	Open      bool    `json:"open"`
}

type GanttLink struct {
	ID     int64  `json:"id"`
	Source int64  `json:"source"`
	Target int64  `json:"target"`
	Type   string `json:"type"`
}

type GanttData struct {
	Data  []GanttTask `json:"data"`
	Links []GanttLink `json:"links"`
}

// ProjectGantt projects a project's task set into chart form. Duration
// is the inclusive day span when both dates are set and 1 otherwise;
// progress maps to the 0..1 range; roots get the parent sentinel 0.
// Links whose target was deleted out from under them are passed
// through untouched.
func (e Engine) ProjectGantt(ctx context.Context, projectID int64) (GanttData, error) {
	tasks, err := e.Repo.ListTasks(ctx, repo.TaskFilters{ProjectID: projectID, All: true})
	if err != nil {
		return GanttData{}, err
	}
	out := GanttData{
		Data:  make([]GanttTask, 0, len(tasks)),
		Links: []GanttLink{},
	}
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
		g := GanttTask{
			ID:       t.ID,
			Text:     t.Title,
			Duration: ganttDuration(t),
			Progress: float64(t.Progress) / 100,
			Open:     true,
		}
		if t.StartDate != nil {
			g.StartDate = *t.StartDate
		}
		if t.ParentID != nil {
			g.Parent = *t.ParentID
		}
		out.Data = append(out.Data, g)
	}
	links, err := e.Repo.LinksForTasks(ctx, ids)
	if err != nil {
		return GanttData{}, err
	}
	for _, l := range links {
		out.Links = append(out.Links, GanttLink{ID: l.ID, Source: l.Source, Target: l.Target, Type: l.Type})
	}
	return out, nil
}

func ganttDuration(t domain.Task) int {
	if t.StartDate == nil || t.EndDate == nil {
		return 1
	}
	start, err1 := time.Parse("2006-01-02", *t.StartDate)
	end, err2 := time.Parse("2006-01-02", *t.EndDate)
	if err1 != nil || err2 != nil {
		return 1
	}
	return int(end.Sub(start).Hours()/24) + 1
}
