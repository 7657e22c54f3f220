package server

import (
	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

type userBody struct {
	Body domain.User `json:"body"`
}

type tokenBody struct {
	Body struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	} `json:"body"`
}

type teamBody struct {
	Body domain.Team `json:"body"`
}

type teamListBody struct {
	Body []domain.Team `json:"body"`
}

type membersBody struct {
	Body []domain.UserSummary `json:"body"`
}

type projectBody struct {
	Body domain.Project `json:"body"`
}

type projectListBody struct {
	Body []domain.Project `json:"body"`
}

// taskItem is a task row plus the flag the lazy tree expands on.
type taskItem struct {
	domain.Task
	HasChildren bool `json:"has_children"`
}

type taskBody struct {
	Body taskItem `json:"body"`
}

type taskListBody struct {
	Body []taskItem `json:"body"`
}

// taskDetail adds the participant roster to a task.
type taskDetail struct {
	taskItem
	Participants []domain.UserSummary `json:"participants"`
}

type taskDetailBody struct {
	Body taskDetail `json:"body"`
}

type commentItem struct {
	domain.TaskComment
	User domain.UserSummary `json:"user"`
}

type commentListBody struct {
	Body []commentItem `json:"body"`
}

type commentBody struct {
	Body commentItem `json:"body"`
}

type activityItem struct {
	domain.TaskActivity
	User domain.UserSummary `json:"user"`
}

type activityListBody struct {
	Body []activityItem `json:"body"`
}

type messageItem struct {
	ID        int64              `json:"id"`
	Content   string             `json:"content"`
	CreatedAt string             `json:"created_at"`
	User      domain.UserSummary `json:"user"`
}

type messageListBody struct {
	Body []messageItem `json:"body"`
}

func messageItems(in []repo.MessageWithUser) []messageItem {
	out := make([]messageItem, 0, len(in))
	for _, m := range in {
		out = append(out, messageItem{ID: m.ID, Content: m.Content, CreatedAt: m.CreatedAt, User: m.User})
	}
	return out
}

type linkBody struct {
	Body domain.TaskLink `json:"body"`
}

type notificationListBody struct {
	Body struct {
		Notifications []domain.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	} `json:"body"`
}

type okBody struct {
	Body map[string]string `json:"body"`
}

func ok() *okBody {
	return &okBody{Body: map[string]string{"status": "ok"}}
}
