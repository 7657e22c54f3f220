package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"teamboard/internal/engine"
)

func registerNotifications(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "notification-list",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "Caller's notifications, newest first",
	}, func(ctx context.Context, _ *struct{}) (*notificationListBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		notifications, err := e.Repo.ListNotifications(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		unread, err := e.Repo.CountUnreadNotifications(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &notificationListBody{}
		out.Body.Notifications = notifications
		out.Body.UnreadCount = unread
		return out, nil
	})

	type notificationPath struct {
		NotificationID int64 `path:"notification_id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "notification-read",
		Method:      http.MethodPut,
		Path:        "/notifications/{notification_id}/read",
		Summary:     "Mark one notification read",
	}, func(ctx context.Context, input *notificationPath) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		n, err := e.Repo.GetNotification(ctx, input.NotificationID)
		if err != nil {
			return nil, handleError(err)
		}
		if n.UserID != userID {
			return nil, handleError(engine.ErrForbidden)
		}
		if err := e.Repo.MarkNotificationRead(ctx, input.NotificationID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "notification-read-all",
		Method:      http.MethodPut,
		Path:        "/notifications/read-all",
		Summary:     "Mark every notification read",
	}, func(ctx context.Context, _ *struct{}) (*okBody, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.Repo.MarkAllNotificationsRead(ctx, userID); err != nil {
			return nil, handleError(err)
		}
		return ok(), nil
	})
}
