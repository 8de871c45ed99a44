package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

const (
	endpointNotifications = "/all-notification"
	endpointUnread        = "/unread-notification"
	endpointReadOne       = "/read-notification/:id"
	endpointReadAll       = "/read-all-notification"
)

func (c *Client) AllNotifications(ctx context.Context, token string) ([]models.Notification, error) {
	return c.notificationList(ctx, token, endpointNotifications)
}

func (c *Client) UnreadNotifications(ctx context.Context, token string) ([]models.Notification, error) {
	return c.notificationList(ctx, token, endpointUnread)
}

func (c *Client) MarkNotificationRead(ctx context.Context, token, id string) (string, error) {
	return c.ack(ctx, request{
		method:   http.MethodPut,
		path:     "/read-notification/" + url.PathEscape(id),
		endpoint: endpointReadOne,
		token:    token,
	})
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, token string) (string, error) {
	return c.ack(ctx, request{method: http.MethodPut, path: endpointReadAll, endpoint: endpointReadAll, token: token})
}

func (c *Client) notificationList(ctx context.Context, token, endpoint string) ([]models.Notification, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: endpoint, endpoint: endpoint, token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Notification](endpoint, env.Data)
}

// NotificationSource binds the notification endpoints to one session token
type NotificationSource struct {
	client *Client
	token  string
}

func (c *Client) Notifications(token string) *NotificationSource {
	return &NotificationSource{client: c, token: token}
}

func (s *NotificationSource) Unread(ctx context.Context) ([]models.Notification, error) {
	return s.client.UnreadNotifications(ctx, s.token)
}

func (s *NotificationSource) All(ctx context.Context) ([]models.Notification, error) {
	return s.client.AllNotifications(ctx, s.token)
}

func (s *NotificationSource) MarkRead(ctx context.Context, id string) (string, error) {
	return s.client.MarkNotificationRead(ctx, s.token, id)
}

func (s *NotificationSource) MarkAllRead(ctx context.Context) (string, error) {
	return s.client.MarkAllNotificationsRead(ctx, s.token)
}
