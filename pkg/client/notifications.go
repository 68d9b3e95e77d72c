package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// ListNotifications returns the signed-in user's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := c.doJSON(ctx, http.MethodGet, "/notifications", nil, &out)
	return out, err
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out models.UnreadCount
	err := c.doJSON(ctx, http.MethodGet, "/notifications/unread-count", nil, &out)
	return out.Count, err
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id.String())+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/mark-all-read", nil, nil)
}
