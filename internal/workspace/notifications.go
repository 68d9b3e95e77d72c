package workspace

import (
	"context"
	"errors"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// RefreshNotifications reloads the notification list and unread count.
func (w *Workspace) RefreshNotifications(ctx context.Context) error {
	const op = "refresh_notifications"
	list, err := w.api.ListNotifications(ctx)
	if err != nil {
		return w.fail(ctx, op, err, "Failed to load notifications")
	}
	n, err := w.api.UnreadCount(ctx)
	if err != nil {
		return w.fail(ctx, op, err, "Failed to load notifications")
	}
	w.st.SetNotifications(list)
	w.st.SetUnreadCount(n)
	return nil
}

// MarkNotificationRead marks one notification read locally, then on the server.
// On failure the list is refetched.
func (w *Workspace) MarkNotificationRead(ctx context.Context, id models.ID) error {
	const op = "mark_notification_read"
	w.st.MarkNotificationRead(id)
	if err := w.api.MarkNotificationRead(ctx, id); err != nil {
		err = w.fail(ctx, op, err, "Failed to mark notification as read")
		if rerr := w.RefreshNotifications(ctx); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}

// MarkAllNotificationsRead marks everything read on the server, then locally.
func (w *Workspace) MarkAllNotificationsRead(ctx context.Context) error {
	const op = "mark_all_notifications_read"
	if err := w.api.MarkAllNotificationsRead(ctx); err != nil {
		return w.fail(ctx, op, err, "Failed to mark all as read")
	}
	w.st.MarkAllNotificationsRead()
	w.success(op, "All notifications marked as read")
	return nil
}
