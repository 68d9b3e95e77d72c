package state

import "github.com/GITHIYON49/taskmanagementapp/pkg/models"

// SetNotifications replaces the notification list.
func (s *Store) SetNotifications(list []models.Notification) {
	s.apply(OpSetNotifications, "", "", func() bool {
		s.notifications = append([]models.Notification(nil), list...)
		return true
	})
}

// SetUnreadCount records the server-reported unread count.
func (s *Store) SetUnreadCount(n int) {
	s.apply(OpSetUnreadCount, "", "", func() bool {
		if n < 0 {
			n = 0
		}
		s.unread = n
		return true
	})
}

// MarkNotificationRead flags one notification read. The unread count only drops
// when the entry was unread, and never below zero.
func (s *Store) MarkNotificationRead(id models.ID) {
	s.apply(OpMarkRead, "", "", func() bool {
		for i := range s.notifications {
			if s.notifications[i].ID != id {
				continue
			}
			if !s.notifications[i].Read {
				s.notifications[i].Read = true
				if s.unread > 0 {
					s.unread--
				}
			}
			return true
		}
		return false
	})
}

// MarkAllNotificationsRead flags every notification read and zeroes the count.
func (s *Store) MarkAllNotificationsRead() {
	s.apply(OpMarkAllRead, "", "", func() bool {
		for i := range s.notifications {
			s.notifications[i].Read = true
		}
		s.unread = 0
		return true
	})
}
