package store

import (
	"time"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// Snapshot is the cached copy of the signed-in user's data.
type Snapshot struct {
	UserID        models.ID             `cbor:"user_id"`
	Projects      []models.Project      `cbor:"projects"`
	Notifications []models.Notification `cbor:"notifications"`
	UnreadCount   int                   `cbor:"unread_count"`
	SavedAt       time.Time             `cbor:"-"`
}
