package state

import (
	"sync"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// Op names a store operation.
type Op string

const (
	OpReset               Op = "reset"
	OpSetLoading          Op = "set_loading"
	OpSetError            Op = "set_error"
	OpSetUser             Op = "set_user"
	OpClearUser           Op = "clear_user"
	OpSetProjects         Op = "set_projects"
	OpAddProject          Op = "add_project"
	OpUpdateProject       Op = "update_project"
	OpUpdateSingleProject Op = "update_single_project"
	OpUpsertProject       Op = "upsert_project"
	OpDeleteProject       Op = "delete_project"
	OpAddTask             Op = "add_task"
	OpUpdateTask          Op = "update_task"
	OpDeleteTask          Op = "delete_task"
	OpAddComment          Op = "add_comment"
	OpAddProjectMember    Op = "add_project_member"
	OpRemoveProjectMember Op = "remove_project_member"
	OpAddAttachment       Op = "add_attachment"
	OpRemoveAttachment    Op = "remove_attachment"
	OpBeginInsert         Op = "begin_insert"
	OpCommitInsert        Op = "commit_insert"
	OpRollbackInsert      Op = "rollback_insert"
	OpSetNotifications    Op = "set_notifications"
	OpSetUnreadCount      Op = "set_unread_count"
	OpMarkRead            Op = "mark_notification_read"
	OpMarkAllRead         Op = "mark_all_notifications_read"
)

// Change describes one applied (or missed) operation.
type Change struct {
	// Seq increases by one per operation, in the order the store applied them.
	Seq       uint64    `json:"seq"`
	Op        Op        `json:"op"`
	ProjectID models.ID `json:"project_id,omitempty"`
	TaskID    models.ID `json:"task_id,omitempty"`
	Applied   bool      `json:"applied"`
	At        time.Time `json:"at"`
}

type hub struct {
	mu     sync.RWMutex
	buffer int
	subs   map[chan Change]struct{}
}

func newHub(buffer int) *hub {
	return &hub{buffer: buffer, subs: make(map[chan Change]struct{})}
}

func (h *hub) subscribe() chan Change {
	ch := make(chan Change, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan Change) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *hub) publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
			// Subscriber is behind; drop rather than stall the writer.
		}
	}
}
