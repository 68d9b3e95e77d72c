package models

// Project statuses.
const (
	ProjectPlanning  = "PLANNING"
	ProjectActive    = "ACTIVE"
	ProjectOnHold    = "ON_HOLD"
	ProjectCompleted = "COMPLETED"
	ProjectCancelled = "CANCELLED"
)

// Task statuses.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Task types.
const (
	TypeTask        = "TASK"
	TypeBug         = "BUG"
	TypeFeature     = "FEATURE"
	TypeImprovement = "IMPROVEMENT"
	TypeOther       = "OTHER"
)

// Priorities shared by projects and tasks.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// User and member roles.
const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// TaskStatuses lists task statuses in board order.
var TaskStatuses = []string{StatusTodo, StatusInProgress, StatusCompleted}

// TaskTypes lists task types in display order.
var TaskTypes = []string{TypeTask, TypeBug, TypeFeature, TypeImprovement, TypeOther}

// Priorities lists priorities from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ProjectStatuses lists project statuses in display order.
var ProjectStatuses = []string{ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled}

// Default limits.
const (
	DefaultMaxRequestBodyBytes = 1 << 20 // 1 MiB
	DefaultSSEChannelBuffer    = 256
	MaxAttachmentBytes         = 5 << 20 // 5 MiB, enforced client-side before upload
	MaxAvatarBytes             = 2 << 20
	DefaultPollIntervalSec     = 30
	DefaultRequestTimeoutSec   = 30
)
