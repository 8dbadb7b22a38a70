package domain

import (
	"strings"
	"time"
)

// Status is the kanban column a task currently occupies.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Valid reports whether the status is one of the three kanban columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Active reports whether the status counts against the tier limit.
func (s Status) Active() bool {
	return s == StatusTodo || s == StatusDoing
}

// Category classifies what kind of chore a task captures.
type Category string

const (
	CategoryClean    Category = "clean"
	CategoryFix      Category = "fix"
	CategoryBuy      Category = "buy"
	CategoryOrganize Category = "organize"
	CategoryReturn   Category = "return"
	CategoryOther    Category = "other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryClean,
		CategoryFix,
		CategoryBuy,
		CategoryOrganize,
		CategoryReturn,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryClean, CategoryFix, CategoryBuy, CategoryOrganize, CategoryReturn, CategoryOther:
		return true
	}
	return false
}

// Task represents one user-captured unit of work on the board.
//
// CompletedAt is non-nil exactly when Status is done; the board store is the
// only writer of Status and CompletedAt.
type Task struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SpaceID        string     `json:"space_id,omitempty"`
	Title          string     `json:"title"`
	Category       Category   `json:"category"`
	Status         Status     `json:"status"`
	Urgent         bool       `json:"urgent"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	BeforeImageRef string     `json:"before_image_ref,omitempty"`
	AfterImageRef  string     `json:"after_image_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// IsActive reports whether the task counts against the tier limit.
func (t *Task) IsActive() bool {
	return t != nil && t.Status.Active()
}

// IsCompleted reports whether the task sits in the done column.
func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// IsOverdue reports whether the task has a due date in the past and is not done.
func (t *Task) IsOverdue(reference time.Time) bool {
	if t == nil || t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return t.DueDate.Before(reference)
}

// Clone returns a deep copy so readers never alias store-owned state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		clone.CompletedAt = &completed
	}
	return &clone
}

// ValidateNew checks the fields a caller must supply at creation time.
func (t *Task) ValidateNew() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewError(ErrCodeInvalid, "task title must not be empty")
	}
	if !t.Category.Valid() {
		return NewError(ErrCodeInvalid, "unknown task category")
	}
	return nil
}
