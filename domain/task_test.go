package domain

import (
	"testing"
	"time"
)

func TestStatusActive(t *testing.T) {
	if !StatusTodo.Active() || !StatusDoing.Active() {
		t.Fatal("todo and doing must count as active")
	}
	if StatusDone.Active() {
		t.Fatal("done must not count as active")
	}
	if Status("archived").Valid() {
		t.Fatal("unknown status must not validate")
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "no due date", task: Task{Status: StatusTodo}, want: false},
		{name: "due in future", task: Task{Status: StatusTodo, DueDate: &future}, want: false},
		{name: "due in past", task: Task{Status: StatusDoing, DueDate: &past}, want: true},
		{name: "done is never overdue", task: Task{Status: StatusDone, DueDate: &past}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Fatalf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskCloneDoesNotAlias(t *testing.T) {
	due := time.Now()
	task := &Task{ID: "t1", DueDate: &due, Status: StatusTodo}
	clone := task.Clone()

	*clone.DueDate = due.Add(time.Hour)
	clone.Status = StatusDone

	if !task.DueDate.Equal(due) {
		t.Fatal("mutating the clone changed the original due date")
	}
	if task.Status != StatusTodo {
		t.Fatal("mutating the clone changed the original status")
	}
}

func TestValidateNew(t *testing.T) {
	valid := Task{Title: "fix the sink", Category: CategoryFix}
	if err := valid.ValidateNew(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	empty := Task{Title: "   ", Category: CategoryFix}
	if err := empty.ValidateNew(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for blank title, got %v", err)
	}

	badCat := Task{Title: "ok", Category: Category("gardening")}
	if err := badCat.ValidateNew(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for unknown category, got %v", err)
	}
}
