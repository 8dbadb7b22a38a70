package usecase

import (
	"sync"

	"github.com/tasksnap/backend/domain"
)

type EventType string

const (
	EventTaskCreated         EventType = "task.created"
	EventTaskUpdated         EventType = "task.updated"
	EventTaskCompleted       EventType = "task.completed"
	EventTaskReopened        EventType = "task.reopened"
	EventTaskDeleted         EventType = "task.deleted"
	EventRemoteApplied       EventType = "task.remote_applied"
	EventStreakChanged       EventType = "streak.changed"
	EventAchievementUnlocked EventType = "achievement.unlocked"
)

// Event carries the committed state change to subscribers. Only the fields
// relevant to the event type are set.
type Event struct {
	Type        EventType
	Task        *domain.Task
	Streak      *domain.StreakState
	Achievement *domain.Achievement
}

type Listener func(Event)

// Bus fans events out to listeners synchronously, in subscription order,
// after the originating mutation has committed.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(l Listener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}
