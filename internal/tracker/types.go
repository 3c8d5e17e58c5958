package tracker

import (
	"time"

	"github.com/nerrad567/challenge-tracker/internal/task"
)

// SpeedRoundTarget is the number of POSTs that completes task 4.
const SpeedRoundTarget = 4

// participant is the mutable progress record. Only the Tracker touches it,
// always under its lock.
type participant struct {
	id           string
	name         string
	completed    TaskSet
	postCount    int    // task 4 scratch
	secret       string // task 5 scratch; empty means no key issued
	registeredAt time.Time
}

func (p *participant) view() ParticipantView {
	return ParticipantView{
		ID:             p.id,
		Name:           p.name,
		CompletedTasks: p.completed.IDs(),
		PostCount:      p.postCount,
	}
}

// ParticipantView is the public, copyable form of a participant.
type ParticipantView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CompletedTasks []task.ID `json:"completedTasks"`
	PostCount      int       `json:"postCount"`
}

// Snapshot is the full observable state pushed to the live feed and served
// by the pull endpoint.
type Snapshot struct {
	CurrentTask      task.ID           `json:"currentTask"`
	Participants     []ParticipantView `json:"participants"`
	TaskDescriptions []task.Definition `json:"taskDescriptions"`

	// Version increases with every notification. A snapshot with a higher
	// version is newer.
	Version uint64 `json:"-"`
}

// Result is the success payload of a task endpoint.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// PostCount is set by the speed round only.
	PostCount *int `json:"postCount,omitempty"`
}

// KeyGrant is returned when a task 5 key is issued.
type KeyGrant struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// EventKind classifies a state change.
type EventKind string

// Event kinds.
const (
	EventRegistered    EventKind = "participant.registered"
	EventRemoved       EventKind = "participant.removed"
	EventTaskCompleted EventKind = "task.completed"
	EventTaskProgress  EventKind = "task.progress"
	EventKeyIssued     EventKind = "task.key_issued"
	EventTaskActivated EventKind = "session.task_activated"
	EventReset         EventKind = "session.reset"
)

// Event describes one accepted mutation.
type Event struct {
	Kind          EventKind `json:"kind"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	Task          task.ID   `json:"task,omitempty"`
	PostCount     int       `json:"post_count,omitempty"`
	At            time.Time `json:"at"`
}

// Observer is notified after every accepted mutation.
//
// Observe is called with the tracker lock held: implementations must return
// quickly and never call back into the Tracker.
type Observer interface {
	Observe(ev Event, snap Snapshot)
}

// Stats is a point-in-time summary for metrics.
type Stats struct {
	ActiveTask   task.ID         `json:"active_task"`
	Participants int             `json:"participants"`
	Completions  map[task.ID]int `json:"completions"`
}

// Logger defines the logging interface used by the Tracker.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
