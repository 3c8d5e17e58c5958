package tracker

import (
	"fmt"

	"github.com/nerrad567/challenge-tracker/internal/task"
)

// gateLocked applies the checks shared by every task endpoint, in order:
// the participant must exist, then want must be the active task.
// Caller holds t.mu.
func (t *Tracker) gateLocked(id string, want task.ID) (*participant, error) {
	p, ok := t.participants[id]
	if !ok {
		return nil, fmt.Errorf("%w: register first via POST /api/register", ErrNotRegistered)
	}
	if t.active != want {
		return nil, ErrTaskNotActive
	}
	return p, nil
}

// completeLocked marks want complete for p and notifies observers when the
// set changed. Caller holds t.mu.
func (t *Tracker) completeLocked(p *participant, want task.ID) {
	if !p.completed.Add(want) {
		return
	}
	t.logger.Info("task completed", "participant_id", p.id, "task", int(want))
	t.notifyLocked(Event{
		Kind:          EventTaskCompleted,
		ParticipantID: p.id,
		Name:          p.name,
		Task:          want,
		PostCount:     p.postCount,
	})
}
