package tracker

import (
	"fmt"

	"github.com/nerrad567/challenge-tracker/internal/task"
)

// SetActiveTask switches the session to id. Activating task 4 zeroes every
// participant's POST count and activating task 5 discards every issued key.
// Completed tasks are never touched.
func (t *Tracker) SetActiveTask(id task.ID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: task must be %d-%d", ErrInvalidInput, task.First, task.Last)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = id
	for _, p := range t.participants {
		switch id {
		case task.SpeedRound:
			p.postCount = 0
		case task.SecretKey:
			p.secret = ""
		}
	}

	t.logger.Info("active task changed", "task", int(id))
	t.notifyLocked(Event{Kind: EventTaskActivated, Task: id})
	return nil
}

// Reset clears all progress and scratch state and reactivates task 1.
// Participants stay registered.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = task.First
	for _, p := range t.participants {
		p.completed.Clear()
		p.postCount = 0
		p.secret = ""
	}

	t.logger.Info("progress reset", "participants", len(t.participants))
	t.notifyLocked(Event{Kind: EventReset, Task: task.First})
}

// Remove deletes a participant. Later requests using its id fail as unregistered.
func (t *Tracker) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.participants[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(t.participants, id)
	t.removeFromOrderLocked(id)

	t.logger.Info("participant removed", "participant_id", id)
	t.notifyLocked(Event{Kind: EventRemoved, ParticipantID: id, Name: p.name})
	return nil
}
