package tracker

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/nerrad567/challenge-tracker/internal/task"
)

// HelloWorld completes task 1.
func (t *Tracker) HelloWorld(id string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.HelloWorld)
	if err != nil {
		return Result{}, err
	}
	t.completeLocked(p, task.HelloWorld)

	return Result{Success: true, Message: "🎉 Task 1 complete! You made your first GET request!"}, nil
}

// Authenticated completes task 2 when authorization carries the challenge
// credentials.
func (t *Tracker) Authenticated(id, authorization string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.Authenticated)
	if err != nil {
		return Result{}, err
	}
	if !t.creds.Match(authorization) {
		return Result{}, fmt.Errorf("%w: use Basic Auth with the correct credentials", ErrUnauthorized)
	}
	t.completeLocked(p, task.Authenticated)

	return Result{Success: true, Message: "🔐 Task 2 complete! You mastered Basic Auth!"}, nil
}

// SaySomething completes task 3. It requires the challenge credentials and a
// message that is not blank.
func (t *Tracker) SaySomething(id, authorization, message string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.SaySomething)
	if err != nil {
		return Result{}, err
	}
	if !t.creds.Match(authorization) {
		return Result{}, fmt.Errorf("%w: use Basic Auth", ErrUnauthorized)
	}
	if strings.TrimSpace(message) == "" {
		return Result{}, fmt.Errorf(`%w: include a "message" field in your JSON body`, ErrValidation)
	}
	t.completeLocked(p, task.SaySomething)

	return Result{
		Success: true,
		Message: fmt.Sprintf(`💬 Task 3 complete! You said: "%s"`, message),
	}, nil
}

// SpeedRound counts one task 4 POST. The SpeedRoundTarget-th POST completes
// the task; later POSTs report the task as already done and leave the count alone.
func (t *Tracker) SpeedRound(id string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.SpeedRound)
	if err != nil {
		return Result{}, err
	}

	if p.completed.Has(task.SpeedRound) {
		count := p.postCount
		return Result{Success: true, Message: "You already completed this task!", PostCount: &count}, nil
	}

	p.postCount++
	count := p.postCount

	if count >= SpeedRoundTarget {
		t.completeLocked(p, task.SpeedRound)
		return Result{
			Success:   true,
			Message:   fmt.Sprintf("⚡ Task 4 complete! You sent %d requests!", count),
			PostCount: &count,
		}, nil
	}

	t.notifyLocked(Event{
		Kind:          EventTaskProgress,
		ParticipantID: p.id,
		Name:          p.name,
		Task:          task.SpeedRound,
		PostCount:     count,
	})
	return Result{
		Success:   false,
		Message:   fmt.Sprintf("POST %d/%d received. Keep going!", count, SpeedRoundTarget),
		PostCount: &count,
	}, nil
}

// IssueKey generates a fresh task 5 key for the participant, replacing any
// earlier one.
func (t *Tracker) IssueKey(id string) (KeyGrant, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.SecretKey)
	if err != nil {
		return KeyGrant{}, err
	}

	key, err := t.randomHex(secretBytes)
	if err != nil {
		return KeyGrant{}, fmt.Errorf("generating key: %w", err)
	}
	p.secret = key

	t.notifyLocked(Event{
		Kind:          EventKeyIssued,
		ParticipantID: p.id,
		Name:          p.name,
		Task:          task.SecretKey,
	})
	return KeyGrant{
		Key:     key,
		Message: "Now POST this key back to /api/player/{your-id}/task5",
	}, nil
}

// VerifyKey completes task 5 when key equals the last issued key.
// The stored key survives completion, so resubmitting it succeeds again.
func (t *Tracker) VerifyKey(id, key string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.SecretKey)
	if err != nil {
		return Result{}, err
	}
	if p.secret == "" {
		return Result{}, fmt.Errorf("%w: GET your secret key first at /api/player/{id}/task5/key", ErrPrecondition)
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(p.secret)) != 1 {
		return Result{}, fmt.Errorf("%w: wrong key, use the exact key you received", ErrValidation)
	}
	t.completeLocked(p, task.SecretKey)

	return Result{Success: true, Message: "🗝️ Task 5 complete! You chained GET → POST perfectly!"}, nil
}

// SubmitImage completes task 6 when image is shaped like a data URI or a raw
// base64 string.
func (t *Tracker) SubmitImage(id, image string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.gateLocked(id, task.PictureTime)
	if err != nil {
		return Result{}, err
	}
	if image == "" {
		return Result{}, fmt.Errorf(`%w: include an "image" field with a base64 string`, ErrValidation)
	}
	if !looksLikeImage(image) {
		return Result{}, fmt.Errorf("%w: send a data URI (data:image/png;base64,...) or raw base64 string", ErrValidation)
	}
	t.completeLocked(p, task.PictureTime)

	return Result{Success: true, Message: "🖼️ Task 6 complete! Image received! You are an N8N master!"}, nil
}
