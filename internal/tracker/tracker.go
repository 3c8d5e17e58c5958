package tracker

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/challenge-tracker/internal/task"
)

// Identifier and secret sizing.
const (
	// maxSlugRunes caps the name-derived part of a participant id.
	maxSlugRunes = 20

	// shortSuffixBytes is the random suffix size for participant ids.
	shortSuffixBytes = 2

	// longSuffixBytes is used once short suffixes keep colliding for a slug.
	longSuffixBytes = 4

	// shortSuffixAttempts bounds collision retries before switching to long suffixes.
	shortSuffixAttempts = 8

	// maxIDAttempts bounds collision retries overall.
	maxIDAttempts = 16

	// secretBytes is the task 5 key size (128 bits).
	secretBytes = 16
)

// Options configures a Tracker.
type Options struct {
	// Catalog provides the task descriptions included in snapshots. Required.
	Catalog *task.Catalog

	// Credentials gate tasks 2 and 3.
	Credentials Credentials

	// Random is the source for participant id suffixes and task 5 keys.
	// Defaults to crypto/rand.Reader.
	Random io.Reader

	// Now defaults to time.Now.
	Now func() time.Time

	Logger Logger
}

// Tracker is the single owner of participant progress and session state.
//
// All public methods are thread-safe.
type Tracker struct {
	catalog *task.Catalog
	creds   Credentials
	random  io.Reader
	now     func() time.Time
	logger  Logger

	mu           sync.Mutex
	active       task.ID
	participants map[string]*participant
	order        []string // registration order
	observers    []Observer
	version      uint64
}

// New creates a Tracker with task 1 active and no participants.
func New(opts Options) (*Tracker, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("task catalog is required")
	}

	t := &Tracker{
		catalog:      opts.Catalog,
		creds:        opts.Credentials,
		random:       opts.Random,
		now:          opts.Now,
		logger:       opts.Logger,
		active:       task.First,
		participants: make(map[string]*participant),
	}
	if t.random == nil {
		t.random = rand.Reader
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.logger == nil {
		t.logger = noopLogger{}
	}
	return t, nil
}

// AddObserver registers an observer for state changes.
func (t *Tracker) AddObserver(o Observer) {
	t.mu.Lock()
	t.observers = append(t.observers, o)
	t.mu.Unlock()
}

// Snapshot returns the current observable state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// ActiveTask returns the currently active task.
func (t *Tracker) ActiveTask() task.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Participant returns one participant's public view.
func (t *Tracker) Participant(id string) (ParticipantView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.participants[id]
	if !ok {
		return ParticipantView{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.view(), nil
}

// Stats summarises the store for metrics.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{
		ActiveTask:   t.active,
		Participants: len(t.participants),
		Completions:  make(map[task.ID]int, task.Count),
	}
	for id := task.First; id <= task.Last; id++ {
		stats.Completions[id] = 0
	}
	for _, p := range t.participants {
		for _, id := range p.completed.IDs() {
			stats.Completions[id]++
		}
	}
	return stats
}

// Register creates a participant for name and returns its view.
// The id is derived from the name plus a random suffix and is unique.
func (t *Tracker) Register(name string) (ParticipantView, error) {
	if strings.TrimSpace(name) == "" {
		return ParticipantView{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id, err := t.newParticipantIDLocked(name)
	if err != nil {
		return ParticipantView{}, err
	}

	p := &participant{
		id:           id,
		name:         name,
		registeredAt: t.now(),
	}
	t.participants[id] = p
	t.order = append(t.order, id)

	t.logger.Info("participant registered", "participant_id", id)
	t.notifyLocked(Event{Kind: EventRegistered, ParticipantID: id, Name: name})

	return p.view(), nil
}

// newParticipantIDLocked derives an unused id from name.
func (t *Tracker) newParticipantIDLocked(name string) (string, error) {
	base := slugify(name)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		n := shortSuffixBytes
		if attempt >= shortSuffixAttempts {
			n = longSuffixBytes
		}
		suffix, err := t.randomHex(n)
		if err != nil {
			return "", fmt.Errorf("generating participant id: %w", err)
		}
		id := base + "-" + suffix
		if _, taken := t.participants[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free participant id for %q after %d attempts", base, maxIDAttempts)
}

// slugify lower-cases name, replaces everything outside [a-z0-9] with '-'
// and keeps at most maxSlugRunes characters.
func slugify(name string) string {
	var b strings.Builder
	b.Grow(maxSlugRunes)
	count := 0
	for _, r := range strings.ToLower(name) {
		if count == maxSlugRunes {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
		count++
	}
	return b.String()
}

// randomHex reads n bytes from the random source and hex-encodes them.
func (t *Tracker) randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.random, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// snapshotLocked builds a Snapshot. Caller holds t.mu.
func (t *Tracker) snapshotLocked() Snapshot {
	views := make([]ParticipantView, 0, len(t.order))
	for _, id := range t.order {
		views = append(views, t.participants[id].view())
	}
	return Snapshot{
		CurrentTask:      t.active,
		Participants:     views,
		TaskDescriptions: t.catalog.All(),
		Version:          t.version,
	}
}

// notifyLocked stamps ev and hands it, with a fresh snapshot, to every
// observer. Caller holds t.mu.
func (t *Tracker) notifyLocked(ev Event) {
	t.version++
	if len(t.observers) == 0 {
		return
	}
	ev.At = t.now().UTC()
	snap := t.snapshotLocked()
	for _, o := range t.observers {
		o.Observe(ev, snap)
	}
}

// removeFromOrderLocked drops id from the registration order. Caller holds t.mu.
func (t *Tracker) removeFromOrderLocked(id string) {
	t.order = slices.DeleteFunc(t.order, func(v string) bool { return v == id })
}
