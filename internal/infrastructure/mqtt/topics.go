package mqtt

import "strings"

// Topics builds topic names under a prefix.
//
// The zero value uses DefaultTopicPrefix.
type Topics struct {
	Prefix string
}

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "challenge"

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// State is the retained snapshot topic.
func (t Topics) State() string {
	return t.prefix() + "/state"
}

// Event is the topic for one event kind. Dots in the kind become slashes,
// so "task.completed" maps to {prefix}/events/task/completed and
// subscribers can filter with {prefix}/events/task/#.
func (t Topics) Event(kind string) string {
	return t.prefix() + "/events/" + strings.ReplaceAll(kind, ".", "/")
}

// AllEvents matches every event topic.
func (t Topics) AllEvents() string {
	return t.prefix() + "/events/#"
}

// SystemStatus is the retained online/offline topic, also used for the LWT.
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}
