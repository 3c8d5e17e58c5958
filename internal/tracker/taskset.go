package tracker

import "github.com/nerrad567/challenge-tracker/internal/task"

// TaskSet is a set of task ids stored as a bitmask.
// The zero value is an empty set.
type TaskSet uint8

// Add inserts id. Adding a present id is a no-op. Reports whether the set changed.
func (s *TaskSet) Add(id task.ID) bool {
	if !id.Valid() || s.Has(id) {
		return false
	}
	*s |= 1 << uint(id)
	return true
}

// Has reports whether id is in the set.
func (s TaskSet) Has(id task.ID) bool {
	return id.Valid() && s&(1<<uint(id)) != 0
}

// Remove deletes id. Reports whether the set changed.
func (s *TaskSet) Remove(id task.ID) bool {
	if !s.Has(id) {
		return false
	}
	*s &^= 1 << uint(id)
	return true
}

// Clear empties the set.
func (s *TaskSet) Clear() {
	*s = 0
}

// Len returns the number of ids in the set.
func (s TaskSet) Len() int {
	n := 0
	for id := task.First; id <= task.Last; id++ {
		if s.Has(id) {
			n++
		}
	}
	return n
}

// IDs returns the members in ascending order. Never nil.
func (s TaskSet) IDs() []task.ID {
	ids := make([]task.ID, 0, task.Count)
	for id := task.First; id <= task.Last; id++ {
		if s.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
