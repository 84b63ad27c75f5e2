package navigation

import "github.com/aretw0/stepwise/pkg/domain"

// Entry is one screen in the back-stack: where the user was and the step
// that was shown there.
type Entry struct {
	NavID domain.NavID
	Step  domain.Step
}

// Stack manages navigation history for back navigation.
type Stack struct {
	entries []Entry
}

// NewStack creates a new empty navigation stack.
func NewStack() *Stack {
	return &Stack{entries: make([]Entry, 0)}
}

// Push adds a new entry on top.
func (s *Stack) Push(step domain.Step) {
	s.entries = append(s.entries, Entry{NavID: step.NavID(), Step: step})
}

// Pop removes and returns the top entry, or nil if the stack is empty.
func (s *Stack) Pop() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	entry := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return &entry
}

// Peek returns the top entry without removing it, or nil if the stack is empty.
func (s *Stack) Peek() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	return &s.entries[len(s.entries)-1]
}

// Replace swaps the top entry's step, keeping its position.
func (s *Stack) Replace(step domain.Step) {
	if len(s.entries) == 0 {
		s.Push(step)
		return
	}
	s.entries[len(s.entries)-1] = Entry{NavID: step.NavID(), Step: step}
}

// PopTo drops every entry above the topmost one with nav and reports whether
// such an entry exists. The stack is unchanged when it does not.
func (s *Stack) PopTo(nav domain.NavID) bool {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].NavID == nav {
			s.entries = s.entries[:i+1]
			return true
		}
	}
	return false
}

// IsEmpty returns true if the stack has no entries.
func (s *Stack) IsEmpty() bool {
	return len(s.entries) == 0
}

// Len returns the number of entries in the stack.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Clear removes all entries from the stack.
func (s *Stack) Clear() {
	s.entries = s.entries[:0]
}

// NavIDs lists the stack bottom to top.
func (s *Stack) NavIDs() []domain.NavID {
	ids := make([]domain.NavID, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.NavID
	}
	return ids
}
