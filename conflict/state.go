package conflict

import "sync"

// State remembers "do this for all" choices for one batch. The zero value
// asks about every conflict. Share one *State per batch; it is safe for
// concurrent use.
type State struct {
	mu           sync.Mutex
	overwriteAll bool
	renameAll    bool
}

// NewState creates an empty batch state
func NewState() *State {
	return &State{}
}

// OverwriteAll reports whether existing files are overwritten without asking
func (s *State) OverwriteAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overwriteAll
}

// RenameAll reports whether conflicting outputs are renamed without asking
func (s *State) RenameAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renameAll
}

// SetOverwriteAll makes overwrite the sticky choice
func (s *State) SetOverwriteAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overwriteAll = true
}

// SetRenameAll makes rename the sticky choice
func (s *State) SetRenameAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renameAll = true
}
