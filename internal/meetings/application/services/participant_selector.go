package services

import (
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
)

// ParticipantSelector holds the set of users chosen for a meeting and the
// directory of users that can be chosen.
type ParticipantSelector struct {
	mu         sync.RWMutex
	selected   map[domain.UserID]struct{}
	candidates []domain.UserRef
}

// NewParticipantSelector creates an empty selector.
func NewParticipantSelector() *ParticipantSelector {
	return &ParticipantSelector{
		selected: make(map[domain.UserID]struct{}),
	}
}

// Add selects a user. Adding a selected user is a no-op.
func (s *ParticipantSelector) Add(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[id] = struct{}{}
}

// Remove deselects a user. Removing an unselected user is a no-op.
func (s *ParticipantSelector) Remove(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, id)
}

// Current returns the selected ids in ascending order.
func (s *ParticipantSelector) Current() []domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.UserID, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains reports whether id is selected.
func (s *ParticipantSelector) Contains(id domain.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// Len returns the number of selected users.
func (s *ParticipantSelector) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// Clear deselects everyone. The candidate directory is kept.
func (s *ParticipantSelector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[domain.UserID]struct{})
}

// SetCandidates replaces the candidate directory.
func (s *ParticipantSelector) SetCandidates(users []domain.UserRef) {
	sorted := append([]domain.UserRef(nil), users...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Username) < strings.ToLower(sorted[j].Username)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = sorted
}

// Candidates returns a copy of the candidate directory ordered by username.
func (s *ParticipantSelector) Candidates() []domain.UserRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.UserRef(nil), s.candidates...)
}

// AddByUsername resolves usernames through the candidate directory and
// selects them. Nothing is selected if any username is unknown.
func (s *ParticipantSelector) AddByUsername(usernames ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]domain.UserID, len(s.candidates))
	for _, c := range s.candidates {
		byName[strings.ToLower(c.Username)] = c.ID
	}

	ids := make([]domain.UserID, 0, len(usernames))
	for _, name := range usernames {
		id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return &domain.ValidationError{Field: "participants", Message: "unknown user " + strings.TrimSpace(name)}
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		s.selected[id] = struct{}{}
	}
	return nil
}

// Selected returns the directory entries of the selected users. Selected ids
// missing from the directory are reported with an empty username.
func (s *ParticipantSelector) Selected() []domain.UserRef {
	ids := s.Current()

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[domain.UserID]string, len(s.candidates))
	for _, c := range s.candidates {
		names[c.ID] = c.Username
	}
	refs := make([]domain.UserRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, domain.UserRef{ID: id, Username: names[id]})
	}
	return refs
}
