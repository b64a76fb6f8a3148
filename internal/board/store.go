package board

import "github.com/localweather/cityboard/internal/storage"

// boardKey names the board blob inside a user's storage namespace.
const boardKey = "weatherdata"

// Store is the ordered city board for one user. It is a dumb, total store:
// duplicate gating happens at the caller through IsDuplicate, so Add never
// rejects. Every mutation reads the full collection, mutates it, and persists
// it once with reindexed positions.
type Store struct {
	list *storage.List[Entry]
}

// NewStore creates the board store for the given namespace.
func NewStore(ns storage.Namespace) *Store {
	return &Store{
		list: storage.NewList(ns, boardKey, func(e *Entry, i int) {
			e.DisplayIndex = i
		}),
	}
}

// Entries returns the board in display order. Read failures degrade to empty.
func (s *Store) Entries() []Entry {
	return s.list.GetAll()
}

// Add normalizes candidate, appends it at the end, reindexes and persists.
// Returns the normalized entry as stored.
func (s *Store) Add(candidate Entry) (Entry, error) {
	entries := s.list.GetAll()

	entry := Normalize(candidate)
	entry.DisplayIndex = len(entries)
	entries = append(entries, entry)

	if err := s.list.SaveAll(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Remove deletes the first entry whose current display index equals
// displayIndex. Missing index is a no-op, not an error.
func (s *Store) Remove(displayIndex int) error {
	entries := s.list.GetAll()

	for i := range entries {
		if entries[i].DisplayIndex == displayIndex {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return s.list.SaveAll(entries)
}

// Move splices the entry at from out of the order and reinserts it at to.
// to is clamped into range; an out-of-range from makes the whole call a
// no-op. Both positions refer to the current order, not entry identity.
func (s *Store) Move(from, to int) error {
	entries := s.list.GetAll()

	if from < 0 || from >= len(entries) {
		return nil
	}
	if to < 0 {
		to = 0
	}
	if to >= len(entries) {
		to = len(entries) - 1
	}

	item := entries[from]
	entries = append(entries[:from], entries[from+1:]...)
	entries = append(entries[:to], append([]Entry{item}, entries[to:]...)...)

	return s.list.SaveAll(entries)
}

// Update shallow-merges patch into the entry at displayIndex. Missing index
// is a no-op.
func (s *Store) Update(displayIndex int, patch Patch) error {
	entries := s.list.GetAll()

	for i := range entries {
		if entries[i].DisplayIndex == displayIndex {
			patch.apply(&entries[i])
			break
		}
	}
	return s.list.SaveAll(entries)
}

// Clear removes the durable key entirely.
func (s *Store) Clear() error {
	return s.list.Clear()
}
