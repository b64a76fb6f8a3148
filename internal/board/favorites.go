package board

import "github.com/localweather/cityboard/internal/storage"

// favoritesKey names the favorites blob inside a user's storage namespace.
const favoritesKey = "weatherdata_favorites"

// Favorites is a second persisted list with its own index space. Membership
// is independent of the board and decided through the same duplicate
// detector.
type Favorites struct {
	list *storage.List[Entry]
}

// NewFavorites creates the favorites store for the given namespace.
func NewFavorites(ns storage.Namespace) *Favorites {
	return &Favorites{
		list: storage.NewList(ns, favoritesKey, func(e *Entry, i int) {
			e.DisplayIndex = i
		}),
	}
}

// All returns the favorites in display order.
func (f *Favorites) All() []Entry {
	return f.list.GetAll()
}

// Contains reports whether candidate is already a favorite.
func (f *Favorites) Contains(candidate Entry) bool {
	return IsDuplicate(candidate, f.list.GetAll())
}

// Toggle adds candidate when it is not yet a favorite and removes the
// matching favorites when it is. Returns true when the entry was added.
func (f *Favorites) Toggle(candidate Entry) (bool, error) {
	favorites := f.list.GetAll()

	if !IsDuplicate(candidate, favorites) {
		entry := Normalize(candidate)
		entry.DisplayIndex = len(favorites)
		favorites = append(favorites, entry)
		return true, f.list.SaveAll(favorites)
	}

	kept := favorites[:0]
	for _, fav := range favorites {
		if sameCoordinates(candidate, fav) || sameIdentity(candidate, fav) {
			continue
		}
		kept = append(kept, fav)
	}
	return false, f.list.SaveAll(kept)
}

// Move reorders favorites with reject semantics: any out-of-range position
// makes the call a no-op instead of clamping.
func (f *Favorites) Move(from, to int) error {
	favorites := f.list.GetAll()

	if from < 0 || from >= len(favorites) || to < 0 || to >= len(favorites) {
		return nil
	}

	item := favorites[from]
	favorites = append(favorites[:from], favorites[from+1:]...)
	favorites = append(favorites[:to], append([]Entry{item}, favorites[to:]...)...)

	return f.list.SaveAll(favorites)
}

// Clear removes the durable key entirely.
func (f *Favorites) Clear() error {
	return f.list.Clear()
}
