package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localweather/cityboard/internal/storage"
)

func newTestFavorites(t *testing.T) *Favorites {
	t.Helper()
	return NewFavorites(storage.ForUser(storage.NewMemoryKV(), "alice"))
}

func TestToggleAddsThenRemoves(t *testing.T) {
	f := newTestFavorites(t)
	paris := entry("Paris", "FR", 48.8566, 2.3522)

	added, err := f.Toggle(paris)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, f.Contains(paris))

	added, err = f.Toggle(paris)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, f.Contains(paris))
	assert.Empty(t, f.All())
}

func TestToggleMatchesThroughDetector(t *testing.T) {
	f := newTestFavorites(t)

	_, err := f.Toggle(entry("Paris", "FR", 48.8566, 2.3522))
	require.NoError(t, err)

	// Identity match removes even with drifted coordinates.
	added, err := f.Toggle(entry("paris", "fr", 48.9, 2.4))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, f.All())
}

func TestFavoritesIndexSpaceIsIndependent(t *testing.T) {
	kv := storage.NewMemoryKV()
	ns := storage.ForUser(kv, "alice")
	b := NewStore(ns)
	f := NewFavorites(ns)

	_, err := b.Add(entry("A", "XX", 1, 1))
	require.NoError(t, err)
	_, err = b.Add(entry("B", "XX", 2, 2))
	require.NoError(t, err)

	_, err = f.Toggle(entry("C", "YY", 3, 3))
	require.NoError(t, err)

	favorites := f.All()
	require.Len(t, favorites, 1)
	assert.Equal(t, 0, favorites[0].DisplayIndex)
	assert.Len(t, b.Entries(), 2)
}

func TestFavoritesMoveRejectsOutOfRange(t *testing.T) {
	f := newTestFavorites(t)
	for i, c := range []string{"A", "B", "C"} {
		_, err := f.Toggle(entry(c, "XX", float64(i), float64(i)))
		require.NoError(t, err)
	}

	// Reject variant: out-of-range target is a no-op, not a clamp.
	require.NoError(t, f.Move(0, 99))
	assert.Equal(t, []string{"A", "B", "C"}, cityNames(f.All()))

	require.NoError(t, f.Move(5, 1))
	assert.Equal(t, []string{"A", "B", "C"}, cityNames(f.All()))

	require.NoError(t, f.Move(0, 2))
	assert.Equal(t, []string{"B", "C", "A"}, cityNames(f.All()))
	for i, fav := range f.All() {
		assert.Equal(t, i, fav.DisplayIndex)
	}
}
