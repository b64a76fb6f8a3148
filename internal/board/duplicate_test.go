package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localweather/cityboard/internal/storage"
)

func TestGeographicMatchWithinTolerance(t *testing.T) {
	existing := []Entry{entry("Paris", "FR", 48.8566, 2.3522)}

	assert.True(t, IsDuplicate(entry("Paname", "XX", 48.8566004, 2.3522004), existing),
		"coordinates within 1e-6 are the same place regardless of name")
	assert.False(t, IsDuplicate(entry("Paname", "XX", 48.8567, 2.3522), existing),
		"latitude off by more than the tolerance")
	assert.False(t, IsDuplicate(entry("Paname", "XX", 48.8566, 2.3524), existing),
		"longitude off by more than the tolerance")
}

func TestIdentityMatchIsCaseAndSpaceInsensitive(t *testing.T) {
	existing := []Entry{entry("Paris", "FR", 48.8566, 2.3522)}

	assert.True(t, IsDuplicate(entry(" paris ", "fr", 10, 10), existing))
	assert.False(t, IsDuplicate(entry("Paris", "US", 10, 10), existing),
		"same name in a different country is a different city")
	assert.False(t, IsDuplicate(entry("Lyon", "FR", 10, 10), existing))
}

func TestDuplicateSymmetry(t *testing.T) {
	pairs := [][2]Entry{
		{entry("Paris", "FR", 48.8566, 2.3522), entry("paris", "fr", 10, 10)},
		{entry("A", "XX", 1.0000001, 2.0000001), entry("B", "YY", 1.0000004, 2.0000004)},
		{entry("A", "XX", 1, 2), entry("B", "YY", 3, 4)},
	}

	for _, p := range pairs {
		assert.Equal(t,
			IsDuplicate(p[0], []Entry{p[1]}),
			IsDuplicate(p[1], []Entry{p[0]}),
			"predicate must be symmetric for %v / %v", p[0], p[1])
	}
}

func TestEmptyCollectionHasNoDuplicates(t *testing.T) {
	assert.False(t, IsDuplicate(entry("Paris", "FR", 48.8566, 2.3522), nil))
}

// Second Paris insertion: the coordinate drift exceeds the geographic
// tolerance, so rejection happens through the identity match.
func TestParisRejectedByIdentityMatch(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := NewStore(storage.ForUser(kv, "alice"))

	first, err := s.Add(Entry{City: "Paris", CountryCode: "fr", Lat: 48.8566, Lon: 2.3522})
	require.NoError(t, err)
	assert.Equal(t, "FR", first.CountryCode)

	second := Normalize(Entry{City: "Paris", CountryCode: "FR", Lat: 48.85661, Lon: 2.35219})

	assert.False(t, sameCoordinates(second, first), "0.00001 degrees exceeds the tolerance")
	assert.True(t, sameIdentity(second, first))
	assert.True(t, IsDuplicate(second, s.Entries()))
}
