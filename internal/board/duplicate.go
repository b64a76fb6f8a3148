package board

import "strings"

// coordTolerance absorbs float round-trips through JSON; coordinates closer
// than this are the same place.
const coordTolerance = 1e-6

// IsDuplicate reports whether candidate already exists in the collection,
// either as a geographic match (both coordinates within tolerance) or as an
// identity match (case-insensitive, trimmed city and country code). Pure
// predicate, shared by the board and favorites insertion paths.
func IsDuplicate(candidate Entry, existing []Entry) bool {
	for _, e := range existing {
		if sameCoordinates(candidate, e) || sameIdentity(candidate, e) {
			return true
		}
	}
	return false
}

func sameCoordinates(a, b Entry) bool {
	return abs(float64(a.Lat)-float64(b.Lat)) < coordTolerance &&
		abs(float64(a.Lon)-float64(b.Lon)) < coordTolerance
}

func sameIdentity(a, b Entry) bool {
	return foldField(a.City) == foldField(b.City) &&
		foldField(a.CountryCode) == foldField(b.CountryCode)
}

func foldField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
