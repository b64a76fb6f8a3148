// Package board holds the user's persisted city board: the ordered entry
// store, the favorites store and the duplicate detector shared by both
// insertion paths.
package board

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Coord is a latitude or longitude in float degrees. Persisted blobs may
// carry coordinates as numbers or numeric strings; decoding coerces both,
// best effort, and falls back to zero for anything else.
type Coord float64

func (c *Coord) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = Coord(f)
	return nil
}

// Entry is one city's persisted board record. DisplayIndex is its zero-based
// position within the collection and is kept contiguous by every mutation.
type Entry struct {
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	CountryCode  string  `json:"country_code"`
	Lat          Coord   `json:"lat"`
	Lon          Coord   `json:"lon"`
	DisplayName  string  `json:"display_name"`
	DisplayIndex int     `json:"display_index"`
}

// Normalize applies insertion-time normalization: upper-cased ISO-2 country
// code and trimmed name fields. Coordinate coercion already happened at the
// JSON boundary.
func Normalize(e Entry) Entry {
	e.City = strings.TrimSpace(e.City)
	e.State = strings.TrimSpace(e.State)
	e.Country = strings.TrimSpace(e.Country)
	e.CountryCode = strings.ToUpper(strings.TrimSpace(e.CountryCode))
	e.DisplayName = strings.TrimSpace(e.DisplayName)
	return e
}

// Patch carries a shallow field merge for Update. Nil fields are left
// untouched; DisplayIndex is never patchable, reindexing owns it.
type Patch struct {
	City        *string  `json:"city,omitempty"`
	State       *string  `json:"state,omitempty"`
	Country     *string  `json:"country,omitempty"`
	CountryCode *string  `json:"country_code,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	DisplayName *string  `json:"display_name,omitempty"`
}

func (p Patch) apply(e *Entry) {
	if p.City != nil {
		e.City = *p.City
	}
	if p.State != nil {
		e.State = *p.State
	}
	if p.Country != nil {
		e.Country = *p.Country
	}
	if p.CountryCode != nil {
		e.CountryCode = strings.ToUpper(strings.TrimSpace(*p.CountryCode))
	}
	if p.Lat != nil {
		e.Lat = Coord(*p.Lat)
	}
	if p.Lon != nil {
		e.Lon = Coord(*p.Lon)
	}
	if p.DisplayName != nil {
		e.DisplayName = *p.DisplayName
	}
}

// Title renders the "City, State, Country" heading the card layer shows.
func (e Entry) Title() string {
	parts := []string{e.City}
	if e.State != "" {
		parts = append(parts, e.State)
	}
	if e.Country != "" {
		parts = append(parts, e.Country)
	}
	return strings.Join(parts, ", ")
}

var _ json.Unmarshaler = (*Coord)(nil)
