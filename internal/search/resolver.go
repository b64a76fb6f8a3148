package search

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	defaultMinChars   = 3
	defaultDebounce   = 200 * time.Millisecond
	defaultMaxResults = 5
)

// Resolver turns free-text queries into a deduplicated, capped candidate
// list. Resolve is the synchronous data path; Submit adds the keystroke
// debounce on top of it.
type Resolver struct {
	geocoder   Geocoder
	minChars   int
	debounce   time.Duration
	maxResults int

	mu    sync.Mutex
	timer *time.Timer
}

// NewResolver creates a Resolver with the given tuning. Zero values fall
// back to the defaults (3 chars, 200ms, 5 results).
func NewResolver(geocoder Geocoder, minChars int, debounce time.Duration, maxResults int) *Resolver {
	if minChars <= 0 {
		minChars = defaultMinChars
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Resolver{
		geocoder:   geocoder,
		minChars:   minChars,
		debounce:   debounce,
		maxResults: maxResults,
	}
}

// Resolve runs one lookup for query: below the minimum length it returns an
// empty list without touching the provider; otherwise it issues a single
// request capped request-side at maxResults, drops results missing a
// locality or country code, deduplicates by (locality, country code, lat and
// lon rounded to six decimals) and applies the display cap after that
// filtering.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < r.minChars {
		return nil, nil
	}

	places, err := r.geocoder.Search(ctx, query, r.maxResults)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]Place, 0, len(places))
	for _, p := range places {
		if p.City == "" || p.CountryCode == "" {
			continue
		}
		key := dedupKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, p)
		if len(out) >= r.maxResults {
			break
		}
	}
	return out, nil
}

// Submit schedules a debounced lookup: each call resets the timer, and only
// the query present when the timer fires is submitted, so rapid typing
// issues at most one request per pause. A query below the minimum length
// cancels any pending lookup and clears results immediately. An already
// issued request is never cancelled; a stale delivery is the caller's to
// ignore.
func (r *Resolver) Submit(ctx context.Context, query string, deliver func([]Place, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	if utf8.RuneCountInString(strings.TrimSpace(query)) < r.minChars {
		deliver(nil, nil)
		return
	}

	r.timer = time.AfterFunc(r.debounce, func() {
		deliver(r.Resolve(ctx, query))
	})
}

func dedupKey(p Place) string {
	return strings.ToLower(strings.TrimSpace(p.City)) + "|" +
		strings.ToLower(strings.TrimSpace(p.CountryCode)) + "|" +
		strconv.FormatFloat(round6(p.Lat), 'f', -1, 64) + "|" +
		strconv.FormatFloat(round6(p.Lon), 'f', -1, 64)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
