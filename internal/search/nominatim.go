// Package search resolves free-text city queries into normalized candidate
// places through a geocoding provider, with debouncing and result dedup.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/localweather/cityboard/internal/board"
	"github.com/localweather/cityboard/internal/cards"
)

// Place is one geocoding result with the address components the board needs.
type Place struct {
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// ToEntry converts the place into a board insertion candidate.
func (p Place) ToEntry() board.Entry {
	return board.Normalize(board.Entry{
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
		CountryCode: p.CountryCode,
		Lat:         board.Coord(p.Lat),
		Lon:         board.Coord(p.Lon),
		DisplayName: p.DisplayName,
	})
}

// Geocoder is the free-text lookup the resolver runs against.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// NominatimClient queries the OpenStreetMap Nominatim search API. Nominatim's
// usage policy caps clients at one request per second, enforced here with a
// shared limiter so concurrent callers queue instead of getting banned.
type NominatimClient struct {
	name    string
	baseURL string
	lang    string
	client  *http.Client
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimClient(client *http.Client, lang string, rps float64) *NominatimClient {
	if lang == "" {
		lang = "en"
	}
	if rps <= 0 {
		rps = 1
	}
	return &NominatimClient{
		name:    "nominatim",
		baseURL: "https://nominatim.openstreetmap.org/search",
		lang:    lang,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		circuit: newBreaker("nominatim"),
	}
}

func (c *NominatimClient) Name() string {
	return c.name
}

// Search issues one geocoding request with the request-side result cap.
// Results missing a locality or country code are skipped here already; the
// resolver layer applies dedup and the display cap on top.
func (c *NominatimClient) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	values := url.Values{}
	values.Set("format", "jsonv2")
	values.Set("limit", strconv.Itoa(limit))
	values.Set("addressdetails", "1")
	values.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", c.lang)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &cards.StatusError{Source: c.name, Status: resp.StatusCode}
		}

		var payload []struct {
			Lat         string `json:"lat"`
			Lon         string `json:"lon"`
			DisplayName string `json:"display_name"`
			Address     struct {
				City        string `json:"city"`
				Town        string `json:"town"`
				Village     string `json:"village"`
				Hamlet      string `json:"hamlet"`
				State       string `json:"state"`
				Country     string `json:"country"`
				CountryCode string `json:"country_code"`
			} `json:"address"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
			return nil, fmt.Errorf("%w: %v", cards.ErrMalformedPayload, decodeErr)
		}

		places := make([]Place, 0, len(payload))
		for _, raw := range payload {
			locality := firstNonEmpty(raw.Address.City, raw.Address.Town, raw.Address.Village, raw.Address.Hamlet)
			if locality == "" || raw.Address.CountryCode == "" {
				continue
			}

			lat, latErr := strconv.ParseFloat(raw.Lat, 64)
			lon, lonErr := strconv.ParseFloat(raw.Lon, 64)
			if latErr != nil || lonErr != nil {
				continue
			}

			places = append(places, Place{
				City:        locality,
				State:       raw.Address.State,
				Country:     raw.Address.Country,
				CountryCode: raw.Address.CountryCode,
				Lat:         lat,
				Lon:         lon,
				DisplayName: raw.DisplayName,
			})
		}
		return places, nil
	})
	if err != nil {
		return nil, err
	}

	places, ok := result.([]Place)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return places, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}
