// Package cards resolves board entries into composite card view models by
// aggregating three independently-failing remote sources.
package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localweather/cityboard/internal/board"
)

// WeatherSnapshot is the current-conditions section of a card. It is either
// fully populated from a provider response or absent; a failed call never
// produces a partially-filled record.
type WeatherSnapshot struct {
	Temp        float64  `json:"temp"`
	FeelsLike   float64  `json:"feels_like"`
	Description string   `json:"description"`
	IconCode    string   `json:"icon_code"`
	WindSpeed   float64  `json:"wind_speed"`
	WindDeg     *float64 `json:"wind_deg,omitempty"`
	RainMM      float64  `json:"rain_mm"`
}

// ForecastSample is one timestamped step of a provider forecast series.
type ForecastSample struct {
	Timestamp time.Time
	TempMin   float64
	TempMax   float64
	RainMM    float64
	Condition string
	IconCode  string
}

// ForecastDay is the per-calendar-day reduction of forecast samples.
type ForecastDay struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	RainMM    float64 `json:"rain_mm_total"`
	Condition string  `json:"representative_weather"`
	IconCode  string  `json:"icon_code"`
}

// Webcam describes one nearby webcam. LiveEmbedURL and PreviewImageURL are
// mutually exclusive; descriptors resolving to neither are dropped before
// they reach a card.
type Webcam struct {
	Title           string `json:"title"`
	LiveEmbedURL    string `json:"live_embed_url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

// Card is the composite view model for one board entry. Sections left nil or
// empty mean the corresponding source failed or returned nothing; the entry
// itself always renders.
type Card struct {
	Entry    board.Entry     `json:"entry"`
	Title    string          `json:"title"`
	Weather  *WeatherSnapshot `json:"weather"`
	Forecast []ForecastDay   `json:"forecast"`
	Webcams  []Webcam        `json:"webcams"`
}

// WeatherProvider is a point lookup for current conditions.
type WeatherProvider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error)
}

// ForecastProvider returns a multi-step forecast series.
type ForecastProvider interface {
	Name() string
	Forecast(ctx context.Context, lat, lon float64) ([]ForecastSample, error)
}

// WebcamProvider looks up webcams near a coordinate.
type WebcamProvider interface {
	Name() string
	Nearby(ctx context.Context, lat, lon float64) ([]Webcam, error)
}

// Provider failure classes. The pipeline distinguishes them only for
// diagnostics; all of them resolve to an empty section.
var (
	// ErrUnconfigured means the provider has no API key.
	ErrUnconfigured = errors.New("provider not configured")
	// ErrMalformedPayload means a success response lacked the expected fields.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// StatusError is a non-success HTTP status from a provider.
type StatusError struct {
	Source string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.Status)
}
