package cards

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localweather/cityboard/internal/board"
	"github.com/localweather/cityboard/internal/notify"
)

type stubWeather struct {
	snapshot *WeatherSnapshot
	err      error
}

func (s stubWeather) Name() string { return "weather-stub" }
func (s stubWeather) Current(context.Context, float64, float64) (*WeatherSnapshot, error) {
	return s.snapshot, s.err
}

type stubForecast struct {
	samples []ForecastSample
	err     error
}

func (s stubForecast) Name() string { return "forecast-stub" }
func (s stubForecast) Forecast(context.Context, float64, float64) ([]ForecastSample, error) {
	return s.samples, s.err
}

type stubWebcams struct {
	webcams []Webcam
	err     error
}

func (s stubWebcams) Name() string { return "webcam-stub" }
func (s stubWebcams) Nearby(context.Context, float64, float64) ([]Webcam, error) {
	return s.webcams, s.err
}

func testEntry(city string, index int) board.Entry {
	return board.Entry{City: city, CountryCode: "XX", DisplayIndex: index}
}

func TestBuildCardAllSourcesSucceed(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := NewPipeline(
		stubWeather{snapshot: &WeatherSnapshot{Temp: 12.3, Description: "clear sky"}},
		stubForecast{samples: []ForecastSample{{
			Timestamp: now.AddDate(0, 0, 1),
			TempMin:   3, TempMax: 9, RainMM: 1, Condition: "Rain",
		}}},
		stubWebcams{webcams: []Webcam{{Title: "port", LiveEmbedURL: "https://example.com/embed"}}},
		nil,
	)
	p.SetClock(func() time.Time { return now })

	card := p.BuildCard(context.Background(), testEntry("Ghent", 0))

	require.NotNil(t, card.Weather)
	assert.InDelta(t, 12.3, card.Weather.Temp, 1e-9)
	require.Len(t, card.Forecast, 1)
	assert.Equal(t, "2024-03-11", card.Forecast[0].Date)
	require.Len(t, card.Webcams, 1)
	assert.Equal(t, "Ghent", card.Title)
}

func TestBuildCardFailSoft(t *testing.T) {
	rec := &notify.Recorder{}
	p := NewPipeline(
		stubWeather{snapshot: &WeatherSnapshot{Temp: 5}},
		stubForecast{err: ErrMalformedPayload},
		stubWebcams{err: &StatusError{Source: "webcam-stub", Status: 503}},
		rec,
	)

	card := p.BuildCard(context.Background(), testEntry("Ghent", 0))

	require.NotNil(t, card.Weather, "weather survives other sources failing")
	assert.Empty(t, card.Forecast)
	assert.Empty(t, card.Webcams)

	kinds := make(map[notify.Kind]int)
	for _, n := range rec.All() {
		kinds[n.Kind]++
	}
	assert.Equal(t, 1, kinds[notify.KindProviderMalformedPayload])
	assert.Equal(t, 1, kinds[notify.KindProviderHTTPFailure])
}

func TestBuildCardAllSourcesFail(t *testing.T) {
	p := NewPipeline(
		stubWeather{err: ErrUnconfigured},
		stubForecast{err: ErrUnconfigured},
		stubWebcams{err: ErrUnconfigured},
		nil,
	)

	card := p.BuildCard(context.Background(), testEntry("Ghent", 3))

	assert.Nil(t, card.Weather)
	assert.Empty(t, card.Forecast)
	assert.Empty(t, card.Webcams)
	assert.Equal(t, 3, card.Entry.DisplayIndex, "the entry itself always renders")
}

func TestUnconfiguredReportedOncePerSource(t *testing.T) {
	rec := &notify.Recorder{}
	p := NewPipeline(
		stubWeather{err: ErrUnconfigured},
		stubForecast{samples: nil},
		stubWebcams{webcams: nil},
		rec,
	)

	p.BuildCard(context.Background(), testEntry("A", 0))
	p.BuildCard(context.Background(), testEntry("B", 1))

	notices := rec.All()
	require.Len(t, notices, 1, "missing key is reported once, then stays silent")
	assert.Equal(t, notify.KindProviderUnconfigured, notices[0].Kind)
}

func TestRenderBoardKeepsDisplayOrder(t *testing.T) {
	p := NewPipeline(
		stubWeather{snapshot: &WeatherSnapshot{Temp: 1}},
		stubForecast{},
		stubWebcams{},
		nil,
	)

	entries := []board.Entry{
		testEntry("A", 0),
		testEntry("B", 1),
		testEntry("C", 2),
	}

	rendered := p.RenderBoard(context.Background(), entries)
	require.Len(t, rendered, 3)
	for i, card := range rendered {
		assert.Equal(t, entries[i].City, card.Entry.City)
	}
}
