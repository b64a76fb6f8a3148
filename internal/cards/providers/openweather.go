package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/localweather/cityboard/internal/cards"
)

// OpenWeatherProvider serves both the current-conditions and the forecast
// sections of a card from OpenWeatherMap.
type OpenWeatherProvider struct {
	name        string
	apiKey      string
	baseURL     string
	forecastURL string
	client      *http.Client
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:        "openweathermap",
		apiKey:      apiKey,
		baseURL:     "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast",
		client:      client,
		circuit:     newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Current fetches the point weather for a coordinate, metric units.
func (p *OpenWeatherProvider) Current(ctx context.Context, lat, lon float64) (*cards.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return nil, cards.ErrUnconfigured
	}

	resp, err := doRequest(ctx, p.client, p.circuit, p.name, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("units", "metric")
		values.Set("appid", p.apiKey)

		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Main *struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64  `json:"speed"`
			Deg   *float64 `json:"deg"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", cards.ErrMalformedPayload, err)
	}
	if payload.Main == nil {
		return nil, fmt.Errorf("%w: missing measurement block", cards.ErrMalformedPayload)
	}

	rain := payload.Rain.OneH
	if rain == 0 {
		rain = payload.Rain.ThreeH
	}

	snapshot := &cards.WeatherSnapshot{
		Temp:      payload.Main.Temp,
		FeelsLike: payload.Main.FeelsLike,
		WindSpeed: payload.Wind.Speed,
		WindDeg:   payload.Wind.Deg,
		RainMM:    rain,
	}
	if len(payload.Weather) > 0 {
		snapshot.Description = payload.Weather[0].Description
		snapshot.IconCode = payload.Weather[0].Icon
	}

	return snapshot, nil
}

// Forecast fetches the multi-step series for a coordinate. The response is
// returned as raw samples; day grouping belongs to the pipeline.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, lat, lon float64) ([]cards.ForecastSample, error) {
	if p.apiKey == "" {
		return nil, cards.ErrUnconfigured
	}

	resp, err := doRequest(ctx, p.client, p.circuit, p.name, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("units", "metric")
		values.Set("appid", p.apiKey)

		return http.NewRequest(http.MethodGet, p.forecastURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				TempMin float64 `json:"temp_min"`
				TempMax float64 `json:"temp_max"`
			} `json:"main"`
			Weather []struct {
				Main string `json:"main"`
				Icon string `json:"icon"`
			} `json:"weather"`
			Rain struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", cards.ErrMalformedPayload, err)
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("%w: empty forecast series", cards.ErrMalformedPayload)
	}

	samples := make([]cards.ForecastSample, 0, len(payload.List))
	for _, item := range payload.List {
		s := cards.ForecastSample{
			Timestamp: time.Unix(item.Dt, 0).UTC(),
			TempMin:   item.Main.TempMin,
			TempMax:   item.Main.TempMax,
			RainMM:    item.Rain.ThreeH,
		}
		if len(item.Weather) > 0 {
			s.Condition = item.Weather[0].Main
			s.IconCode = item.Weather[0].Icon
		}
		samples = append(samples, s)
	}

	return samples, nil
}
