package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/localweather/cityboard/internal/cards"
)

// WindyProvider looks up webcams near a coordinate through the Windy
// webcams v3 API. The radius and result cap are fixed per card.
type WindyProvider struct {
	name    string
	apiKey  string
	baseURL string
	radius  int
	limit   int
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWindyProvider(client *http.Client, apiKey string, radiusKm, limit int) *WindyProvider {
	if radiusKm <= 0 {
		radiusKm = 10
	}
	if limit <= 0 {
		limit = 5
	}
	return &WindyProvider{
		name:    "windy",
		apiKey:  apiKey,
		baseURL: "https://api.windy.com/webcams/api/v3/webcams",
		radius:  radiusKm,
		limit:   limit,
		client:  client,
		circuit: newBreaker("windy"),
	}
}

func (p *WindyProvider) Name() string {
	return p.name
}

// Nearby returns resolved webcam descriptors around the coordinate. A
// descriptor exposes either a live embed URL or a preview image URL;
// anything resolving to neither is dropped, so the result never contains
// unresolved entries.
func (p *WindyProvider) Nearby(ctx context.Context, lat, lon float64) ([]cards.Webcam, error) {
	if p.apiKey == "" {
		return nil, cards.ErrUnconfigured
	}

	resp, err := doRequest(ctx, p.client, p.circuit, p.name, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("nearby", fmt.Sprintf("%f,%f,%d", lat, lon, p.radius))
		values.Set("limit", fmt.Sprintf("%d", p.limit))
		values.Set("include", "player,images,location")
		values.Set("lang", "en")

		req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-windy-api-key", p.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	type webcamPayload struct {
		Title  string `json:"title"`
		Player struct {
			Live struct {
				Embed string `json:"embed"`
			} `json:"live"`
		} `json:"player"`
		Images struct {
			Current struct {
				Preview string `json:"preview"`
			} `json:"current"`
		} `json:"images"`
	}

	// Older API revisions nested the list under "result".
	var payload struct {
		Webcams []webcamPayload `json:"webcams"`
		Result  *struct {
			Webcams []webcamPayload `json:"webcams"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", cards.ErrMalformedPayload, err)
	}

	raw := payload.Webcams
	if len(raw) == 0 && payload.Result != nil {
		raw = payload.Result.Webcams
	}

	webcams := make([]cards.Webcam, 0, len(raw))
	for _, w := range raw {
		switch {
		case w.Player.Live.Embed != "":
			webcams = append(webcams, cards.Webcam{Title: w.Title, LiveEmbedURL: w.Player.Live.Embed})
		case w.Images.Current.Preview != "":
			webcams = append(webcams, cards.Webcam{Title: w.Title, PreviewImageURL: w.Images.Current.Preview})
		}
	}

	return webcams, nil
}
