package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localweather/cityboard/internal/cards"
)

func TestNearbySendsKeyHeaderAndParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-windy-api-key"))
		assert.Equal(t, "player,images,location", r.URL.Query().Get("include"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"webcams": [
			{"title": "harbour", "player": {"live": {"embed": "https://example.com/live"}}},
			{"title": "square", "images": {"current": {"preview": "https://example.com/p.jpg"}}},
			{"title": "broken"}
		]}`))
	}))
	defer srv.Close()

	p := NewWindyProvider(srv.Client(), "test-key", 10, 5)
	p.baseURL = srv.URL

	webcams, err := p.Nearby(context.Background(), 48.85, 2.35)
	require.NoError(t, err)
	require.Len(t, webcams, 2, "descriptors without a live embed or preview are dropped")

	assert.Equal(t, "https://example.com/live", webcams[0].LiveEmbedURL)
	assert.Empty(t, webcams[0].PreviewImageURL, "live embed and preview are mutually exclusive")
	assert.Equal(t, "https://example.com/p.jpg", webcams[1].PreviewImageURL)
	assert.Empty(t, webcams[1].LiveEmbedURL)
}

func TestNearbyResultNestedList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"webcams": [
			{"title": "roof", "images": {"current": {"preview": "https://example.com/r.jpg"}}}
		]}}`))
	}))
	defer srv.Close()

	p := NewWindyProvider(srv.Client(), "test-key", 10, 5)
	p.baseURL = srv.URL

	webcams, err := p.Nearby(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, webcams, 1)
	assert.Equal(t, "roof", webcams[0].Title)
}

func TestNearbyMissingKey(t *testing.T) {
	p := NewWindyProvider(http.DefaultClient, "", 10, 5)

	_, err := p.Nearby(context.Background(), 1, 2)
	assert.ErrorIs(t, err, cards.ErrUnconfigured)
}

func TestNearbyEmptyListIsNoWebcams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"webcams": []}`))
	}))
	defer srv.Close()

	p := NewWindyProvider(srv.Client(), "test-key", 10, 5)
	p.baseURL = srv.URL

	webcams, err := p.Nearby(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, webcams)
}

func TestNearbyHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewWindyProvider(srv.Client(), "test-key", 10, 5)
	p.baseURL = srv.URL

	_, err := p.Nearby(context.Background(), 1, 2)
	var statusErr *cards.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
}
