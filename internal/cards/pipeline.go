package cards

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/localweather/cityboard/internal/board"
	"github.com/localweather/cityboard/internal/notify"
)

// Pipeline aggregates the three card sources for board entries. Each source
// fails independently: the worst outcome is a card with empty sections.
type Pipeline struct {
	weather  WeatherProvider
	forecast ForecastProvider
	webcams  WebcamProvider
	notifier notify.Sink
	now      func() time.Time

	// sources with a missing key are reported once, then stay silent
	unconfigured sync.Map
}

// NewPipeline creates a Pipeline. A nil notifier discards notices.
func NewPipeline(w WeatherProvider, f ForecastProvider, c WebcamProvider, notifier notify.Sink) *Pipeline {
	if notifier == nil {
		notifier = notify.NopSink{}
	}
	return &Pipeline{
		weather:  w,
		forecast: f,
		webcams:  c,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock overrides the time source used for day grouping.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// BuildCard resolves one entry into a card. The three provider calls run
// concurrently and the card is returned only once all of them settle.
func (p *Pipeline) BuildCard(ctx context.Context, entry board.Entry) Card {
	lat, lon := float64(entry.Lat), float64(entry.Lon)

	var (
		wg       sync.WaitGroup
		snapshot *WeatherSnapshot
		samples  []ForecastSample
		cams     []Webcam
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		s, err := p.weather.Current(ctx, lat, lon)
		if err != nil {
			p.report(p.weather.Name(), err)
			return
		}
		snapshot = s
	}()
	go func() {
		defer wg.Done()
		fs, err := p.forecast.Forecast(ctx, lat, lon)
		if err != nil {
			p.report(p.forecast.Name(), err)
			return
		}
		samples = fs
	}()
	go func() {
		defer wg.Done()
		ws, err := p.webcams.Nearby(ctx, lat, lon)
		if err != nil {
			p.report(p.webcams.Name(), err)
			return
		}
		cams = ws
	}()
	wg.Wait()

	return Card{
		Entry:    entry,
		Title:    entry.Title(),
		Weather:  snapshot,
		Forecast: GroupDays(samples, p.now()),
		Webcams:  cams,
	}
}

// RenderBoard builds a card for every entry. Entries may resolve with any
// degree of concurrency, but the returned cards are strictly in display
// order and each card is complete when it appears.
func (p *Pipeline) RenderBoard(ctx context.Context, entries []board.Entry) []Card {
	result := make([]Card, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry board.Entry) {
			defer wg.Done()
			result[i] = p.BuildCard(ctx, entry)
		}(i, entry)
	}
	wg.Wait()

	return result
}

// report logs a provider failure and forwards it to the notification sink.
// Single attempt per render pass; nothing here retries.
func (p *Pipeline) report(source string, err error) {
	var statusErr *StatusError

	switch {
	case errors.Is(err, ErrUnconfigured):
		if _, seen := p.unconfigured.LoadOrStore(source, true); !seen {
			log.Printf("provider %s has no API key; its section stays empty", source)
			p.notifier.Notify(notify.KindProviderUnconfigured, source, err.Error())
		}
	case errors.Is(err, ErrMalformedPayload):
		log.Printf("provider %s returned an unusable payload: %v", source, err)
		p.notifier.Notify(notify.KindProviderMalformedPayload, source, err.Error())
	case errors.As(err, &statusErr):
		log.Printf("provider %s request failed: %v", source, err)
		p.notifier.Notify(notify.KindProviderHTTPFailure, source, err.Error())
	default:
		// Transport-level failures surface like an HTTP failure.
		log.Printf("provider %s request failed: %v", source, err)
		p.notifier.Notify(notify.KindProviderHTTPFailure, source, err.Error())
	}
}
