// Package service implements the asynchronous fetch pipeline that sequences
// resolve, fetch and persist steps without blocking the caller.
package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"weatherdesk.app/config"
	"weatherdesk.app/errors"
	"weatherdesk.app/metrics"
	"weatherdesk.app/models"
	"weatherdesk.app/pkg/logger"
	"weatherdesk.app/providers"
)

// EventKind identifies the logical target an event belongs to.
type EventKind int

const (
	// EventSuggestions carries autocomplete candidates. Failures are
	// delivered as an empty suggestion list, never as an error.
	EventSuggestions EventKind = iota
	// EventWeather carries a current reading or its typed failure.
	EventWeather
	// EventForecast carries a multi-day outlook or its typed failure.
	EventForecast
	// EventNothingToShow signals an empty store on startup.
	EventNothingToShow
)

func (k EventKind) String() string {
	switch k {
	case EventSuggestions:
		return "suggestions"
	case EventWeather:
		return "weather"
	case EventForecast:
		return "forecast"
	case EventNothingToShow:
		return "nothing_to_show"
	default:
		return "unknown"
	}
}

// Event is a completion delivered onto the coordinating context. Exactly
// one of the payload fields matching Kind is set on success; Err carries
// the typed failure otherwise.
type Event struct {
	Kind        EventKind
	RequestID   string
	Seq         uint64
	Suggestions []models.Place
	Place       *models.Place
	Weather     *models.Weather
	Forecast    []models.Weather
	FromCache   bool
	Err         error
}

const suggestionLimit = 5

// Orchestrator pipelines resolve, fetch and persist behind non-blocking
// operations. Each operation runs on its own worker goroutine and reports
// back through a single events channel; per-target sequence numbers ensure
// results are applied in submission order, with stale completions dropped
// before both delivery and persistence.
type Orchestrator struct {
	provider providers.WeatherProvider
	repo     PlaceRepositoryInterface
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.FetchMetrics

	events chan Event
	wg     sync.WaitGroup

	searchSeq   atomic.Uint64
	weatherSeq  atomic.Uint64
	forecastSeq atomic.Uint64
}

// NewOrchestrator creates the fetch pipeline.
func NewOrchestrator(provider providers.WeatherProvider, repo PlaceRepositoryInterface, cfg *config.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		repo:     repo,
		cfg:      cfg,
		log:      log,
		metrics:  metrics.NewFetchMetrics(),
		events:   make(chan Event, 16),
	}
}

// Events returns the completion channel. It is consumed by exactly one
// coordinating context (the UI loop) and closed by Close.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Close waits for in-flight workers and closes the events channel. The
// consumer must keep draining the channel until it is closed.
func (o *Orchestrator) Close() {
	go func() {
		o.wg.Wait()
		close(o.events)
	}()
}

// SearchPlaces resolves free text to suggestion candidates off the caller's
// context. Failures are swallowed to an empty list: autocomplete errors are
// not user-facing. The caller is expected to throttle keystroke-driven
// calls to queries of at least two characters.
func (o *Orchestrator) SearchPlaces(query string) {
	seq := o.searchSeq.Add(1)
	requestID := uuid.New().String()

	o.spawn(func() {
		started := time.Now()
		places, err := o.provider.SearchCities(query, suggestionLimit)
		o.metrics.RecordLatency("search", time.Since(started).Seconds())

		if err != nil {
			o.log.Warn("suggestion search failed", "request_id", requestID, "query", query, "error", err)
			o.metrics.RecordOutcome("search", "error")
			places = nil
		} else {
			o.metrics.RecordOutcome("search", "ok")
		}

		if o.dropIfStale(&o.searchSeq, seq, "search", requestID) {
			return
		}

		o.events <- Event{Kind: EventSuggestions, RequestID: requestID, Seq: seq, Suggestions: places}
	})
}

// LoadWeather resolves a raw text query to a place, then loads its current
// reading as one logical unit.
func (o *Orchestrator) LoadWeather(query string) {
	seq := o.weatherSeq.Add(1)
	requestID := uuid.New().String()

	o.spawn(func() {
		place, err := o.resolveFirst(query)
		if err != nil {
			if o.dropIfStale(&o.weatherSeq, seq, "weather", requestID) {
				return
			}
			o.metrics.RecordOutcome("weather", "error")
			o.events <- Event{Kind: EventWeather, RequestID: requestID, Seq: seq, Err: err}
			return
		}
		o.runWeather(requestID, seq, place)
	})
}

// LoadWeatherForPlace loads the current reading for an already-resolved
// place, typically one picked from the suggestion list.
func (o *Orchestrator) LoadWeatherForPlace(place *models.Place) {
	seq := o.weatherSeq.Add(1)
	requestID := uuid.New().String()

	o.spawn(func() {
		o.runWeather(requestID, seq, place)
	})
}

// LoadForecast loads an outlook for the place. It is an independent stream:
// a forecast failure never hides an already-applied current reading.
func (o *Orchestrator) LoadForecast(place *models.Place, days int) {
	seq := o.forecastSeq.Add(1)
	requestID := uuid.New().String()

	o.spawn(func() {
		started := time.Now()
		var forecast []models.Weather
		err := o.withRetry("forecast", requestID, func() error {
			var fetchErr error
			forecast, fetchErr = o.provider.Forecast(place, days, o.cfg.Weather.Units, o.cfg.Weather.Language)
			return fetchErr
		})
		o.metrics.RecordLatency("forecast", time.Since(started).Seconds())

		if o.dropIfStale(&o.forecastSeq, seq, "forecast", requestID) {
			return
		}

		if err != nil {
			o.log.Warn("forecast fetch failed", "request_id", requestID, "place", place.Name, "error", err)
			o.metrics.RecordOutcome("forecast", "error")
			o.events <- Event{Kind: EventForecast, RequestID: requestID, Seq: seq, Place: place, Err: err}
			return
		}

		o.metrics.RecordOutcome("forecast", "ok")
		o.events <- Event{Kind: EventForecast, RequestID: requestID, Seq: seq, Place: place, Forecast: forecast}
	})
}

// LoadLastPlace restores the last selected place on startup. An empty
// store is not an error; it delivers a nothing-to-show event.
func (o *Orchestrator) LoadLastPlace() {
	requestID := uuid.New().String()

	o.spawn(func() {
		place, err := o.repo.LastSelectedPlace()
		if err != nil {
			o.metrics.RecordOutcome("weather", "error")
			o.events <- Event{Kind: EventWeather, RequestID: requestID, Err: err}
			return
		}
		if place == nil {
			o.events <- Event{Kind: EventNothingToShow, RequestID: requestID}
			return
		}

		seq := o.weatherSeq.Add(1)
		o.runWeather(requestID, seq, place)
	})
}

// runWeather performs fetch, best-effort persistence and delivery for one
// current-reading request. Stale completions are discarded before the
// store write so an outdated reading never resurrects old history.
func (o *Orchestrator) runWeather(requestID string, seq uint64, place *models.Place) {
	started := time.Now()

	if cached := o.freshHistoryEntry(place); cached != nil {
		if o.dropIfStale(&o.weatherSeq, seq, "weather", requestID) {
			return
		}
		// A cached reading is still a selection: the last-selected marker
		// must be refreshed or a restart would restore the previous place.
		if persistErr := o.repo.UpsertPlace(place); persistErr != nil {
			o.log.Warn("failed to refresh last selected place", "request_id", requestID, "place", place.Name, "error", persistErr)
			o.metrics.RecordOutcome("persist", "error")
		} else {
			o.metrics.RecordOutcome("persist", "ok")
		}
		o.log.Info("serving reading from history within TTL",
			"request_id", requestID, "place", place.Name, "observed_at", cached.Timestamp)
		o.metrics.RecordOutcome("weather", "cached")
		o.events <- Event{Kind: EventWeather, RequestID: requestID, Seq: seq, Place: place, Weather: cached, FromCache: true}
		return
	}

	var weather *models.Weather
	err := o.withRetry("weather", requestID, func() error {
		var fetchErr error
		weather, fetchErr = o.provider.CurrentWeather(place, o.cfg.Weather.Units, o.cfg.Weather.Language)
		return fetchErr
	})
	o.metrics.RecordLatency("weather", time.Since(started).Seconds())

	if o.dropIfStale(&o.weatherSeq, seq, "weather", requestID) {
		return
	}

	if err != nil {
		o.metrics.RecordOutcome("weather", "error")
		o.events <- Event{Kind: EventWeather, RequestID: requestID, Seq: seq, Place: place, Err: err}
		return
	}

	// Persistence is best-effort logging: a storage failure must not
	// discard the reading we already fetched.
	if persistErr := o.repo.RecordWeather(place, weather); persistErr != nil {
		o.log.Warn("failed to persist reading", "request_id", requestID, "place", place.Name, "error", persistErr)
		o.metrics.RecordOutcome("persist", "error")
	} else {
		o.metrics.RecordOutcome("persist", "ok")
	}

	o.metrics.RecordOutcome("weather", "ok")
	o.events <- Event{Kind: EventWeather, RequestID: requestID, Seq: seq, Place: place, Weather: weather}
}

// freshHistoryEntry returns the latest persisted reading when it is still
// within the configured cache TTL, nil otherwise.
func (o *Orchestrator) freshHistoryEntry(place *models.Place) *models.Weather {
	ttl := o.cfg.App.CacheTTL()
	if ttl <= 0 {
		return nil
	}

	history, err := o.repo.WeatherHistory(place, 1)
	if err != nil || len(history) == 0 {
		return nil
	}

	latest := history[0]
	if time.Since(time.Unix(latest.Timestamp, 0)) > ttl {
		return nil
	}

	latest.Units = o.cfg.Weather.Units
	return &latest
}

// resolveFirst maps a raw query to its first geocoding candidate.
func (o *Orchestrator) resolveFirst(query string) (*models.Place, error) {
	if query == "" {
		return nil, errors.NewValidationError("query cannot be empty")
	}

	var places []models.Place
	err := o.withRetry("resolve", "", func() error {
		var searchErr error
		places, searchErr = o.provider.SearchCities(query, 1)
		return searchErr
	})
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("place %q not found", query))
	}

	return &places[0], nil
}

// withRetry runs fn, retrying transient provider failures with exponential
// backoff up to the configured retry count. Non-retryable failures are
// returned immediately.
func (o *Orchestrator) withRetry(operation, requestID string, fn func() error) error {
	backoff := 500 * time.Millisecond

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !errors.IsRetryable(err) || attempt >= o.cfg.App.RetryCount {
			return err
		}

		o.log.Warn("retrying transient provider failure",
			"operation", operation, "request_id", requestID, "attempt", attempt+1, "error", err)
		o.metrics.RecordRetry(operation)
		time.Sleep(backoff)
		backoff *= 2
	}
}

// dropIfStale reports whether a newer request for the same target has
// superseded this completion, discarding it without side effects.
func (o *Orchestrator) dropIfStale(target *atomic.Uint64, seq uint64, operation, requestID string) bool {
	if target.Load() == seq {
		return false
	}
	o.log.Info("dropping stale completion", "operation", operation, "request_id", requestID, "seq", seq)
	o.metrics.RecordStaleDrop(operation)
	return true
}

func (o *Orchestrator) spawn(task func()) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		task()
	}()
}
