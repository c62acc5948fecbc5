// Package app wires configuration, storage and the fetch pipeline into a
// runnable terminal front end. It is the "coordinating context" of the
// pipeline: all events are consumed here, on one goroutine.
package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gorm.io/gorm"
	"weatherdesk.app/config"
	"weatherdesk.app/database"
	"weatherdesk.app/errors"
	"weatherdesk.app/metrics"
	"weatherdesk.app/models"
	"weatherdesk.app/pkg/logger"
	"weatherdesk.app/pkg/validation"
	"weatherdesk.app/providers"
	"weatherdesk.app/providers/cache"
	"weatherdesk.app/repository"
	"weatherdesk.app/scheduler"
	"weatherdesk.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config       *config.Config
	db           *gorm.DB
	repo         *repository.PlaceRepository
	orchestrator *service.Orchestrator
	scheduler    *scheduler.Scheduler
	log          *logger.Logger
	out          io.Writer

	suggestions  []models.Place
	shutdownOnce sync.Once
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{
		log: logger.New(),
		out: os.Stdout,
	}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

func (app *Application) loadConfiguration() error {
	app.log.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		app.log.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	app.log = logger.NewWithLevel(logger.ParseLevel(cfg.App.LogLevel)).Component("app")
	app.log.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	app.log.Info("Initializing local storage...", "path", app.config.Database.Path)

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		app.log.Error("Failed to initialize local storage", "error", err)
		return fmt.Errorf("initialize local storage: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		app.log.Error("Failed to run migrations", "error", err)
		return fmt.Errorf("run storage migrations: %w", err)
	}

	app.db = db
	app.repo = repository.NewPlaceRepository(db)
	app.log.Info("Local storage initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	app.log.Info("Initializing services...")

	suggestionCache, err := cache.NewFromConfig(&app.config.Cache)
	if err != nil {
		return fmt.Errorf("create suggestion cache: %w", err)
	}

	provider := providers.NewSuggestionCacheProxy(
		providers.NewOpenWeatherMapProvider(&app.config.Weather),
		suggestionCache,
		app.config.App.CacheTTL(),
		metrics.NewCacheMetrics(app.config.Cache.Type),
	)

	app.orchestrator = service.NewOrchestrator(provider, app.repo, app.config, app.log.Component("pipeline"))
	app.scheduler = scheduler.NewScheduler(app.orchestrator, app.config.App.RefreshInterval(), app.log.Component("scheduler"))

	app.log.Info("Services initialized successfully")
	return nil
}

// Run starts the pipeline, restores the last place and drives the event
// loop until stdin is closed or Shutdown is called. Lines prefixed with
// "?" run a suggestion search; any other line loads weather for the typed
// place.
func (app *Application) Run() error {
	app.scheduler.Start()
	app.orchestrator.LoadLastPlace()

	input := make(chan string)
	go app.readInput(input)

	for {
		select {
		case event, open := <-app.orchestrator.Events():
			if !open {
				return nil
			}
			app.handleEvent(event)
		case line, open := <-input:
			if !open {
				app.Shutdown()
				continue
			}
			app.handleInput(line)
		}
	}
}

// Shutdown stops background work and releases the storage handle. It is
// safe to call more than once.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.log.Info("Shutting down...")
		app.scheduler.Stop()
		app.orchestrator.Close()
		if err := database.CloseDB(app.db); err != nil {
			app.log.Error("Failed to close local storage", "error", err)
		}
	})
}

func (app *Application) readInput(input chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input <- scanner.Text()
	}
	close(input)
}

func (app *Application) handleInput(line string) {
	if query, ok := strings.CutPrefix(line, "?"); ok {
		if validation.IsSearchableQuery(query) {
			app.orchestrator.SearchPlaces(strings.TrimSpace(query))
		}
		return
	}

	if trimmed, ok := validation.TrimAndValidate(line); ok {
		// A line matching a previous suggestion loads that exact place
		// instead of re-resolving the text.
		for i := range app.suggestions {
			if app.suggestions[i].DisplayName() == trimmed {
				app.orchestrator.LoadWeatherForPlace(&app.suggestions[i])
				return
			}
		}
		app.orchestrator.LoadWeather(trimmed)
	}
}

func (app *Application) handleEvent(event service.Event) {
	switch event.Kind {
	case service.EventSuggestions:
		app.renderSuggestions(event.Suggestions)
	case service.EventWeather:
		app.renderWeather(event)
	case service.EventForecast:
		app.renderForecast(event)
	case service.EventNothingToShow:
		app.log.Info("No stored place, loading default city", "city", app.config.App.DefaultCity)
		app.orchestrator.LoadWeather(app.config.App.DefaultCity)
	}
}

func (app *Application) renderSuggestions(suggestions []models.Place) {
	app.suggestions = suggestions
	if len(suggestions) == 0 {
		fmt.Fprintln(app.out, "No suggestions")
		return
	}
	for _, place := range suggestions {
		fmt.Fprintf(app.out, "  %s\n", place.DisplayName())
	}
}

func (app *Application) renderWeather(event service.Event) {
	if event.Err != nil {
		fmt.Fprintln(app.out, userMessage(event.Err))
		return
	}

	w := event.Weather
	fmt.Fprintf(app.out, "\n%s\n", w.CityName)
	fmt.Fprintf(app.out, "  %s (feels like %s)\n", w.FormattedTemperature(), w.FormattedFeelsLike())
	fmt.Fprintf(app.out, "  %s\n", w.Description)
	fmt.Fprintf(app.out, "  Humidity: %d%%  Pressure: %d hPa\n", w.Humidity, w.Pressure)
	fmt.Fprintf(app.out, "  Wind: %s %s\n", w.FormattedWindSpeed(), w.WindDirection())
	if w.Sunrise > 0 {
		fmt.Fprintf(app.out, "  Sunrise: %s  Sunset: %s\n", w.FormattedSunrise(), w.FormattedSunset())
	}
	if event.FromCache {
		fmt.Fprintf(app.out, "  (from history, observed %s)\n", w.FormattedDate())
	}

	// A current reading chains an outlook load for the same place; a
	// forecast failure won't hide the reading already shown.
	if event.Place != nil {
		app.orchestrator.LoadForecast(event.Place, app.config.App.ForecastDays)
	}
}

func (app *Application) renderForecast(event service.Event) {
	if event.Err != nil {
		fmt.Fprintln(app.out, "Forecast is temporarily unavailable")
		return
	}

	fmt.Fprintln(app.out, "Outlook:")
	for i, day := range event.Forecast {
		fmt.Fprintf(app.out, "  %-10s %s, %s\n", dayLabel(i, &day), day.FormattedTemperature(), day.Description)
	}
}

// dayLabel names a forecast entry: "Today", "Tomorrow", then the date.
func dayLabel(index int, weather *models.Weather) string {
	switch index {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return weather.ObservedTime().Format("02.01")
	}
}

// userMessage maps the error taxonomy to the distinct human-readable
// messages shown to the end user.
func userMessage(err error) string {
	switch {
	case errors.IsNotFoundError(err):
		return "Place not found. Check the spelling and try again."
	case errors.IsConfigurationError(err):
		return "The weather service credential is missing or invalid."
	case errors.IsExternalAPIError(err):
		return "The weather service is temporarily unavailable. Try again later."
	case errors.IsMalformedResponseError(err):
		return "The weather service returned an unexpected response."
	case errors.IsDatabaseError(err):
		return "Local storage failed. Recent places may be unavailable."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
