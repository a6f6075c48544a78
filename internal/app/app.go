package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/config"
	"github.com/five82/checklist/internal/logging"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/prefs"
	"github.com/five82/checklist/internal/session"
	"github.com/five82/checklist/internal/todos"
	"github.com/five82/checklist/internal/ui"
)

// ErrConfig marks failures that come from configuration rather than the
// remote service.
var ErrConfig = errors.New("configuration error")

// Options configure the checklist application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/checklist/prefs.toml
	Endpoint   string // overrides the configured endpoint when set
	LogLevel   string // overrides the configured log level when set
}

// App holds the wired components shared by the TUI and the CLI.
type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Store       *cache.Store
	Session     *session.Session
	Coordinator *mutation.Coordinator

	prefsPath string
	logFile   *logging.Logger
}

// New loads configuration, opens the log and builds the remote client.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if v := strings.TrimSpace(opts.Endpoint); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	logFile, err := logging.Open(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	client, err := todos.NewClient(cfg.Endpoint, todos.Options{
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("%w: init client: %w", ErrConfig, err)
	}

	a := Assemble(cfg, client, logFile.Logger)
	a.prefsPath = opts.PrefsPath
	a.logFile = logFile
	a.Logger.Debug("app ready", "endpoint", client.Endpoint(), "poll_interval", cfg.PollInterval.String())
	return a, nil
}

// Assemble wires the cache, session and coordinator around svc.
func Assemble(cfg config.Config, svc todos.Service, logger *slog.Logger) *App {
	logger = logging.OrDiscard(logger)
	store := &cache.Store{}
	sess := session.New(svc, store, logger.With("component", "session"))
	coord := mutation.New(svc, store, sess, logger.With("component", "mutation"))
	return &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Session:     sess,
		Coordinator: coord,
	}
}

// Close releases the log file.
func (a *App) Close() error {
	return a.logFile.Close()
}

// RunTUI starts the poller and blocks in the interactive UI until the user
// quits or ctx is cancelled.
func (a *App) RunTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	StartPoller(ctx, a.Session, a.Config.PollInterval, a.Logger.With("component", "poller"))

	prefsPath := a.prefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     a.Store,
		Loader:    a.Session,
		Mutator:   a.Coordinator,
		Logger:    a.Logger.With("component", "ui"),
		Endpoint:  a.Config.Endpoint,
		LogPath:   a.Config.LogPath(),
		Prefs:     prefs.Load(prefsPath),
		PrefsPath: prefsPath,
	})
}
