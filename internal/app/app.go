package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deskpet/internal/assets"
	"deskpet/internal/clickthrough"
	"deskpet/internal/config"
	"deskpet/internal/hotkeys"
	"deskpet/internal/journal"
	"deskpet/internal/logging"
	"deskpet/internal/platform"
	"deskpet/internal/ui"
)

const (
	hoversRefresh   = 30 * time.Second
	shutdownTimeout = 2 * time.Second
)

// Options are runtime overrides from the command line. Zero values defer to
// the config file.
type Options struct {
	ConfigPath   string
	PollInterval time.Duration
	LogLevel     string
}

// App is the main application
type App struct {
	opts      Options
	fyneApp   fyne.App
	features  platform.PlatformFeatures
	cfgMgr    *config.Manager
	logger    *logging.Logger
	log       *zap.Logger
	bounds    *clickthrough.BoundsStore
	watcher   *clickthrough.Watcher
	journal   *journal.Journal
	hotkeyMgr *hotkeys.Manager

	// UI components
	tray     *ui.TrayManager
	pet      *ui.PetWindow
	settings *ui.SettingsDialog

	// Background tasks
	cancel    context.CancelFunc
	group     *errgroup.Group
	stopOnce  sync.Once
	mu        sync.Mutex
	watchErr  error
	shutdowns sync.Once
}

// Run starts the application and blocks until it quits
func Run(opts Options) error {
	cfgMgr, err := config.NewManager(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfgMgr.Load(); err != nil {
		return err
	}
	cfg := cfgMgr.Get()

	logCfg := cfg.Log
	if opts.LogLevel != "" {
		logCfg.Level = opts.LogLevel
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	restore := logger.InstallGlobal()
	defer restore()
	defer func() { _ = logger.Sync() }()

	a := newApp(opts, cfgMgr, logger, app.NewWithID("com.deskpet.app"), platform.Features)
	a.log.Info("starting", zap.String("config", cfgMgr.Path()))

	a.fyneApp.Settings().SetTheme(theme.DarkTheme())
	a.fyneApp.SetIcon(assets.AppIcon())

	if err := a.setup(cfg); err != nil {
		return err
	}

	cfgMgr.OnChange(func(c *config.Config) {
		a.log.Info("config reloaded")
		a.applyConfig(c)
	})
	cfgMgr.Watch()

	a.startTasks(cfg)

	// Run the app (blocking)
	a.fyneApp.Run()

	a.shutdown()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.watchErr
}

// newApp wires an App around its collaborators without creating any UI
func newApp(opts Options, cfgMgr *config.Manager, logger *logging.Logger, fyneApp fyne.App,
	features platform.PlatformFeatures) *App {
	cfg := cfgMgr.Get()
	return &App{
		opts:     opts,
		cfgMgr:   cfgMgr,
		logger:   logger,
		log:      logger.Logger,
		bounds:   clickthrough.NewBoundsStoreWith(initialRegion(cfg)),
		fyneApp:  fyneApp,
		features: features,
	}
}

// setup opens the journal, builds the UI, the watcher and the hotkey
// listener. Must run on the UI goroutine before fyne's event loop starts.
func (a *App) setup(cfg *config.Config) error {
	if cfg.Journal.Enabled {
		path := cfg.JournalPath(a.cfgMgr.Path())
		j, err := journal.Open(path, a.log.Named("journal"))
		if err != nil {
			a.log.Warn("journal disabled", zap.String("path", path), zap.Error(err))
		} else {
			a.journal = j
		}
	}

	if err := a.initUI(cfg); err != nil {
		return err
	}

	a.watcher = clickthrough.NewWatcher(a.bounds, a.features, clickthrough.ToggleFunc(a.pet.SetClickThrough),
		clickthrough.Options{
			Interval:             effectiveInterval(a.opts, cfg),
			Logger:               a.log.Named("watcher"),
			Observer:             a.observer(),
			FailureWarnThreshold: cfg.FailureWarnThreshold,
		})

	a.hotkeyMgr = hotkeys.NewManager(a.features, a.log.Named("hotkeys"))
	a.hotkeyMgr.SetToggleCallback(a.handleToggleHotkey)
	if err := a.hotkeyMgr.Start(); err != nil {
		a.log.Warn("hotkey listener unavailable", zap.Error(err))
	}
	return nil
}

// initialRegion is the placeholder used until the pet reports its bounds
func initialRegion(cfg *config.Config) clickthrough.HitRegion {
	r := clickthrough.DefaultRegion()
	r.Width = cfg.DefaultRegion.Width
	r.Height = cfg.DefaultRegion.Height
	return r
}

// effectiveInterval prefers the command-line override
func effectiveInterval(opts Options, cfg *config.Config) time.Duration {
	if opts.PollInterval > 0 {
		return opts.PollInterval
	}
	return time.Duration(cfg.PollIntervalMs) * time.Millisecond
}

// observer returns the journal as a watcher observer, or nil without one
func (a *App) observer() clickthrough.Observer {
	if a.journal == nil {
		return nil
	}
	return a.journal
}

// initUI initializes all UI components
func (a *App) initUI(cfg *config.Config) error {
	a.pet = ui.NewPetWindow(a.fyneApp, cfg, a.bounds, a.features, a.log.Named("ui"))
	if err := a.pet.Setup(); err != nil {
		return err
	}

	a.tray = ui.NewTrayManager(a.fyneApp, a.log.Named("ui"))
	a.tray.SetCallbacks(ui.TrayCallbacks{
		OnShowPet:  a.showPet,
		OnHidePet:  a.hidePet,
		OnPause:    a.setPaused,
		OnSettings: a.showSettings,
		OnQuit:     a.quit,
	})
	if err := a.tray.Setup(); err != nil {
		a.log.Warn("system tray setup failed", zap.Error(err))
	}
	a.pet.SetContextMenu(a.tray.Menu())

	a.pet.Show()
	return nil
}

// startTasks launches the watcher, bounds reporter, animation and hover
// counter under one errgroup
func (a *App) startTasks(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	a.group = g

	g.Go(func() error {
		select {
		case <-a.pet.Ready():
		case <-gctx.Done():
			return nil
		}
		err := a.watcher.Run(gctx)
		if errors.Is(err, clickthrough.ErrWatcherAborted) {
			// The window stays in passthrough; the pet keeps animating.
			a.log.Error("click-through disabled until restart", zap.Error(err))
			a.mu.Lock()
			a.watchErr = err
			a.mu.Unlock()
			return nil
		}
		return err
	})

	reportEvery := time.Duration(cfg.ReportIntervalMs) * time.Millisecond
	g.Go(func() error {
		return a.pet.RunReporter(gctx, reportEvery)
	})

	g.Go(func() error {
		return a.pet.Animate(gctx)
	})

	if a.journal != nil {
		g.Go(func() error {
			return a.countHovers(gctx)
		})
	}
}

// stopTasks cancels background work and waits up to shutdownTimeout
func (a *App) stopTasks() {
	a.stopOnce.Do(func() {
		if a.cancel == nil {
			return
		}
		a.cancel()

		done := make(chan error, 1)
		go func() { done <- a.group.Wait() }()
		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("background task failed", zap.Error(err))
			}
		case <-time.After(shutdownTimeout):
			a.log.Warn("background tasks did not stop in time")
		}
	})
}

// countHovers refreshes the tray's "Hovers today" item
func (a *App) countHovers(ctx context.Context) error {
	ticker := time.NewTicker(hoversRefresh)
	defer ticker.Stop()
	for {
		n, err := a.journal.CountSince(clickthrough.Intercept, startOfDay(time.Now()))
		if err != nil {
			if errors.Is(err, journal.ErrClosed) {
				return nil
			}
			a.log.Debug("hover count failed", zap.Error(err))
			n = -1
		}
		fyne.Do(func() { a.tray.UpdateHovers(n) })

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// startOfDay is local midnight of t's day
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// applyConfig pushes live-reloadable settings to running components
func (a *App) applyConfig(c *config.Config) {
	if a.opts.PollInterval <= 0 {
		a.watcher.SetInterval(time.Duration(c.PollIntervalMs) * time.Millisecond)
	}
	if a.opts.LogLevel == "" && !a.logger.SetLevel(c.Log.Level) {
		a.log.Warn("ignoring invalid log level", zap.String("level", c.Log.Level))
	}
	fyne.Do(func() { a.pet.ApplyConfig(c) })
}

// handleToggleHotkey handles Ctrl+Alt+. from the hotkey goroutine
func (a *App) handleToggleHotkey() {
	fyne.Do(func() {
		a.tray.SetPetState(a.pet.Toggle())
	})
}

// showPet shows the pet window
func (a *App) showPet() {
	a.pet.Show()
	a.tray.SetPetState(true)
}

// hidePet hides the pet window
func (a *App) hidePet() {
	a.pet.Hide()
	a.tray.SetPetState(false)
}

// setPaused suspends or resumes hit testing
func (a *App) setPaused(paused bool) {
	a.watcher.SetPaused(paused)
	a.log.Info("click-through paused", zap.Bool("paused", paused))
}

// showSettings shows the settings dialog
func (a *App) showSettings() {
	if a.settings == nil {
		a.settings = ui.NewSettingsDialog(a.fyneApp, a.cfgMgr)
		a.settings.SetOnSave(a.applyConfig)
	}
	a.settings.Show()
}

// quit saves the window position, stops background work off the UI
// goroutine, then quits fyne
func (a *App) quit() {
	a.savePosition()
	go func() {
		a.stopTasks()
		fyne.Do(a.fyneApp.Quit)
	}()
}

// savePosition persists the stage position so the pet reopens where it was
func (a *App) savePosition() {
	x, y, err := a.pet.WindowPosition()
	if err != nil {
		return
	}
	if err := a.cfgMgr.Update(func(c *config.Config) {
		c.WindowX, c.WindowY = x, y
	}); err != nil {
		a.log.Warn("failed to save window position", zap.Error(err))
	}
}

// shutdown cleans up resources
func (a *App) shutdown() {
	a.shutdowns.Do(func() {
		a.log.Info("shutting down")

		a.stopTasks()
		a.hotkeyMgr.Stop()

		if a.journal != nil {
			if n := a.journal.Dropped(); n > 0 {
				a.log.Warn("journal dropped transitions under load", zap.Int("dropped", n))
			}
			if err := a.journal.Close(); err != nil {
				a.log.Warn("journal close failed", zap.Error(err))
			}
		}

		a.log.Info("shutdown complete")
	})
}
