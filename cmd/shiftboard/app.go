package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"shiftboard/internal/api"
	"shiftboard/internal/config"
	"shiftboard/internal/dashboard"
	"shiftboard/internal/export"
	"shiftboard/internal/storage"
	"shiftboard/internal/store"
	"shiftboard/pkg/logger"
)

const (
	appName         = "shiftboard"
	shutdownTimeout = 10 * time.Second
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// Application holds all the application components
type Application struct {
	config     *config.Config
	logger     *logger.Logger
	area       store.Store
	local      *storage.LocalService
	cloud      *storage.CloudService
	backends   storage.Backends
	manager    *storage.Manager
	exports    export.Services
	httpServer *http.Server

	closeOnce sync.Once
	closeErr  error
}

// NewApplication creates a new application instance. Logs go to logOut,
// or stdout when nil.
func NewApplication(cfg *config.Config, logOut io.Writer) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	loggerConfig := logger.Config{
		Level:       mapLogLevel(cfg.Log.Level),
		OutputFile:  cfg.Log.File,
		EnableJSON:  cfg.Log.Format == config.LogFormatJSON,
		EnableColor: logOut == nil,
		Output:      logOut,
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if err := logger.Init(loggerConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize global logger: %w", err)
	}

	app := &Application{
		config: cfg,
		logger: log,
	}

	if err := app.setupStore(); err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to setup store: %w", err)
	}
	if err := app.setupStorage(); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.exports = export.NewServices(export.LogNotifier{Logger: log}, export.WithLogger(log))

	return app, nil
}

// mapLogLevel maps config.LogLevel to logger.LogLevel
func mapLogLevel(configLevel config.LogLevel) logger.LogLevel {
	switch configLevel {
	case config.LogLevelDebug:
		return logger.LevelDebug
	case config.LogLevelInfo:
		return logger.LevelInfo
	case config.LogLevelWarn:
		return logger.LevelWarn
	case config.LogLevelError:
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// setupStore opens the key/value area selected by storage.type
func (app *Application) setupStore() error {
	cfg := app.config.Storage
	app.logger.Debug("setting up store", "type", cfg.Type, "path", cfg.Path, "quota", cfg.Quota)

	switch cfg.Type {
	case config.PersistenceMemory:
		app.area = store.NewMemoryStoreWithQuota(cfg.Quota)
		return nil
	case config.PersistenceFile:
		persistentConfig := store.DefaultPersistentStoreConfig()
		persistentConfig.SaveInterval = cfg.SaveInterval

		ps, err := store.NewPersistentStore(
			store.NewMemoryStoreWithQuota(cfg.Quota),
			store.NewJSONFilePersistence(cfg.Path),
			persistentConfig,
		)
		if err != nil {
			return fmt.Errorf("failed to create persistent store: %w", err)
		}
		app.area = ps
		return nil
	case config.PersistenceSQLite:
		db, err := store.OpenSQLite(cfg.Path, cfg.Quota)
		if err != nil {
			return err
		}
		app.area = db
		return nil
	default:
		return fmt.Errorf("unknown persistence type: %s", cfg.Type)
	}
}

// setupStorage builds both backends over the area and selects the
// configured one
func (app *Application) setupStorage() error {
	app.local = storage.NewLocalService(app.area, app.config.Storage.Capacity, app.logger)
	app.cloud = storage.NewCloudService(app.area, storage.CloudConfig{
		Prefix:     app.config.Cloud.Prefix,
		MinLatency: app.config.Cloud.MinLatency,
		MaxLatency: app.config.Cloud.MaxLatency,
		Capacity:   app.config.Cloud.Capacity,
	}, app.logger)
	app.backends = storage.NewBackends(app.local, app.cloud)

	selected, err := app.backends.Lookup(app.config.Storage.Backend)
	if err != nil {
		return err
	}
	app.manager = storage.NewManager(selected, app.logger)
	return nil
}

// header builds the dashboard header for the stored user. Export produces
// the employee spreadsheet from storage; logout forgets the user.
func (app *Application) header(ctx context.Context) *dashboard.Header {
	user := dashboard.LoadUser(ctx, app.manager)
	return dashboard.NewHeader(user,
		func() {
			var employees []export.Employee
			app.manager.GetObject(ctx, dashboard.EmployeesKey, &employees)
			res := app.exports[export.FormatExcel].ExportEmployees(ctx, employees, "")
			app.logger.UserAction(ctx, user.Name, "export", map[string]any{
				"success": res.Success,
				"file":    res.FileName,
			})
		},
		func() {
			app.manager.RemoveItem(ctx, dashboard.UserKey)
			app.logger.UserAction(ctx, user.Name, "logout", nil)
		},
	)
}

// setupHTTPServer creates and configures the HTTP server
func (app *Application) setupHTTPServer() (*http.Server, error) {
	handler, err := api.NewRouter(api.Deps{
		Manager:  app.manager,
		Backends: app.backends,
		Exports:  app.exports,
		Header:   app.header,
		Logger:   app.logger,
	})
	if err != nil {
		return nil, err
	}

	app.httpServer = &http.Server{
		Addr:              app.config.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app.httpServer, nil
}

// Run serves HTTP until ctx is done or the server fails, then shuts down
func (app *Application) Run(ctx context.Context) error {
	server, err := app.setupHTTPServer()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.StartupInfo(appName, version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("HTTP server error", "error", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown(ctx context.Context) error {
	start := time.Now()
	app.logger.Info("shutting down application")

	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(ctx); err != nil {
			app.logger.Error("failed to shutdown HTTP server", "error", err)
			return err
		}
	}

	if err := app.Close(); err != nil {
		return err
	}

	app.logger.ShutdownInfo(appName, time.Since(start))
	return nil
}

// Close releases the store. A file-backed store saves its final snapshot
// here. Close is idempotent.
func (app *Application) Close() error {
	app.closeOnce.Do(func() {
		if app.area != nil {
			if err := app.area.Close(); err != nil {
				app.logger.Error("failed to close store", "error", err)
				app.closeErr = err
			}
		}
	})
	return app.closeErr
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
