package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shiftboard/internal/dashboard"
	"shiftboard/internal/export"
	"shiftboard/internal/storage"
	"shiftboard/pkg/logger"
)

// DefaultTimeout bounds storage calls made on behalf of a request
const DefaultTimeout = 5 * time.Second

var errNoManager = errors.New("api: storage manager is required")

// Deps are the services exposed over HTTP
type Deps struct {
	Manager  *storage.Manager
	Backends storage.Backends
	Exports  export.Services
	// Header builds the dashboard header; nil renders an anonymous header
	// without actions
	Header  HeaderFactory
	Logger  *logger.Logger
	Timeout time.Duration
}

// NewHandler creates a new Handler instance with dependencies
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Manager == nil {
		return nil, errNoManager
	}
	h := &Handler{
		manager:  deps.Manager,
		backends: deps.Backends,
		exports:  deps.Exports,
		header:   deps.Header,
		logger:   deps.Logger,
		timeout:  deps.Timeout,
	}
	if h.backends == nil {
		h.backends = storage.NewBackends(deps.Manager.StorageService())
	}
	if h.exports == nil {
		h.exports = export.NewServices(nil, export.WithLogger(deps.Logger))
	}
	if h.header == nil {
		h.header = func(context.Context) *dashboard.Header {
			return dashboard.NewHeader(dashboard.User{}, nil, nil)
		}
	}
	if h.logger == nil {
		h.logger = logger.Default()
	}
	if h.timeout <= 0 {
		h.timeout = DefaultTimeout
	}
	return h, nil
}

// NewRouter mounts every route behind the middleware chain
func NewRouter(deps Deps) (http.Handler, error) {
	h, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Outermost first
	r.Use(RequestIDMiddleware)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware(h.logger))
	r.Use(RecoveryMiddleware(h.logger))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", h.Health)

	r.Route("/api/storage", func(r chi.Router) {
		r.Get("/", h.ListKeys)
		r.Delete("/", h.Clear)
		r.Get("/info", h.Info)
		r.Get("/backend", h.GetBackend)
		r.Put("/backend", h.SetBackend)
		r.Post("/migrate", h.Migrate)

		r.Route("/items/{key}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Put("/", h.SetItem)
			r.Delete("/", h.RemoveItem)
		})
	})

	r.Post("/api/export/{format}/{kind}", h.Export)

	r.Route("/dashboard/header", func(r chi.Router) {
		r.Get("/", h.Header)
		r.Post("/export", h.HeaderExport)
		r.Post("/logout", h.HeaderLogout)
	})

	return r, nil
}
