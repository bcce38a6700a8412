package logger

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPRequest log une requête HTTP traitée
func (l *Logger) HTTPRequest(r *http.Request, statusCode int, duration time.Duration) {
	l.InfoContext(r.Context(), "HTTP request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", statusCode,
		"duration_ms", duration.Milliseconds(),
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)
}

// HTTPError log une erreur HTTP avec détails
func (l *Logger) HTTPError(r *http.Request, err error, statusCode int) {
	l.ErrorContext(r.Context(), "HTTP error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", statusCode,
		"error", err.Error(),
		"remote_addr", r.RemoteAddr,
	)
}

// StorageOperation log une opération sur un backend de stockage
func (l *Logger) StorageOperation(ctx context.Context, backend, operation, key string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "Storage operation failed",
			"backend", backend,
			"operation", operation,
			"key", key,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.DebugContext(ctx, "Storage operation",
		"backend", backend,
		"operation", operation,
		"key", key,
		"duration_ms", duration.Milliseconds(),
	)
}

// StartupInfo log les informations de démarrage de l'application
func (l *Logger) StartupInfo(appName, version, address string) {
	l.Info("Application starting",
		"app", appName,
		"version", version,
		"address", address,
	)
}

// ShutdownInfo log les informations d'arrêt de l'application
func (l *Logger) ShutdownInfo(appName string, duration time.Duration) {
	l.Info("Application shutdown",
		"app", appName,
		"shutdown_duration_ms", duration.Milliseconds(),
	)
}

// UserAction log une action utilisateur
func (l *Logger) UserAction(ctx context.Context, user, action string, metadata map[string]any) {
	args := []any{
		"user", user,
		"action", action,
	}

	// Ajouter les métadonnées
	for k, v := range metadata {
		args = append(args, k, v)
	}

	l.InfoContext(ctx, "User action", args...)
}

// Performance log des métriques de performance
func (l *Logger) Performance(ctx context.Context, operation string, duration time.Duration, metadata map[string]any) {
	args := []any{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}

	for k, v := range metadata {
		args = append(args, k, v)
	}

	if duration > 1000*time.Millisecond {
		l.WarnContext(ctx, "Slow operation detected", args...)
	} else {
		l.DebugContext(ctx, "Performance metric", args...)
	}
}

// Recovery log la récupération après une panique
func (l *Logger) Recovery(r any, stack []byte) {
	l.Error("Panic recovered",
		"panic", fmt.Sprintf("%v", r),
		"stack", string(stack),
	)
}
