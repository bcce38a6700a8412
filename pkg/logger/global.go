package logger

import "context"

// Fonctions de convenance pour utiliser le logger par défaut

// Debug log un message de debug avec le logger par défaut
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info log un message d'information avec le logger par défaut
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn log un message d'avertissement avec le logger par défaut
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error log un message d'erreur avec le logger par défaut
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// InfoContext log un message d'information avec contexte avec le logger par défaut
func InfoContext(ctx context.Context, msg string, args ...any) {
	Default().InfoContext(ctx, msg, args...)
}

// ErrorContext log un message d'erreur avec contexte avec le logger par défaut
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Default().ErrorContext(ctx, msg, args...)
}
