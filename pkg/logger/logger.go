package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel représente le niveau de logging
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String retourne le nom du niveau
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel convertit un nom de niveau ("debug", "info", ...) en LogLevel
func ParseLevel(name string) LogLevel {
	switch name {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config contient la configuration du logger
type Config struct {
	Level       LogLevel
	OutputFile  string
	EnableJSON  bool
	EnableColor bool

	// Output remplace la sortie console (os.Stdout par défaut)
	Output io.Writer
}

// Logger encapsule zerolog avec des fonctionnalités supplémentaires
type Logger struct {
	logger zerolog.Logger
	config Config
	file   *lumberjack.Logger
	mu     sync.RWMutex
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
	once          sync.Once
)

// New crée une nouvelle instance de logger
func New(config Config) (*Logger, error) {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	var writers []io.Writer

	// Sortie console
	if config.EnableJSON {
		writers = append(writers, out)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    !config.EnableColor,
		})
	}

	// Sortie fichier avec rotation si spécifiée
	var file *lumberjack.Logger
	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return nil, err
		}
		file = &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
			LocalTime:  true,
		}
		writers = append(writers, file)
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(mapLogLevel(config.Level)).
		With().
		Timestamp().
		Logger()

	return &Logger{
		logger: zl,
		config: config,
		file:   file,
	}, nil
}

// Init initialise le logger par défaut
func Init(config Config) error {
	var err error
	once.Do(func() {
		var l *Logger
		l, err = New(config)
		if err != nil {
			return
		}
		defaultMu.Lock()
		defaultLogger = l
		defaultMu.Unlock()
	})
	return err
}

// Default retourne le logger par défaut
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger == nil {
		// Configuration par défaut si pas initialisé
		defaultLogger, _ = New(Config{
			Level:       LevelInfo,
			EnableJSON:  false,
			EnableColor: true,
		})
	}
	return defaultLogger
}

// Nop retourne un logger qui n'écrit rien, utile dans les tests
func Nop() *Logger {
	return &Logger{
		logger: zerolog.Nop(),
		config: Config{Level: LevelError},
	}
}

// mapLogLevel convertit notre LogLevel vers zerolog.Level
func mapLogLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) current() zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// log écrit un événement; args est une liste clé/valeur comme avec slog
func (l *Logger) log(ctx context.Context, level zerolog.Level, msg string, args []any) {
	zl := l.current()
	event := zl.WithLevel(level)
	if event == nil {
		return
	}
	event = event.Ctx(ctx)
	if len(args) > 0 {
		event = event.Fields(args)
	}
	event.Msg(msg)
}

// Debug log un message de debug
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), zerolog.DebugLevel, msg, args)
}

// Info log un message d'information
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), zerolog.InfoLevel, msg, args)
}

// Warn log un message d'avertissement
func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), zerolog.WarnLevel, msg, args)
}

// Error log un message d'erreur
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), zerolog.ErrorLevel, msg, args)
}

// DebugContext log un message de debug avec contexte
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, zerolog.DebugLevel, msg, args)
}

// InfoContext log un message d'information avec contexte
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, zerolog.InfoLevel, msg, args)
}

// WarnContext log un message d'avertissement avec contexte
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, zerolog.WarnLevel, msg, args)
}

// ErrorContext log un message d'erreur avec contexte
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, zerolog.ErrorLevel, msg, args)
}

// With retourne un nouveau logger avec des attributs supplémentaires
func (l *Logger) With(args ...any) *Logger {
	zl := l.current()
	return &Logger{
		logger: zl.With().Fields(args).Logger(),
		config: l.config,
		file:   l.file,
	}
}

// SetLevel change le niveau de logging
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
	l.logger = l.logger.Level(mapLogLevel(level))
}

// GetLevel retourne le niveau de logging actuel
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Level
}

// Enabled vérifie si un niveau de log est activé
func (l *Logger) Enabled(level LogLevel) bool {
	zl := l.current()
	return zl.GetLevel() <= mapLogLevel(level) && zerolog.GlobalLevel() <= mapLogLevel(level)
}

// Close ferme le fichier de log s'il existe
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
