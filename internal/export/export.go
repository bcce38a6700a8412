// Package export simulates spreadsheet and PDF exports of the dashboard data.
// No document is produced: each operation logs its input, builds the file
// name the document would have, asks a Notifier to confirm and reports the
// outcome as a Result.
package export

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"shiftboard/pkg/logger"
)

// Format identifies an output document type.
type Format string

const (
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// Extension returns the file extension for f, including the dot
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return ".xlsx"
	case FormatPDF:
		return ".pdf"
	default:
		return ""
	}
}

// Label is the human-readable name used in confirmations
func (f Format) Label() string {
	switch f {
	case FormatExcel:
		return "Excel"
	case FormatPDF:
		return "PDF"
	default:
		return string(f)
	}
}

// Kind identifies what is being exported.
type Kind string

const (
	KindEmployees        Kind = "employees"
	KindSchedule         Kind = "schedule"
	KindShifts           Kind = "shifts"
	KindStatistics       Kind = "statistics"
	KindEmployeeSchedule Kind = "employee-schedule"
)

// Kinds lists every supported export kind
func Kinds() []Kind {
	return []Kind{KindEmployees, KindSchedule, KindShifts, KindStatistics, KindEmployeeSchedule}
}

var (
	// ErrMissingInput is reported when an export receives no data
	ErrMissingInput = errors.New("export input is missing")
	// ErrUnknownFormat is returned for a format other than excel or pdf
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrUnknownKind is returned for an unsupported export kind
	ErrUnknownKind = errors.New("unknown export kind")
)

// Result is the outcome of a simulated export. On failure only Success and
// Error are set.
type Result struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Exporter is implemented by ExcelService and PDFService.
type Exporter interface {
	Format() Format
	ExportEmployees(ctx context.Context, employees []Employee, fileName string) Result
	ExportSchedule(ctx context.Context, schedule *Schedule, fileName string) Result
	ExportShifts(ctx context.Context, shifts []Shift, fileName string) Result
	ExportStatistics(ctx context.Context, stats *Statistics, fileName string) Result
	ExportEmployeeSchedule(ctx context.Context, employee *Employee, shifts []Shift, fileName string) Result
}

// Option configures an export service.
type Option func(*simulator)

// WithClock overrides the clock used for default file names
func WithClock(now func() time.Time) Option {
	return func(s *simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger; nil keeps the default logger
func WithLogger(log *logger.Logger) Option {
	return func(s *simulator) {
		if log != nil {
			s.logger = log
		}
	}
}

// simulator is the shared core of both services
type simulator struct {
	format   Format
	notifier Notifier
	logger   *logger.Logger
	now      func() time.Time
}

func newSimulator(format Format, notifier Notifier, opts ...Option) *simulator {
	s := &simulator{
		format:   format,
		notifier: notifier,
		logger:   logger.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	s.logger = s.logger.With("format", string(format))
	return s
}

// fileName returns name with the format extension, or the dated default
// "<base>_<YYYY-MM-DD><ext>" when name is blank.
func (s *simulator) fileName(name, base string) string {
	ext := s.format.Extension()
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("%s_%s%s", base, s.now().Format(time.DateOnly), ext)
	}
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}

// run executes one export. build validates the input and fills the
// template data; any error or panic becomes a failed Result.
// run logs the request, builds the message and asks the notifier to confirm.
// size is the number of records in input; the payload itself is only logged at debug.
func (s *simulator) run(ctx context.Context, kind Kind, fileName, base string, input any, size int, build func(*messageData) error) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Recovery(r, debug.Stack())
			res = Result{Error: fmt.Sprint(r)}
		}
		s.logger.Performance(ctx, "export_"+string(kind), time.Since(start), map[string]any{
			"success": res.Success,
			"file":    res.FileName,
		})
	}()

	s.logger.InfoContext(ctx, "export requested", "kind", string(kind), "input_size", size)
	s.logger.DebugContext(ctx, "export input", "kind", string(kind), "input", input)

	data := messageData{Format: s.format.Label()}
	if err := build(&data); err != nil {
		return s.fail(ctx, kind, err)
	}
	data.FileName = s.fileName(fileName, base)

	message, err := renderMessage(kind, data)
	if err != nil {
		return s.fail(ctx, kind, err)
	}
	if err := s.notifier.Notify(ctx, message); err != nil {
		return s.fail(ctx, kind, err)
	}

	s.logger.InfoContext(ctx, "export simulated", "kind", string(kind), "file", data.FileName)
	return Result{Success: true, FileName: data.FileName, Message: message}
}

func (s *simulator) fail(ctx context.Context, kind Kind, err error) Result {
	s.logger.ErrorContext(ctx, "export failed", "kind", string(kind), "error", err)
	return Result{Error: err.Error()}
}

func (s *simulator) exportEmployees(ctx context.Context, employees []Employee, fileName string) Result {
	return s.run(ctx, KindEmployees, fileName, "dipendenti", employees, len(employees), func(d *messageData) error {
		if employees == nil {
			return fmt.Errorf("dipendenti: %w", ErrMissingInput)
		}
		d.Count = len(employees)
		d.Employees = employees
		return nil
	})
}

func (s *simulator) exportSchedule(ctx context.Context, schedule *Schedule, fileName string) Result {
	size := 0
	if schedule != nil {
		size = len(schedule.Shifts)
	}
	return s.run(ctx, KindSchedule, fileName, "pianificazione", schedule, size, func(d *messageData) error {
		if schedule == nil {
			return fmt.Errorf("pianificazione: %w", ErrMissingInput)
		}
		d.Schedule = *schedule
		d.Count = len(schedule.Shifts)
		d.Hours = totalHours(schedule.Shifts)
		return nil
	})
}

func (s *simulator) exportShifts(ctx context.Context, shifts []Shift, fileName string) Result {
	return s.run(ctx, KindShifts, fileName, "turni", shifts, len(shifts), func(d *messageData) error {
		if shifts == nil {
			return fmt.Errorf("turni: %w", ErrMissingInput)
		}
		d.Count = len(shifts)
		d.Hours = totalHours(shifts)
		d.Dates = shiftDates(shifts)
		return nil
	})
}

func (s *simulator) exportStatistics(ctx context.Context, stats *Statistics, fileName string) Result {
	size := 0
	if stats != nil {
		size = len(stats.HoursByEmployee)
	}
	return s.run(ctx, KindStatistics, fileName, "statistiche", stats, size, func(d *messageData) error {
		if stats == nil {
			return fmt.Errorf("statistiche: %w", ErrMissingInput)
		}
		d.Statistics = *stats
		for name := range stats.HoursByEmployee {
			d.Names = append(d.Names, name)
		}
		sort.Strings(d.Names)
		return nil
	})
}

func (s *simulator) exportEmployeeSchedule(ctx context.Context, employee *Employee, shifts []Shift, fileName string) Result {
	base := "turni_dipendente"
	if employee != nil {
		if slug := slugify(employee.FullName()); slug != "" {
			base = "turni_" + slug
		}
	}
	input := map[string]any{"employee": employee, "shifts": shifts}
	return s.run(ctx, KindEmployeeSchedule, fileName, base, input, len(shifts), func(d *messageData) error {
		if employee == nil {
			return fmt.Errorf("dipendente: %w", ErrMissingInput)
		}
		if shifts == nil {
			return fmt.Errorf("turni: %w", ErrMissingInput)
		}
		d.Employee = *employee
		d.Count = len(shifts)
		d.Hours = totalHours(shifts)
		return nil
	})
}

// shiftDates returns the distinct non-empty dates in shifts, sorted
func shiftDates(shifts []Shift) []string {
	seen := make(map[string]struct{}, len(shifts))
	dates := make([]string, 0, len(shifts))
	for _, s := range shifts {
		if s.Date == "" {
			continue
		}
		if _, ok := seen[s.Date]; ok {
			continue
		}
		seen[s.Date] = struct{}{}
		dates = append(dates, s.Date)
	}
	sort.Strings(dates)
	return dates
}

func slugify(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
