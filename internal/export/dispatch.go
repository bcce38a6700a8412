package export

import (
	"context"
	"encoding/json"
	"fmt"
)

// EmployeeScheduleInput is the JSON payload of an employee-schedule export
type EmployeeScheduleInput struct {
	Employee *Employee `json:"dipendente"`
	Shifts   []Shift   `json:"turni"`
}

// Services maps each format to its exporter
type Services map[Format]Exporter

// NewServices builds both services sharing one notifier and option set
func NewServices(notifier Notifier, opts ...Option) Services {
	return Services{
		FormatExcel: NewExcelService(notifier, opts...),
		FormatPDF:   NewPDFService(notifier, opts...),
	}
}

// Lookup returns the exporter for format
func (s Services) Lookup(format Format) (Exporter, error) {
	exp, ok := s[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return exp, nil
}

// ParseKind validates a kind name
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Run decodes raw as the input of kind and calls the matching operation of
// exp. A JSON null or empty payload reaches the operation as missing input;
// a payload that does not decode yields a failed Result.
func Run(ctx context.Context, exp Exporter, kind Kind, raw []byte, fileName string) Result {
	if len(raw) == 0 {
		raw = []byte("null")
	}

	switch kind {
	case KindEmployees:
		var in []Employee
		if err := json.Unmarshal(raw, &in); err != nil {
			return decodeFailure(kind, err)
		}
		return exp.ExportEmployees(ctx, in, fileName)
	case KindSchedule:
		var in *Schedule
		if err := json.Unmarshal(raw, &in); err != nil {
			return decodeFailure(kind, err)
		}
		return exp.ExportSchedule(ctx, in, fileName)
	case KindShifts:
		var in []Shift
		if err := json.Unmarshal(raw, &in); err != nil {
			return decodeFailure(kind, err)
		}
		return exp.ExportShifts(ctx, in, fileName)
	case KindStatistics:
		var in *Statistics
		if err := json.Unmarshal(raw, &in); err != nil {
			return decodeFailure(kind, err)
		}
		return exp.ExportStatistics(ctx, in, fileName)
	case KindEmployeeSchedule:
		var in EmployeeScheduleInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return decodeFailure(kind, err)
		}
		return exp.ExportEmployeeSchedule(ctx, in.Employee, in.Shifts, fileName)
	default:
		return Result{Error: fmt.Errorf("%w: %q", ErrUnknownKind, kind).Error()}
	}
}

func decodeFailure(kind Kind, err error) Result {
	return Result{Error: fmt.Sprintf("decode %s input: %v", kind, err)}
}
