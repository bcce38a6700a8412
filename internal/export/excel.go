package export

import "context"

// ExcelService simulates spreadsheet (.xlsx) exports.
type ExcelService struct {
	sim *simulator
}

// NewExcelService returns an ExcelService confirming through notifier.
// A nil notifier logs the confirmation.
func NewExcelService(notifier Notifier, opts ...Option) *ExcelService {
	return &ExcelService{sim: newSimulator(FormatExcel, notifier, opts...)}
}

func (e *ExcelService) Format() Format { return FormatExcel }

// ExportEmployees simulates the employee list spreadsheet
func (e *ExcelService) ExportEmployees(ctx context.Context, employees []Employee, fileName string) Result {
	return e.sim.exportEmployees(ctx, employees, fileName)
}

// ExportSchedule simulates the planning spreadsheet
func (e *ExcelService) ExportSchedule(ctx context.Context, schedule *Schedule, fileName string) Result {
	return e.sim.exportSchedule(ctx, schedule, fileName)
}

// ExportShifts simulates the shift list spreadsheet
func (e *ExcelService) ExportShifts(ctx context.Context, shifts []Shift, fileName string) Result {
	return e.sim.exportShifts(ctx, shifts, fileName)
}

// ExportStatistics simulates the statistics spreadsheet
func (e *ExcelService) ExportStatistics(ctx context.Context, stats *Statistics, fileName string) Result {
	return e.sim.exportStatistics(ctx, stats, fileName)
}

// ExportEmployeeSchedule simulates the spreadsheet of one employee's shifts
func (e *ExcelService) ExportEmployeeSchedule(ctx context.Context, employee *Employee, shifts []Shift, fileName string) Result {
	return e.sim.exportEmployeeSchedule(ctx, employee, shifts, fileName)
}
