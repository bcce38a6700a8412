package export

import "context"

// PDFService simulates printable (.pdf) exports.
type PDFService struct {
	sim *simulator
}

// NewPDFService returns a PDFService confirming through notifier.
func NewPDFService(notifier Notifier, opts ...Option) *PDFService {
	return &PDFService{sim: newSimulator(FormatPDF, notifier, opts...)}
}

func (p *PDFService) Format() Format { return FormatPDF }

func (p *PDFService) ExportEmployees(ctx context.Context, employees []Employee, fileName string) Result {
	return p.sim.exportEmployees(ctx, employees, fileName)
}

func (p *PDFService) ExportSchedule(ctx context.Context, schedule *Schedule, fileName string) Result {
	return p.sim.exportSchedule(ctx, schedule, fileName)
}

func (p *PDFService) ExportShifts(ctx context.Context, shifts []Shift, fileName string) Result {
	return p.sim.exportShifts(ctx, shifts, fileName)
}

func (p *PDFService) ExportStatistics(ctx context.Context, stats *Statistics, fileName string) Result {
	return p.sim.exportStatistics(ctx, stats, fileName)
}

// ExportEmployeeSchedule simulates the printable timetable of one employee
func (p *PDFService) ExportEmployeeSchedule(ctx context.Context, employee *Employee, shifts []Shift, fileName string) Result {
	return p.sim.exportEmployeeSchedule(ctx, employee, shifts, fileName)
}
