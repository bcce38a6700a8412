package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Each confirmation template receives a messageData.
const (
	employeesTmpl = `Esportazione {{ .Format }} simulata: {{ .Count }} {{ if eq .Count 1 }}dipendente{{ else }}dipendenti{{ end }}.
{{- range $i, $e := .Employees }}{{ if lt $i 5 }}
  - {{ $e.FullName }}{{ with $e.Role }} ({{ . }}){{ end }}{{ end }}{{ end }}
{{- if gt .Count 5 }}
  ... e altri {{ sub .Count 5 }}{{ end }}
File: {{ .FileName }}`

	scheduleTmpl = `Esportazione {{ .Format }} simulata della pianificazione{{ with .Schedule.Name }} "{{ . }}"{{ end }}
Periodo: {{ default "?" .Schedule.StartDate }} - {{ default "?" .Schedule.EndDate }}
Turni: {{ len .Schedule.Shifts }}, ore totali: {{ printf "%.1f" .Hours }}
File: {{ .FileName }}`

	shiftsTmpl = `Esportazione {{ .Format }} simulata: {{ .Count }} {{ if eq .Count 1 }}turno{{ else }}turni{{ end }}, {{ printf "%.1f" .Hours }} ore.
{{- with .Dates }}
Date: {{ join ", " . }}{{ end }}
File: {{ .FileName }}`

	statisticsTmpl = `Esportazione {{ .Format }} simulata delle statistiche{{ with .Statistics.Period }} ({{ . }}){{ end }}
Dipendenti: {{ .Statistics.TotalEmployees }}, turni: {{ .Statistics.TotalShifts }}, ore: {{ printf "%.1f" .Statistics.TotalHours }}, copertura: {{ printf "%.1f" .Statistics.CoveragePercent }}%
{{- range $name := .Names }}
  - {{ $name | title }}: {{ printf "%.1f" (index $.Statistics.HoursByEmployee $name) }} ore{{ end }}
File: {{ .FileName }}`

	employeeScheduleTmpl = `Esportazione {{ .Format }} simulata dei turni di {{ default "dipendente senza nome" .Employee.FullName }}
Turni: {{ .Count }}, ore totali: {{ printf "%.1f" .Hours }}
File: {{ .FileName }}`
)

var messageTemplates = template.Must(
	template.New("messages").Funcs(sprig.TxtFuncMap()).Parse(""),
)

func init() {
	for kind, body := range map[Kind]string{
		KindEmployees:        employeesTmpl,
		KindSchedule:         scheduleTmpl,
		KindShifts:           shiftsTmpl,
		KindStatistics:       statisticsTmpl,
		KindEmployeeSchedule: employeeScheduleTmpl,
	} {
		template.Must(messageTemplates.New(string(kind)).Parse(body))
	}
}

// messageData is what the confirmation templates see
type messageData struct {
	Format     string
	FileName   string
	Count      int
	Hours      float64
	Dates      []string
	Names      []string
	Employees  []Employee
	Employee   Employee
	Schedule   Schedule
	Statistics Statistics
}

func renderMessage(kind Kind, data messageData) (string, error) {
	var buf bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return "", fmt.Errorf("render %s message: %w", kind, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
