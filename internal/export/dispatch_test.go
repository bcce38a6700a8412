package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	excel := newTestServices(&recorder{})[FormatExcel]

	tests := []struct {
		name    string
		kind    Kind
		raw     string
		success bool
	}{
		{name: "employees", kind: KindEmployees, raw: `[{"id":1,"nome":"Mario","cognome":"Rossi"}]`, success: true},
		{name: "schedule", kind: KindSchedule, raw: `{"dataInizio":"2024-03-04","dataFine":"2024-03-10","turni":[]}`, success: true},
		{name: "shifts", kind: KindShifts, raw: `[{"id":1,"data":"2024-03-04","inizio":"08:00","fine":"12:00"}]`, success: true},
		{name: "statistics", kind: KindStatistics, raw: `{"totaleDipendenti":3}`, success: true},
		{name: "employee schedule", kind: KindEmployeeSchedule, raw: `{"dipendente":{"id":1,"nome":"Anna"},"turni":[]}`, success: true},
		{name: "null input", kind: KindEmployees, raw: `null`},
		{name: "empty body", kind: KindStatistics, raw: ``},
		{name: "missing shifts", kind: KindEmployeeSchedule, raw: `{"dipendente":{"id":1}}`},
		{name: "wrong shape", kind: KindShifts, raw: `{"id":1}`},
		{name: "malformed", kind: KindSchedule, raw: `{`},
		{name: "unknown kind", kind: Kind("payroll"), raw: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(ctx, excel, tt.kind, []byte(tt.raw), "")
			assert.Equal(t, tt.success, res.Success, res.Error)
			if !tt.success {
				assert.NotEmpty(t, res.Error)
			}
		})
	}
}

func TestServices_Lookup(t *testing.T) {
	services := newTestServices(&recorder{})

	exp, err := services.Lookup(FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, exp.Format())

	_, err = services.Lookup(Format("docx"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("payroll")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
