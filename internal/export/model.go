package export

import (
	"strings"
	"time"
)

// Employee is a member of staff as shown in the dashboard.
type Employee struct {
	ID            int      `json:"id"`
	FirstName     string   `json:"nome"`
	LastName      string   `json:"cognome"`
	Role          string   `json:"ruolo,omitempty"`
	Email         string   `json:"email,omitempty"`
	ContractHours float64  `json:"oreContratto,omitempty"`
	Skills        []string `json:"competenze,omitempty"`
}

// FullName returns "FirstName LastName", trimmed
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Shift is a single assignment of an employee to a time slot.
type Shift struct {
	ID         int    `json:"id"`
	EmployeeID int    `json:"dipendenteId"`
	Date       string `json:"data"`
	Start      string `json:"inizio"`
	End        string `json:"fine"`
	Role       string `json:"ruolo,omitempty"`
	Notes      string `json:"note,omitempty"`
}

// Hours returns the shift length computed from Start and End ("15:04").
// Overnight shifts wrap past midnight. Unparseable times count as zero.
func (s Shift) Hours() float64 {
	start, err := time.Parse("15:04", s.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", s.End)
	if err != nil {
		return 0
	}
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d.Hours()
}

// Schedule is the planning for a period.
type Schedule struct {
	Name      string     `json:"nome,omitempty"`
	StartDate string     `json:"dataInizio"`
	EndDate   string     `json:"dataFine"`
	Employees []Employee `json:"dipendenti,omitempty"`
	Shifts    []Shift    `json:"turni"`
}

// Statistics is the aggregate view of a period.
type Statistics struct {
	Period          string             `json:"periodo,omitempty"`
	TotalEmployees  int                `json:"totaleDipendenti"`
	TotalShifts     int                `json:"totaleTurni"`
	TotalHours      float64            `json:"oreTotali"`
	CoveragePercent float64            `json:"coperturaPercentuale"`
	HoursByEmployee map[string]float64 `json:"orePerDipendente,omitempty"`
}

func totalHours(shifts []Shift) float64 {
	var total float64
	for _, s := range shifts {
		total += s.Hours()
	}
	return total
}
