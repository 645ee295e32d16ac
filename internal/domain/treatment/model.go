// Package treatment handles the surgical treatment (Tratamento) stage.
package treatment

import (
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

const (
	colProcedure     = "procedimentoCirurgico"
	colProcedureType = "tipoProcedimentoCirurgico"
	colSeverity      = "grauSeveridade"
)

type Form struct {
	Hospital          string `json:"hospital"`
	AttendanceNumber  string `json:"attendance_number"`
	SurgicalProcedure string `json:"surgical_procedure"`
	ProcedureType     string `json:"procedure_type"`
	SeverityGrade     string `json:"severity_grade"`
}

func (f *Form) Record() tabular.Record {
	return tabular.NewRecord(
		tabular.Field{Name: careline.ColHospital, Value: f.Hospital},
		tabular.Field{Name: careline.ColAttendanceNumber, Value: f.AttendanceNumber},
		tabular.Field{Name: colProcedure, Value: f.SurgicalProcedure},
		tabular.Field{Name: colProcedureType, Value: f.ProcedureType},
		tabular.Field{Name: colSeverity, Value: careline.SeverityOptions.Normalize(f.SeverityGrade)},
	)
}

func FormFromRecord(rec tabular.Record) Form {
	return Form{
		Hospital:          rec.Value(careline.ColHospital),
		AttendanceNumber:  rec.Value(careline.ColAttendanceNumber),
		SurgicalProcedure: rec.Value(colProcedure),
		ProcedureType:     rec.Value(colProcedureType),
		SeverityGrade:     careline.SeverityOptions.Normalize(rec.Value(colSeverity)),
	}
}
