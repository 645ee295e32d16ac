// Package admission handles the inpatient admission (Internação) stage.
package admission

import (
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

const (
	colAccommodation   = "acomodacao"
	colAdmittedAt      = "dataHoraInternacao"
	colExamRequested   = "exameSolicitadoInternacao"
	colExamRequestedAt = "dataHoraSolicitacao"
	colExamExecutedAt  = "dataHoraExecucao"
	colExamReportedAt  = "dataHoraLaudo"
	colExamDuration    = "tempoExame"
	colICUToWard       = "altaUTIParaEnfermaria"
	colICUDays         = "tempoUTI"
)

// Form is the admission form. Hospital and attendance number are filled in
// from the session or the edit selection; submitted values are ignored.
type Form struct {
	Hospital            string             `json:"hospital"`
	AttendanceNumber    string             `json:"attendance_number"`
	Accommodation       string             `json:"accommodation"`
	AdmittedAt          careline.Timestamp `json:"admitted_at"`
	ExamRequested       string             `json:"exam_requested"`
	ExamRequestedAt     careline.Timestamp `json:"exam_requested_at"`
	ExamExecutedAt      careline.Timestamp `json:"exam_executed_at"`
	ExamReportedAt      careline.Timestamp `json:"exam_reported_at"`
	ExamDurationMinutes float64            `json:"exam_duration_minutes"`
	ICUDischargedToWard bool               `json:"icu_discharged_to_ward"`
	ICUDays             int                `json:"icu_days"`
}

func (f *Form) Record() tabular.Record {
	f.ExamDurationMinutes = careline.ExamMinutes(f.ExamRequestedAt.Time, f.ExamReportedAt.Time)
	return tabular.NewRecord(
		tabular.Field{Name: careline.ColHospital, Value: f.Hospital},
		tabular.Field{Name: careline.ColAttendanceNumber, Value: f.AttendanceNumber},
		tabular.Field{Name: colAccommodation, Value: f.Accommodation},
		tabular.Field{Name: colAdmittedAt, Value: f.AdmittedAt.String()},
		tabular.Field{Name: colExamRequested, Value: f.ExamRequested},
		tabular.Field{Name: colExamRequestedAt, Value: f.ExamRequestedAt.String()},
		tabular.Field{Name: colExamExecutedAt, Value: f.ExamExecutedAt.String()},
		tabular.Field{Name: colExamReportedAt, Value: f.ExamReportedAt.String()},
		tabular.Field{Name: colExamDuration, Value: careline.FormatMinutes(f.ExamDurationMinutes)},
		tabular.Field{Name: colICUToWard, Value: careline.FormatBool(f.ICUDischargedToWard)},
		tabular.Field{Name: colICUDays, Value: careline.FormatInt(f.ICUDays)},
	)
}

func FormFromRecord(rec tabular.Record) Form {
	return Form{
		Hospital:            rec.Value(careline.ColHospital),
		AttendanceNumber:    rec.Value(careline.ColAttendanceNumber),
		Accommodation:       rec.Value(colAccommodation),
		AdmittedAt:          careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colAdmittedAt))),
		ExamRequested:       rec.Value(colExamRequested),
		ExamRequestedAt:     careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colExamRequestedAt))),
		ExamExecutedAt:      careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colExamExecutedAt))),
		ExamReportedAt:      careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colExamReportedAt))),
		ExamDurationMinutes: careline.ParseMinutes(rec.Value(colExamDuration)),
		ICUDischargedToWard: careline.ParseBool(rec.Value(colICUToWard)),
		ICUDays:             careline.ParseCount(rec.Value(colICUDays)),
	}
}
