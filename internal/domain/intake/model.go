// Package intake handles the emergency-room (Pronto Atendimento) stage. A
// register intake opens the case: it binds the hospital and attendance
// number every later register stage of the session writes under.
package intake

import (
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

// Persisted columns specific to the stage.
const (
	colStatus              = "status"
	colAuthorizationNumber = "numeroAutorizacao"
	colPatientName         = "nomePaciente"
	colAge                 = "idade"
	colPrimaryDiagnosis    = "cidPrincipal"
	colAdmittedAt          = "dataHoraInternacaoPS"
	colECG                 = "ECG"
	colXRay                = "raioX"
	colExamPerformed       = "examePS"
	colExamRequestedAt     = "dataHoraSolicitacao"
	colExamExecutedAt      = "dataHoraExecucao"
	colExamReportedAt      = "dataHoraLaudo"
	colExamDuration        = "tempoExame"
)

// Form is the intake form as submitted and as prefilled for editing.
type Form struct {
	Hospital             string             `json:"hospital"`
	CareLine             string             `json:"care_line"`
	AttendanceNumber     string             `json:"attendance_number"`
	Status               string             `json:"status"`
	AuthorizationNumber  string             `json:"authorization_number"`
	DRGNumber            string             `json:"drg_number"`
	PatientName          string             `json:"patient_name"`
	Age                  int                `json:"age"`
	PrimaryDiagnosisCode string             `json:"primary_diagnosis_code"`
	AdmittedAt           careline.Timestamp `json:"admitted_at"`
	ECGPerformed         string             `json:"ecg_performed"`
	XRayPerformed        string             `json:"xray_performed"`
	ExamPerformed        string             `json:"exam_performed"`
	ExamRequestedAt      careline.Timestamp `json:"exam_requested_at"`
	ExamExecutedAt       careline.Timestamp `json:"exam_executed_at"`
	ExamReportedAt       careline.Timestamp `json:"exam_reported_at"`

	// ExamDurationMinutes is derived on save; submitted values are ignored.
	ExamDurationMinutes float64 `json:"exam_duration_minutes"`
}

// Record lays the form out in dataset column order. Timestamps must already
// be resolved; the exam duration is recomputed from them.
func (f *Form) Record() tabular.Record {
	f.ExamDurationMinutes = careline.ExamMinutes(f.ExamRequestedAt.Time, f.ExamReportedAt.Time)
	return tabular.NewRecord(
		tabular.Field{Name: careline.ColHospital, Value: f.Hospital},
		tabular.Field{Name: careline.ColCareLine, Value: f.CareLine},
		tabular.Field{Name: careline.ColAttendanceNumber, Value: f.AttendanceNumber},
		tabular.Field{Name: colStatus, Value: careline.StatusOptions.Normalize(f.Status)},
		tabular.Field{Name: colAuthorizationNumber, Value: f.AuthorizationNumber},
		tabular.Field{Name: careline.ColDRGNumber, Value: f.DRGNumber},
		tabular.Field{Name: colPatientName, Value: f.PatientName},
		tabular.Field{Name: colAge, Value: careline.FormatInt(f.Age)},
		tabular.Field{Name: colPrimaryDiagnosis, Value: f.PrimaryDiagnosisCode},
		tabular.Field{Name: colAdmittedAt, Value: f.AdmittedAt.String()},
		tabular.Field{Name: colECG, Value: careline.PerformedOptions.Normalize(f.ECGPerformed)},
		tabular.Field{Name: colXRay, Value: careline.PerformedOptions.Normalize(f.XRayPerformed)},
		tabular.Field{Name: colExamPerformed, Value: f.ExamPerformed},
		tabular.Field{Name: colExamRequestedAt, Value: f.ExamRequestedAt.String()},
		tabular.Field{Name: colExamExecutedAt, Value: f.ExamExecutedAt.String()},
		tabular.Field{Name: colExamReportedAt, Value: f.ExamReportedAt.String()},
		tabular.Field{Name: colExamDuration, Value: careline.FormatMinutes(f.ExamDurationMinutes)},
	)
}

// FormFromRecord reads a stored row back into a form. Unrecognized option
// values come back blank; unreadable numbers and timestamps come back zero.
func FormFromRecord(rec tabular.Record) Form {
	return Form{
		Hospital:             rec.Value(careline.ColHospital),
		CareLine:             rec.Value(careline.ColCareLine),
		AttendanceNumber:     rec.Value(careline.ColAttendanceNumber),
		Status:               careline.StatusOptions.Normalize(rec.Value(colStatus)),
		AuthorizationNumber:  rec.Value(colAuthorizationNumber),
		DRGNumber:            rec.Value(careline.ColDRGNumber),
		PatientName:          rec.Value(colPatientName),
		Age:                  careline.ParseCount(rec.Value(colAge)),
		PrimaryDiagnosisCode: rec.Value(colPrimaryDiagnosis),
		AdmittedAt:           careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colAdmittedAt))),
		ECGPerformed:         careline.PerformedOptions.Normalize(rec.Value(colECG)),
		XRayPerformed:        careline.PerformedOptions.Normalize(rec.Value(colXRay)),
		ExamPerformed:        rec.Value(colExamPerformed),
		ExamRequestedAt:      careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colExamRequestedAt))),
		ExamExecutedAt:       careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colExamExecutedAt))),
		ExamReportedAt:       careline.NewTimestamp(careline.StoredTimestamp(rec.Value(colExamReportedAt))),
		ExamDurationMinutes:  careline.ParseMinutes(rec.Value(colExamDuration)),
	}
}
