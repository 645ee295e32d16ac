// Package postdischarge handles the follow-up after discharge (Pós-Alta)
// stage.
package postdischarge

import (
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

const (
	colChronicCare = "gestaoCronicos"
	colReadmission = "reinternacao"
	colQuantity    = "quantidade"
	colNotes       = "observacao"
)

type Form struct {
	Hospital              string `json:"hospital"`
	AttendanceNumber      string `json:"attendance_number"`
	ChronicCareManagement string `json:"chronic_care_management"`
	Readmission           string `json:"readmission"`
	Quantity              int    `json:"quantity"`
	Notes                 string `json:"notes"`
}

func (f *Form) Record() tabular.Record {
	return tabular.NewRecord(
		tabular.Field{Name: careline.ColHospital, Value: f.Hospital},
		tabular.Field{Name: careline.ColAttendanceNumber, Value: f.AttendanceNumber},
		tabular.Field{Name: colChronicCare, Value: careline.YesNoOptions.Normalize(f.ChronicCareManagement)},
		tabular.Field{Name: colReadmission, Value: careline.YesNoOptions.Normalize(f.Readmission)},
		tabular.Field{Name: colQuantity, Value: careline.FormatInt(f.Quantity)},
		tabular.Field{Name: colNotes, Value: f.Notes},
	)
}

func FormFromRecord(rec tabular.Record) Form {
	return Form{
		Hospital:              rec.Value(careline.ColHospital),
		AttendanceNumber:      rec.Value(careline.ColAttendanceNumber),
		ChronicCareManagement: careline.YesNoOptions.Normalize(rec.Value(colChronicCare)),
		Readmission:           careline.YesNoOptions.Normalize(rec.Value(colReadmission)),
		Quantity:              careline.ParseCount(rec.Value(colQuantity)),
		Notes:                 rec.Value(colNotes),
	}
}
