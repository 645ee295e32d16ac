// Package surveys handles the patient follow-up questionnaires
// (Questionários) taken 7, 30, 60 and 90 days after discharge.
package surveys

import (
	"fmt"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

// Checkpoint is one questionnaire. A zero Date persists blank.
type Checkpoint struct {
	Date  careline.Date `json:"date"`
	Notes string        `json:"notes"`
}

// Form carries the checkpoints keyed by day. Days not present in the map
// are unfilled.
type Form struct {
	Hospital         string             `json:"hospital"`
	AttendanceNumber string             `json:"attendance_number"`
	Checkpoints      map[int]Checkpoint `json:"checkpoints"`
}

// validate rejects checkpoint days other than the follow-up schedule.
func (f *Form) validate() error {
	for day := range f.Checkpoints {
		if !isSurveyDay(day) {
			return fmt.Errorf("%w: no questionnaire on day %d", careline.ErrInvalidInput, day)
		}
	}
	return nil
}

func isSurveyDay(day int) bool {
	for _, d := range careline.SurveyDays {
		if d == day {
			return true
		}
	}
	return false
}

func (f *Form) Record() tabular.Record {
	rec := tabular.NewRecord(
		tabular.Field{Name: careline.ColHospital, Value: f.Hospital},
		tabular.Field{Name: careline.ColAttendanceNumber, Value: f.AttendanceNumber},
	)
	for _, day := range careline.SurveyDays {
		cp := f.Checkpoints[day]
		rec.Set(careline.SurveyDateColumn(day), cp.Date.String())
		rec.Set(careline.SurveyNotesColumn(day), cp.Notes)
	}
	return rec
}

func FormFromRecord(rec tabular.Record) Form {
	f := Form{
		Hospital:         rec.Value(careline.ColHospital),
		AttendanceNumber: rec.Value(careline.ColAttendanceNumber),
		Checkpoints:      make(map[int]Checkpoint, len(careline.SurveyDays)),
	}
	for _, day := range careline.SurveyDays {
		f.Checkpoints[day] = Checkpoint{
			Date:  careline.NewDate(careline.StoredDate(rec.Value(careline.SurveyDateColumn(day)))),
			Notes: rec.Value(careline.SurveyNotesColumn(day)),
		}
	}
	return f
}
