// Package stay handles the length-of-stay (Permanência) stage.
package stay

import (
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

const (
	colRisk          = "estratificacaoRisco"
	colExpectedDays  = "permanenciaPrevistaDRG"
	colActualDays    = "permanenciaReal"
	colDischargeDate = "dataAlta"
	colAccommodation = "acomodacao"
)

type Form struct {
	Hospital                 string        `json:"hospital"`
	AttendanceNumber         string        `json:"attendance_number"`
	RiskStratification       string        `json:"risk_stratification"`
	ExpectedStayDaysDRG      int           `json:"expected_stay_days_drg"`
	ActualStayDays           int           `json:"actual_stay_days"`
	DischargeDate            careline.Date `json:"discharge_date"`
	AccommodationAtDischarge string        `json:"accommodation_at_discharge"`
}

func (f *Form) Record() tabular.Record {
	return tabular.NewRecord(
		tabular.Field{Name: careline.ColHospital, Value: f.Hospital},
		tabular.Field{Name: careline.ColAttendanceNumber, Value: f.AttendanceNumber},
		tabular.Field{Name: colRisk, Value: f.RiskStratification},
		tabular.Field{Name: colExpectedDays, Value: careline.FormatInt(f.ExpectedStayDaysDRG)},
		tabular.Field{Name: colActualDays, Value: careline.FormatInt(f.ActualStayDays)},
		tabular.Field{Name: colDischargeDate, Value: f.DischargeDate.String()},
		tabular.Field{Name: colAccommodation, Value: f.AccommodationAtDischarge},
	)
}

func FormFromRecord(rec tabular.Record) Form {
	return Form{
		Hospital:                 rec.Value(careline.ColHospital),
		AttendanceNumber:         rec.Value(careline.ColAttendanceNumber),
		RiskStratification:       rec.Value(colRisk),
		ExpectedStayDaysDRG:      careline.ParseCount(rec.Value(colExpectedDays)),
		ActualStayDays:           careline.ParseCount(rec.Value(colActualDays)),
		DischargeDate:            careline.NewDate(careline.StoredDate(rec.Value(colDischargeDate))),
		AccommodationAtDischarge: rec.Value(colAccommodation),
	}
}
