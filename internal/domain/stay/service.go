package stay

import (
	"context"
	"time"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

type Service struct {
	*careline.Forms
}

func NewService(store *tabular.Store) *Service {
	return &Service{Forms: careline.NewForms(careline.Stay, store)}
}

// Register appends the stay of the session's intake. An omitted discharge
// date defaults to today.
func (s *Service) Register(ctx context.Context, sess *careline.Session, f *Form) (*careline.SaveResult, error) {
	hospital, number, err := sess.Context()
	if err != nil {
		return nil, err
	}
	f.Hospital, f.AttendanceNumber = hospital, number
	f.DischargeDate = f.DischargeDate.Resolve(time.Time{}, s.Now())
	return s.Forms.Register(ctx, f.Record())
}

func (s *Service) Form(ctx context.Context, sel careline.Selection) (*careline.Prefill[Form], error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	form := FormFromRecord(lookup.Fields)
	form.Hospital = careline.StoredOr(lookup.Fields, careline.ColHospital, sel.Hospital)
	form.AttendanceNumber = sel.AttendanceNumber
	form.DischargeDate = form.DischargeDate.Resolve(time.Time{}, s.Now())
	return careline.NewPrefill(s.Stage, sel, lookup, form), nil
}

func (s *Service) Edit(ctx context.Context, sel careline.Selection, f *Form) (*careline.SaveResult, error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	stored := FormFromRecord(lookup.Fields)
	f.Hospital, f.AttendanceNumber = sel.Hospital, sel.AttendanceNumber
	f.DischargeDate = f.DischargeDate.Resolve(stored.DischargeDate.Time, s.Now())
	return s.Forms.Edit(ctx, lookup, sel.AttendanceNumber, f.Record())
}
