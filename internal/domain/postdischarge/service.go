package postdischarge

import (
	"context"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

type Service struct {
	*careline.Forms
}

func NewService(store *tabular.Store) *Service {
	return &Service{Forms: careline.NewForms(careline.PostDischarge, store)}
}

func (s *Service) Register(ctx context.Context, sess *careline.Session, f *Form) (*careline.SaveResult, error) {
	hospital, number, err := sess.Context()
	if err != nil {
		return nil, err
	}
	f.Hospital, f.AttendanceNumber = hospital, number
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
	return careline.NewPrefill(s.Stage, sel, lookup, form), nil
}

func (s *Service) Edit(ctx context.Context, sel careline.Selection, f *Form) (*careline.SaveResult, error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	f.Hospital, f.AttendanceNumber = sel.Hospital, sel.AttendanceNumber
	return s.Forms.Edit(ctx, lookup, sel.AttendanceNumber, f.Record())
}
