package surveys

import (
	"context"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

type Service struct {
	*careline.Forms
}

func NewService(store *tabular.Store) *Service {
	return &Service{Forms: careline.NewForms(careline.Surveys, store)}
}

// Register appends one row for the session's intake. Unfilled checkpoints
// persist blank date and notes.
func (s *Service) Register(ctx context.Context, sess *careline.Session, f *Form) (*careline.SaveResult, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
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

// Edit writes the checkpoints back. A day missing from f keeps its stored
// date and notes; a day present is written as given, blank included.
func (s *Service) Edit(ctx context.Context, sel careline.Selection, f *Form) (*careline.SaveResult, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	stored := FormFromRecord(lookup.Fields)
	merged := make(map[int]Checkpoint, len(careline.SurveyDays))
	for _, day := range careline.SurveyDays {
		if cp, ok := f.Checkpoints[day]; ok {
			merged[day] = cp
		} else {
			merged[day] = stored.Checkpoints[day]
		}
	}
	f.Checkpoints = merged
	f.Hospital, f.AttendanceNumber = sel.Hospital, sel.AttendanceNumber
	return s.Forms.Edit(ctx, lookup, sel.AttendanceNumber, f.Record())
}
