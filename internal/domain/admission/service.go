package admission

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
	return &Service{Forms: careline.NewForms(careline.Admission, store)}
}

// Register appends an admission for the intake bound to sess.
func (s *Service) Register(ctx context.Context, sess *careline.Session, f *Form) (*careline.SaveResult, error) {
	hospital, number, err := sess.Context()
	if err != nil {
		return nil, err
	}
	now := s.Now()
	f.Hospital, f.AttendanceNumber = hospital, number
	f.resolve(Form{}, now)
	return s.Forms.Register(ctx, f.Record())
}

// Form prefills the edit form. A stage row without a hospital shows the
// selection's hospital.
func (s *Service) Form(ctx context.Context, sel careline.Selection) (*careline.Prefill[Form], error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	form := FormFromRecord(lookup.Fields)
	form.Hospital = careline.StoredOr(lookup.Fields, careline.ColHospital, sel.Hospital)
	form.AttendanceNumber = sel.AttendanceNumber
	form.resolve(Form{}, s.Now())
	return careline.NewPrefill(s.Stage, sel, lookup, form), nil
}

func (s *Service) Edit(ctx context.Context, sel careline.Selection, f *Form) (*careline.SaveResult, error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	f.Hospital, f.AttendanceNumber = sel.Hospital, sel.AttendanceNumber
	f.resolve(FormFromRecord(lookup.Fields), s.Now())
	return s.Forms.Edit(ctx, lookup, sel.AttendanceNumber, f.Record())
}

// resolve fills omitted timestamps from stored, then now.
func (f *Form) resolve(stored Form, now time.Time) {
	f.AdmittedAt = f.AdmittedAt.Resolve(stored.AdmittedAt.Time, now)
	f.ExamRequestedAt = f.ExamRequestedAt.Resolve(stored.ExamRequestedAt.Time, now)
	f.ExamExecutedAt = f.ExamExecutedAt.Resolve(stored.ExamExecutedAt.Time, now)
	f.ExamReportedAt = f.ExamReportedAt.Resolve(stored.ExamReportedAt.Time, now)
}
