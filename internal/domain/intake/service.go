package intake

import (
	"context"
	"strings"
	"time"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

type Service struct {
	*careline.Forms
	catalog careline.Catalog
}

func NewService(store *tabular.Store, catalog careline.Catalog) *Service {
	return &Service{Forms: careline.NewForms(careline.Intake, store), catalog: catalog}
}

func (s *Service) Catalog() careline.Catalog { return s.catalog }

// Register appends a new intake and binds its hospital and attendance
// number to sess. Hospital and care line are picked from the catalog;
// anything else is stored blank. Omitted timestamps default to now.
func (s *Service) Register(ctx context.Context, sess *careline.Session, f *Form) (*careline.SaveResult, error) {
	now := s.Now()
	f.Hospital = s.catalog.Hospital(f.Hospital)
	f.CareLine = s.catalog.CareLine(f.CareLine)
	f.AttendanceNumber = strings.TrimSpace(f.AttendanceNumber)
	f.AdmittedAt = f.AdmittedAt.Resolve(time.Time{}, now)
	f.ExamRequestedAt = f.ExamRequestedAt.Resolve(time.Time{}, now)
	f.ExamExecutedAt = f.ExamExecutedAt.Resolve(time.Time{}, now)
	f.ExamReportedAt = f.ExamReportedAt.Resolve(time.Time{}, now)

	res, err := s.Forms.Register(ctx, f.Record())
	if err != nil {
		return nil, err
	}
	sess.Bind(f.Hospital, f.AttendanceNumber)
	return res, nil
}

// Form prefills the edit form of the selected attendance.
func (s *Service) Form(ctx context.Context, sel careline.Selection) (*careline.Prefill[Form], error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	form := FormFromRecord(lookup.Fields)
	form.AttendanceNumber = sel.AttendanceNumber
	form.AdmittedAt = form.AdmittedAt.Resolve(time.Time{}, now)
	form.ExamRequestedAt = form.ExamRequestedAt.Resolve(time.Time{}, now)
	form.ExamReportedAt = form.ExamReportedAt.Resolve(time.Time{}, now)
	return careline.NewPrefill(s.Stage, sel, lookup, form), nil
}

// Edit writes f back for the selected attendance. Hospital and care line are
// free text here. The stored execution timestamp is kept as is and the exam
// duration is recomputed.
func (s *Service) Edit(ctx context.Context, sel careline.Selection, f *Form) (*careline.SaveResult, error) {
	lookup, err := s.Lookup(ctx, sel.AttendanceNumber)
	if err != nil {
		return nil, err
	}
	stored := FormFromRecord(lookup.Fields)
	now := s.Now()

	f.AttendanceNumber = sel.AttendanceNumber
	f.AdmittedAt = f.AdmittedAt.Resolve(stored.AdmittedAt.Time, now)
	f.ExamRequestedAt = f.ExamRequestedAt.Resolve(stored.ExamRequestedAt.Time, now)
	f.ExamReportedAt = f.ExamReportedAt.Resolve(stored.ExamReportedAt.Time, now)
	f.ExamExecutedAt = stored.ExamExecutedAt

	rec := f.Record()
	rec.Set(colExamExecutedAt, lookup.Fields.Value(colExamExecutedAt))
	return s.Forms.Edit(ctx, lookup, sel.AttendanceNumber, rec)
}
