// Package selector narrows the Intake dataset down to the attendance an
// edit session works on.
package selector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

// ErrNothingToEdit is returned while no Intake has ever been saved.
var ErrNothingToEdit = careline.ErrNothingToEdit

// DisplayColumns is the projection shown next to the attendance picker.
var DisplayColumns = []string{
	careline.ColHospital, careline.ColCareLine, careline.ColAttendanceNumber, careline.ColDRGNumber,
}

// Candidates is the outcome of filtering the Intake dataset.
type Candidates struct {
	Filter careline.Filter `json:"filter"`
	// Hospitals offered by the hospital filter, from every row.
	Hospitals []string `json:"hospitals"`
	// CareLines offered by the care line filter, narrowed by the hospital
	// filter when set.
	CareLines []string `json:"care_lines"`
	// AttendanceNumbers has one entry per filtered row with a number, in row
	// order. Repeats are kept: ten rows offer ten numbers.
	AttendanceNumbers []string `json:"attendance_numbers"`
	// Rows is the filtered Intake dataset.
	Rows *tabular.Table `json:"-"`
}

// Display returns the filtered rows restricted to DisplayColumns.
func (c *Candidates) Display() *tabular.Table {
	return c.Rows.Project(DisplayColumns...)
}

type Service struct {
	store *tabular.Store
}

func NewService(store *tabular.Store) *Service {
	return &Service{store: store}
}

// Candidates applies f to the Intake dataset. Empty filter fields match
// every row; set fields match exactly.
func (s *Service) Candidates(ctx context.Context, f careline.Filter) (*Candidates, error) {
	ok, err := s.store.Exists(ctx, careline.Intake.Dataset)
	if err != nil {
		return nil, fmt.Errorf("check intake dataset: %w", err)
	}
	if !ok {
		return nil, ErrNothingToEdit
	}
	t, err := s.store.Load(ctx, careline.Intake.Dataset)
	if err != nil {
		return nil, err
	}

	f.Hospital = strings.TrimSpace(f.Hospital)
	f.CareLine = strings.TrimSpace(f.CareLine)

	byHospital := t
	if f.Hospital != "" {
		byHospital = t.Filter(func(r tabular.Record) bool { return r.Value(careline.ColHospital) == f.Hospital })
	}
	rows := byHospital
	if f.CareLine != "" {
		rows = byHospital.Filter(func(r tabular.Record) bool { return r.Value(careline.ColCareLine) == f.CareLine })
	}

	return &Candidates{
		Filter:            f,
		Hospitals:         distinct(t.Column(careline.ColHospital), true),
		CareLines:         distinct(byHospital.Column(careline.ColCareLine), true),
		AttendanceNumbers: nonBlank(rows.Column(careline.ColAttendanceNumber)),
		Rows:              rows,
	}, nil
}

// Select resolves attendanceNumber among the candidates f offers. The
// selection carries the hospital, care line and DRG number of its first
// Intake row.
func (s *Service) Select(ctx context.Context, f careline.Filter, attendanceNumber string) (careline.Selection, error) {
	if strings.TrimSpace(attendanceNumber) == "" {
		return careline.Selection{}, fmt.Errorf("%w: no attendance number selected", careline.ErrNotSelectable)
	}
	c, err := s.Candidates(ctx, f)
	if err != nil {
		return careline.Selection{}, err
	}
	i := c.Rows.Find(careline.ColAttendanceNumber, attendanceNumber)
	if i < 0 {
		return careline.Selection{}, fmt.Errorf("%w: %q", careline.ErrNotSelectable, attendanceNumber)
	}
	row := c.Rows.Record(i)
	return careline.Selection{
		Hospital:         row.Value(careline.ColHospital),
		CareLine:         row.Value(careline.ColCareLine),
		AttendanceNumber: attendanceNumber,
		DRGNumber:        row.Value(careline.ColDRGNumber),
	}, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// distinct drops blanks and repeats, optionally sorting the result.
func distinct(values []string, sorted bool) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if sorted {
		sort.Strings(out)
	}
	return out
}
