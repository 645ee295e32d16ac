package careline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

// Save modes.
const (
	ModeRegister = "register"
	ModeEdit     = "edit"
)

// SaveRecorder observes completed and failed saves.
type SaveRecorder interface {
	RecordSave(stage, mode string, path tabular.WritePath)
	RecordDatasetError(stage string)
}

// Selector resolves an attendance number offered by the Intake selector.
type Selector interface {
	Select(ctx context.Context, f Filter, attendanceNumber string) (Selection, error)
}

// SaveResult is what a stage save returns to the caller.
type SaveResult struct {
	Stage  string            `json:"stage"`
	Mode   string            `json:"mode"`
	Path   tabular.WritePath `json:"path"`
	Record tabular.Record    `json:"record"`
}

// Prefill is an edit form seeded from the stage dataset.
type Prefill[F any] struct {
	Stage     string          `json:"stage"`
	Selection Selection       `json:"selection"`
	Outcome   tabular.Outcome `json:"outcome"`
	Stored    tabular.Record  `json:"stored"`
	Form      F               `json:"form"`
}

// Forms carries what every stage service shares: its dataset, the store,
// the clock and an optional save recorder.
type Forms struct {
	Stage    Stage
	store    *tabular.Store
	now      func() time.Time
	recorder SaveRecorder
}

func NewForms(stage Stage, store *tabular.Store) *Forms {
	return &Forms{Stage: stage, store: store, now: time.Now}
}

// SetRecorder attaches an optional SaveRecorder.
func (f *Forms) SetRecorder(r SaveRecorder) { f.recorder = r }

// SetClock replaces the wall clock used for defaulted timestamps.
func (f *Forms) SetClock(now func() time.Time) { f.now = now }

// Now returns the current wall-clock time, truncated to the second.
func (f *Forms) Now() time.Time {
	return wall(f.now()).Truncate(time.Second)
}

// Lookup loads the stage dataset and fetches attendanceNumber.
func (f *Forms) Lookup(ctx context.Context, attendanceNumber string) (tabular.Lookup, error) {
	t, err := f.store.Load(ctx, f.Stage.Dataset)
	if err != nil {
		return tabular.Lookup{}, err
	}
	return tabular.Fetch(t, ColAttendanceNumber, attendanceNumber), nil
}

// Register appends rec to the stage dataset.
func (f *Forms) Register(ctx context.Context, rec tabular.Record) (*SaveResult, error) {
	path, err := f.store.AppendOrCreate(ctx, f.Stage.Dataset, rec)
	if err != nil {
		f.failed()
		return nil, fmt.Errorf("register %s: %w", f.Stage.Slug, err)
	}
	return f.done(ctx, ModeRegister, path, rec), nil
}

// Edit writes rec back for an attendance. The match is resolved again
// under the dataset lock: a stored row is replaced, otherwise rec is
// appended, creating the dataset when needed. lookup is the caller's earlier
// read and does not decide the write path.
func (f *Forms) Edit(ctx context.Context, lookup tabular.Lookup, attendanceNumber string, rec tabular.Record) (*SaveResult, error) {
	path, err := f.store.ReplaceOrCreate(ctx, f.Stage.Dataset, ColAttendanceNumber, attendanceNumber, rec)
	if err != nil {
		f.failed()
		return nil, fmt.Errorf("edit %s: %w", f.Stage.Slug, err)
	}
	return f.done(ctx, ModeEdit, path, rec), nil
}

func (f *Forms) done(ctx context.Context, mode string, path tabular.WritePath, rec tabular.Record) *SaveResult {
	zerolog.Ctx(ctx).Info().
		Str("stage", f.Stage.Slug).
		Str("mode", mode).
		Str("path", string(path)).
		Str("attendance_number", rec.Value(ColAttendanceNumber)).
		Msg("stage saved")
	if f.recorder != nil {
		f.recorder.RecordSave(f.Stage.Slug, mode, path)
	}
	return &SaveResult{Stage: f.Stage.Slug, Mode: mode, Path: path, Record: rec}
}

func (f *Forms) failed() {
	if f.recorder != nil {
		f.recorder.RecordDatasetError(f.Stage.Slug)
	}
}

// NewPrefill wraps a lookup and the form it seeds.
func NewPrefill[F any](stage Stage, sel Selection, lookup tabular.Lookup, form F) *Prefill[F] {
	stored := lookup.Fields
	return &Prefill[F]{Stage: stage.Slug, Selection: sel, Outcome: lookup.Outcome, Stored: stored, Form: form}
}

// StoredOr returns the stored value of col, or fallback when it is blank.
func StoredOr(rec tabular.Record, col, fallback string) string {
	if v := rec.Value(col); v != "" {
		return v
	}
	return fallback
}
