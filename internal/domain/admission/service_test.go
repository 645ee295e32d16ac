package admission

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestService() (*Service, *tabular.Store) {
	store := tabular.NewStore(storage.NewMemory())
	svc := NewService(store)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, store
}

func ts(s string) careline.Timestamp {
	t, _ := careline.ParseTimestamp(s)
	return careline.NewTimestamp(t)
}

func boundSession(hospital, number string) *careline.Session {
	s := careline.NewSession(fixedNow)
	s.Bind(hospital, number)
	return s
}

func TestService_Register_RequiresIntake(t *testing.T) {
	svc, store := newTestService()
	_, err := svc.Register(context.Background(), careline.NewSession(fixedNow), &Form{})
	if !errors.Is(err, careline.ErrNoIntake) {
		t.Fatalf("expected ErrNoIntake, got %v", err)
	}
	if ok, _ := store.Exists(context.Background(), careline.Admission.Dataset); ok {
		t.Error("nothing should be written without an intake")
	}
}

func TestService_Register(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	f := &Form{
		Hospital:            "ignored",
		Accommodation:       "UTI",
		ExamRequested:       "Tomografia",
		ExamRequestedAt:     ts("2024-03-02T10:00:00"),
		ExamReportedAt:      ts("2024-03-02T10:20:30"),
		ICUDischargedToWard: true,
		ICUDays:             4,
	}
	if _, err := svc.Register(ctx, boundSession("HUC", "777"), f); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tbl, _ := store.Load(ctx, careline.Admission.Dataset)
	if strings.Join(tbl.Columns, ",") != strings.Join(careline.Admission.Columns, ",") {
		t.Errorf("header = %v", tbl.Columns)
	}
	row := tbl.Record(0)
	want := map[string]string{
		"hospital":              "HUC",
		"numeroAtendimento":     "777",
		"acomodacao":            "UTI",
		"dataHoraInternacao":    "2024-03-10T14:30:00",
		"tempoExame":            "20.5",
		"altaUTIParaEnfermaria": "True",
		"tempoUTI":              "4",
	}
	for col, v := range want {
		if got := row.Value(col); got != v {
			t.Errorf("%s = %q, want %q", col, got, v)
		}
	}
}

func TestService_Edit_AppendsWhenBlank(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, boundSession("HUC", "1"), &Form{Accommodation: "Enfermaria"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sel := careline.Selection{Hospital: "PUCC", AttendanceNumber: "2"}
	p, err := svc.Form(ctx, sel)
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if p.Outcome != tabular.Blank || p.Form.Hospital != "PUCC" {
		t.Errorf("unexpected prefill %+v", p)
	}
	if !p.Form.AdmittedAt.Time.Equal(fixedNow) {
		t.Errorf("blank prefill should default timestamps to now, got %v", p.Form.AdmittedAt)
	}

	res, err := svc.Edit(ctx, sel, &Form{Accommodation: "UTI"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if res.Path != tabular.PathAppended {
		t.Errorf("expected appended, got %s", res.Path)
	}
	tbl, _ := store.Load(ctx, careline.Admission.Dataset)
	if tbl.Len() != 2 || tbl.Record(0).Value("acomodacao") != "Enfermaria" {
		t.Errorf("append must keep prior rows: %+v", tbl.Rows)
	}
	if tbl.Record(1).Value("hospital") != "PUCC" {
		t.Errorf("edit writes the selection's hospital, got %q", tbl.Record(1).Value("hospital"))
	}
}

func TestService_Edit_CreatesWhenAbsent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	sel := careline.Selection{Hospital: "HUC", AttendanceNumber: "9"}

	p, err := svc.Form(ctx, sel)
	if err != nil || p.Outcome != tabular.Absent {
		t.Fatalf("expected absent prefill, got %+v %v", p, err)
	}
	res, err := svc.Edit(ctx, sel, &Form{})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if res.Path != tabular.PathCreated {
		t.Errorf("expected created, got %s", res.Path)
	}
	tbl, _ := store.Load(ctx, careline.Admission.Dataset)
	if tbl.Len() != 1 || tbl.Record(0).Value("altaUTIParaEnfermaria") != "False" {
		t.Errorf("unexpected dataset %+v", tbl)
	}
}

func TestService_Edit_Replaces(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, boundSession("HUC", "1"), &Form{ICUDays: 2, ICUDischargedToWard: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	sel := careline.Selection{Hospital: "HUC", AttendanceNumber: "1"}
	p, _ := svc.Form(ctx, sel)
	if !p.Form.ICUDischargedToWard || p.Form.ICUDays != 2 {
		t.Errorf("prefill lost stored values: %+v", p.Form)
	}
	f := p.Form
	f.ICUDays = 5
	res, err := svc.Edit(ctx, sel, &f)
	if err != nil || res.Path != tabular.PathReplaced {
		t.Fatalf("Edit = %+v, %v", res, err)
	}
	tbl, _ := store.Load(ctx, careline.Admission.Dataset)
	if tbl.Len() != 1 || tbl.Record(0).Value("tempoUTI") != "5" {
		t.Errorf("unexpected dataset %+v", tbl.Rows)
	}
}

func TestHandler_Register_NoIntakeIs409(t *testing.T) {
	svc, _ := newTestService()
	sess := careline.NewSession(fixedNow)
	h := NewHandler(svc, sessions{sess.ID.String(): sess}, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"accommodation":"UTI"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetParamNames("sid")
	c.SetParamValues(sess.ID.String())

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestHandler_Register_BlankIntakeAttendanceIs409(t *testing.T) {
	svc, store := newTestService()
	sess := careline.NewSession(fixedNow)
	sess.Bind("HUC", "")
	h := NewHandler(svc, sessions{sess.ID.String(): sess}, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"accommodation":"UTI"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetParamNames("sid")
	c.SetParamValues(sess.ID.String())

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if ok, _ := store.Exists(context.Background(), careline.Admission.Dataset); ok {
		t.Error("no row should be written without an attendance number")
	}
}

type sessions map[string]*careline.Session

func (s sessions) Get(id string) (*careline.Session, error) {
	if v, ok := s[id]; ok {
		return v, nil
	}
	return nil, careline.ErrSessionNotFound
}
