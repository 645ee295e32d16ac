package treatment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

func TestService_RegisterAndEdit(t *testing.T) {
	store := tabular.NewStore(storage.NewMemory())
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, careline.NewSession(fixedTime()), &Form{}); !errors.Is(err, careline.ErrNoIntake) {
		t.Fatalf("expected ErrNoIntake, got %v", err)
	}

	sess := careline.NewSession(fixedTime())
	sess.Bind("Galileo", "42")
	if _, err := svc.Register(ctx, sess, &Form{SurgicalProcedure: "Artroplastia", SeverityGrade: "severe"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sel := careline.Selection{Hospital: "Galileo", AttendanceNumber: "42"}
	p, err := svc.Form(ctx, sel)
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if p.Outcome != tabular.Found || p.Form.SeverityGrade != "Grave" || p.Form.SurgicalProcedure != "Artroplastia" {
		t.Errorf("unexpected prefill %+v", p)
	}

	f := p.Form
	f.SeverityGrade = "Moderado"
	res, err := svc.Edit(ctx, sel, &f)
	if err != nil || res.Path != tabular.PathReplaced {
		t.Fatalf("Edit = %+v, %v", res, err)
	}
	tbl, _ := store.Load(ctx, careline.Treatment.Dataset)
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.Len())
	}
	if got := tbl.Record(0).Value("grauSeveridade"); got != "Moderado" {
		t.Errorf("grauSeveridade = %q", got)
	}
}

func TestFormFromRecord_UnrecognizedSeverity(t *testing.T) {
	rec := tabular.NewRecord(tabular.Field{Name: "grauSeveridade", Value: "Crítico"})
	if got := FormFromRecord(rec).SeverityGrade; got != "" {
		t.Errorf("unrecognized option should read blank, got %q", got)
	}
}

func fixedTime() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
