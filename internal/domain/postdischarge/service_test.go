package postdischarge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

func TestService_Register(t *testing.T) {
	store := tabular.NewStore(storage.NewMemory())
	svc := NewService(store)
	ctx := context.Background()
	sess := careline.NewSession(time.Now())
	sess.Bind("Maternidade", "300")

	f := &Form{ChronicCareManagement: "Sim", Readmission: "talvez", Quantity: 2, Notes: "retorno, 30 dias"}
	if _, err := svc.Register(ctx, sess, f); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tbl, _ := store.Load(ctx, careline.PostDischarge.Dataset)
	if strings.Join(tbl.Columns, ",") != strings.Join(careline.PostDischarge.Columns, ",") {
		t.Errorf("header = %v", tbl.Columns)
	}
	row := tbl.Record(0)
	if row.Value("gestaoCronicos") != "Sim" || row.Value("reinternacao") != "" {
		t.Errorf("options not normalized: %v", row.Map())
	}
	if row.Value("quantidade") != "2" || row.Value("observacao") != "retorno, 30 dias" {
		t.Errorf("unexpected row %v", row.Map())
	}
}

func TestService_EditTwiceKeepsOneRow(t *testing.T) {
	store := tabular.NewStore(storage.NewMemory())
	svc := NewService(store)
	ctx := context.Background()
	sel := careline.Selection{Hospital: "HUC", AttendanceNumber: "5"}

	first, err := svc.Edit(ctx, sel, &Form{Readmission: "no"})
	if err != nil || first.Path != tabular.PathCreated {
		t.Fatalf("first Edit = %+v, %v", first, err)
	}
	second, err := svc.Edit(ctx, sel, &Form{Readmission: "yes", Quantity: 1})
	if err != nil || second.Path != tabular.PathReplaced {
		t.Fatalf("second Edit = %+v, %v", second, err)
	}
	tbl, _ := store.Load(ctx, careline.PostDischarge.Dataset)
	if tbl.Len() != 1 || tbl.Record(0).Value("reinternacao") != "Sim" {
		t.Errorf("unexpected dataset %+v", tbl.Rows)
	}

	p, err := svc.Form(ctx, sel)
	if err != nil || p.Form.Quantity != 1 || p.Form.Hospital != "HUC" {
		t.Errorf("Form = %+v, %v", p, err)
	}
}
