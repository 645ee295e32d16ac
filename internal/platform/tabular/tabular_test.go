package tabular

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
)

func rec(pairs ...string) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		columns []string
		rows    [][]string
	}{
		{"empty", "", nil, nil},
		{"header only", "a,b\n", []string{"a", "b"}, nil},
		{"bom", "\xEF\xBB\xBFa,b\n1,2\n", []string{"a", "b"}, [][]string{{"1", "2"}}},
		{"short row padded", "a,b,c\n1\n", []string{"a", "b", "c"}, [][]string{{"1", "", ""}}},
		{"quoted", "a,b\n\"x, y\",\"line\nbreak\"\n", []string{"a", "b"}, [][]string{{"x, y", "line\nbreak"}}},
		{"no trailing newline", "a\n1", []string{"a"}, [][]string{{"1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(tbl.Columns, tt.columns) {
				t.Errorf("columns = %v, want %v", tbl.Columns, tt.columns)
			}
			if !reflect.DeepEqual(tbl.Rows, tt.rows) {
				t.Errorf("rows = %v, want %v", tbl.Rows, tt.rows)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte("a,b\n\"unterminated,2\n")); err == nil {
		t.Error("expected error for unterminated quote")
	}
}

func TestEncode(t *testing.T) {
	tbl := &Table{Columns: []string{"hospital", "observacao"}, Rows: [][]string{{"HUC", "a, b"}}}
	data, err := Encode(tbl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "hospital,observacao\nHUC,\"a, b\"\n" {
		t.Errorf("Encode = %q", data)
	}
}

func TestRecord_OrderAndJSON(t *testing.T) {
	r := rec("b", "2", "a", "1")
	r.Set("b", "3")
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Keys = %v", got)
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"b":"3","a":"1"}` {
		t.Errorf("json = %s", data)
	}
	if r.IsBlank() {
		t.Error("record with values reported blank")
	}
	if !rec("x", "").IsBlank() {
		t.Error("empty-valued record should be blank")
	}
}

func TestFetch(t *testing.T) {
	tbl := &Table{
		Columns: []string{"hospital", "numeroAtendimento", "acomodacao"},
		Rows: [][]string{
			{"HUC", "A100", "Enfermaria"},
			{"PUCC", "A200", "UTI"},
			{"HUC", "A100", "duplicate"},
		},
	}

	t.Run("absent", func(t *testing.T) {
		l := Fetch(&Table{}, "numeroAtendimento", "A100")
		if l.Outcome != Absent || l.Fields.Len() != 0 {
			t.Errorf("got %+v", l)
		}
		if l.Exists() {
			t.Error("absent lookup should not exist")
		}
	})

	t.Run("found first match", func(t *testing.T) {
		l := Fetch(tbl, "numeroAtendimento", "A100")
		if l.Outcome != Found {
			t.Fatalf("outcome = %s", l.Outcome)
		}
		if l.Fields.Value("acomodacao") != "Enfermaria" {
			t.Errorf("expected first match, got %v", l.Fields.Map())
		}
		if !l.Exists() {
			t.Error("found lookup should exist")
		}
	})

	t.Run("blank template", func(t *testing.T) {
		l := Fetch(tbl, "numeroAtendimento", "Z999")
		if l.Outcome != Blank {
			t.Fatalf("outcome = %s", l.Outcome)
		}
		if !reflect.DeepEqual(l.Fields.Keys(), tbl.Columns) || !l.Fields.IsBlank() {
			t.Errorf("blank fields = %v", l.Fields.Map())
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		a := Fetch(tbl, "numeroAtendimento", "A200")
		b := Fetch(tbl, "numeroAtendimento", "A200")
		if !reflect.DeepEqual(a, b) {
			t.Errorf("fetch not idempotent: %+v vs %+v", a, b)
		}
		if len(tbl.Rows) != 3 {
			t.Error("fetch mutated the table")
		}
	})
}

func TestTable_FilterProject(t *testing.T) {
	tbl := &Table{
		Columns: []string{"hospital", "linhaCuidado", "numeroAtendimento"},
		Rows:    [][]string{{"HUC", "AVC", "1"}, {"PUCC", "ICC", "2"}, {"HUC", "ICC", "3"}},
	}
	huc := tbl.Filter(func(r Record) bool { return r.Value("hospital") == "HUC" })
	if huc.Len() != 2 {
		t.Fatalf("filter len = %d", huc.Len())
	}
	p := huc.Project("numeroAtendimento", "numeroDRG")
	if !reflect.DeepEqual(p.Rows, [][]string{{"1", ""}, {"3", ""}}) {
		t.Errorf("project rows = %v", p.Rows)
	}
	if got := tbl.Column("linhaCuidado"); !reflect.DeepEqual(got, []string{"AVC", "ICC", "ICC"}) {
		t.Errorf("column = %v", got)
	}
	if tbl.Column("missing") != nil {
		t.Error("unknown column should be nil")
	}
}

func newStores(t *testing.T) map[string]*Store {
	t.Helper()
	fsb, err := storage.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return map[string]*Store{
		"fs":     NewStore(fsb),
		"memory": NewStore(storage.NewMemory()),
	}
}

func TestStore_AppendOrCreate(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			tbl, err := s.Load(ctx, "treatment.csv")
			if err != nil || len(tbl.Columns) != 0 || tbl.Len() != 0 {
				t.Fatalf("missing dataset should load empty: %+v, %v", tbl, err)
			}

			first := rec("hospital", "HUC", "numeroAtendimento", "A100", "grauSeveridade", "Leve")
			path, err := s.AppendOrCreate(ctx, "treatment.csv", first)
			if err != nil || path != PathCreated {
				t.Fatalf("first append = %s, %v", path, err)
			}

			// Same fields in a different order land under the existing header.
			second := rec("grauSeveridade", "Grave", "numeroAtendimento", "A200", "hospital", "PUCC")
			path, err = s.AppendOrCreate(ctx, "treatment.csv", second)
			if err != nil || path != PathAppended {
				t.Fatalf("second append = %s, %v", path, err)
			}

			tbl, err = s.Load(ctx, "treatment.csv")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(tbl.Columns, []string{"hospital", "numeroAtendimento", "grauSeveridade"}) {
				t.Errorf("columns = %v", tbl.Columns)
			}
			want := [][]string{{"HUC", "A100", "Leve"}, {"PUCC", "A200", "Grave"}}
			if !reflect.DeepEqual(tbl.Rows, want) {
				t.Errorf("rows = %v, want %v", tbl.Rows, want)
			}
		})
	}
}

func TestStore_AppendWidensHeader(t *testing.T) {
	s := NewStore(storage.NewMemory())
	ctx := context.Background()
	if _, err := s.AppendOrCreate(ctx, "stay.csv", rec("a", "1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendOrCreate(ctx, "stay.csv", rec("a", "2", "b", "x")); err != nil {
		t.Fatal(err)
	}
	tbl, _ := s.Load(ctx, "stay.csv")
	if !reflect.DeepEqual(tbl.Columns, []string{"a", "b"}) {
		t.Errorf("columns = %v", tbl.Columns)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"1", ""}, {"2", "x"}}) {
		t.Errorf("rows = %v", tbl.Rows)
	}
}

func TestStore_ReplaceOrCreate(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, r := range []Record{
				rec("hospital", "HUC", "numeroAtendimento", "A100", "acomodacao", "Enfermaria"),
				rec("hospital", "PUCC", "numeroAtendimento", "A200", "acomodacao", "UTI"),
			} {
				if _, err := s.AppendOrCreate(ctx, "admission.csv", r); err != nil {
					t.Fatal(err)
				}
			}

			// Replace is keyed by name; the missing acomodacao becomes blank.
			path, err := s.ReplaceOrCreate(ctx, "admission.csv", "numeroAtendimento", "A100",
				rec("numeroAtendimento", "A100", "hospital", "HUC-2"))
			if err != nil || path != PathReplaced {
				t.Fatalf("replace = %s, %v", path, err)
			}
			tbl, _ := s.Load(ctx, "admission.csv")
			want := [][]string{{"HUC-2", "A100", ""}, {"PUCC", "A200", "UTI"}}
			if !reflect.DeepEqual(tbl.Rows, want) {
				t.Errorf("rows = %v, want %v", tbl.Rows, want)
			}

			path, err = s.ReplaceOrCreate(ctx, "admission.csv", "numeroAtendimento", "A300",
				rec("hospital", "HUC", "numeroAtendimento", "A300", "acomodacao", "Apto"))
			if err != nil || path != PathAppended {
				t.Fatalf("no-match replace = %s, %v", path, err)
			}
			tbl, _ = s.Load(ctx, "admission.csv")
			if tbl.Len() != 3 || tbl.Rows[0][0] != "HUC-2" || tbl.Rows[2][1] != "A300" {
				t.Errorf("rows after append = %v", tbl.Rows)
			}
		})
	}
}

func TestStore_ReplaceOrCreate_MissingDataset(t *testing.T) {
	s := NewStore(storage.NewMemory())
	path, err := s.ReplaceOrCreate(context.Background(), "surveys.csv", "numeroAtendimento", "A1",
		rec("hospital", "HUC", "numeroAtendimento", "A1"))
	if err != nil || path != PathCreated {
		t.Fatalf("replace on missing dataset = %s, %v", path, err)
	}
}

type failingBackend struct{ storage.Backend }

func (failingBackend) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStore_WriteFailure(t *testing.T) {
	s := NewStore(failingBackend{storage.NewMemory()})
	_, err := s.AppendOrCreate(context.Background(), "intake.csv", rec("a", "1"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := NewStore(storage.NewMemory())
	ctx := context.Background()
	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, err := s.AppendOrCreate(ctx, "intake.csv", rec("numeroAtendimento", "X"))
			done <- err
		}()
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
	tbl, _ := s.Load(ctx, "intake.csv")
	if tbl.Len() != 20 {
		t.Errorf("expected 20 rows, got %d", tbl.Len())
	}
}
