package careline

import "strings"

// Option is one recognized choice of a closed field: a stable code used by
// API clients and the label the datasets store.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// OptionSet is the recognized values of one closed field. The blank label is
// always implied and is the default.
type OptionSet struct {
	Field   string   `json:"field"`
	Options []Option `json:"options"`
}

// Normalize maps v to a stored label. v may be a label or a code (case
// insensitive). Anything else maps to the blank default.
func (s OptionSet) Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, o := range s.Options {
		if v == o.Label {
			return o.Label
		}
	}
	for _, o := range s.Options {
		if strings.EqualFold(v, o.Code) || strings.EqualFold(v, o.Label) {
			return o.Label
		}
	}
	return ""
}

// Recognized reports whether v normalizes to a non-blank label.
func (s OptionSet) Recognized(v string) bool { return s.Normalize(v) != "" }

// Labels returns the choices as a form renders them, blank first.
func (s OptionSet) Labels() []string {
	out := []string{""}
	for _, o := range s.Options {
		out = append(out, o.Label)
	}
	return out
}

var (
	StatusOptions = OptionSet{Field: "status", Options: []Option{
		{Code: "admitted", Label: "Internado"},
		{Code: "discharged", Label: "Alta"},
		{Code: "deceased", Label: "Óbito"},
	}}

	// PerformedOptions covers ECG and X-ray.
	PerformedOptions = OptionSet{Field: "performed", Options: []Option{
		{Code: "yes", Label: "Sim"},
		{Code: "no", Label: "Não"},
		{Code: "unknown", Label: "Sem Informação"},
	}}

	SeverityOptions = OptionSet{Field: "grauSeveridade", Options: []Option{
		{Code: "mild", Label: "Leve"},
		{Code: "moderate", Label: "Moderado"},
		{Code: "severe", Label: "Grave"},
	}}

	YesNoOptions = OptionSet{Field: "yesNo", Options: []Option{
		{Code: "yes", Label: "Sim"},
		{Code: "no", Label: "Não"},
	}}
)

var (
	DefaultHospitals = []string{"Centro Médico", "Galileo", "HUC", "Irmãos Penteado", "Maternidade", "PUCC"}
	DefaultCareLines = []string{"AVC", "Chron", "Fratura de Fêmur", "ICC"}
)

// Catalog holds the open-ended choice lists offered when registering an
// Intake. Edit forms accept any text for these fields.
type Catalog struct {
	Hospitals []string `json:"hospitals"`
	CareLines []string `json:"care_lines"`
}

// NewCatalog falls back to the default lists for empty arguments.
func NewCatalog(hospitals, careLines []string) Catalog {
	if len(hospitals) == 0 {
		hospitals = DefaultHospitals
	}
	if len(careLines) == 0 {
		careLines = DefaultCareLines
	}
	return Catalog{Hospitals: hospitals, CareLines: careLines}
}

func (c Catalog) Hospital(v string) string { return pick(c.Hospitals, v) }
func (c Catalog) CareLine(v string) string { return pick(c.CareLines, v) }

func pick(list []string, v string) string {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if item == v {
			return item
		}
	}
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return item
		}
	}
	return ""
}
