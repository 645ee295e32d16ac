package careline

import "fmt"

// Shared column names.
const (
	ColHospital         = "hospital"
	ColCareLine         = "linhaCuidado"
	ColAttendanceNumber = "numeroAtendimento"
	ColDRGNumber        = "numeroDRG"
)

// Stage describes one care line stage and the dataset it is kept in.
type Stage struct {
	Name    string   `json:"name"`
	Slug    string   `json:"slug"`
	Dataset string   `json:"dataset"`
	Columns []string `json:"columns"`
}

// SurveyDays are the follow-up checkpoints, in days after discharge.
var SurveyDays = []int{7, 30, 60, 90}

func SurveyDateColumn(day int) string  { return fmt.Sprintf("dataQuestionarioPaciente%d", day) }
func SurveyNotesColumn(day int) string { return fmt.Sprintf("observacaoQuestionarioPaciente%d", day) }

var (
	Intake = Stage{Name: "Intake", Slug: "intake", Dataset: "intake.csv", Columns: []string{
		ColHospital, ColCareLine, ColAttendanceNumber, "status", "numeroAutorizacao", ColDRGNumber,
		"nomePaciente", "idade", "cidPrincipal", "dataHoraInternacaoPS", "ECG", "raioX", "examePS",
		"dataHoraSolicitacao", "dataHoraExecucao", "dataHoraLaudo", "tempoExame",
	}}
	Admission = Stage{Name: "Admission", Slug: "admission", Dataset: "admission.csv", Columns: []string{
		ColHospital, ColAttendanceNumber, "acomodacao", "dataHoraInternacao", "exameSolicitadoInternacao",
		"dataHoraSolicitacao", "dataHoraExecucao", "dataHoraLaudo", "tempoExame",
		"altaUTIParaEnfermaria", "tempoUTI",
	}}
	Treatment = Stage{Name: "Treatment", Slug: "treatment", Dataset: "treatment.csv", Columns: []string{
		ColHospital, ColAttendanceNumber, "procedimentoCirurgico", "tipoProcedimentoCirurgico", "grauSeveridade",
	}}
	Stay = Stage{Name: "Stay", Slug: "stay", Dataset: "stay.csv", Columns: []string{
		ColHospital, ColAttendanceNumber, "estratificacaoRisco", "permanenciaPrevistaDRG",
		"permanenciaReal", "dataAlta", "acomodacao",
	}}
	PostDischarge = Stage{Name: "PostDischarge", Slug: "post-discharge", Dataset: "post_discharge.csv", Columns: []string{
		ColHospital, ColAttendanceNumber, "gestaoCronicos", "reinternacao", "quantidade", "observacao",
	}}
	Surveys = Stage{Name: "Surveys", Slug: "surveys", Dataset: "surveys.csv", Columns: surveyColumns()}
)

func surveyColumns() []string {
	cols := []string{ColHospital, ColAttendanceNumber}
	for _, d := range SurveyDays {
		cols = append(cols, SurveyDateColumn(d), SurveyNotesColumn(d))
	}
	return cols
}

// Stages lists every stage in form order.
var Stages = []Stage{Intake, Admission, Treatment, Stay, PostDischarge, Surveys}

// StageBySlug finds a stage by slug, name or dataset file name.
func StageBySlug(s string) (Stage, bool) {
	for _, st := range Stages {
		if st.Slug == s || st.Name == s || st.Dataset == s {
			return st, true
		}
	}
	return Stage{}, false
}

// Selection is the attendance an Edit flow works on, as picked from the
// Intake dataset. It is authoritative for every edit stage.
type Selection struct {
	Hospital         string `json:"hospital"`
	CareLine         string `json:"care_line"`
	AttendanceNumber string `json:"attendance_number"`
	DRGNumber        string `json:"drg_number,omitempty"`
}

// Filter narrows the Intake rows offered for selection. Empty fields do
// not filter.
type Filter struct {
	Hospital string `query:"hospital" json:"hospital"`
	CareLine string `query:"care_line" json:"care_line"`
}
