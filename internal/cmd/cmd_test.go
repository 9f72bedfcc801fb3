package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const patientAnswers = `
C1T01:
  C1T01E02: "1950-01-01"
C1T02:
  C1T02E01: 170
  C1T02E02: 95
C1T03:
  C1T03E01: current
C1T04:
  C1T04E01: [diabetes]
C2T01:
  C2T01E01: "2024-12-01"
  C2T01E02: venous
C2T02:
  C2T02E01: [purulence, pain, odor]
  C2T02E02: [fever]
  C2T02E03: true
  C2T02E04: true
C2T03:
  C2T03E01: true
  C2T03E02: 120
  C2T03E03: 130
  C2T03E04: 42
  C2T03E05: 110
  C2T03E06: diminished
`

// run executes the root command with file logging disabled and a pinned
// reference date. It returns stdout and the command error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-dir=", "--reference-date", "2025-03-15"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadAnswers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "visit.yaml", patientAnswers)

	data, err := loadAnswers(path)
	if err != nil {
		t.Fatalf("loadAnswers() error = %v", err)
	}
	if len(data) != 7 {
		t.Errorf("tables = %d, want 7", len(data))
	}
	if got, _ := data.Value("C1T02", "C1T02E01").AsNumber(); got != 170 {
		t.Errorf("height = %v, want 170", got)
	}
	if got, _ := data.Value("C1T01", "C1T01E02").AsString(); got != "1950-01-01" {
		t.Errorf("birth date = %q, want 1950-01-01", got)
	}
}

func TestLoadAnswers_Errors(t *testing.T) {
	if _, err := loadAnswers(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := writeFile(t, t.TempDir(), "bad.yaml", "C1T01: [not, a, map]\n")
	if _, err := loadAnswers(path); err == nil {
		t.Error("expected error for malformed answers")
	}
}

func TestEvaluateCommand_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "visit.yaml", patientAnswers)

	out, err := run(t, "evaluate", path)
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	for _, want := range []string{
		"CST_SYSTEMIC_INFECTION",
		"CST_CRITICAL_ISCHEMIA",
		"age_years",
		"BWAT total: 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "CST_LOCAL_INFECTION") {
		t.Errorf("less severe infection finding should be suppressed:\n%s", out)
	}
}

func TestEvaluateCommand_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "visit.yaml", patientAnswers)

	out, err := run(t, "evaluate", path, "--format", "yaml", "--constat-table", "C4T01")
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	var ev Evaluation
	if err := yaml.Unmarshal([]byte(out), &ev); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if ev.RunID == "" {
		t.Error("run id is empty")
	}
	if len(ev.Constats) != 1 || ev.Constats[0].TableID != "C4T01" {
		t.Fatalf("constats = %+v, want only C4T01", ev.Constats)
	}
	if ids := ev.Constats[0].IDs(); len(ids) != 1 || ids[0] != "CST_SYSTEMIC_INFECTION" {
		t.Errorf("C4T01 findings = %v", ids)
	}
	if ev.Context["age_years"] != 75 {
		t.Errorf("age_years = %v, want 75", ev.Context["age_years"])
	}
}

func TestEvaluateCommand_WritesReport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "visit.yaml", patientAnswers)
	reportDir := filepath.Join(dir, "reports")

	if _, err := run(t, "evaluate", path, "--report-dir", reportDir); err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	md, _ := filepath.Glob(filepath.Join(reportDir, "report-*.md"))
	html, _ := filepath.Glob(filepath.Join(reportDir, "report-*.html"))
	if len(md) != 1 || len(html) != 1 {
		t.Fatalf("reports = %v %v, want one of each", md, html)
	}
	content, err := os.ReadFile(md[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "CST_CRITICAL_ISCHEMIA") {
		t.Errorf("markdown report missing findings:\n%s", content)
	}
}

func TestEvaluateCommand_InvalidFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "visit.yaml", patientAnswers)
	if _, err := run(t, "evaluate", path, "--format", "json"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestVisibleCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "visit.yaml", "C2T03:\n  C2T03E01: false\n")

	out, err := run(t, "visible", "C2T03", path)
	if err != nil {
		t.Fatalf("visible error = %v", err)
	}
	if !strings.Contains(out, "2 of 6 fields visible") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if strings.Contains(out, "C2T03E02") {
		t.Errorf("pressure fields should be hidden:\n%s", out)
	}

	out, err = run(t, "visible", "C2T03", path, "--all")
	if err != nil {
		t.Fatalf("visible --all error = %v", err)
	}
	if !strings.Contains(out, "C2T03E02") || !strings.Contains(out, "(hidden)") {
		t.Errorf("--all should list hidden fields:\n%s", out)
	}
}

func TestVisibleCommand_MeasuredShowsPressures(t *testing.T) {
	path := writeFile(t, t.TempDir(), "visit.yaml", "C2T03:\n  C2T03E01: true\n  C2T03E02: 120\n")

	out, err := run(t, "visible", "C2T03", path)
	if err != nil {
		t.Fatalf("visible error = %v", err)
	}
	if !strings.Contains(out, "6 of 6 fields visible") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "= 120") {
		t.Errorf("answered value not shown:\n%s", out)
	}
}

func TestValidateCommand_Builtins(t *testing.T) {
	out, err := run(t, "validate")
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "21 schema(s) valid") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommand_ReportsBrokenRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "C9T02.yaml", `
id: C9T02
family: constat
source_mapping:
  - constat: CST_A
    condition: "frailty_index > 3"
`)

	out, err := run(t, "validate", dir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, `unknown variable "frailty_index"`) {
		t.Errorf("issue not reported:\n%s", out)
	}
}

func TestRiskCommand(t *testing.T) {
	args := []string{"risk", "adult"}
	for _, dim := range []string{"sensory", "moisture", "activity", "mobility", "nutrition", "friction"} {
		args = append(args, "--select", dim+"=1")
	}

	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("risk error = %v", err)
	}
	if !strings.Contains(out, "Braden scale (adult): 6") || !strings.Contains(out, "[Very high risk]") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Missing:") {
		t.Errorf("complete selection reported missing dimensions:\n%s", out)
	}
}

func TestRiskCommand_Partial(t *testing.T) {
	out, err := run(t, "risk", "pediatric", "--select", "mobility=3", "--select", "perfusion=4")
	if err != nil {
		t.Fatalf("risk error = %v", err)
	}
	if !strings.Contains(out, "Braden Q scale (pediatric): 7") {
		t.Errorf("unexpected total:\n%s", out)
	}
	if !strings.Contains(out, "Missing: activity, sensory, moisture, friction, nutrition") {
		t.Errorf("unexpected missing list:\n%s", out)
	}
}

func TestRiskCommand_Errors(t *testing.T) {
	tests := [][]string{
		{"risk", "elderly"},
		{"risk", "adult", "--select", "sensory"},
		{"risk", "adult", "--select", "sensory=9"},
		{"risk", "adult", "--select", "hearing=1"},
	}
	for _, args := range tests {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSchemasImportAndList(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docs, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, docs, "C9T01.yaml", `
id: C9T01
title: Extra intake
fields:
  - id: C9T01E01
    type: number
    label: Pain score
`)
	writeFile(t, docs, "C9T05.yaml", "id: C9T06\n")
	db := filepath.Join(dir, "schemas.db")

	out, err := run(t, "schemas", "import", docs, "--db", db)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "Stored 1 schema(s)") || !strings.Contains(out, "1 document(s) skipped") {
		t.Errorf("unexpected import output:\n%s", out)
	}

	out, err = run(t, "schemas", "list", "--schema-db", db)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	for _, want := range []string{"C9T01  Extra intake", "C4T01", "constat (3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}
