package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTableIDOf(t *testing.T) {
	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"C1T02E01", "C1T02", true},
		{"C3T05E02_1", "C3T05", true},
		{"C12T3E100", "C12T3", true},
		{"c1t02e01", "", false},
		{"C1T02", "", false},
		{"age", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := TableIDOf(tt.id)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("TableIDOf(%q) = %q, %v; want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		multiple  bool
		want      ValueKind
		wantErr   bool
	}{
		{FieldChoice, false, KindString, false},
		{FieldChoice, true, KindList, false},
		{FieldBoolean, false, KindBool, false},
		{FieldNumber, false, KindNumber, false},
		{FieldComputed, false, KindNumber, false},
		{FieldDate, false, KindString, false},
		{FieldText, false, KindString, false},
		{FieldComposite, false, KindObject, false},
		{"slider", false, KindNull, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.fieldType, tt.multiple), func(t *testing.T) {
			got, err := ResolveKind(tt.fieldType, tt.multiple)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("kind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueOf(t *testing.T) {
	if k := ValueOf(42).Kind(); k != KindNumber {
		t.Errorf("int kind = %v", k)
	}
	if k := ValueOf([]any{"a", 1}).Kind(); k != KindList {
		t.Errorf("list kind = %v", k)
	}
	if s, _ := ValueOf(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)).AsString(); s != "2024-02-29" {
		t.Errorf("time = %q, want date only", s)
	}
	if !ValueOf(struct{}{}).IsNull() {
		t.Error("unsupported type should be null")
	}
	obj := ValueOf(map[string]any{"length": 4.5})
	if n, ok := obj.Field("length").AsNumber(); !ok || n != 4.5 {
		t.Errorf("object field = %v, %v", n, ok)
	}
	if !obj.Field("width").IsNull() {
		t.Error("missing member should be null")
	}
}

func TestValueEqualIsStrict(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", Number(1), Number(1), true},
		{"number vs string", Number(1), String("1"), false},
		{"bool vs number", Bool(true), Number(1), false},
		{"null vs null", Null(), Null(), true},
		{"null vs empty string", Null(), String(""), false},
		{"lists", List(String("a"), Number(2)), List(String("a"), Number(2)), true},
		{"list order", List(String("a"), String("b")), List(String("b"), String("a")), false},
		{"objects", Object(map[string]Value{"x": Number(1)}), Object(map[string]Value{"x": Number(1)}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueTruthyAndContains(t *testing.T) {
	for _, v := range []Value{Null(), Bool(false), Number(0), String(""), List()} {
		if v.Truthy() {
			t.Errorf("%s should not be truthy", v)
		}
	}
	for _, v := range []Value{Bool(true), Number(-1), String("no"), List(Null())} {
		if !v.Truthy() {
			t.Errorf("%s should be truthy", v)
		}
	}

	list := ValueOf([]string{"odor", "pain"})
	if !list.Contains(String("pain")) {
		t.Error("list should contain pain")
	}
	if String("pain").Contains(String("pain")) {
		t.Error("scalars never contain anything")
	}
}

func TestValueString(t *testing.T) {
	v := ValueOf(map[string]any{"b": []any{true, 1.5}, "a": "x"})
	if got, want := v.String(), `{a: "x", b: [true, 1.5]}`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestEvaluationDataLookup(t *testing.T) {
	data := EvaluationData{
		"C1T02": {"C1T02E01": 170},
		"misc":  {"free_note": "x"},
	}
	if n, _ := data.Lookup("C1T02E01").AsNumber(); n != 170 {
		t.Errorf("Lookup(C1T02E01) = %v", n)
	}
	if s, _ := data.Lookup("free_note").AsString(); s != "x" {
		t.Errorf("Lookup(free_note) = %q", s)
	}
	if !data.Lookup("C1T02E09").IsNull() {
		t.Error("unanswered field should be null")
	}
	if !data.Value("C9T01", "C9T01E01").IsNull() {
		t.Error("missing table should be null")
	}
	if data.Count() != 2 {
		t.Errorf("Count() = %d, want 2", data.Count())
	}
}

func TestTableSchema(t *testing.T) {
	table := NewTableSchema(TableSchema{
		ID: "C4T01",
		Fields: []FieldDefinition{
			{ID: "C4T01E01", Constat: "CST_A", Expression: "true"},
			{ID: "C4T01E02"},
		},
		Sections: []Section{{ID: "s", PriorityOrder: []string{"CST_B", "CST_A"}}},
	})

	f, ok := table.Field("C4T01E01")
	if !ok || !f.HasInlineRule() {
		t.Errorf("Field(C4T01E01) = %+v, %v", f, ok)
	}
	if _, ok := table.Field("C4T01E03"); ok {
		t.Error("unknown field found")
	}
	if got := table.DefaultSection(); got != "s" {
		t.Errorf("DefaultSection() = %q", got)
	}
	s, _ := table.Section("s")
	if s.Rank("CST_B") != 0 || s.Rank("CST_A") != 1 || s.Rank("CST_Z") != 2 {
		t.Errorf("unexpected ranks")
	}

	var missing *TableSchema
	if _, ok := missing.Field("C4T01E01"); ok {
		t.Error("nil schema has no fields")
	}
}

func TestPlaceholderSchema(t *testing.T) {
	p := PlaceholderSchema("C9T09")
	if !p.Placeholder || len(p.Fields) != 1 {
		t.Fatalf("placeholder = %+v", p)
	}
	if !strings.Contains(p.Fields[0].Label, "C9T09") {
		t.Errorf("label %q should name the table", p.Fields[0].Label)
	}
}

func TestErrorsWrapSentinels(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("load: %w", &SchemaError{TableID: "C1T01", Err: cause})
	if !errors.Is(err, ErrSchemaNotFound) || !errors.Is(err, cause) {
		t.Errorf("SchemaError should wrap both sentinel and cause: %v", err)
	}

	evalErr := &EvalError{Expression: "age >", Pos: 5, Message: "unexpected end"}
	if !errors.Is(evalErr, ErrExpressionEvaluation) {
		t.Error("EvalError should wrap ErrExpressionEvaluation")
	}
	if !strings.Contains(evalErr.Error(), "offset 5") {
		t.Errorf("Error() = %q", evalErr.Error())
	}
}

func TestValidationReport(t *testing.T) {
	r := ValidationReport{}
	if r.HasErrors() || r.Error() != "" {
		t.Fatal("empty report has errors")
	}
	r.Add(ValidationError{FieldID: "C1T02E01", Rule: "max", Message: "above 250"})
	r.Add(ValidationError{FieldID: "C1T02E01", Rule: "type", Message: "not a number"})
	r.Add(ValidationError{FieldID: "C1T01E02", Rule: "date", Message: "bad date"})

	if !r.HasErrors() || len(r["C1T02E01"]) != 2 {
		t.Fatalf("report = %+v", r)
	}
	msg := r.Error()
	if !strings.HasPrefix(msg, "validation failed with 3 error(s)") {
		t.Errorf("Error() = %q", msg)
	}
	if strings.Index(msg, "C1T01E02") > strings.Index(msg, "C1T02E01") {
		t.Errorf("fields should be sorted:\n%s", msg)
	}
}
