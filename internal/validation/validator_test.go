package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTable(t *testing.T, id string) *models.TableSchema {
	t.Helper()
	table, err := schema.NewStore(schema.Builtin(), nil).Load(context.Background(), id)
	require.NoError(t, err)
	return table
}

func rules(report models.ValidationReport, fieldID string) []string {
	var out []string
	for _, e := range report[fieldID] {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidate_ValidAnswers(t *testing.T) {
	report := Validate(loadTable(t, "C1T02"), models.TableAnswers{
		"C1T02E01": 172,
		"C1T02E02": 68.5,
	})
	assert.False(t, report.HasErrors(), report.Error())
}

func TestValidate_NumericBounds(t *testing.T) {
	report := Validate(loadTable(t, "C1T02"), models.TableAnswers{
		"C1T02E01": 20,
		"C1T02E02": 500,
	})
	assert.Equal(t, []string{RuleMin}, rules(report, "C1T02E01"))
	assert.Equal(t, []string{RuleMax}, rules(report, "C1T02E02"))
}

func TestValidate_Required(t *testing.T) {
	table := loadTable(t, "C1T01")

	report := Validate(table, models.TableAnswers{"C1T01E01": "female"})
	assert.Equal(t, []string{RuleRequired}, rules(report, "C1T01E02"))

	report = Validate(table, models.TableAnswers{"C1T01E02": ""})
	assert.Equal(t, []string{RuleRequired}, rules(report, "C1T01E02"))
}

func TestValidate_DateAndOption(t *testing.T) {
	report := Validate(loadTable(t, "C1T01"), models.TableAnswers{
		"C1T01E01": "unknown",
		"C1T01E02": "15/03/1960",
	})
	assert.Equal(t, []string{RuleOption}, rules(report, "C1T01E01"))
	assert.Equal(t, []string{RuleDate}, rules(report, "C1T01E02"))
}

func TestValidate_TypeMismatch(t *testing.T) {
	report := Validate(loadTable(t, "C1T02"), models.TableAnswers{"C1T02E01": "tall"})
	assert.Equal(t, []string{RuleType}, rules(report, "C1T02E01"))

	report = Validate(loadTable(t, "C2T02"), models.TableAnswers{"C2T02E01": "pain"})
	assert.Equal(t, []string{RuleType}, rules(report, "C2T02E01"))
}

func TestValidate_SelectionCount(t *testing.T) {
	all := []string{"diabetes", "autoimmune", "thyroid", "pad", "venous_insufficiency", "heart_failure", "renal_failure", "none"}
	report := Validate(loadTable(t, "C1T04"), models.TableAnswers{"C1T04E01": all})
	assert.Equal(t, []string{RuleMaxSelect}, rules(report, "C1T04E01"))
}

func TestValidate_UnknownSelection(t *testing.T) {
	report := Validate(loadTable(t, "C2T02"), models.TableAnswers{"C2T02E01": []string{"pain", "itching"}})
	require.Len(t, report["C2T02E01"], 1)
	assert.Contains(t, report["C2T02E01"][0].Message, "itching")
}

func TestValidate_TextLength(t *testing.T) {
	report := Validate(loadTable(t, "C1T04"), models.TableAnswers{
		"C1T04E01": []string{"autoimmune"},
		"C1T04E02": strings.Repeat("é", 201),
	})
	assert.Equal(t, []string{RuleMaxLength}, rules(report, "C1T04E02"))

	report = Validate(loadTable(t, "C1T04"), models.TableAnswers{
		"C1T04E01": []string{"autoimmune"},
		"C1T04E02": strings.Repeat("é", 200),
	})
	assert.False(t, report.HasErrors(), report.Error())
}

func TestValidate_HiddenFieldsSkipped(t *testing.T) {
	// HbA1c is only shown when diabetes is selected.
	report := Validate(loadTable(t, "C1T04"), models.TableAnswers{
		"C1T04E01": []string{"thyroid"},
		"C1T04E04": 45,
	})
	assert.Empty(t, report["C1T04E04"])

	report = Validate(loadTable(t, "C1T04"), models.TableAnswers{
		"C1T04E01": []string{"diabetes"},
		"C1T04E04": 45,
	})
	assert.Equal(t, []string{RuleMax}, rules(report, "C1T04E04"))
}

func TestValidate_UnknownField(t *testing.T) {
	report := Validate(loadTable(t, "C1T06"), models.TableAnswers{
		"C1T06E09": "x",
		"C1T06SQ1": "5 mg since January",
	})
	assert.Equal(t, []string{RuleUnknown}, rules(report, "C1T06E09"))
	assert.Empty(t, report["C1T06SQ1"])
}

func TestValidate_PlaceholderSkipped(t *testing.T) {
	report := Validate(models.PlaceholderSchema("C9T09"), models.TableAnswers{"C9T09E01": 1})
	assert.False(t, report.HasErrors())
}

func TestValidateData(t *testing.T) {
	store := schema.NewStore(schema.Builtin(), nil)
	report := ValidateData(context.Background(), store, models.EvaluationData{
		"C1T02": {"C1T02E01": 20},
		"C3T02": {"C3T02E01": "full"},
		"C9T99": {"C9T99E01": "ignored"},
	})

	assert.Len(t, report, 1)
	assert.Equal(t, []string{RuleMin}, rules(report, "C1T02E01"))
	assert.Contains(t, report.Error(), "C1T02E01")
}

type tableLoader map[string]*models.TableSchema

func (l tableLoader) Load(_ context.Context, id string) (*models.TableSchema, error) {
	if t, ok := l[id]; ok {
		return t, nil
	}
	return models.PlaceholderSchema(id), models.ErrSchemaNotFound
}

func TestValidateData_CrossTableVisibility(t *testing.T) {
	maxVal := 12.0
	wound := models.NewTableSchema(models.TableSchema{
		ID: "C2T09",
		Fields: []models.FieldDefinition{{
			ID:         "C2T09E01",
			Type:       models.FieldNumber,
			Kind:       models.KindNumber,
			Condition:  &models.Condition{Field: "C1T04E01", Value: models.String("diabetes")},
			Validation: &models.Validation{Max: &maxVal},
		}},
	})
	history := models.NewTableSchema(models.TableSchema{
		ID: "C1T04",
		Fields: []models.FieldDefinition{{
			ID: "C1T04E01", Type: models.FieldChoice, Kind: models.KindList,
		}},
	})
	loader := tableLoader{"C2T09": wound, "C1T04": history}

	// Diabetes recorded in C1T04 shows the C2T09 field, so its bound applies.
	report := ValidateData(context.Background(), loader, models.EvaluationData{
		"C1T04": {"C1T04E01": []string{"diabetes"}},
		"C2T09": {"C2T09E01": 20},
	})
	assert.Equal(t, []string{RuleMax}, rules(report, "C2T09E01"))

	report = ValidateData(context.Background(), loader, models.EvaluationData{
		"C1T04": {"C1T04E01": []string{"thyroid"}},
		"C2T09": {"C2T09E01": 20},
	})
	assert.Empty(t, report["C2T09E01"])

	// Validate alone sees only its own table.
	assert.Empty(t, Validate(wound, models.TableAnswers{"C2T09E01": 20}))
}
