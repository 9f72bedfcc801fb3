package schema

import (
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"gopkg.in/yaml.v3"
)

// yamlTable is the authored shape of a schema document.
type yamlTable struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Family        string        `yaml:"family"`
	Fields        []yamlField   `yaml:"fields"`
	Blocks        []yamlBlock   `yaml:"blocks"`
	SourceMapping []yamlRule    `yaml:"source_mapping"`
	Section       *yamlSection  `yaml:"section"`
	Sections      []yamlSection `yaml:"sections"`
}

type yamlBlock struct {
	ID        string      `yaml:"id"`
	Title     string      `yaml:"title"`
	Fields    []yamlField `yaml:"fields"`
	SubBlocks []yamlBlock `yaml:"subblocks"`
}

type yamlField struct {
	ID               string            `yaml:"id"`
	Type             string            `yaml:"type"`
	Label            string            `yaml:"label"`
	Unit             string            `yaml:"unit"`
	Multiple         bool              `yaml:"multiple"`
	Options          []yamlOption      `yaml:"options"`
	Condition        *yamlCondition    `yaml:"condition"`
	DisplayCondition *yamlDisplay      `yaml:"display_condition"`
	Validation       *yamlValidation   `yaml:"validation"`
	Subquestions     []yamlSubquestion `yaml:"subquestions"`
	Constat          string            `yaml:"constat"`
	Expression       string            `yaml:"expression"`
	Section          string            `yaml:"section"`
}

type yamlOption struct {
	ID    string  `yaml:"id"`
	Label string  `yaml:"label"`
	Score float64 `yaml:"score"`
}

type yamlCondition struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

type yamlDisplay struct {
	Driver   string   `yaml:"driver"`
	Triggers []string `yaml:"triggers"`
}

type yamlValidation struct {
	Required  bool     `yaml:"required"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	MinLength *int     `yaml:"min_length"`
	MaxLength *int     `yaml:"max_length"`
	MinSelect *int     `yaml:"min_select"`
	MaxSelect *int     `yaml:"max_select"`
}

type yamlSubquestion struct {
	ID        string   `yaml:"id"`
	Label     string   `yaml:"label"`
	ShowIfAny []string `yaml:"show_if_any"`
}

type yamlRule struct {
	Constat   string `yaml:"constat"`
	Condition string `yaml:"condition"`
	Source    string `yaml:"source"`
	Section   string `yaml:"section"`
}

type yamlSection struct {
	ID             string   `yaml:"id"`
	Label          string   `yaml:"label"`
	PriorityOrder  []string `yaml:"priority_order"`
	MostSevereOnly bool     `yaml:"most_severe_only"`
}

// Decode parses a schema document, flattens its blocks and resolves every
// field's value kind. The document id must match tableID.
func Decode(tableID string, data []byte) (*models.TableSchema, error) {
	var doc yamlTable
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("schema document has no id")
	}
	if tableID != "" && doc.ID != tableID {
		return nil, fmt.Errorf("schema document id %q does not match requested %q", doc.ID, tableID)
	}

	family := models.Family(strings.ToLower(doc.Family))
	switch family {
	case "":
		family = models.FamilyAssessment
	case models.FamilyAssessment, models.FamilyConstat:
	default:
		return nil, fmt.Errorf("unknown schema family %q", doc.Family)
	}

	table := models.TableSchema{
		ID:     doc.ID,
		Title:  doc.Title,
		Family: family,
	}

	seen := make(map[string]bool)
	for _, f := range doc.Fields {
		field, err := convertField(f)
		if err != nil {
			return nil, err
		}
		if seen[field.ID] {
			return nil, fmt.Errorf("duplicate field id %q", field.ID)
		}
		seen[field.ID] = true
		table.Fields = append(table.Fields, field)
	}

	for _, b := range doc.Blocks {
		block, err := convertBlock(b)
		if err != nil {
			return nil, err
		}
		table.Blocks = append(table.Blocks, block)
		for _, field := range flattenBlock(block) {
			if seen[field.ID] {
				return nil, fmt.Errorf("duplicate field id %q", field.ID)
			}
			seen[field.ID] = true
			table.Fields = append(table.Fields, field)
		}
	}

	if doc.Section != nil {
		table.Sections = append(table.Sections, convertSection(*doc.Section))
	}
	for _, s := range doc.Sections {
		table.Sections = append(table.Sections, convertSection(s))
	}
	sectionIDs := make(map[string]bool, len(table.Sections))
	for _, s := range table.Sections {
		if s.ID == "" {
			return nil, fmt.Errorf("section without id")
		}
		if sectionIDs[s.ID] {
			return nil, fmt.Errorf("duplicate section id %q", s.ID)
		}
		sectionIDs[s.ID] = true
	}

	for i, r := range doc.SourceMapping {
		if r.Constat == "" || strings.TrimSpace(r.Condition) == "" {
			return nil, fmt.Errorf("source mapping rule %d needs a constat and a condition", i)
		}
		if r.Section != "" && !sectionIDs[r.Section] {
			return nil, fmt.Errorf("source mapping rule %d references unknown section %q", i, r.Section)
		}
		table.Mapping = append(table.Mapping, models.MappingRule{
			Constat:   r.Constat,
			Condition: r.Condition,
			Source:    r.Source,
			Section:   r.Section,
		})
	}
	for _, f := range table.Fields {
		if f.Section != "" && !sectionIDs[f.Section] {
			return nil, fmt.Errorf("field %s references unknown section %q", f.ID, f.Section)
		}
	}

	return models.NewTableSchema(table), nil
}

func convertBlock(b yamlBlock) (models.Block, error) {
	block := models.Block{ID: b.ID, Title: b.Title}
	for _, f := range b.Fields {
		field, err := convertField(f)
		if err != nil {
			return models.Block{}, err
		}
		block.Fields = append(block.Fields, field)
	}
	for _, sb := range b.SubBlocks {
		sub, err := convertBlock(sb)
		if err != nil {
			return models.Block{}, err
		}
		block.SubBlocks = append(block.SubBlocks, sub)
	}
	return block, nil
}

// flattenBlock lists a block's fields depth-first, in authoring order.
func flattenBlock(b models.Block) []models.FieldDefinition {
	out := append([]models.FieldDefinition(nil), b.Fields...)
	for _, sub := range b.SubBlocks {
		out = append(out, flattenBlock(sub)...)
	}
	return out
}

func convertField(f yamlField) (models.FieldDefinition, error) {
	if f.ID == "" {
		return models.FieldDefinition{}, fmt.Errorf("field without id")
	}
	fieldType := models.FieldType(strings.ToLower(f.Type))
	kind, err := models.ResolveKind(fieldType, f.Multiple)
	if err != nil {
		return models.FieldDefinition{}, fmt.Errorf("field %s: %w", f.ID, err)
	}

	field := models.FieldDefinition{
		ID:         f.ID,
		Type:       fieldType,
		Kind:       kind,
		Label:      f.Label,
		Unit:       f.Unit,
		Multiple:   f.Multiple,
		Constat:    f.Constat,
		Expression: f.Expression,
		Section:    f.Section,
	}

	optionIDs := make(map[string]bool, len(f.Options))
	for _, o := range f.Options {
		if o.ID == "" {
			return models.FieldDefinition{}, fmt.Errorf("field %s: option without id", f.ID)
		}
		if optionIDs[o.ID] {
			return models.FieldDefinition{}, fmt.Errorf("field %s: duplicate option %q", f.ID, o.ID)
		}
		optionIDs[o.ID] = true
		field.Options = append(field.Options, models.Option{ID: o.ID, Label: o.Label, Score: o.Score})
	}

	if f.Condition != nil {
		if f.Condition.Field == "" {
			return models.FieldDefinition{}, fmt.Errorf("field %s: condition without dependency field", f.ID)
		}
		field.Condition = &models.Condition{Field: f.Condition.Field, Value: models.ValueOf(f.Condition.Value)}
	}
	if f.DisplayCondition != nil {
		if f.DisplayCondition.Driver == "" {
			return models.FieldDefinition{}, fmt.Errorf("field %s: display condition without driver", f.ID)
		}
		field.DisplayCondition = &models.DisplayCondition{
			Driver:   f.DisplayCondition.Driver,
			Triggers: append([]string(nil), f.DisplayCondition.Triggers...),
		}
	}
	if v := f.Validation; v != nil {
		field.Validation = &models.Validation{
			Required:  v.Required,
			Min:       v.Min,
			Max:       v.Max,
			MinLength: v.MinLength,
			MaxLength: v.MaxLength,
			MinSelect: v.MinSelect,
			MaxSelect: v.MaxSelect,
		}
	}
	for _, sq := range f.Subquestions {
		field.Subquestions = append(field.Subquestions, models.Subquestion{
			ID:       sq.ID,
			Label:    sq.Label,
			Siblings: append([]string(nil), sq.ShowIfAny...),
		})
	}
	if (f.Constat == "") != (strings.TrimSpace(f.Expression) == "") {
		return models.FieldDefinition{}, fmt.Errorf("field %s: constat and expression must be declared together", f.ID)
	}
	return field, nil
}

func convertSection(s yamlSection) models.Section {
	return models.Section{
		ID:             s.ID,
		Label:          s.Label,
		PriorityOrder:  append([]string(nil), s.PriorityOrder...),
		MostSevereOnly: s.MostSevereOnly,
	}
}
