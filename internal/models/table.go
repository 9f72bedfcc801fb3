package models

// Family groups schemas by role.
type Family string

const (
	// FamilyAssessment holds primary data-entry tables.
	FamilyAssessment Family = "assessment"
	// FamilyConstat holds derived-finding tables.
	FamilyConstat Family = "constat"
)

// MappingRule maps one condition to one constat.
type MappingRule struct {
	Constat   string
	Condition string
	Source    string
	Section   string
}

// Section groups constats that compete on severity.
type Section struct {
	ID             string
	Label          string
	PriorityOrder  []string
	MostSevereOnly bool
}

// Rank returns the position of a constat in the priority order.
// Unlisted constats rank after every listed one.
func (s Section) Rank(constatID string) int {
	for i, id := range s.PriorityOrder {
		if id == constatID {
			return i
		}
	}
	return len(s.PriorityOrder)
}

// Block is an authoring group of fields, possibly nested.
type Block struct {
	ID        string
	Title     string
	Fields    []FieldDefinition
	SubBlocks []Block
}

// TableSchema is an immutable, flattened table definition.
// Build it with NewTableSchema and never modify it afterwards.
type TableSchema struct {
	ID          string
	Title       string
	Family      Family
	Fields      []FieldDefinition
	Blocks      []Block
	Mapping     []MappingRule
	Sections    []Section
	Placeholder bool

	index map[string]int
}

// NewTableSchema finalizes a schema: fields are indexed by id.
func NewTableSchema(t TableSchema) *TableSchema {
	t.index = make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		if _, dup := t.index[f.ID]; !dup {
			t.index[f.ID] = i
		}
	}
	return &t
}

// PlaceholderSchema is returned when a schema cannot be loaded. It holds a single
// informational field so form layers can render something.
func PlaceholderSchema(tableID string) *TableSchema {
	return NewTableSchema(TableSchema{
		ID:          tableID,
		Title:       "Schema unavailable",
		Placeholder: true,
		Fields: []FieldDefinition{{
			ID:    tableID + "E00",
			Type:  FieldText,
			Kind:  KindString,
			Label: "Schema " + tableID + " could not be loaded",
		}},
	})
}

// Field returns the field definition with the given id.
func (t *TableSchema) Field(id string) (FieldDefinition, bool) {
	if t == nil {
		return FieldDefinition{}, false
	}
	if t.index != nil {
		i, ok := t.index[id]
		if !ok {
			return FieldDefinition{}, false
		}
		return t.Fields[i], true
	}
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Section returns the section with the given id.
func (t *TableSchema) Section(id string) (Section, bool) {
	for _, s := range t.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// DefaultSection returns the section id used by rules that do not name one.
// It is only defined when the table declares exactly one section.
func (t *TableSchema) DefaultSection() string {
	if len(t.Sections) == 1 {
		return t.Sections[0].ID
	}
	return ""
}
