package constats

import (
	"context"
	"fmt"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/evalctx"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/expr"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
)

// RuleIssue is a static problem found in a constat rule.
type RuleIssue struct {
	TableID string
	Rule    string
	Constat string
	Message string
}

func (i RuleIssue) String() string {
	return fmt.Sprintf("%s (%s): %s", i.Rule, i.Constat, i.Message)
}

// CheckTable parses every rule of a constat table without evaluating it and
// reports grammar errors, references to fields no schema declares, unknown
// variables, and priority entries no rule can produce.
func CheckTable(ctx context.Context, schemas schema.Loader, table *models.TableSchema) []RuleIssue {
	var issues []RuleIssue
	produced := make(map[string]bool)

	check := func(ref, constatID, condition string) {
		produced[constatID] = true
		root, err := expr.Parse(condition)
		if err != nil {
			issues = append(issues, RuleIssue{table.ID, ref, constatID, err.Error()})
			return
		}
		fields, variables := expr.References(root)
		for _, id := range fields {
			if !fieldDeclared(ctx, schemas, id) {
				issues = append(issues, RuleIssue{table.ID, ref, constatID, fmt.Sprintf("no schema declares field %s", id)})
			}
		}
		for _, name := range variables {
			if !evalctx.IsVariable(name) {
				issues = append(issues, RuleIssue{table.ID, ref, constatID, fmt.Sprintf("unknown variable %q", name)})
			}
		}
	}

	for i, rule := range table.Mapping {
		check(fmt.Sprintf("%s/source_mapping/%d", table.ID, i), rule.Constat, rule.Condition)
	}
	for _, f := range table.Fields {
		if f.HasInlineRule() {
			check(f.ID, f.Constat, f.Expression)
		}
	}
	for _, s := range table.Sections {
		for _, id := range s.PriorityOrder {
			if !produced[id] {
				issues = append(issues, RuleIssue{table.ID, "section/" + s.ID, id, "listed in priority order but no rule produces it"})
			}
		}
	}
	return issues
}

func fieldDeclared(ctx context.Context, schemas schema.Loader, fieldID string) bool {
	tableID, ok := models.TableIDOf(fieldID)
	if !ok {
		return false
	}
	table, err := schemas.Load(ctx, tableID)
	if err != nil {
		return false
	}
	_, ok = table.Field(fieldID)
	return ok
}
