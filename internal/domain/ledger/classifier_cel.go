package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"rebanho/internal/core/types"
)

// CELClassifier evaluates a CEL expression against the document to decide
// relevance. The expression sees string variables `direction`, `number`,
// `counterparty_name`, `counterparty_taxid` (digits only) and `tag`, and
// must yield a bool. Tag resolution is delegated to the fallback classifier
// so the inference rule stays in one place.
type CELClassifier struct {
	program  cel.Program
	fallback *ReferenceClassifier
}

func NewCELClassifier(expr string, fallback *ReferenceClassifier) (*CELClassifier, error) {
	env, err := cel.NewEnv(
		cel.Variable("direction", cel.StringType),
		cel.Variable("number", cel.StringType),
		cel.Variable("counterparty_name", cel.StringType),
		cel.Variable("counterparty_taxid", cel.StringType),
		cel.Variable("tag", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile classifier rule: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("classifier rule must evaluate to bool, got %v", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build classifier program: %w", err)
	}
	return &CELClassifier{program: prg, fallback: fallback}, nil
}

func (c *CELClassifier) Classify(ctx context.Context, doc DocumentInfo) (Decision, error) {
	// A sale is relevant regardless of what the rule says.
	if doc.Direction != types.DirectionOutbound {
		out, _, err := c.program.ContextEval(ctx, map[string]any{
			"direction":          string(doc.Direction),
			"number":             doc.Number,
			"counterparty_name":  strings.ToLower(doc.CounterpartyName),
			"counterparty_taxid": stripTaxID(doc.CounterpartyTaxID),
			"tag":                doc.Tag,
		})
		if err != nil {
			return Decision{}, fmt.Errorf("evaluate classifier rule: %w", err)
		}
		relevant, ok := out.Value().(bool)
		if !ok || !relevant {
			return Decision{}, nil
		}
	}
	return c.fallback.resolveTag(doc)
}

// resolveTag assigns the final classification tag once relevance was
// already established: the explicit tag wins, an empty one falls back to
// the inferred tag. The allow-list plays no part here, it only widens
// relevance during matching.
func (c *ReferenceClassifier) resolveTag(doc DocumentInfo) (Decision, error) {
	tag := strings.TrimSpace(doc.Tag)
	if tag == "" {
		tag = c.inferred
	}
	return Decision{Relevant: true, Tag: tag}, nil
}
