package ledger

import (
	"context"
	"strings"

	"rebanho/internal/core/types"
)

// Classifier decides whether a document is relevant to the ledger.
// Implementations must be side-effect free; the posting service calls them
// inside the document transaction.
type Classifier interface {
	Classify(ctx context.Context, doc DocumentInfo) (Decision, error)
}

// ReferenceClassifierConfig drives the rule-table classifier. All matching
// is case-insensitive; tax IDs are compared with punctuation stripped.
type ReferenceClassifierConfig struct {
	// ReferenceTaxIDs lists counterparty tax IDs whose documents are
	// always ledger-relevant.
	ReferenceTaxIDs []string
	// ReferenceNames lists counterparty name fragments that mark a
	// document as ledger-relevant.
	ReferenceNames []string
	// TagAllowlist lists classification tags that make a document
	// relevant on their own: a document carrying one of these tags
	// explicitly posts whoever the counterparty is. It never blocks a
	// document that matched another rule.
	TagAllowlist []string
	// InferredTag is assigned when a matched document carries no tag.
	InferredTag string
}

// ReferenceClassifier applies the configured rule table. Outbound documents
// are always relevant: a sale touches the books no matter the counterparty.
type ReferenceClassifier struct {
	taxIDs    map[string]struct{}
	names     []string
	allowlist map[string]struct{}
	inferred  string
}

func NewReferenceClassifier(cfg ReferenceClassifierConfig) *ReferenceClassifier {
	c := &ReferenceClassifier{
		taxIDs:   make(map[string]struct{}, len(cfg.ReferenceTaxIDs)),
		inferred: cfg.InferredTag,
	}
	for _, t := range cfg.ReferenceTaxIDs {
		if s := stripTaxID(t); s != "" {
			c.taxIDs[s] = struct{}{}
		}
	}
	for _, n := range cfg.ReferenceNames {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			c.names = append(c.names, n)
		}
	}
	if len(cfg.TagAllowlist) > 0 {
		c.allowlist = make(map[string]struct{}, len(cfg.TagAllowlist))
		for _, tag := range cfg.TagAllowlist {
			c.allowlist[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
		}
	}
	return c
}

func (c *ReferenceClassifier) Classify(_ context.Context, doc DocumentInfo) (Decision, error) {
	matched := doc.Direction == types.DirectionOutbound

	if !matched {
		if _, ok := c.taxIDs[stripTaxID(doc.CounterpartyTaxID)]; ok {
			matched = true
		}
	}
	if !matched {
		name := strings.ToLower(doc.CounterpartyName)
		for _, fragment := range c.names {
			if strings.Contains(name, fragment) {
				matched = true
				break
			}
		}
	}
	if !matched && c.allowlist != nil {
		// An explicit allow-listed tag is relevant on its own, whoever
		// the counterparty is.
		if _, ok := c.allowlist[strings.ToLower(strings.TrimSpace(doc.Tag))]; ok {
			matched = true
		}
	}
	if !matched {
		return Decision{}, nil
	}
	return c.resolveTag(doc)
}

// stripTaxID removes the usual CNPJ/CPF punctuation so "12.345.678/0001-90"
// and "12345678000190" compare equal.
func stripTaxID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
