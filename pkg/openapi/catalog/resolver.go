package catalog

import (
	"slices"
	"strings"

	"github.com/gtonic/legalapi-cli/pkg/apierror"
)

// hintWords is the diagnostic vocabulary used when resolution fails: the
// error lists every operation touching one of these, so callers see what the
// schema actually offers.
var hintWords = []string{"efrsb", "bankrupt", "bankruptcy", "debtor", "notice", "case", "insolv"}

// Resolve maps a keyword set to a single operation. The strict pass requires
// every non-empty keyword as a case-insensitive substring of "id path" and
// prefers the shortest, alphabetically earliest identifier. If the strict
// pass finds nothing, the loose pass returns the first operation (in id
// order) containing any keyword.
func (c *Catalog) Resolve(keywords ...string) (Operation, error) {
	var terms []string

	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			terms = append(terms, k)
		}
	}

	var candidates []Operation

	for _, id := range c.ids {
		op := c.operations[id]

		matched := true

		for _, t := range terms {
			if !strings.Contains(op.haystack(), t) {
				matched = false
				break
			}
		}

		if matched {
			candidates = append(candidates, op)
		}
	}

	if len(candidates) > 0 {
		slices.SortFunc(candidates, func(a, b Operation) int {
			if d := len(a.ID) - len(b.ID); d != 0 {
				return d
			}

			return strings.Compare(a.ID, b.ID)
		})

		return candidates[0], nil
	}

	for _, id := range c.ids {
		op := c.operations[id]

		for _, t := range terms {
			if strings.Contains(op.haystack(), t) {
				return op, nil
			}
		}
	}

	return Operation{}, c.unresolved(terms)
}

// Hints returns the operations whose id or path contains any hint word.
func (c *Catalog) Hints() []Operation {
	var result []Operation

	for _, id := range c.ids {
		op := c.operations[id]

		for _, w := range hintWords {
			if strings.Contains(op.haystack(), w) {
				result = append(result, op)
				break
			}
		}
	}

	return result
}

func (c *Catalog) unresolved(terms []string) error {
	var sb strings.Builder

	sb.WriteString("no operation matches keywords: ")
	sb.WriteString(strings.Join(terms, ", "))

	if hints := c.Hints(); len(hints) > 0 {
		sb.WriteString("\navailable candidate operations:")

		for _, op := range hints {
			sb.WriteString("\n- " + op.String())
		}
	} else {
		sb.WriteString("\nthe schema contains no operations matching the known vocabulary")
	}

	return apierror.New(apierror.KindUnresolvedKeywords, "%s", sb.String())
}
