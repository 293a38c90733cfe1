package catalog

import (
	"maps"
	"slices"
	"strings"

	"github.com/gtonic/legalapi-cli/pkg/apierror"

	"github.com/getkin/kin-openapi/openapi3"
)

// Catalog is the read-only index of operations built once from a schema
// document. Immutable after Build, so concurrent reads need no locking.
type Catalog struct {
	operations map[string]Operation

	ids []string

	collisions int
}

// Build walks every (path, method) entry of the document in sorted order, so
// repeated builds from the same document yield the same catalog. Operations
// without a declared identifier get a deterministic synthetic one. A later
// entry with a colliding id replaces the earlier one; the catalog counts such
// collisions for diagnostics instead of failing.
func Build(doc *openapi3.T) (*Catalog, error) {
	operations := map[string]Operation{}

	collisions := 0

	if doc != nil && doc.Paths != nil {
		paths := doc.Paths.Map()

		for _, p := range slices.Sorted(maps.Keys(paths)) {
			item := paths[p]

			methods := item.Operations()

			for _, m := range slices.Sorted(maps.Keys(methods)) {
				o := methods[m]

				op := Operation{
					ID: o.OperationID,

					Method: strings.ToUpper(m),
					Path:   p,

					Summary:     o.Summary,
					Description: o.Description,
				}

				if op.ID == "" {
					op.ID = syntheticID(m, p)
				}

				collectParams(&op, item.Parameters)
				collectParams(&op, o.Parameters)

				if o.RequestBody != nil && o.RequestBody.Value != nil {
					if o.RequestBody.Value.Content.Get("application/json") != nil {
						op.ContentType = "application/json"
					}
				}

				if _, ok := operations[op.ID]; ok {
					collisions++
				}

				operations[op.ID] = op
			}
		}
	}

	if len(operations) == 0 {
		return nil, apierror.New(apierror.KindEmptyCatalog, "schema parsed, but no operations found")
	}

	c := &Catalog{
		operations: operations,

		ids: slices.Sorted(maps.Keys(operations)),

		collisions: collisions,
	}

	return c, nil
}

func (c *Catalog) Lookup(id string) (Operation, bool) {
	op, ok := c.operations[id]
	return op, ok
}

// IDs returns every operation identifier in lexicographic order. The result
// is a copy; repeated calls yield identical sequences.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

func (c *Catalog) Len() int {
	return len(c.operations)
}

func (c *Catalog) Collisions() int {
	return c.collisions
}

// All returns every operation in id order.
func (c *Catalog) All() []Operation {
	result := make([]Operation, 0, len(c.ids))

	for _, id := range c.ids {
		result = append(result, c.operations[id])
	}

	return result
}

func collectParams(op *Operation, params openapi3.Parameters) {
	for _, p := range params {
		if p.Value == nil {
			continue
		}

		switch {
		case strings.EqualFold(p.Value.In, "query"):
			if !slices.Contains(op.QueryParams, p.Value.Name) {
				op.QueryParams = append(op.QueryParams, p.Value.Name)
			}

		case strings.EqualFold(p.Value.In, "path"):
			if !slices.Contains(op.PathParams, p.Value.Name) {
				op.PathParams = append(op.PathParams, p.Value.Name)
			}
		}
	}
}

// syntheticID derives a stable identifier from the verb and normalized path,
// e.g. GET /efrsb/debtors/{id} -> get_efrsb_debtors_id.
func syntheticID(method, path string) string {
	p := strings.Trim(path, "/")
	p = strings.NewReplacer("{", "", "}", "").Replace(p)
	p = strings.ReplaceAll(p, "/", "_")

	return strings.ToLower(method) + "_" + p
}
