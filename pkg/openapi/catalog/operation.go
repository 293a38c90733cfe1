package catalog

import (
	"fmt"
	"strings"
)

// Operation is one addressable remote action. Identity is ID; records are
// immutable once the catalog is built.
type Operation struct {
	ID string

	Method string
	Path   string

	Summary     string
	Description string

	PathParams  []string
	QueryParams []string

	ContentType string
}

func (o Operation) String() string {
	return fmt.Sprintf("%s  [%s %s]", o.ID, o.Method, o.Path)
}

// Doc assembles the human-readable description the way the schema wrote it.
func (o Operation) Doc() string {
	doc := strings.TrimRight(o.Summary, ". \n")

	if doc != "" {
		doc += "."
	}

	if o.Description != "" {
		doc = strings.TrimSpace(doc + " " + strings.TrimRight(o.Description, ". \n") + ".")
	}

	if doc == "" {
		doc = fmt.Sprintf("%s %s.", o.Method, o.Path)
	}

	return doc
}

func (o Operation) haystack() string {
	return strings.ToLower(o.ID + " " + o.Path)
}
