// api/policy/policy.go
package policy

import (
	scl_errors "github.com/m2m-works/scld/api/errors"
	"github.com/m2m-works/scld/api/model"
)

// Rule is the per-verb handling of one attribute in a write representation.
type Rule int

const (
	// NotApplicable attributes never appear in a write representation; they
	// only exist on the retrieve side.
	NotApplicable Rule = iota
	// Optional attributes are accepted whether present or absent.
	Optional
	// Mandatory attributes must be present.
	Mandatory
	// NotPermitted attributes are rejected when present, whatever the value.
	NotPermitted
)

// Row binds one attribute to its Create and Update rules. Row order in a
// Table is the validation order: id first, then structural references, then
// domain attributes, then timestamps. The first violation wins.
type Row struct {
	Attr   string
	Create Rule
	Update Rule
}

// Table is the static attribute policy of one resource type. Pure data;
// validation is deterministic for a given (table, verb, delta).
type Table []Row

// Validate checks the client-supplied representation delta against the table
// for the given verb and returns the first violation, or nil when accepted.
func (t Table) Validate(verb model.Verb, delta model.Entity) error {
	for _, row := range t {
		var rule Rule
		switch verb {
		case model.VerbCreate:
			rule = row.Create
		case model.VerbUpdate:
			rule = row.Update
		default:
			return nil
		}
		present := delta.Present(row.Attr)
		switch rule {
		case Mandatory:
			if !present {
				return scl_errors.BadRequestf("attribute %s is mandatory for %s", row.Attr, verb)
			}
		case NotPermitted:
			if present {
				return scl_errors.BadRequestf("attribute %s is not permitted for %s", row.Attr, verb)
			}
		}
	}
	return nil
}
