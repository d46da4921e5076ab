package schema

import (
	"fmt"
	"strings"
)

// TableID is a qualified table identifier. Both parts are uppercase.
type TableID struct {
	Owner string
	Name  string
}

// QualifiedName returns OWNER.TABLE.
func (t TableID) QualifiedName() string {
	return t.Owner + "." + t.Name
}

func (t TableID) String() string {
	return t.QualifiedName()
}

// SpecFormatError indicates a table specification that is not in
// OWNER.TABLE form. It is fatal for that single table entry only.
type SpecFormatError struct {
	Spec string
}

func (e *SpecFormatError) Error() string {
	return fmt.Sprintf("table specification must be in OWNER.TABLE format, got: %q", e.Spec)
}

// ParseTableSpec splits an OWNER.TABLE specification into a TableID.
// Both parts are trimmed and uppercased; a missing separator or an
// empty part is a validation failure, never a silent default. Parsing
// is idempotent: parse("a.b") == parse("A.B").
func ParseTableSpec(spec string) (TableID, error) {
	if !strings.Contains(spec, ".") {
		return TableID{}, &SpecFormatError{Spec: spec}
	}
	owner, name, _ := strings.Cut(spec, ".")
	owner = strings.ToUpper(strings.TrimSpace(owner))
	name = strings.ToUpper(strings.TrimSpace(name))
	if owner == "" || name == "" {
		return TableID{}, &SpecFormatError{Spec: spec}
	}
	return TableID{Owner: owner, Name: name}, nil
}
