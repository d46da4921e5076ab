// Package testutils contains some common utilities used exclusively
// by the test suite.
package testutils

import (
	"fmt"

	"github.com/sqldraft/sqldraft/pkg/schema"
)

// ScriptedProvider replays canned answers to value prompts and
// confirmations, in order. Running past the script ends collection
// with an error, which keeps a broken test from hanging on input.
type ScriptedProvider struct {
	Values        []string
	Confirmations []bool

	// SharedPairs feed the shared-value setup loop; an exhausted list
	// answers with a blank name, which ends the loop.
	SharedPairs [][2]string

	// Prompted records every column asked about, for assertions on
	// prompt order and count.
	Prompted []string

	valueIdx   int
	confirmIdx int
	sharedIdx  int
}

func (s *ScriptedProvider) ColumnValue(table schema.TableID, col schema.Column, rowCount int64, invalid string) (string, error) {
	s.Prompted = append(s.Prompted, col.Name)
	if s.valueIdx >= len(s.Values) {
		return "", fmt.Errorf("scripted provider exhausted after %d values", len(s.Values))
	}
	v := s.Values[s.valueIdx]
	s.valueIdx++
	return v, nil
}

func (s *ScriptedProvider) Confirm(question string) (bool, error) {
	if s.confirmIdx >= len(s.Confirmations) {
		return false, fmt.Errorf("scripted provider exhausted after %d confirmations", len(s.Confirmations))
	}
	ok := s.Confirmations[s.confirmIdx]
	s.confirmIdx++
	return ok, nil
}

func (s *ScriptedProvider) SharedColumn() (string, string, error) {
	if s.sharedIdx >= len(s.SharedPairs) {
		return "", "", nil
	}
	pair := s.SharedPairs[s.sharedIdx]
	s.sharedIdx++
	return pair[0], pair[1], nil
}

// EmployeeColumns is a keyed fixture table shaped like a typical HR
// employees table.
func EmployeeColumns() []schema.Column {
	return []schema.Column{
		{Name: "ID", Type: "NUMBER", PrimaryKey: true, OrdinalPosition: 1},
		{Name: "NAME", Type: "VARCHAR2(50)", Nullable: true, OrdinalPosition: 2},
		{Name: "DEPT_ID", Type: "NUMBER", Nullable: true, OrdinalPosition: 3},
		{Name: "HIRED", Type: "DATE", Nullable: true, OrdinalPosition: 4},
	}
}

// WideUnkeyedColumns is a fixture table with eight columns and no
// declared primary key.
func WideUnkeyedColumns() []schema.Column {
	cols := make([]schema.Column, 0, 8)
	for i := 1; i <= 8; i++ {
		cols = append(cols, schema.Column{
			Name:            fmt.Sprintf("C%d", i),
			Type:            "VARCHAR2(30)",
			Nullable:        true,
			OrdinalPosition: i,
		})
	}
	return cols
}
