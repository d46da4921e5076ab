package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldraft/sqldraft/pkg/filter"
	"github.com/sqldraft/sqldraft/pkg/schema"
)

func TestColumnValue(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("42\n"), &out)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	col := schema.Column{Name: "ID", Type: "NUMBER"}
	v, err := c.ColumnValue(tab, col, 10, "")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.Contains(t, out.String(), "HR.EMP (10 rows)")
	assert.Contains(t, out.String(), "ID [NUMBER]")
}

func TestColumnValueShowsRejection(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("2024-12-25\n"), &out)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	col := schema.Column{Name: "HIRED", Type: "DATE"}
	_, err := c.ColumnValue(tab, col, 10, "xmas")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `value "xmas" does not fit type DATE`)
}

func TestColumnValueEOF(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	_, err := c.ColumnValue(tab, schema.Column{Name: "ID", Type: "NUMBER"}, 0, "")
	assert.ErrorIs(t, err, filter.ErrCollectionAborted)
}

func TestSharedColumn(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("dept_id\n10\n\n"), &out)

	name, value, err := c.SharedColumn()
	require.NoError(t, err)
	assert.Equal(t, "dept_id", name)
	assert.Equal(t, "10", value)
	assert.Contains(t, out.String(), "shared value for DEPT_ID: ")

	// A blank name ends the loop without a value prompt.
	name, value, err = c.SharedColumn()
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Empty(t, value)
}

func TestSharedColumnEOF(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)
	_, _, err := c.SharedColumn()
	assert.ErrorIs(t, err, filter.ErrCollectionAborted)
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":    true,
		"Y\n":    true,
		"yes\n":  true,
		"YES\n":  true,
		"n\n":    false,
		"\n":     false,
		"what\n": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		c := NewConsole(strings.NewReader(input), &out)
		got, err := c.Confirm("proceed?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "proceed? [y/N]: ")
	}
}

func TestConfirmLastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("y"), &out)
	got, err := c.Confirm("proceed?")
	require.NoError(t, err)
	assert.True(t, got)
}
