// Package prompt implements interactive value collection on a
// terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sqldraft/sqldraft/pkg/filter"
	"github.com/sqldraft/sqldraft/pkg/schema"
)

// Console reads answers line by line from an input stream, usually
// stdin. It implements filter.ValueProvider.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

var _ filter.ValueProvider = &Console{}

// ColumnValue prompts for one column. The prompt names the column and
// its declared type, shows the matched row count, and explains the
// skip and terminate inputs.
func (c *Console) ColumnValue(table schema.TableID, col schema.Column, rowCount int64, invalid string) (string, error) {
	if invalid != "" {
		fmt.Fprintf(c.out, "value %q does not fit type %s, try again\n", invalid, col.Type)
	}
	fmt.Fprintf(c.out, "%s (%d rows): value for %s [%s] (enter to skip, %s to finish): ",
		table.QualifiedName(), rowCount, col.Name, col.Type, filter.Terminator)
	return c.readLine()
}

// Confirm asks a yes or no question. Anything other than y or yes is
// no.
func (c *Console) Confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", question)
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// SharedColumn asks for one name/value pair for the shared store. A
// blank name ends the setup loop without asking for a value.
func (c *Console) SharedColumn() (string, string, error) {
	fmt.Fprint(c.out, "shared column name (enter to continue): ")
	name, err := c.readLine()
	if err != nil {
		return "", "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", nil
	}
	fmt.Fprintf(c.out, "shared value for %s: ", strings.ToUpper(name))
	value, err := c.readLine()
	if err != nil {
		return "", "", err
	}
	return name, value, nil
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", filter.ErrCollectionAborted
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
