package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/siddontang/loggers"
	"github.com/sirupsen/logrus"

	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/value"
)

// Terminator ends value collection for the current table early. Values
// collected before it are kept; the terminator itself is never recorded
// as a filter value.
const Terminator = "X"

// ErrCollectionAborted is returned when the provider signals it cannot
// supply any more values, typically on input stream closure.
var ErrCollectionAborted = errors.New("filter value collection aborted")

// IsAborted reports whether an error means the input stream is gone
// and the whole run should stop, not just the current table.
func IsAborted(err error) bool {
	return errors.Is(err, ErrCollectionAborted)
}

// ValueProvider supplies raw filter values and confirmations. The
// console implementation prompts a human; tests script the answers.
type ValueProvider interface {
	// ColumnValue asks for a raw value for one column. An empty string
	// skips the column. rowCount and invalid give the prompt context:
	// the current table row count and the previous rejected input, if
	// any.
	ColumnValue(table schema.TableID, col schema.Column, rowCount int64, invalid string) (string, error)
	// Confirm asks a yes or no question.
	Confirm(question string) (bool, error)
	// SharedColumn asks for one name/value pair to seed the shared
	// store before any table is processed. An empty name ends the
	// setup loop.
	SharedColumn() (name string, value string, err error)
}

// NeedsPrompt decides whether a table gets interactive collection or
// rides on shared values alone. Prompting is required when the table
// repeats within the run, when it reports zero rows, or when no shared
// value matched any of its key columns.
func NeedsPrompt(repeated bool, rowCount int64, sharedApplied bool) bool {
	return repeated || rowCount == 0 || !sharedApplied
}

// ApplyShared resolves key columns against the shared store without
// prompting. Returned values are coerced; a shared value that fails
// coercion for this column's type is skipped, not fatal, since the
// same name can hold different types on different tables.
func ApplyShared(shared *SharedValues, keyColumns []schema.Column, logger loggers.Advanced) map[string]any {
	filters := make(map[string]any)
	for _, col := range keyColumns {
		raw, ok := shared.Get(col.Name)
		if !ok {
			continue
		}
		v, err := value.Coerce(raw, col.Type)
		if err != nil {
			logger.Warnf("shared value for %s does not fit type %s: %v", col.Name, col.Type, err)
			continue
		}
		filters[col.Name] = v
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

// Collector walks a table's key columns in ordinal order and gathers
// filter values, consulting shared values first and prompting for the
// rest. Prompt answers stay local to the table; only a refresh pass
// writes them back to the shared store, replacing the stale values
// that forced the refresh.
type Collector struct {
	provider ValueProvider
	shared   *SharedValues
	logger   loggers.Advanced
}

func NewCollector(provider ValueProvider, shared *SharedValues, logger loggers.Advanced) *Collector {
	if logger == nil {
		logger = logrus.New()
	}
	return &Collector{provider: provider, shared: shared, logger: logger}
}

// Shared resolves key columns against the store without prompting.
func (c *Collector) Shared(keyColumns []schema.Column) map[string]any {
	return ApplyShared(c.shared, keyColumns, c.logger)
}

// Setup gathers shared name/value pairs from the provider until it
// answers with a blank name, merging them into the store. Values are
// recorded raw; coercion happens per table, where the column type is
// known.
func (c *Collector) Setup() error {
	for {
		name, raw, err := c.provider.SharedColumn()
		if err != nil {
			if IsAborted(err) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrCollectionAborted, err)
		}
		if strings.TrimSpace(name) == "" {
			return nil
		}
		c.shared.Set(name, raw)
	}
}

// Collect prompts for each key column in order. Shared values are
// offered as the answer without prompting unless refresh is set, which
// forces fresh answers when the table repeats or the stored values
// matched nothing. An empty answer
// skips the column; the terminator stops collection and keeps what
// was gathered so far. Input that fails type coercion is rejected and
// the column is asked again.
func (c *Collector) Collect(table schema.TableID, keyColumns []schema.Column, rowCount int64, refresh bool) (map[string]any, error) {
	filters := make(map[string]any)
	for _, col := range keyColumns {
		if raw, ok := c.shared.Get(col.Name); ok && !refresh {
			v, err := value.Coerce(raw, col.Type)
			if err == nil {
				filters[col.Name] = v
				c.logger.Infof("reusing shared value for %s.%s", table.QualifiedName(), col.Name)
				continue
			}
			c.logger.Warnf("shared value for %s rejected by type %s, prompting", col.Name, col.Type)
		}
		v, done, err := c.promptColumn(table, col, rowCount, refresh)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if v == nil {
			continue
		}
		filters[col.Name] = v
	}
	if len(filters) == 0 {
		return nil, nil
	}
	return filters, nil
}

// promptColumn loops until the input coerces, is empty, or terminates
// collection. done reports the terminator; a nil value with done false
// means the column was skipped. record writes the answer back to the
// shared store, replacing whatever a refresh pass bypassed.
func (c *Collector) promptColumn(table schema.TableID, col schema.Column, rowCount int64, record bool) (any, bool, error) {
	invalid := ""
	for {
		raw, err := c.provider.ColumnValue(table, col, rowCount, invalid)
		if err != nil {
			if IsAborted(err) {
				return nil, false, err
			}
			// A broken provider cannot answer for any later table
			// either, so escalate to an abort.
			return nil, false, fmt.Errorf("%w: %v", ErrCollectionAborted, err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, false, nil
		}
		if strings.EqualFold(raw, Terminator) {
			return nil, true, nil
		}
		v, err := value.Coerce(raw, col.Type)
		if err != nil {
			c.logger.Warnf("rejected value for %s.%s: %v", table.QualifiedName(), col.Name, err)
			invalid = raw
			continue
		}
		if record {
			c.shared.Set(col.Name, raw)
		}
		return v, false, nil
	}
}
