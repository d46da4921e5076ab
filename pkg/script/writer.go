// Package script renders generated statements into a reviewable SQL
// script. The script is the product of a run: statements are written
// for human review, never auto-committed.
package script

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/sqldraft/sqldraft/pkg/buildinfo"
	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/statement"
)

// Writer renders a script section by section. Write errors are sticky:
// the first one is kept and later calls become no-ops, so callers
// check Err once at the end.
type Writer struct {
	w          io.Writer
	err        error
	statements int

	// Now is replaceable for deterministic test output.
	Now func() time.Time
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, Now: time.Now}
}

func (s *Writer) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// Header writes the run preamble: what generated the script, when,
// under which run id and config, then any dialect session setup.
func (s *Writer) Header(tool, configPath string, d dialect.Dialect) {
	s.printf("-- generated by %s %s\n", tool, buildinfo.Get().Short())
	s.printf("-- run id: %s\n", uuid.New().String())
	s.printf("-- config: %s\n", configPath)
	s.printf("-- generated at: %s\n", s.Now().UTC().Format(time.RFC3339))
	if p := d.Preamble(); p != "" {
		s.printf("%s\n", p)
	}
	s.printf("\n")
}

// TableHeader opens a table section with the matched row count for
// reviewer context.
func (s *Writer) TableHeader(t schema.TableID, rowCount int64) {
	s.printf("-- table: %s (%d rows matched)\n", t.QualifiedName(), rowCount)
}

// Comment writes a single comment line, used for per-table errors and
// skips so the script records what was attempted.
func (s *Writer) Comment(format string, args ...any) {
	s.printf("-- "+format+"\n", args...)
}

// Statement writes one generated statement, terminated and separated.
func (s *Writer) Statement(g statement.Generated) {
	s.printf("%s;\n\n", g.SQL)
	if s.err == nil {
		s.statements++
	}
}

// DeleteTrailer closes a delete script. Both outcomes are left
// commented out: the reviewer decides.
func (s *Writer) DeleteTrailer() {
	s.printf("-- COMMIT;\n-- ROLLBACK;\n")
}

// CommitTrailer closes an upsert script with a live COMMIT, since
// re-applying the same upserts is idempotent.
func (s *Writer) CommitTrailer() {
	s.printf("COMMIT;\n")
}

// Count reports how many statements were written.
func (s *Writer) Count() int {
	return s.statements
}

func (s *Writer) Err() error {
	return s.err
}
