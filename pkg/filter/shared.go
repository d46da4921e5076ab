package filter

import (
	"sort"
	"strings"
)

// SharedValues is the run-scoped store of filter values reused across
// every table that has a column of the same name. Keys are uppercased
// column names. The store is created once per run, grows as values are
// added interactively, and never shrinks. Not safe for concurrent use;
// the run is single-threaded by design.
type SharedValues struct {
	values map[string]string
}

// NewSharedValues seeds the store from declarative configuration.
// Entries with empty values are dropped.
func NewSharedValues(seed map[string]string) *SharedValues {
	s := &SharedValues{values: make(map[string]string)}
	for name, v := range seed {
		s.Set(name, v)
	}
	return s
}

// Set records a raw value under the uppercased column name. Empty
// values are ignored rather than stored as empty filters.
func (s *SharedValues) Set(column, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	s.values[strings.ToUpper(strings.TrimSpace(column))] = raw
}

// Get looks up the raw value for a column name, case-insensitively.
func (s *SharedValues) Get(column string) (string, bool) {
	v, ok := s.values[strings.ToUpper(column)]
	return v, ok
}

func (s *SharedValues) Len() int {
	return len(s.values)
}

// Names returns the stored column names, sorted for stable output.
func (s *SharedValues) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProcessedTables is the set of qualified table identifiers already
// handled in the current run. A repeated table forces re-prompting:
// the shared-value shortcut may be stale for it.
type ProcessedTables struct {
	seen map[string]struct{}
}

func NewProcessedTables() *ProcessedTables {
	return &ProcessedTables{seen: make(map[string]struct{})}
}

func (p *ProcessedTables) Add(qualifiedName string) {
	p.seen[qualifiedName] = struct{}{}
}

func (p *ProcessedTables) Contains(qualifiedName string) bool {
	_, ok := p.seen[qualifiedName]
	return ok
}

func (p *ProcessedTables) Len() int {
	return len(p.seen)
}
