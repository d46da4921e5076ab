package filter

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/testutils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSharedValues(t *testing.T) {
	s := NewSharedValues(map[string]string{"dept_id": "10", "empty": ""})
	assert.Equal(t, 1, s.Len())

	v, ok := s.Get("DEPT_ID")
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	v, ok = s.Get("dept_id")
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	_, ok = s.Get("EMPTY")
	assert.False(t, ok)

	s.Set("region", "EMEA")
	assert.Equal(t, []string{"DEPT_ID", "REGION"}, s.Names())
}

func TestProcessedTables(t *testing.T) {
	p := NewProcessedTables()
	assert.False(t, p.Contains("HR.EMP"))
	p.Add("HR.EMP")
	assert.True(t, p.Contains("HR.EMP"))
	p.Add("HR.EMP")
	assert.Equal(t, 1, p.Len())
}

func TestNeedsPrompt(t *testing.T) {
	assert.False(t, NeedsPrompt(false, 42, true))
	assert.True(t, NeedsPrompt(true, 42, true))
	assert.True(t, NeedsPrompt(false, 0, true))
	assert.True(t, NeedsPrompt(false, 42, false))
}

func TestApplySharedPropagatesWithoutPrompt(t *testing.T) {
	shared := NewSharedValues(map[string]string{"DEPT_ID": "10"})
	cols := testutils.EmployeeColumns()
	keyCols := []schema.Column{cols[0], cols[2]}

	filters := ApplyShared(shared, keyCols, logrus.New())
	require.NotNil(t, filters)
	assert.Equal(t, map[string]any{"DEPT_ID": int64(10)}, filters)
}

func TestApplySharedSkipsNonCoercible(t *testing.T) {
	shared := NewSharedValues(map[string]string{"HIRED": "not-a-date"})
	cols := testutils.EmployeeColumns()

	filters := ApplyShared(shared, cols, logrus.New())
	assert.Nil(t, filters)
}

func TestCollectPromptsInOrdinalOrder(t *testing.T) {
	provider := &testutils.ScriptedProvider{Values: []string{"7", "Smith", "10", "2024-12-25"}}
	c := NewCollector(provider, NewSharedValues(nil), nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "NAME", "DEPT_ID", "HIRED"}, provider.Prompted)
	assert.Equal(t, map[string]any{
		"ID":      int64(7),
		"NAME":    "Smith",
		"DEPT_ID": int64(10),
		"HIRED":   "2024-12-25",
	}, filters)
}

func TestCollectEmptySkipsColumn(t *testing.T) {
	provider := &testutils.ScriptedProvider{Values: []string{"", "Smith", "", ""}}
	c := NewCollector(provider, NewSharedValues(nil), nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"NAME": "Smith"}, filters)
}

func TestCollectTerminatorKeepsCollected(t *testing.T) {
	provider := &testutils.ScriptedProvider{Values: []string{"7", "x"}}
	c := NewCollector(provider, NewSharedValues(nil), nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	// Lowercase terminator works, and remaining columns are not asked.
	assert.Equal(t, []string{"ID", "NAME"}, provider.Prompted)
	assert.Equal(t, map[string]any{"ID": int64(7)}, filters)
}

func TestCollectRejectsThenReprompts(t *testing.T) {
	provider := &testutils.ScriptedProvider{Values: []string{"abc", "7", "", "", ""}}
	c := NewCollector(provider, NewSharedValues(nil), nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	// ID asked twice: once rejected, once accepted.
	assert.Equal(t, []string{"ID", "ID", "NAME", "DEPT_ID", "HIRED"}, provider.Prompted)
	assert.Equal(t, map[string]any{"ID": int64(7)}, filters)
}

func TestCollectReusesSharedWithoutPrompting(t *testing.T) {
	shared := NewSharedValues(map[string]string{"DEPT_ID": "10"})
	provider := &testutils.ScriptedProvider{Values: []string{"", "", ""}}
	c := NewCollector(provider, shared, nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	assert.NotContains(t, provider.Prompted, "DEPT_ID")
	assert.Equal(t, map[string]any{"DEPT_ID": int64(10)}, filters)
}

func TestCollectRefreshIgnoresShared(t *testing.T) {
	shared := NewSharedValues(map[string]string{"DEPT_ID": "10"})
	provider := &testutils.ScriptedProvider{Values: []string{"", "", "20", ""}}
	c := NewCollector(provider, shared, nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, true)
	require.NoError(t, err)
	// Every column is re-asked, and the new answer replaces the shared
	// value.
	assert.Contains(t, provider.Prompted, "DEPT_ID")
	assert.Equal(t, map[string]any{"DEPT_ID": int64(20)}, filters)

	v, _ := shared.Get("DEPT_ID")
	assert.Equal(t, "20", v)
}

func TestCollectAnswersStayTableLocal(t *testing.T) {
	shared := NewSharedValues(nil)
	provider := &testutils.ScriptedProvider{Values: []string{"7", "", "", ""}}
	c := NewCollector(provider, shared, nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ID": int64(7)}, filters)

	// A one-off prompt answer must not leak into later tables that
	// happen to share the column name.
	_, ok := shared.Get("ID")
	assert.False(t, ok)
	assert.Equal(t, 0, shared.Len())
}

func TestCollectRefreshRecordsAnswers(t *testing.T) {
	shared := NewSharedValues(map[string]string{"ID": "7"})
	provider := &testutils.ScriptedProvider{Values: []string{"8", "", "", ""}}
	c := NewCollector(provider, shared, nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 0, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ID": int64(8)}, filters)

	// The refresh answer replaces the stale shared value.
	v, ok := shared.Get("ID")
	assert.True(t, ok)
	assert.Equal(t, "8", v)
}

func TestCollectAllSkippedReturnsNil(t *testing.T) {
	provider := &testutils.ScriptedProvider{Values: []string{"", "", "", ""}}
	c := NewCollector(provider, NewSharedValues(nil), nil)

	tab := schema.TableID{Owner: "HR", Name: "EMP"}
	filters, err := c.Collect(tab, testutils.EmployeeColumns(), 100, false)
	require.NoError(t, err)
	assert.Nil(t, filters)
}

func TestSetupSeedsSharedStore(t *testing.T) {
	shared := NewSharedValues(map[string]string{"DEPT_ID": "10"})
	provider := &testutils.ScriptedProvider{SharedPairs: [][2]string{
		{"region", "EMEA"},
		{"dept_id", "20"},
	}}
	c := NewCollector(provider, shared, nil)
	require.NoError(t, c.Setup())

	v, ok := shared.Get("REGION")
	assert.True(t, ok)
	assert.Equal(t, "EMEA", v)

	// Later pairs overwrite earlier seeds.
	v, ok = shared.Get("DEPT_ID")
	assert.True(t, ok)
	assert.Equal(t, "20", v)
	assert.Equal(t, 2, shared.Len())
}

func TestFallbackKeyColumns(t *testing.T) {
	cols := testutils.WideUnkeyedColumns()
	keys := schema.KeyColumns(cols, 5)
	require.Len(t, keys, 5)
	assert.Equal(t, []string{"C1", "C2", "C3", "C4", "C5"}, schema.Names(keys))

	// Declared keys win over the fallback.
	keyed := testutils.EmployeeColumns()
	keys = schema.KeyColumns(keyed, 5)
	require.Len(t, keys, 1)
	assert.Equal(t, "ID", keys[0].Name)

	// Fallback never exceeds the column count.
	keys = schema.KeyColumns(cols[:3], 5)
	assert.Len(t, keys, 3)
}
