package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sqldraft/sqldraft/pkg/config"
	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/statement"
	"github.com/sqldraft/sqldraft/pkg/testutils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	columns map[string][]schema.Column
	counts  map[string]int64
	rows    map[string][][]any
}

func (f *fakeStore) Columns(_ context.Context, t schema.TableID) ([]schema.Column, error) {
	cols, ok := f.columns[t.QualifiedName()]
	if !ok {
		return nil, &schema.LookupError{Table: t}
	}
	return cols, nil
}

func (f *fakeStore) CountRows(_ context.Context, t schema.TableID, _ string, _ []statement.Param) (int64, error) {
	return f.counts[t.QualifiedName()], nil
}

func (f *fakeStore) QueryRows(_ context.Context, t schema.TableID, _ []schema.Column, _ string, _ []statement.Param, maxRows int) ([][]any, error) {
	rows := f.rows[t.QualifiedName()]
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	return rows, nil
}

func testConfig(t *testing.T, dialectName string, tables []string, shared map[string]string) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.Database{
			Dialect: dialectName, Host: "h", Port: 1521, Service: "S", Username: "u",
		},
		Tables:             tables,
		SharedValues:       shared,
		Output:             config.Output{File: filepath.Join(t.TempDir(), "out.sql")},
		FallbackKeyColumns: 5,
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, store *fakeStore, provider *testutils.ScriptedProvider) *Runner {
	t.Helper()
	r, err := NewRunner(&Export{Config: "conf.yaml"}, cfg)
	require.NoError(t, err)
	r.SetStore(store)
	r.SetProvider(provider)
	return r
}

func readScript(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	return string(data)
}

func TestRunStatementPerRow(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.emp"}, map[string]string{"ID": "7"})
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 2},
		rows: map[string][][]any{"HR.EMP": {
			{int64(7), "Alice", int64(10), "2020-01-01"},
			{int64(7), "O'Brien", int64(10), nil},
		}},
	}
	provider := &testutils.ScriptedProvider{}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, provider.Prompted)

	out := readScript(t, cfg)
	assert.Equal(t, 2, strings.Count(out, "MERGE INTO HR.EMP"))
	assert.Contains(t, out, "'O''Brien' AS NAME")
	assert.Contains(t, out, "NULL AS HIRED")
	assert.Contains(t, out, "-- table: HR.EMP (2 rows matched)")
	// The trailer is a live COMMIT, not a commented one.
	assert.True(t, strings.HasSuffix(out, "\nCOMMIT;\n"))
	assert.NotContains(t, out, "-- COMMIT;")
	assert.NotContains(t, out, "ROLLBACK")
}

func TestRunZeroRowsLeavesComment(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.emp"}, map[string]string{"ID": "7"})
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 5},
	}
	provider := &testutils.ScriptedProvider{}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	out := readScript(t, cfg)
	assert.NotContains(t, out, "MERGE INTO")
	assert.Contains(t, out, "-- table HR.EMP matched no rows")
}

func TestRunUnfilteredNeedsConfirmation(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.emp"}, nil)
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 4},
		rows: map[string][][]any{"HR.EMP": {
			{int64(1), "A", int64(1), nil},
		}},
	}
	// Skip the key prompt, then decline the full export.
	provider := &testutils.ScriptedProvider{
		Values:        []string{""},
		Confirmations: []bool{false},
	}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	out := readScript(t, cfg)
	assert.NotContains(t, out, "MERGE INTO")
	assert.Contains(t, out, "-- table HR.EMP declined")
}

func TestRunZeroProbeRepromptsSharedColumns(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.emp"}, map[string]string{"ID": "7"})
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 0},
		rows: map[string][][]any{"HR.EMP": {
			{int64(8), "A", int64(1), nil},
		}},
	}
	// The stale shared value matches nothing, so the column is asked
	// again and the corrected answer drives the export.
	provider := &testutils.ScriptedProvider{Values: []string{"8"}}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"ID"}, provider.Prompted)
	assert.Contains(t, readScript(t, cfg), "MERGE INTO HR.EMP")
}

func TestRunSetupPairsFilterWithoutPrompting(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.emp"}, nil)
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 1},
		rows: map[string][][]any{"HR.EMP": {
			{int64(7), "A", int64(1), nil},
		}},
	}
	// The setup loop seeds ID, so the table needs no per-column prompt.
	provider := &testutils.ScriptedProvider{SharedPairs: [][2]string{{"id", "7"}}}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, provider.Prompted)
	assert.Contains(t, readScript(t, cfg), "MERGE INTO HR.EMP")
}

func TestRunMySQLStatementsAreVerified(t *testing.T) {
	cols := []schema.Column{
		{Name: "ID", Type: "int", PrimaryKey: true, OrdinalPosition: 1},
		{Name: "STATUS", Type: "varchar(20)", OrdinalPosition: 2},
	}
	cfg := testConfig(t, "mysql", []string{"shop.orders"}, map[string]string{"ID": "9"})
	store := &fakeStore{
		columns: map[string][]schema.Column{"SHOP.ORDERS": cols},
		counts:  map[string]int64{"SHOP.ORDERS": 1},
		rows: map[string][][]any{"SHOP.ORDERS": {
			{int64(9), "shipped"},
		}},
	}
	provider := &testutils.ScriptedProvider{}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	out := readScript(t, cfg)
	assert.Contains(t, out, "INSERT INTO SHOP.ORDERS")
	assert.Contains(t, out, "ON DUPLICATE KEY UPDATE")
}

func TestRunMaxRowsCapsExport(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.emp"}, map[string]string{"ID": "7"})
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 3},
		rows: map[string][][]any{"HR.EMP": {
			{int64(7), "A", int64(1), nil},
			{int64(7), "B", int64(1), nil},
			{int64(7), "C", int64(1), nil},
		}},
	}
	provider := &testutils.ScriptedProvider{}
	r, err := NewRunner(&Export{Config: "conf.yaml", MaxRows: 2}, cfg)
	require.NoError(t, err)
	r.SetStore(store)
	r.SetProvider(provider)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(readScript(t, cfg), "MERGE INTO HR.EMP"))
}

func TestRunBadTableContinues(t *testing.T) {
	cfg := testConfig(t, "oracle", []string{"hr.gone", "hr.emp"}, map[string]string{"ID": "7"})
	store := &fakeStore{
		columns: map[string][]schema.Column{"HR.EMP": testutils.EmployeeColumns()},
		counts:  map[string]int64{"HR.EMP": 1},
		rows: map[string][][]any{"HR.EMP": {
			{int64(7), "A", int64(1), nil},
		}},
	}
	provider := &testutils.ScriptedProvider{}
	r := newTestRunner(t, cfg, store, provider)

	require.NoError(t, r.Run(context.Background()))
	out := readScript(t, cfg)
	assert.Contains(t, out, "-- table hr.gone skipped:")
	assert.Contains(t, out, "MERGE INTO HR.EMP")
}
