package deletion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sqldraft/sqldraft/pkg/config"
	"github.com/sqldraft/sqldraft/pkg/dbconn"
	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/filter"
	"github.com/sqldraft/sqldraft/pkg/metrics"
	"github.com/sqldraft/sqldraft/pkg/prompt"
	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/script"
	"github.com/sqldraft/sqldraft/pkg/statement"
	"github.com/sqldraft/sqldraft/pkg/status"
)

const (
	defaultOutputFile  = "delete.sql"
	previewValueWidth  = 20
	previewNullLiteral = "NULL"
)

// datastore is the slice of dbconn.Store the runner needs. Tests
// substitute a fake.
type datastore interface {
	Columns(ctx context.Context, t schema.TableID) ([]schema.Column, error)
	CountRows(ctx context.Context, t schema.TableID, whereClause string, params []statement.Param) (int64, error)
	QueryRows(ctx context.Context, t schema.TableID, columns []schema.Column, whereClause string, params []statement.Param, maxRows int) ([][]any, error)
	Exec(ctx context.Context, stmts ...string) (int64, error)
}

type Runner struct {
	cmd       *Delete
	cfg       *config.Config
	dialect   dialect.Dialect
	store     datastore
	provider  filter.ValueProvider
	collector *filter.Collector
	shared    *filter.SharedValues
	processed *filter.ProcessedTables

	status       status.State // must use atomic helpers to change.
	currentTable string

	// out receives row previews; the script goes to the output file.
	out io.Writer

	// Track some key statistics.
	startTime       time.Time
	tablesProcessed int64
	rowsMatched     int64
	tableFailures   int64
	executed        []string

	logger      *slog.Logger
	metricsSink metrics.Sink
}

func NewRunner(cmd *Delete, cfg *config.Config) (*Runner, error) {
	d, err := dialect.New(cfg.Database.Dialect)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cmd:         cmd,
		cfg:         cfg,
		dialect:     d,
		shared:      filter.NewSharedValues(cfg.SharedValues),
		processed:   filter.NewProcessedTables(),
		out:         os.Stdout,
		logger:      slog.Default(),
		metricsSink: &metrics.NoopSink{},
	}, nil
}

func (r *Runner) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

func (r *Runner) SetMetricsSink(sink metrics.Sink) {
	r.metricsSink = sink
}

// SetProvider replaces the console prompt, used by tests.
func (r *Runner) SetProvider(p filter.ValueProvider) {
	r.provider = p
}

// SetStore replaces the database-backed store, used by tests.
func (r *Runner) SetStore(s datastore) {
	r.store = s
}

// SetPreviewOutput redirects row previews away from stdout.
func (r *Runner) SetPreviewOutput(w io.Writer) {
	r.out = w
}

func (r *Runner) Progress() status.Progress {
	return status.Progress{
		CurrentState: r.status.Get(),
		Table:        r.currentTable,
		Summary: fmt.Sprintf("%d/%d tables, %d statements",
			r.tablesProcessed, len(r.cfg.NonBlankTables()), len(r.executed)),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	r.startTime = time.Now()
	if r.store == nil {
		store, err := dbconn.NewStore(r.dialect, r.cfg.ConnParams(), dbconn.NewDBConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		r.store = store
	}
	if r.provider == nil {
		r.provider = prompt.NewConsole(os.Stdin, os.Stdout)
	}
	r.collector = filter.NewCollector(r.provider, r.shared, nil)

	outPath := r.cfg.Output.File
	if outPath == "" {
		outPath = defaultOutputFile
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	w := script.NewWriter(f)
	w.Header("sqldraft delete", r.cmd.Config, r.dialect)

	if err := r.run(ctx, w); err != nil {
		_ = f.Close()
		return err
	}
	w.DeleteTrailer()
	if err := w.Err(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.sendMetrics(w.Count())
	r.logger.Info("delete script written",
		"file", outPath,
		"statements", w.Count(),
		"tables", r.tablesProcessed,
		"failures", r.tableFailures,
		"runtime", time.Since(r.startTime).String(),
	)
	if r.cmd.Execute {
		return r.execute(ctx)
	}
	return nil
}

// run walks every configured table. A failed table is recorded in the
// script and the run moves on; only prompt stream failures are fatal.
func (r *Runner) run(ctx context.Context, w *script.Writer) error {
	for _, spec := range r.cfg.NonBlankTables() {
		r.currentTable = spec
		if err := r.processTable(ctx, w, spec); err != nil {
			if filter.IsAborted(err) {
				return err
			}
			r.tableFailures++
			r.status.Set(status.Failed)
			r.logger.Error("table skipped", "table", spec, "error", err)
			w.Comment("table %s skipped: %v", spec, err)
		}
		r.tablesProcessed++
	}
	return nil
}

func (r *Runner) processTable(ctx context.Context, w *script.Writer, spec string) error {
	r.status.Set(status.Initial)
	t, err := schema.ParseTableSpec(spec)
	if err != nil {
		return err
	}
	columns, err := r.store.Columns(ctx, t)
	if err != nil {
		return err
	}
	r.status.Set(status.SchemaResolved)
	keyColumns := schema.KeyColumns(columns, r.cfg.FallbackKeyColumns)

	filters, err := r.resolveFilters(ctx, t, keyColumns)
	if err != nil {
		return err
	}
	r.status.Set(status.FiltersResolved)
	r.processed.Add(t.QualifiedName())

	clause, params := statement.BuildWhere(r.dialect, keyColumns, filters)
	matched, err := r.store.CountRows(ctx, t, clause, params)
	if err != nil {
		return err
	}
	r.status.Set(status.Counted)
	if matched == 0 {
		r.logger.Info("no rows matched", "table", t.QualifiedName())
		w.Comment("table %s matched no rows", t.QualifiedName())
		return nil
	}

	if err := r.preview(ctx, t, columns, clause, params); err != nil {
		return err
	}
	question := fmt.Sprintf("delete %d rows from %s?", matched, t.QualifiedName())
	if clause == "" {
		question = fmt.Sprintf("no filters set, delete ALL %d rows from %s?", matched, t.QualifiedName())
	}
	ok, err := r.provider.Confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Info("table declined", "table", t.QualifiedName())
		w.Comment("table %s declined, no statement generated", t.QualifiedName())
		return nil
	}
	r.status.Set(status.Confirmed)

	stmt := statement.BuildDelete(t, clause)
	if r.dialect.Name() == "mysql" {
		if err := statement.VerifyMySQL(stmt.SQL); err != nil {
			return err
		}
	}
	r.status.Set(status.Assembled)

	w.TableHeader(t, matched)
	w.Statement(stmt)
	r.rowsMatched += matched
	// Execution cannot prompt for binds, so the executable copy embeds
	// the values as literals.
	r.executed = append(r.executed,
		statement.BuildDelete(t, statement.BuildWhereLiterals(r.dialect, keyColumns, filters)).SQL)
	r.status.Set(status.Written)
	return nil
}

// resolveFilters probes the table with shared values and decides
// whether interactive collection is still needed. A failed probe only
// degrades the prompt context, so it is logged and treated as zero.
func (r *Runner) resolveFilters(ctx context.Context, t schema.TableID, keyColumns []schema.Column) (map[string]any, error) {
	sharedFilters := r.collector.Shared(keyColumns)
	clause, params := statement.BuildWhere(r.dialect, keyColumns, sharedFilters)
	rowCount, err := r.store.CountRows(ctx, t, clause, params)
	if err != nil {
		r.logger.Warn("row count probe failed", "table", t.QualifiedName(), "error", err)
		rowCount = 0
	}
	repeated := r.processed.Contains(t.QualifiedName())
	if !filter.NeedsPrompt(repeated, rowCount, sharedFilters != nil) {
		return sharedFilters, nil
	}
	// A zero-row probe means the shared values missed this table, so
	// they are asked again instead of silently reused.
	return r.collector.Collect(t, keyColumns, rowCount, repeated || rowCount == 0)
}

// preview shows the first rows a filter matches so the reviewer can
// sanity check before confirming.
func (r *Runner) preview(ctx context.Context, t schema.TableID, columns []schema.Column, clause string, params []statement.Param) error {
	if r.cfg.PreviewRows <= 0 {
		return nil
	}
	rows, err := r.store.QueryRows(ctx, t, columns, clause, params, r.cfg.PreviewRows)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s\n", strings.Join(schema.Names(columns), " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = previewValue(v)
		}
		fmt.Fprintf(r.out, "%s\n", strings.Join(cells, " | "))
	}
	return nil
}

// previewValue renders one cell, NULL for nil and truncated to keep
// the table readable.
func previewValue(v any) string {
	if v == nil {
		return previewNullLiteral
	}
	s := fmt.Sprintf("%v", v)
	if len(s) > previewValueWidth {
		return s[:previewValueWidth]
	}
	return s
}

// execute runs the generated statements in one transaction after a
// final confirmation.
func (r *Runner) execute(ctx context.Context) error {
	if len(r.executed) == 0 {
		r.logger.Info("nothing to execute")
		return nil
	}
	ok, err := r.provider.Confirm(fmt.Sprintf("execute %d statements now?", len(r.executed)))
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Info("execution declined, script is still written")
		return nil
	}
	affected, err := r.store.Exec(ctx, r.executed...)
	if err != nil {
		return err
	}
	r.logger.Info("statements executed", "affected", affected)
	return nil
}

func (r *Runner) sendMetrics(statements int) {
	ctx, cancel := context.WithTimeout(context.Background(), metrics.SinkTimeout)
	defer cancel()
	err := r.metricsSink.Send(ctx, &metrics.Metrics{Values: []metrics.MetricValue{
		{Name: metrics.TablesProcessedMetricName, Value: float64(r.tablesProcessed), Type: metrics.COUNTER},
		{Name: metrics.StatementsGeneratedMetricName, Value: float64(statements), Type: metrics.COUNTER},
		{Name: metrics.RowsFetchedMetricName, Value: float64(r.rowsMatched), Type: metrics.COUNTER},
		{Name: metrics.TableFailuresMetricName, Value: float64(r.tableFailures), Type: metrics.COUNTER},
	}})
	if err != nil {
		r.logger.Warn("metrics sink send failed", "error", err)
	}
}
