package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
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

const defaultOutputFile = "export.sql"

// datastore is the slice of dbconn.Store the runner needs. Tests
// substitute a fake.
type datastore interface {
	Columns(ctx context.Context, t schema.TableID) ([]schema.Column, error)
	CountRows(ctx context.Context, t schema.TableID, whereClause string, params []statement.Param) (int64, error)
	QueryRows(ctx context.Context, t schema.TableID, columns []schema.Column, whereClause string, params []statement.Param, maxRows int) ([][]any, error)
}

type Runner struct {
	cmd       *Export
	cfg       *config.Config
	dialect   dialect.Dialect
	store     datastore
	provider  filter.ValueProvider
	collector *filter.Collector
	shared    *filter.SharedValues
	processed *filter.ProcessedTables

	status       status.State // must use atomic helpers to change.
	currentTable string

	// Track some key statistics.
	startTime       time.Time
	tablesProcessed int64
	rowsFetched     int64
	tableFailures   int64
	statements      int64

	logger      *slog.Logger
	metricsSink metrics.Sink
}

func NewRunner(cmd *Export, cfg *config.Config) (*Runner, error) {
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

func (r *Runner) Progress() status.Progress {
	return status.Progress{
		CurrentState: r.status.Get(),
		Table:        r.currentTable,
		Summary: fmt.Sprintf("%d/%d tables, %d statements",
			r.tablesProcessed, len(r.cfg.NonBlankTables()), r.statements),
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

	// Shared values beyond the config are gathered up front, before
	// the first table is touched.
	if err := r.collector.Setup(); err != nil {
		return err
	}

	outPath := r.cfg.Output.File
	if outPath == "" {
		outPath = defaultOutputFile
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	w := script.NewWriter(f)
	w.Header("sqldraft export", r.cmd.Config, r.dialect)

	if err := r.run(ctx, w); err != nil {
		_ = f.Close()
		return err
	}
	// Upserts are safe to commit as written, unlike deletes.
	w.CommitTrailer()
	if err := w.Err(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.sendMetrics(w.Count())
	r.logger.Info("export script written",
		"file", outPath,
		"statements", w.Count(),
		"tables", r.tablesProcessed,
		"rows", r.rowsFetched,
		"failures", r.tableFailures,
		"runtime", time.Since(r.startTime).String(),
	)
	return nil
}

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
	if clause == "" {
		matched, err := r.store.CountRows(ctx, t, "", nil)
		if err != nil {
			return err
		}
		ok, err := r.provider.Confirm(fmt.Sprintf("no filters set, export ALL %d rows from %s?", matched, t.QualifiedName()))
		if err != nil {
			return err
		}
		if !ok {
			r.logger.Info("table declined", "table", t.QualifiedName())
			w.Comment("table %s declined, no rows exported", t.QualifiedName())
			return nil
		}
	}
	r.status.Set(status.Confirmed)

	rows, err := r.store.QueryRows(ctx, t, columns, clause, params, r.cmd.MaxRows)
	if err != nil {
		return err
	}
	r.status.Set(status.Counted)
	if len(rows) == 0 {
		r.logger.Info("no rows matched", "table", t.QualifiedName())
		w.Comment("table %s matched no rows", t.QualifiedName())
		return nil
	}

	builder := statement.NewMergeBuilder(r.dialect, t, columns)
	if builder.Unkeyed() {
		r.logger.Warn("table has no primary key, statements are insert-only",
			"table", t.QualifiedName())
	}
	statements := builder.Rows(rows)
	if r.dialect.Name() == "mysql" {
		for _, stmt := range statements {
			if err := statement.VerifyMySQL(stmt.SQL); err != nil {
				return err
			}
		}
	}
	r.status.Set(status.Assembled)

	w.TableHeader(t, int64(len(rows)))
	for _, stmt := range statements {
		w.Statement(stmt)
	}
	r.rowsFetched += int64(len(rows))
	r.statements += int64(len(statements))
	r.status.Set(status.Written)
	return nil
}

// resolveFilters mirrors the delete flow: probe with shared values,
// then collect interactively only when needed.
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

func (r *Runner) sendMetrics(statements int) {
	ctx, cancel := context.WithTimeout(context.Background(), metrics.SinkTimeout)
	defer cancel()
	err := r.metricsSink.Send(ctx, &metrics.Metrics{Values: []metrics.MetricValue{
		{Name: metrics.TablesProcessedMetricName, Value: float64(r.tablesProcessed), Type: metrics.COUNTER},
		{Name: metrics.StatementsGeneratedMetricName, Value: float64(statements), Type: metrics.COUNTER},
		{Name: metrics.RowsFetchedMetricName, Value: float64(r.rowsFetched), Type: metrics.COUNTER},
		{Name: metrics.TableFailuresMetricName, Value: float64(r.tableFailures), Type: metrics.COUNTER},
	}})
	if err != nil {
		r.logger.Warn("metrics sink send failed", "error", err)
	}
}
