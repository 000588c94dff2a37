package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
	"github.com/qri-io/docdiff/batch"
	"github.com/qri-io/docdiff/config"
	"github.com/qri-io/docdiff/report"
	"github.com/qri-io/docdiff/source"
	"github.com/qri-io/docdiff/worklist"
	"github.com/spf13/cobra"
)

// app holds everything a comparison mode needs
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	metrics     *batch.Metrics
	metricsFile string
	out         io.Writer
}

func newApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.workers > 0 {
		cfg.Batch.Workers = g.workers
	}

	metricsFile := g.metricsFile
	if metricsFile == "" {
		metricsFile = cfg.Metrics.TextfilePath
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		metrics:     batch.NewMetrics(),
		metricsFile: metricsFile,
		out:         cmd.OutOrStdout(),
	}, nil
}

// runMode runs one of the work-list driven modes with configured paths
func (a *app) runMode(ctx context.Context, mode string) error {
	switch mode {
	case "files":
		return a.compareFiles(ctx, a.cfg.Files.MarkupWorklist, a.cfg.Files.MarkupDir, a.cfg.Report.MarkupOutput)
	case "db":
		return a.compareDatabase(ctx, a.cfg.Database.Worklist, a.cfg.Report.DatabaseOutput)
	case "json":
		return a.compareObjects(ctx, a.cfg.Files.ObjectWorklist, a.cfg.Files.ObjectDir, a.cfg.Report.ObjectOutput)
	}
	return errors.Errorf("unknown mode %q", mode)
}

func (a *app) runner() *batch.Runner {
	path := a.cfg.Exclusions.Path
	excl, err := worklist.ReadExclusionsFile(path)
	switch {
	case errors.Is(err, worklist.ErrConfigMissing):
		a.logger.Warn("Exclusion list not found, comparing every attribute", slog.String("path", path))
	case err != nil:
		a.logger.Warn("Failed to read exclusion list", slog.String("path", path), slog.String("error", err.Error()))
	default:
		a.logger.Debug("Loaded exclusion list", slog.String("path", path), slog.Int("attributes", len(excl)))
	}

	dd := docdiff.New(
		docdiff.OptionRules(a.cfg.Rules),
		docdiff.OptionExclusions(excl),
	)
	return batch.New(dd,
		batch.OptionLogger(a.logger),
		batch.OptionWorkers(a.cfg.Batch.Workers),
		batch.OptionMetrics(a.metrics),
	)
}

// run opens the report at output & hands it to compare
func (a *app) run(output string, compare func(report.Sink) (*batch.Result, error)) error {
	f, err := report.Create(output, report.Options{
		IncludePath: a.cfg.Report.PathColumn(),
		IncludePair: a.cfg.Report.PairColumn(),
	})
	if err != nil {
		return err
	}

	res, err := compare(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "failed to close report")
	}

	if a.metricsFile != "" {
		if merr := a.metrics.WriteTextfile(a.metricsFile); merr != nil {
			a.logger.Warn("Failed to write metrics", slog.String("path", a.metricsFile), slog.String("error", merr.Error()))
		}
	}

	if res != nil {
		fmt.Fprintf(a.out, "compared %d of %d pairs, %d skipped\n", res.Compared, res.Pairs, res.Skipped)
		fmt.Fprint(a.out, docdiff.FormatPrettyStats(&res.Stats))
		fmt.Fprintf(a.out, "all differences saved to %s\n", f.Name())
	}
	return err
}

func (a *app) compareFiles(ctx context.Context, list, dir, output string) error {
	pairs, err := worklist.ReadFile(list, worklist.MarkupFiles)
	if err != nil {
		return err
	}
	r := a.runner()
	return a.run(output, func(sink report.Sink) (*batch.Result, error) {
		return r.Markup(ctx, source.Files{Dir: dir}, pairs, sink)
	})
}

func (a *app) compareObjects(ctx context.Context, list, dir, output string) error {
	pairs, err := worklist.ReadFile(list, worklist.ObjectFiles)
	if err != nil {
		return err
	}
	r := a.runner()
	return a.run(output, func(sink report.Sink) (*batch.Result, error) {
		return r.Objects(ctx, source.Files{Dir: dir}, pairs, sink)
	})
}

func (a *app) compareDatabase(ctx context.Context, list, output string) error {
	pairs, err := worklist.ReadFile(list, worklist.Database)
	if err != nil {
		return err
	}

	dbc := a.cfg.Database
	db, err := source.OpenDB(ctx, dbc.Driver, dbc.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	a.logger.Debug("Connected to database", slog.String("driver", dbc.Driver), slog.String("table", dbc.Table))

	src := source.NewSQL(db, dbc.Driver, dbc.Table, dbc.IDColumn, dbc.ContentColumn)
	r := a.runner()
	return a.run(output, func(sink report.Sink) (*batch.Result, error) {
		return r.Markup(ctx, src, pairs, sink)
	})
}

func (a *app) compareDirs(ctx context.Context, refDir, candDir, pattern, output string) error {
	pairs, err := worklist.Glob(refDir, candDir, pattern)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		a.logger.Warn("No documents matched", slog.String("dir", refDir), slog.String("pattern", pattern))
	}
	r := a.runner()
	return a.run(output, func(sink report.Sink) (*batch.Result, error) {
		return r.Documents(ctx, source.Files{}, pairs, sink)
	})
}
