// Package batch drives comparisons over a work-list of document pairs. A
// pair that can't be read or parsed is logged & skipped, every other pair
// still contributes its differences to the report.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
	"github.com/qri-io/docdiff/report"
	"github.com/qri-io/docdiff/source"
	"github.com/qri-io/docdiff/worklist"
	"golang.org/x/sync/errgroup"
)

// MarkupReader reads markup documents by name
type MarkupReader interface {
	ReadMarkup(ctx context.Context, name string) (*docdiff.Element, error)
}

// ObjectReader reads nested-object documents by name
type ObjectReader interface {
	ReadObject(ctx context.Context, name string) (interface{}, error)
}

// DocumentReader reads both kinds of document
type DocumentReader interface {
	MarkupReader
	ObjectReader
}

// Runner compares document pairs & hands the accumulated differences to a
// report sink
type Runner struct {
	dd      *docdiff.DocDiff
	logger  *slog.Logger
	workers int
	metrics *Metrics
}

// Option configures a Runner
type Option func(r *Runner)

// OptionLogger sets the logger runs are reported to
func OptionLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// OptionWorkers sets how many pairs are compared at once. Report order is
// always work-list order
func OptionWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// OptionMetrics records every pair in m
func OptionMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// New creates a Runner comparing with the rules & exclusions of dd. Stats
// configured on dd are not updated, runs report stats in their Result
func New(dd *docdiff.DocDiff, opts ...Option) *Runner {
	r := &Runner{dd: dd, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	if r.dd == nil {
		r.dd = docdiff.New()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// Result summarizes a run
type Result struct {
	RunID string
	// Pairs is the length of the work-list
	Pairs int
	// Compared & Skipped count pairs that did & didn't produce a comparison.
	// Pairs never started because the context ended count as neither
	Compared int
	Skipped  int
	Stats    docdiff.Stats
	// Records are every difference found, in work-list order
	Records []report.Record
}

// Differences returns the differences of all records
func (r *Result) Differences() docdiff.Differences {
	ds := make(docdiff.Differences, len(r.Records))
	for i, rec := range r.Records {
		ds[i] = rec.Difference
	}
	return ds
}

// compareFunc reads & compares a single pair
type compareFunc func(ctx context.Context, log *slog.Logger, p worklist.Pair) (docdiff.Differences, docdiff.Stats, error)

// Markup compares pairs of markup documents read from src
func (r *Runner) Markup(ctx context.Context, src MarkupReader, pairs []worklist.Pair, sink report.Sink) (*Result, error) {
	return r.run(ctx, pairs, sink, r.markup(src))
}

// Objects compares pairs of nested-object documents read from src
func (r *Runner) Objects(ctx context.Context, src ObjectReader, pairs []worklist.Pair, sink report.Sink) (*Result, error) {
	return r.run(ctx, pairs, sink, r.objects(src))
}

// Documents compares pairs whose kind is picked from the reference file
// extension: .xml & .html files as markup, .json & .yaml as nested objects
func (r *Runner) Documents(ctx context.Context, src DocumentReader, pairs []worklist.Pair, sink report.Sink) (*Result, error) {
	markup, objects := r.markup(src), r.objects(src)
	return r.run(ctx, pairs, sink, func(ctx context.Context, log *slog.Logger, p worklist.Pair) (docdiff.Differences, docdiff.Stats, error) {
		switch f := source.FormatOf(p.Reference); {
		case f.Markup():
			return markup(ctx, log, p)
		case f != "":
			return objects(ctx, log, p)
		}
		return nil, docdiff.Stats{}, errors.Errorf("unsupported document format: %s", p.Reference)
	})
}

func (r *Runner) markup(src MarkupReader) compareFunc {
	return func(ctx context.Context, log *slog.Logger, p worklist.Pair) (docdiff.Differences, docdiff.Stats, error) {
		ref, err := src.ReadMarkup(ctx, p.Reference)
		if err != nil {
			return nil, docdiff.Stats{}, err
		}
		cand, err := src.ReadMarkup(ctx, p.Candidate)
		if err != nil {
			return nil, docdiff.Stats{}, err
		}

		rm, cm := r.dd.Flatten(ref), r.dd.Flatten(cand)
		for _, c := range rm.Collisions() {
			log.Warn("Duplicate path, keeping first occurrence", slog.String("document", p.Reference), slog.String("path", c))
		}
		for _, c := range cm.Collisions() {
			log.Warn("Duplicate path, keeping first occurrence", slog.String("document", p.Candidate), slog.String("path", c))
		}

		diffs := docdiff.Compare(rm, cm, r.dd.Exclusions())
		st := docdiff.Stats{
			Left:       rm.Len(),
			Right:      cm.Len(),
			Collisions: len(rm.Collisions()) + len(cm.Collisions()),
		}
		st.Record(diffs)
		return diffs, st, nil
	}
}

func (r *Runner) objects(src ObjectReader) compareFunc {
	return func(ctx context.Context, log *slog.Logger, p worklist.Pair) (docdiff.Differences, docdiff.Stats, error) {
		ref, err := src.ReadObject(ctx, p.Reference)
		if err != nil {
			return nil, docdiff.Stats{}, err
		}
		cand, err := src.ReadObject(ctx, p.Candidate)
		if err != nil {
			return nil, docdiff.Stats{}, err
		}

		rm, rc := docdiff.FlattenObjectCollisions(ref)
		cm, cc := docdiff.FlattenObjectCollisions(cand)
		for _, c := range rc {
			log.Warn("Duplicate key path, keeping first occurrence", slog.String("document", p.Reference), slog.String("path", c))
		}
		for _, c := range cc {
			log.Warn("Duplicate key path, keeping first occurrence", slog.String("document", p.Candidate), slog.String("path", c))
		}

		diffs := docdiff.CompareObjects(rm, cm)
		st := docdiff.Stats{Left: len(rm), Right: len(cm), Collisions: len(rc) + len(cc)}
		st.Record(diffs)
		return diffs, st, nil
	}
}

type outcome struct {
	ran   bool
	diffs docdiff.Differences
	stats docdiff.Stats
	err   error
}

// run compares every pair, at most r.workers at a time. Each pair writes to
// its own slot so results are assembled in work-list order no matter which
// pair finishes first. The sink is always called with whatever was
// accumulated, including when ctx ends early
func (r *Runner) run(ctx context.Context, pairs []worklist.Pair, sink report.Sink, compare compareFunc) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Pairs: len(pairs)}
	logger := r.logger.With(slog.String("run", res.RunID))
	logger.Info("Starting batch", slog.Int("pairs", len(pairs)), slog.Int("workers", r.workers))

	outcomes := make([]outcome, len(pairs))
	g := &errgroup.Group{}
	g.SetLimit(r.workers)
	for i, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = r.comparePair(ctx, logger, p, compare)
			return nil
		})
	}
	// pair failures are recorded in outcomes, never returned to the group
	_ = g.Wait()

	for i, o := range outcomes {
		if !o.ran {
			continue
		}
		if o.err != nil {
			res.Skipped++
			continue
		}
		res.Compared++
		res.Stats.Add(o.stats)
		name := pairs[i].String()
		for _, d := range o.diffs {
			res.Records = append(res.Records, report.Record{Pair: name, Difference: d})
		}
	}

	if sink != nil {
		if err := sink.Write(res.Records); err != nil {
			return res, errors.Wrap(err, "failed to write report")
		}
	}

	logger.Info("Finished batch",
		slog.Int("compared", res.Compared),
		slog.Int("skipped", res.Skipped),
		slog.Int("differences", len(res.Records)))

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) comparePair(ctx context.Context, logger *slog.Logger, p worklist.Pair, compare compareFunc) outcome {
	log := logger.With(slog.String("pair", p.String()))
	if p.Line > 0 {
		log = log.With(slog.Int("line", p.Line))
	}
	log.Debug("Comparing pair")

	start := time.Now()
	diffs, st, err := compare(ctx, log, p)
	result := classify(err)
	r.metrics.observe(result, diffs, time.Since(start))

	switch result {
	case resultUnavailable:
		log.Warn("Document unavailable, skipping pair", slog.String("error", err.Error()))
	case resultParseError:
		log.Warn("Failed to parse document, skipping pair", slog.String("error", err.Error()))
	case resultError:
		log.Error("Failed to compare pair", slog.String("error", err.Error()))
	default:
		log.Debug("Compared pair", slog.Int("differences", len(diffs)))
	}

	return outcome{ran: true, diffs: diffs, stats: st, err: err}
}

func classify(err error) string {
	var pe *source.ParseError
	switch {
	case err == nil:
		return resultCompared
	case errors.Is(err, source.ErrUnavailable):
		return resultUnavailable
	case errors.As(err, &pe):
		return resultParseError
	}
	return resultError
}
