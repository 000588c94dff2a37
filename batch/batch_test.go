package batch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/qri-io/docdiff"
	"github.com/qri-io/docdiff/report"
	"github.com/qri-io/docdiff/source"
	"github.com/qri-io/docdiff/worklist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docs is an in-memory DocumentReader keyed by document name
type docs map[string]string

func (d docs) ReadMarkup(ctx context.Context, name string) (*docdiff.Element, error) {
	s, ok := d[name]
	if !ok {
		return nil, errors.Wrap(source.ErrUnavailable, name)
	}
	return source.ParseMarkup(name, strings.NewReader(s), source.FormatOf(name))
}

func (d docs) ReadObject(ctx context.Context, name string) (interface{}, error) {
	s, ok := d[name]
	if !ok {
		return nil, errors.Wrap(source.ErrUnavailable, name)
	}
	return source.ParseObject(name, strings.NewReader(s), source.FormatOf(name))
}

type memSink struct {
	calls   int
	records []report.Record
	err     error
}

func (s *memSink) Write(records []report.Record) error {
	s.calls++
	s.records = records
	return s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

var markupDocs = docs{
	"1a.xml": `<Order><Status>OK</Status></Order>`,
	"1b.xml": `<Order><Status>FAIL</Status></Order>`,
	"2a.xml": `<Order/>`,
	"2b.xml": `<Order><unclosed></Order>`,
	"3a.xml": `<Order id="1"/>`,
	"3b.xml": `<Order id="2"/>`,
}

var markupPairs = []worklist.Pair{
	{Reference: "1a.xml", Candidate: "1b.xml", Line: 2},
	{Reference: "2a.xml", Candidate: "2b.xml", Line: 3},
	{Reference: "3a.xml", Candidate: "3b.xml", Line: 4},
}

func TestMarkupSkipsFailedPairs(t *testing.T) {
	m := NewMetrics()
	sink := &memSink{}
	res, err := New(nil, OptionLogger(quietLogger()), OptionMetrics(m)).
		Markup(context.Background(), markupDocs, markupPairs, sink)
	require.NoError(t, err)

	expect := []report.Record{
		{Pair: "1a.xml vs 1b.xml", Difference: docdiff.Difference{
			Label: "(text)", Kind: docdiff.KindTextMismatch, Reference: "OK", Candidate: "FAIL", Path: "/Order[1]/Status[1]",
		}},
		{Pair: "3a.xml vs 3b.xml", Difference: docdiff.Difference{
			Label: "id", Kind: docdiff.KindAttrMismatch, Reference: "1", Candidate: "2", Path: "/Order[1]",
		}},
	}
	assert.Equal(t, expect, res.Records)
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, expect, sink.records)

	assert.Equal(t, 3, res.Pairs)
	assert.Equal(t, 2, res.Compared)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Stats.TextMismatches)
	assert.Equal(t, 1, res.Stats.AttrMismatches)
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pairs.WithLabelValues(resultCompared)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pairs.WithLabelValues(resultParseError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.differences.WithLabelValues(string(docdiff.KindTextMismatch))))
}

func TestMarkupUnavailable(t *testing.T) {
	m := NewMetrics()
	pairs := []worklist.Pair{
		{Reference: "missing.xml", Candidate: "1b.xml"},
		{Reference: "1a.xml", Candidate: "1a.xml"},
	}
	sink := &memSink{}
	res, err := New(nil, OptionLogger(quietLogger()), OptionMetrics(m)).
		Markup(context.Background(), markupDocs, pairs, sink)
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	assert.Equal(t, 1, sink.calls, "the sink is called even without differences")
	assert.Equal(t, 1, res.Compared)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pairs.WithLabelValues(resultUnavailable)))
}

func TestMarkupUsesRulesAndExclusions(t *testing.T) {
	d := docs{
		"a.xml": `<Order ts="1"><Audit>x</Audit><Item>1</Item></Order>`,
		"b.xml": `<Order ts="2"><Line>1</Line></Order>`,
	}
	dd := docdiff.New(
		docdiff.OptionRules(docdiff.Rules{
			TagRenames:  map[string]string{"Item": "Line"},
			IgnoredTags: []string{"Audit"},
		}),
		docdiff.OptionExclusions(docdiff.NewExclusionSet("ts")),
	)

	res, err := New(dd, OptionLogger(quietLogger())).
		Markup(context.Background(), d, []worklist.Pair{{Reference: "a.xml", Candidate: "b.xml"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 2, res.Stats.Left)
}

func TestWorkersKeepWorklistOrder(t *testing.T) {
	d := docs{}
	var pairs []worklist.Pair
	for i := 0; i < 40; i++ {
		ref, cand := fmt.Sprintf("%d-a.xml", i), fmt.Sprintf("%d-b.xml", i)
		d[ref] = fmt.Sprintf(`<Order n="%d"><Line>a</Line></Order>`, i)
		d[cand] = fmt.Sprintf(`<Order n="x%d"><Line>b</Line><Extra/></Order>`, i)
		pairs = append(pairs, worklist.Pair{Reference: ref, Candidate: cand})
	}

	sequential, err := New(nil, OptionLogger(quietLogger())).Markup(context.Background(), d, pairs, nil)
	require.NoError(t, err)
	require.Len(t, sequential.Records, 120)

	for i := 0; i < 5; i++ {
		parallel, err := New(nil, OptionLogger(quietLogger()), OptionWorkers(8)).Markup(context.Background(), d, pairs, nil)
		require.NoError(t, err)
		assert.Equal(t, sequential.Records, parallel.Records)
		assert.Equal(t, sequential.Stats, parallel.Stats)
	}
}

func TestObjects(t *testing.T) {
	d := docs{
		"a.json": `{"id": 1, "items": [{"sku": "a"}], "tags": []}`,
		"b.yaml": "id: 2\nitems:\n  - sku: a\nextra: true\n",
	}
	res, err := New(nil, OptionLogger(quietLogger())).
		Objects(context.Background(), d, []worklist.Pair{{Reference: "a.json", Candidate: "b.yaml"}}, nil)
	require.NoError(t, err)

	expect := docdiff.Differences{
		{Label: "extra", Kind: docdiff.KindMissingKey, Reference: "-", Candidate: "true", Path: "extra"},
		{Label: "id", Kind: docdiff.KindValueMismatch, Reference: "1", Candidate: "2", Path: "id"},
	}
	assert.Equal(t, expect, res.Differences())
	assert.Equal(t, 2, res.Stats.Left)
	assert.Equal(t, 3, res.Stats.Right)
}

func TestObjectsKeyPathCollisions(t *testing.T) {
	d := docs{
		"a.json": `{"a.b": "dotted", "a": {"b": "nested"}}`,
		"b.json": `{"a": {"b": "nested"}}`,
	}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	for i := 0; i < 50; i++ {
		res, err := New(nil, OptionLogger(logger)).
			Objects(context.Background(), d, []worklist.Pair{{Reference: "a.json", Candidate: "b.json"}}, nil)
		require.NoError(t, err)
		require.Empty(t, res.Records, "the nested value is kept on every run")
		assert.Equal(t, 1, res.Stats.Collisions)
	}
	assert.Contains(t, logs.String(), "Duplicate key path")
	assert.Contains(t, logs.String(), "document=a.json")
}

func TestDocuments(t *testing.T) {
	d := docs{
		"a.xml":  `<Order><Status>OK</Status></Order>`,
		"b.xml":  `<Order/>`,
		"a.json": `{"a": 1}`,
		"b.json": `{"a": 1}`,
		"a.txt":  `hello`,
		"b.txt":  `hello`,
	}
	pairs := []worklist.Pair{
		{Reference: "a.txt", Candidate: "b.txt"},
		{Reference: "a.xml", Candidate: "b.xml"},
		{Reference: "a.json", Candidate: "b.json"},
	}
	res, err := New(nil, OptionLogger(quietLogger())).Documents(context.Background(), d, pairs, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Compared)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Records, 1)
	assert.Equal(t, docdiff.KindTagMissing, res.Records[0].Kind)
	assert.Equal(t, "<Status>OK</Status>", res.Records[0].Reference)
}

func TestCanceledRunStillWritesReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &memSink{}
	res, err := New(nil, OptionLogger(quietLogger())).Markup(ctx, markupDocs, markupPairs, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 0, res.Compared+res.Skipped)
}

func TestSinkError(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	_, err := New(nil, OptionLogger(quietLogger())).Markup(context.Background(), markupDocs, markupPairs[:1], sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestFilesSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte(`<Order id="1"/>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte(`<Order/>`), 0o644))

	res, err := New(nil, OptionLogger(quietLogger())).Markup(context.Background(), source.Files{Dir: dir},
		[]worklist.Pair{{Reference: "a.xml", Candidate: "b.xml"}, {Reference: "a.xml", Candidate: "c.xml"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, docdiff.Differences{
		{Label: "id", Kind: docdiff.KindAttrMissing, Reference: "1", Candidate: "-", Path: "/Order[1]"},
	}, res.Differences())
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	_, err := New(nil, OptionLogger(quietLogger()), OptionMetrics(m)).
		Markup(context.Background(), markupDocs, markupPairs, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "docdiff.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docdiff_pairs_total{result="compared"} 2`)
	assert.Contains(t, string(data), `docdiff_differences_total{kind="Attribute mismatch"} 1`)
	assert.Contains(t, string(data), "docdiff_pair_duration_seconds_count 3")
}
