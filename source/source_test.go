package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	cases := map[string]Format{
		"order.xml":     FormatXML,
		"ORDER.XML":     FormatXML,
		"page.htm":      FormatHTML,
		"page.html":     FormatHTML,
		"order.json":    FormatJSON,
		"order.yml":     FormatYAML,
		"order.yaml":    FormatYAML,
		"order":         "",
		"dir.xml/order": "",
	}
	for name, expect := range cases {
		assert.Equal(t, expect, FormatOf(name), name)
	}
	assert.True(t, FormatHTML.Markup())
	assert.False(t, FormatJSON.Markup())
}

func TestFilesReadMarkup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte(`<Order id="7"><Status>OK</Status></Order>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.xml"), []byte(`<Order>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(`<p>hi</p>`), 0o644))

	fs := Files{Dir: dir}
	ctx := context.Background()

	el, err := fs.ReadMarkup(ctx, "a.xml")
	require.NoError(t, err)
	assert.Equal(t, "Order", el.Name)
	require.Len(t, el.Children, 1)
	assert.Equal(t, "OK", el.Children[0].Text)

	el, err = fs.ReadMarkup(ctx, "page.html")
	require.NoError(t, err)
	assert.Equal(t, "html", el.Name)

	_, err = fs.ReadMarkup(ctx, "missing.xml")
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)

	_, err = fs.ReadMarkup(ctx, "")
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)

	_, err = fs.ReadMarkup(ctx, "bad.xml")
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, "bad.xml", perr.Name)

	// absolute names ignore Dir
	el, err = Files{Dir: "/nonexistent"}.ReadMarkup(ctx, filepath.Join(dir, "a.xml"))
	require.NoError(t, err)
	assert.Equal(t, "Order", el.Name)
}

func TestFilesReadObject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"a":{"b":1}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("a:\n  b: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"a":`), 0o644))

	fs := Files{Dir: dir}
	ctx := context.Background()

	v, err := fs.ReadObject(ctx, "a.json")
	require.NoError(t, err)
	assert.Contains(t, v, "a")

	v, err = fs.ReadObject(ctx, "a.yaml")
	require.NoError(t, err)
	assert.Contains(t, v, "a")

	_, err = fs.ReadObject(ctx, "bad.json")
	var perr *ParseError
	assert.True(t, errors.As(err, &perr), "got %v", err)

	_, err = fs.ReadObject(ctx, "nope.json")
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
}

func TestFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Files{}.ReadMarkup(ctx, "a.xml")
	assert.Equal(t, context.Canceled, err)
}

func TestParseWrongFormat(t *testing.T) {
	_, err := ParseMarkup("x", strings.NewReader("{}"), FormatJSON)
	assert.Error(t, err)
	_, err = ParseObject("x", strings.NewReader("<a/>"), FormatXML)
	assert.Error(t, err)
}

func openTestDB(t *testing.T) *SQL {
	t.Helper()
	ctx := context.Background()
	db, err := OpenDB(ctx, "sqlite", filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE orders (order_id TEXT PRIMARY KEY, xml_content TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO orders (order_id, xml_content) VALUES
		('w1', '<Order id="1"><Status>OK</Status></Order>'),
		('m1', '<Order id="1"><Status>FAIL</Status></Order>'),
		('bad', '<Order>'),
		('null', NULL),
		('blank', '   '),
		('obj', '{"a":1}')`)
	require.NoError(t, err)

	return NewSQL(db, "sqlite", "orders", "order_id", "xml_content")
}

func TestSQLQuery(t *testing.T) {
	assert.Equal(t, "SELECT xml_content FROM orders WHERE order_id = ?", NewSQL(nil, "mysql", "orders", "order_id", "xml_content").Query())
	assert.Equal(t, "SELECT body FROM docs WHERE id = $1", NewSQL(nil, "postgres", "docs", "id", "body").Query())
}

func TestSQLFetch(t *testing.T) {
	src := openTestDB(t)
	ctx := context.Background()

	payload, err := src.Fetch(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, `<Order id="1"><Status>OK</Status></Order>`, payload)

	for _, id := range []string{"missing", "null", "blank"} {
		_, err := src.Fetch(ctx, id)
		assert.True(t, errors.Is(err, ErrUnavailable), "%s: got %v", id, err)
	}
}

func TestSQLRead(t *testing.T) {
	src := openTestDB(t)
	ctx := context.Background()

	el, err := src.ReadMarkup(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, el.Children, 1)
	assert.Equal(t, "FAIL", el.Children[0].Text)

	_, err = src.ReadMarkup(ctx, "bad")
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, "bad", perr.Name)

	v, err := src.ReadObject(ctx, "obj")
	require.NoError(t, err)
	assert.Contains(t, v, "a")
}
