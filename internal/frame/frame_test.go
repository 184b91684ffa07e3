package frame

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestFormatOf(t *testing.T) {
	cases := map[string]string{
		"sales.CSV":      "csv",
		"book.xlsx":      "xlsx",
		"old.xls":        "xls",
		"rows.json":      "json",
		"cols.parquet":   "parquet",
		"fast.feather":   "feather",
		"frame.pickle":   "pickle",
		"frame.pkl":      "pkl",
		"notes.txt":      "csv",
		"no_extension":   "csv",
		"tabbed.tsv":     "tsv",
		"dir.v2/data.gz": "csv",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatOf(in), in)
	}
}

func TestSupportedFormats(t *testing.T) {
	require.Equal(t, []string{"csv", "xlsx", "xls", "json", "parquet", "feather", "pickle", "pkl"}, SupportedFormats())
}

func TestLoadSample(t *testing.T) {
	for _, p := range []string{"none", "", "NONE"} {
		f, err := Load(context.Background(), p, Options{})
		require.NoError(t, err)
		rows, cols := f.Shape()
		require.Equal(t, 7, rows)
		require.Equal(t, 4, cols)
		require.Equal(t, []string{"Product", "Sales", "Price", "Category"}, f.Columns)
	}
	sales, ok := Sample().Column("Sales")
	require.True(t, ok)
	require.Equal(t, []string{"120", "250", "180", "300", "450", "90", "150"}, sales)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCSV(t *testing.T) {
	p := writeFile(t, "sales.csv", "\ufeffProduct,Sales,\nLaptop,120,x\nPhone,250\n\n")
	f, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Equal(t, "sales.csv", f.Name)
	require.Equal(t, []string{"Product", "Sales", "Unnamed: 2"}, f.Columns)
	require.Equal(t, [][]string{{"Laptop", "120", "x"}, {"Phone", "250", ""}}, f.Rows)
}

func TestLoadCSVSniffsSemicolon(t *testing.T) {
	p := writeFile(t, "eu.csv", "Group;Score\nA;10,5\nB;9,0\n")
	f, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"Group", "Score"}, f.Columns)
	require.Equal(t, "10,5", f.Rows[0][1])
}

func TestLoadTSVAndUnknownExtension(t *testing.T) {
	p := writeFile(t, "data.tsv", "a\tb\n1\t2\n")
	f, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, f.Columns)

	p = writeFile(t, "data.txt", "a,b\n1,2\n")
	f, err = Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1", "2"}}, f.Rows)
}

func TestLoadEmptyCSVFails(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	_, err := Load(context.Background(), p, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty file")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	f := New("x", []string{"name", "note"}, [][]string{{"a", "has, comma"}, {"b", "has \"quote\""}})
	var b strings.Builder
	require.NoError(t, f.WriteCSV(&b))
	back, err := ReadCSV(strings.NewReader(b.String()), "x", ',')
	require.NoError(t, err)
	require.Equal(t, f.Rows, back.Rows)
	require.Equal(t, b.String(), f.CSVString())
}

func TestHead(t *testing.T) {
	f := Sample()
	require.Len(t, f.Head(3).Rows, 3)
	require.Len(t, f.Head(100).Rows, 7)
	require.Len(t, f.Head(-1).Rows, 7)
}
