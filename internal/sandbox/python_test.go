package sandbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/stretchr/testify/require"
)

func newPython(t *testing.T) *Python {
	t.Helper()
	p, err := NewPython("", nil)
	if err != nil {
		t.Skip("python not available")
	}
	if err := exec.Command(p.Interpreter, "-c", "import pandas, matplotlib").Run(); err != nil {
		t.Skip("pandas/matplotlib not available")
	}
	return p
}

func TestRunReturnsResultValue(t *testing.T) {
	p := newPython(t)
	code := "total = df['Sales'].sum()\nprint('hello')\nresult = {'type': 'number', 'value': total}"
	res, err := p.Run(context.Background(), code, frame.Sample(), nil)
	require.NoError(t, err)
	require.Equal(t, "number", res.Type)
	require.Equal(t, "1540", res.Value)
	require.Contains(t, res.Stdout, "hello")
}

func TestRunReportsCharts(t *testing.T) {
	p := newPython(t)
	code := "df.plot(kind='bar', x='Product', y='Sales')\nplt.savefig('chart.png')\nresult = {'type': 'plot', 'value': 'chart.png'}"
	var charts []string
	var sizes []int64
	_, err := p.Run(context.Background(), code, frame.Sample(), func(path string) {
		charts = append(charts, filepath.Base(path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		sizes = append(sizes, info.Size())
	})
	require.NoError(t, err)
	require.Equal(t, []string{ChartFile}, charts)
	require.Greater(t, sizes[0], int64(0))
}

func TestRunExecError(t *testing.T) {
	p := newPython(t)
	_, err := p.Run(context.Background(), "df['Nope'].sum()", frame.Sample(), nil)
	var ee *ExecError
	require.True(t, errors.As(err, &ee), "got %T %v", err, err)
	require.Contains(t, ee.Stderr, "KeyError")
}

func TestChartFilesDedupesAndSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644))
	got := chartFiles(dir, &Result{Type: "plot", Value: "b.png"})
	require.Equal(t, []string{filepath.Join(dir, "b.png"), filepath.Join(dir, "a.png")}, got)

	got = chartFiles(dir, &Result{Type: "plot", Value: "missing.png"})
	require.Len(t, got, 2)
}

func TestLastLines(t *testing.T) {
	require.Equal(t, "c\nd", lastLines("a\nb\nc\nd\n", 2))
	require.Equal(t, "", lastLines("", 3))
}
