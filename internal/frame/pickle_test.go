package frame

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func requirePandas(t *testing.T) string {
	t.Helper()
	py, err := FindPython()
	if err != nil {
		t.Skip("python not available")
	}
	if err := exec.Command(py, "-c", "import pandas").Run(); err != nil {
		t.Skip("pandas not available")
	}
	return py
}

func TestLoadPickle(t *testing.T) {
	py := requirePandas(t)
	p := filepath.Join(t.TempDir(), "sales.pkl")
	script := `import sys, pandas as pd
pd.DataFrame({"Product": ["Laptop", "Phone"], "Sales": [120, 250]}).to_pickle(sys.argv[1])`
	require.NoError(t, exec.Command(py, "-c", script, p).Run())

	f, err := Load(context.Background(), p, Options{Python: py})
	require.NoError(t, err)
	require.Equal(t, []string{"Product", "Sales"}, f.Columns)
	require.Equal(t, [][]string{{"Laptop", "120"}, {"Phone", "250"}}, f.Rows)
}

func TestLoadPickleReportsPythonError(t *testing.T) {
	py := requirePandas(t)
	p := writeFile(t, "bad.pickle", "not a pickle")
	_, err := Load(context.Background(), p, Options{Python: py})
	require.Error(t, err)
	require.Contains(t, err.Error(), "read pickle")
}
