package packager

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleanGeneratedCodeDefault(t *testing.T) {
	in := "x = df.groupby(\"Category\")[\"Sales\"].sum()\nresult = {\"type\": \"dataframe\", \"value\": x}"
	want := "x = df.groupby(\"Category\")[\"Sales\"].sum()\n\n# Print result\nprint(x)" +
		"\n\n# Note: PandasAI result formatting code has been removed.\n# Above is standard Pandas code that can be run directly in Python."
	require.Equal(t, want, CleanGeneratedCode(in, PreferenceDefault))
}

func TestCleanGeneratedCodeWithoutMarkerIsUnchanged(t *testing.T) {
	in := "  import pandas as pd\ntotal = df['Sales'].sum()\n"
	require.Equal(t, in, CleanGeneratedCode(in, PreferenceStandardPandas))
	require.Equal(t, "", CleanGeneratedCode("", PreferenceDefault))
}

func TestCleanGeneratedCodeStandardPandasPrependsImport(t *testing.T) {
	in := "top = df.sort_values('Sales').tail(3)\nresult = {\"type\": \"dataframe\", \"value\": top}\nprint(result)"
	out := CleanGeneratedCode(in, PreferenceStandardPandas)
	require.True(t, strings.HasPrefix(out, "import pandas as pd\n\ntop = df.sort_values('Sales').tail(3)\n"))
	require.Contains(t, out, "print(top)")
	require.True(t, strings.HasSuffix(out, "# The above is standard Pandas code that can be run directly in Python."))
	require.NotContains(t, out, "print(result)")
}

func TestCleanGeneratedCodePlotImportOrder(t *testing.T) {
	in := "df.plot(kind='bar')\nplt.savefig('c.png')\nresult = {\"type\": \"plot\", \"value\": \"c.png\"}"
	out := CleanGeneratedCode(in, PreferenceStandardPandas)
	lines := strings.Split(out, "\n")
	require.Equal(t, "import pandas as pd", lines[0])
	require.Equal(t, "import matplotlib.pyplot as plt", lines[1])
	require.Equal(t, "", lines[2])
	require.Equal(t, "df.plot(kind='bar')", lines[3])
	require.NotContains(t, out, "# Print result")

	withImport := "import matplotlib.pyplot as plt\nplt.plot([1])\nresult = {\"type\": \"plot\", \"value\": \"c.png\"}"
	out = CleanGeneratedCode(withImport, PreferenceDefault)
	require.Equal(t, 1, strings.Count(out, "import matplotlib"))
}

func TestCleanGeneratedCodeDropsEverythingFromMarker(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"trailing code", "x = 1\nresult = {\"type\": \"number\", \"value\": x}\nprint(result)\ny = 2"},
		{"second marker", "x = 1\nresult = {\"type\": \"number\", \"value\": x}\nz = 3\nresult = {\"type\": \"number\", \"value\": z}"},
		{"indented marker", "if True:\n    x = 1\n    result = {\"type\": \"number\", \"value\": x}\nresult = {\"type\": \"string\", \"value\": \"n\"}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, pref := range []Preference{PreferenceDefault, PreferenceStandardPandas} {
				out := CleanGeneratedCode(tc.in, pref)
				require.NotContains(t, out, "result = {")
				require.NotContains(t, out, "z = 3")
				require.NotContains(t, out, "y = 2")
			}
		})
	}
}

func TestCleanGeneratedCodeEmptyAfterTruncation(t *testing.T) {
	out := CleanGeneratedCode("result = {\"type\": \"string\", \"value\": \"hi\"}", PreferenceDefault)
	require.Equal(t, "# Note: PandasAI result formatting code has been removed.\n# Above is standard Pandas code that can be run directly in Python.", out)
}

func TestAssignmentTarget(t *testing.T) {
	cases := map[string]string{
		"x = 1":                    "x",
		"  df['total'] = a + b":    "df['total']",
		"a, b = f()":               "a, b",
		"self.value = 3":           "self.value",
		"if x == 1:":               "",
		"for i in range(3): y = i": "",
		"x += 1":                   "",
		"# y = 2":                  "",
		"print(x)":                 "",
		"x == y":                   "",
		"def f(a=1):":              "",
	}
	for line, want := range cases {
		got, ok := assignmentTarget(line)
		require.Equal(t, want != "", ok, line)
		require.Equal(t, want, got, line)
	}
}

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, 6, EstimateTokens("abc"))
	require.Equal(t, 5, EstimateTokens(""))
	require.Equal(t, 11, EstimateTokens("ab\ncd"))
}

func TestParsePreference(t *testing.T) {
	p, err := ParsePreference("")
	require.NoError(t, err)
	require.Equal(t, PreferenceDefault, p)
	p, err = ParsePreference("standard_pandas")
	require.NoError(t, err)
	require.Equal(t, PreferenceStandardPandas, p)
	_, err = ParsePreference("polars")
	require.Error(t, err)
}

var chartNameRE = regexp.MustCompile(`^chart_\d{8}-\d{6}_[0-9a-f]{8}\.png$`)

func TestCaptureChartCopiesWithTimestampedName(t *testing.T) {
	src := filepath.Join(t.TempDir(), "temp_chart.png")
	require.NoError(t, os.WriteFile(src, []byte("\x89PNG fake"), 0o600))

	dir := filepath.Join(t.TempDir(), "charts")
	p := New(dir, nil)
	p.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }

	name, ok := p.CaptureChart(src)
	require.True(t, ok)
	require.Regexp(t, chartNameRE, name)
	require.True(t, strings.HasPrefix(name, "chart_20240305-140709_"))

	info, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, "\x89PNG fake", string(b))
}

func TestCaptureChartMissingSource(t *testing.T) {
	dir := t.TempDir()
	name, ok := New(dir, nil).CaptureChart(filepath.Join(dir, "nope.png"))
	require.False(t, ok)
	require.Empty(t, name)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	_, err := Latest(dir)
	require.ErrorIs(t, err, os.ErrNotExist)

	for _, n := range []string{"chart_20240101-000000_aaaaaaaa.png", "chart_20240301-120000_bbbbbbbb.png", "other.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	got, err := Latest(dir)
	require.NoError(t, err)
	require.Equal(t, "chart_20240301-120000_bbbbbbbb.png", got)
}

func TestLatestSameSecondUsesModTime(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "chart_20240501-120000_ffffffff.png")
	newer := filepath.Join(dir, "chart_20240501-120000_00000000.png")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(older, nil, 0o644))
	require.NoError(t, os.WriteFile(newer, nil, 0o644))
	require.NoError(t, os.Chtimes(older, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(300*time.Millisecond), base.Add(300*time.Millisecond)))

	got, err := Latest(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Base(newer), got)

	// A later second still wins regardless of modification time.
	later := filepath.Join(dir, "chart_20240501-120001_11111111.png")
	require.NoError(t, os.WriteFile(later, nil, 0o644))
	require.NoError(t, os.Chtimes(later, base, base))
	got, err = Latest(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Base(later), got)
}
