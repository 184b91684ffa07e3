// Package packager turns raw generated code into its delivered form: it strips
// result-formatting statements, adds missing imports and a print of the final
// assignment, estimates a token count and archives produced charts.
package packager

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Preference selects the cleaning style.
type Preference string

const (
	PreferenceDefault        Preference = "default"
	PreferenceStandardPandas Preference = "standard_pandas"
)

// ParsePreference validates a user-supplied preference. Empty selects default.
func ParsePreference(s string) (Preference, error) {
	switch Preference(strings.TrimSpace(s)) {
	case "", PreferenceDefault:
		return PreferenceDefault, nil
	case PreferenceStandardPandas:
		return PreferenceStandardPandas, nil
	default:
		return "", fmt.Errorf("invalid preference %q (use %s or %s)", s, PreferenceDefault, PreferenceStandardPandas)
	}
}

const (
	resultMarker = "result = {"

	defaultNote  = "\n\n# Note: PandasAI result formatting code has been removed.\n# Above is standard Pandas code that can be run directly in Python."
	standardNote = "\n\n# The above is standard Pandas code that can be run directly in Python."

	pandasImport     = "import pandas as pd"
	matplotlibImport = "import matplotlib.pyplot as plt"
)

var (
	blockKeywords = []string{
		"if", "elif", "else", "for", "while", "def", "class", "with", "try",
		"except", "finally", "return", "import", "from", "lambda", "async", "await",
	}
	assignTarget = regexp.MustCompile(`^[A-Za-z_][\w.]*(\[[^\]]*\])*(\s*,\s*[A-Za-z_][\w.]*)*$`)
)

// CleanGeneratedCode removes the result-dict epilogue and everything after it,
// prints the last assignment and appends a note. Code without the marker is
// returned untouched.
func CleanGeneratedCode(code string, pref Preference) string {
	if code == "" {
		return code
	}
	lines := strings.Split(code, "\n")
	marker := -1
	for i, line := range lines {
		if strings.Contains(line, resultMarker) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return code
	}

	cleaned := strings.Join(lines[:marker], "\n")
	trimmed := strings.Split(strings.TrimSpace(cleaned), "\n")
	if lhs, ok := assignmentTarget(trimmed[len(trimmed)-1]); ok {
		cleaned += "\n\n# Print result\nprint(" + lhs + ")"
	}

	if pref == PreferenceStandardPandas {
		cleaned += standardNote
	} else {
		cleaned += defaultNote
	}

	var header []string
	if pref == PreferenceStandardPandas && !strings.Contains(cleaned, "import pandas") {
		header = append(header, pandasImport)
	}
	if strings.Contains(cleaned, "plt.") && !strings.Contains(cleaned, "import matplotlib") {
		header = append(header, matplotlibImport)
	}
	if len(header) > 0 {
		cleaned = strings.Join(header, "\n") + "\n\n" + cleaned
	}
	return strings.TrimSpace(cleaned)
}

// assignmentTarget returns the left-hand side of a simple assignment line.
func assignmentTarget(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") || !strings.Contains(s, "=") {
		return "", false
	}
	first := s
	if i := strings.IndexAny(s, " \t(:"); i >= 0 {
		first = s[:i]
	}
	for _, kw := range blockKeywords {
		if first == kw {
			return "", false
		}
	}
	i := strings.Index(s, "=")
	if i+1 < len(s) && s[i+1] == '=' {
		return "", false
	}
	lhs := strings.TrimSpace(s[:i])
	if lhs == "" || strings.ContainsAny(lhs[len(lhs)-1:], "!<>+-*/%&|^@:") {
		return "", false
	}
	if !assignTarget.MatchString(lhs) {
		return "", false
	}
	return lhs, true
}

// EstimateTokens is a display heuristic: a quarter token per character plus
// five per line.
func EstimateTokens(code string) int {
	chars := utf8.RuneCountInString(code)
	lines := strings.Count(code, "\n") + 1
	return int(math.Round(float64(chars)*0.25 + float64(lines)*5))
}

// Packager archives charts into a fixed directory.
type Packager struct {
	ChartDir string
	Logger   *slog.Logger

	now func() time.Time
}

// New returns a Packager writing charts under chartDir.
func New(chartDir string, logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Packager{ChartDir: chartDir, Logger: logger, now: time.Now}
}

// ChartName builds chart_<YYYYMMDD-HHMMSS>_<8 hex>.png for the given instant.
func ChartName(t time.Time) string {
	return fmt.Sprintf("chart_%s_%s.png", t.Format("20060102-150405"), uuid.NewString()[:8])
}

// CaptureChart copies the chart at src into ChartDir under a fresh name and
// returns that name. Failures are logged and reported as ok=false.
func (p *Packager) CaptureChart(src string) (string, bool) {
	name, err := p.copyChart(src)
	if err != nil {
		p.Logger.Warn("chart capture failed", "source", src, "error", err)
		return "", false
	}
	p.Logger.Info("chart saved", "file", name, "dir", p.ChartDir)
	return name, true
}

func (p *Packager) copyChart(src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("source chart: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source chart %s is a directory", src)
	}
	if err := os.MkdirAll(p.ChartDir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	name := ChartName(now())
	dst := filepath.Join(p.ChartDir, name)

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source chart: %w", err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("create chart: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy chart: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close chart: %w", err)
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	if _, err := os.Stat(dst); err != nil {
		return "", fmt.Errorf("verify chart: %w", err)
	}
	if err := os.Chmod(dst, 0o644); err != nil {
		return "", fmt.Errorf("chmod chart: %w", err)
	}
	return name, nil
}

// Latest returns the newest chart_*.png in dir. Names embed the capture time
// to the second; charts captured within the same second are ordered by
// modification time, then by name.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "chart_*.png"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", os.ErrNotExist
	}
	type chart struct {
		name, stamp string
		mod         time.Time
	}
	charts := make([]chart, 0, len(matches))
	for _, m := range matches {
		c := chart{name: filepath.Base(m)}
		c.stamp = c.name
		if i := strings.LastIndex(c.name, "_"); i > 0 {
			c.stamp = c.name[:i]
		}
		if info, err := os.Stat(m); err == nil {
			c.mod = info.ModTime()
		}
		charts = append(charts, c)
	}
	sort.Slice(charts, func(i, j int) bool {
		a, b := charts[i], charts[j]
		if a.stamp != b.stamp {
			return a.stamp < b.stamp
		}
		if !a.mod.Equal(b.mod) {
			return a.mod.Before(b.mod)
		}
		return a.name < b.name
	})
	return charts[len(charts)-1].name, nil
}
