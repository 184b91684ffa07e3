// Package sandbox runs generated pandas code in a throwaway working directory
// with the dataset preloaded as `df`.
package sandbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/pandacode-cli/internal/frame"
)

// ChartFile is the name generated code is told to save plots under.
const ChartFile = "chart.png"

// Result is what a successful run produced.
type Result struct {
	// Type and Value mirror the `result = {"type": ..., "value": ...}` dict.
	Type   string `json:"type"`
	Value  string `json:"value"`
	Stdout string `json:"-"`
}

// ExecError reports a non-zero interpreter exit.
type ExecError struct {
	Err    error
	Stderr string
}

func (e *ExecError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("python execution failed: %v", e.Err)
	}
	return fmt.Sprintf("python execution failed: %v: %s", e.Err, e.Stderr)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Python executes code with a local interpreter.
type Python struct {
	Interpreter string
	Logger      *slog.Logger
}

// NewPython resolves the interpreter: the given path when set, otherwise
// python3 then python from PATH.
func NewPython(interpreter string, logger *slog.Logger) (*Python, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if interpreter == "" {
		p, err := frame.FindPython()
		if err != nil {
			return nil, err
		}
		interpreter = p
	}
	return &Python{Interpreter: interpreter, Logger: logger}, nil
}

const wrapper = `import os, sys, json, base64, traceback
import matplotlib
matplotlib.use('Agg')
import matplotlib.pyplot as plt
import pandas as pd

os.chdir(sys.argv[1])
df = pd.read_csv('data.csv')
dfs = [df]
user_code = base64.b64decode(sys.argv[2]).decode('utf-8')
ns = {'pd': pd, 'plt': plt, 'df': df, 'dfs': dfs}
try:
    exec(compile(user_code, '<generated>', 'exec'), ns)
except Exception:
    traceback.print_exc()
    sys.exit(1)

res = ns.get('result')
out = {'type': '', 'value': ''}
if isinstance(res, dict) and 'value' in res:
    val = res['value']
    out['type'] = str(res.get('type', ''))
    if isinstance(val, (pd.DataFrame, pd.Series)):
        out['value'] = val.to_string()
    else:
        out['value'] = str(val)
elif res is not None:
    out['value'] = res.to_string() if isinstance(res, (pd.DataFrame, pd.Series)) else str(res)
with open('result.json', 'w') as fh:
    json.dump(out, fh)
`

// Run executes code against f. onChart is called for every PNG the code left
// in the working directory, before the directory is removed.
func (p *Python) Run(ctx context.Context, code string, f *frame.Frame, onChart func(path string)) (*Result, error) {
	workDir, err := os.MkdirTemp("", "pandacode_py_*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	data, err := os.Create(filepath.Join(workDir, "data.csv"))
	if err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	if err := f.WriteCSV(data); err != nil {
		_ = data.Close()
		return nil, err
	}
	if err := data.Close(); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Interpreter, "-c", wrapper, workDir, base64.StdEncoding.EncodeToString([]byte(code)))
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "MPLBACKEND=Agg", "PYTHONIOENCODING=utf-8")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	p.Logger.Debug("running generated code", "interpreter", p.Interpreter, "dir", workDir)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, &ExecError{Err: ctx.Err()}
		}
		return nil, &ExecError{Err: err, Stderr: lastLines(stderr.String(), 6)}
	}

	res := &Result{Stdout: stdout.String()}
	b, err := os.ReadFile(filepath.Join(workDir, "result.json"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read result: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, res); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}

	if onChart != nil {
		for _, c := range chartFiles(workDir, res) {
			onChart(c)
		}
	}
	return res, nil
}

// chartFiles lists PNGs in dir plus a plot result path, without duplicates.
func chartFiles(dir string, res *Result) []string {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		p = filepath.Clean(p)
		if seen[p] {
			return
		}
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	if res != nil && res.Type == "plot" && strings.HasSuffix(strings.ToLower(res.Value), ".png") {
		add(res.Value)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	sort.Strings(matches)
	for _, m := range matches {
		add(m)
	}
	return out
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
