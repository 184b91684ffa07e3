package frame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// pickleLoader has no Go decoder to lean on, so it asks pandas to re-emit the
// pickled frame as CSV.
type pickleLoader struct{}

func (pickleLoader) Formats() []string { return []string{"pickle", "pkl"} }

const pickleToCSV = `import sys, pandas as pd
obj = pd.read_pickle(sys.argv[1])
if not isinstance(obj, pd.DataFrame):
    obj = pd.DataFrame(obj)
obj.to_csv(sys.stdout, index=False)
`

func (pickleLoader) Load(ctx context.Context, path string, opt Options) (*Frame, error) {
	py := opt.Python
	if py == "" {
		var err error
		if py, err = FindPython(); err != nil {
			return nil, err
		}
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, py, "-c", pickleToCSV, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndex(msg, "\n"); i >= 0 {
			msg = msg[i+1:]
		}
		return nil, fmt.Errorf("read pickle: %w: %s", err, msg)
	}
	return ReadCSV(&stdout, filepath.Base(path), ',')
}

// ErrNoPython indicates no Python interpreter could be found on PATH.
var ErrNoPython = errors.New("python interpreter not found (install python3 or set python_path)")

// FindPython locates python3, then python, on PATH.
func FindPython() (string, error) {
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrNoPython
}
