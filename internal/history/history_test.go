package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/pandacode-cli/internal/runner"
	"github.com/stretchr/testify/require"
)

func result(q string) *runner.QueryResult {
	code := "print(1)"
	return &runner.QueryResult{Query: q, Code: &code, Model: "deepseek-chat", Preference: "default", ConfigSource: runner.SourceEnv}
}

func TestAddNewestFirstAndCapped(t *testing.T) {
	s := Open(t.TempDir(), 3, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(result(fmt.Sprintf("q%d", i))))
	}
	got := s.List()
	require.Len(t, got, 3)
	require.Equal(t, "q4", got[0].Query)
	require.Equal(t, "q2", got[2].Query)
	require.Equal(t, "print(1)", *got[0].Code)
}

func TestListMissingFileIsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nested"), 0, nil)
	got := s.List()
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.json"), []byte("{not json"), 0o644))
	s := Open(dir, 15, nil)
	require.Empty(t, s.List())

	require.NoError(t, s.Add(result("fresh")))
	require.Len(t, s.List(), 1)
}

func TestClear(t *testing.T) {
	s := Open(t.TempDir(), 15, nil)
	require.NoError(t, s.Add(result("a")))
	require.NoError(t, s.Clear())
	require.Empty(t, s.List())

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
}
