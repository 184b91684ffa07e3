package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/pandacode-cli/internal/ai"
	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/KaramelBytes/pandacode-cli/internal/packager"
	"github.com/KaramelBytes/pandacode-cli/internal/sandbox"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	reply string
	err   error
	got   ai.GenerateRequest
}

func (f *fakeRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.GenerateResponse{
		Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: f.reply}}},
		Usage:   ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

type fakeExec struct {
	res    *sandbox.Result
	err    error
	charts []string
	code   string
}

func (f *fakeExec) Run(_ context.Context, code string, _ *frame.Frame, onChart func(string)) (*sandbox.Result, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.charts {
		if onChart != nil {
			onChart(c)
		}
	}
	return f.res, nil
}

const reply = "Here you go:\n```python\ntotal = df['Sales'].sum()\nresult = {\"type\": \"number\", \"value\": total}\n```\nDone."

func TestGenerateWithoutExecutor(t *testing.T) {
	rt := &fakeRuntime{reply: reply}
	a := New(rt, nil, "deepseek-chat", nil)
	resp, err := a.Generate(context.Background(), Request{Query: "total sales?", Frame: frame.Sample(), Preference: packager.PreferenceDefault})
	require.NoError(t, err)
	require.Equal(t, "total = df['Sales'].sum()\nresult = {\"type\": \"number\", \"value\": total}", resp.Code)
	require.False(t, resp.Executed)
	require.Equal(t, 15, resp.Usage.TotalTokens)

	require.Equal(t, "deepseek-chat", rt.got.Model)
	require.Len(t, rt.got.Messages, 2)
	require.Equal(t, "system", rt.got.Messages[0].Role)
	require.Contains(t, rt.got.Messages[0].Content, "plt.savefig('chart.png')")
	user := rt.got.Messages[1].Content
	require.Contains(t, user, "[DATASET SUMMARY]")
	require.Contains(t, user, "Product,Sales,Price,Category\nLaptop,120,5000,Electronics")
	require.True(t, strings.HasSuffix(user, "[QUESTION]\ntotal sales?"))
}

func TestGenerateStandardPandasFraming(t *testing.T) {
	rt := &fakeRuntime{reply: reply}
	a := New(rt, nil, "deepseek-chat", nil)
	_, err := a.Generate(context.Background(), Request{Query: "top product", Frame: frame.Sample(), Preference: packager.PreferenceStandardPandas})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(rt.got.Messages[1].Content,
		"Generate standard Pandas code (not PandasAI specific code). Make sure to include all necessary imports. "+
			"Focus on basic pandas operations. Show the complete code solution and make sure it's executable. Query: top product"))
}

func TestGenerateRunsExecutorAndForwardsCharts(t *testing.T) {
	ex := &fakeExec{res: &sandbox.Result{Type: "number", Value: "1540"}, charts: []string{"/tmp/x/chart.png"}}
	a := New(&fakeRuntime{reply: reply}, ex, "deepseek-chat", nil)
	var seen []string
	resp, err := a.Generate(context.Background(), Request{Query: "q", Frame: frame.Sample(), OnChart: func(p string) { seen = append(seen, p) }})
	require.NoError(t, err)
	require.True(t, resp.Executed)
	require.Equal(t, "1540", resp.Answer)
	require.Equal(t, []string{"/tmp/x/chart.png"}, seen)
	require.Equal(t, resp.Code, ex.code)
}

func TestGeneratePlotHasNoTextAnswer(t *testing.T) {
	ex := &fakeExec{res: &sandbox.Result{Type: "plot", Value: "chart.png"}}
	a := New(&fakeRuntime{reply: reply}, ex, "m", nil)
	resp, err := a.Generate(context.Background(), Request{Query: "q", Frame: frame.Sample()})
	require.NoError(t, err)
	require.Empty(t, resp.Answer)
}

func TestGenerateErrors(t *testing.T) {
	authErr := &ai.AuthError{APIError: &ai.APIError{StatusCode: 401}}
	_, err := New(&fakeRuntime{err: authErr}, nil, "m", nil).Generate(context.Background(), Request{Query: "q", Frame: frame.Sample()})
	var ae *ai.AuthError
	require.True(t, errors.As(err, &ae))

	_, err = New(&fakeRuntime{reply: "I cannot help with that."}, nil, "m", nil).Generate(context.Background(), Request{Query: "q", Frame: frame.Sample()})
	require.ErrorIs(t, err, ErrNoCode)

	ex := &fakeExec{err: &sandbox.ExecError{Err: errors.New("exit status 1"), Stderr: "KeyError: 'x'"}}
	_, err = New(&fakeRuntime{reply: reply}, ex, "m", nil).Generate(context.Background(), Request{Query: "q", Frame: frame.Sample()})
	var ee *sandbox.ExecError
	require.True(t, errors.As(err, &ee))

	_, err = New(&fakeRuntime{reply: reply}, nil, "m", nil).Generate(context.Background(), Request{Query: "q"})
	require.Error(t, err)
}
