// Package agent turns a question about a frame into pandas code by prompting
// a chat runtime, and optionally runs that code to obtain an answer and charts.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/pandacode-cli/internal/ai"
	"github.com/KaramelBytes/pandacode-cli/internal/analysis"
	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/KaramelBytes/pandacode-cli/internal/packager"
	"github.com/KaramelBytes/pandacode-cli/internal/sandbox"
	"github.com/KaramelBytes/pandacode-cli/internal/utils"
)

// ErrNoCode means the model replied without any usable code.
var ErrNoCode = errors.New("no code was generated")

// Executor runs generated code against a frame.
type Executor interface {
	Run(ctx context.Context, code string, f *frame.Frame, onChart func(path string)) (*sandbox.Result, error)
}

// Agent holds the collaborators for code generation. Exec may be nil, in
// which case code is returned without being run.
type Agent struct {
	Runtime ai.Runtime
	Exec    Executor
	Model   string
	Logger  *slog.Logger

	MaxTokens        int
	Temperature      float64
	MaxContextTokens int
	Profile          analysis.Options
}

// New returns an Agent with prompt defaults.
func New(rt ai.Runtime, exec Executor, model string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Agent{
		Runtime:          rt,
		Exec:             exec,
		Model:            model,
		Logger:           logger,
		MaxTokens:        2048,
		Temperature:      0,
		MaxContextTokens: 6000,
		Profile:          analysis.DefaultOptions(),
	}
}

type Request struct {
	Query      string
	Frame      *frame.Frame
	Preference packager.Preference
	// OnChart receives every chart file produced by execution.
	OnChart func(path string)
}

type Response struct {
	Code     string
	Answer   string
	Executed bool
	Usage    ai.Usage
}

// Generate asks the runtime for code and, when an executor is set, runs it.
// Runtime failures are returned as-is so callers can classify them; a reply
// without code yields ErrNoCode; execution failures are *sandbox.ExecError.
func (a *Agent) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Frame == nil {
		return nil, errors.New("no dataset loaded")
	}
	sys, user := buildMessages(req.Frame, req.Query, req.Preference, a.Profile, a.MaxContextTokens)
	promptTokens := utils.CountTokens(sys) + utils.CountTokens(user)
	a.Logger.Debug("prompt built", "model", a.Model, "prompt_tokens_est", promptTokens)
	if mi, ok := ai.LookupModel(a.Model); ok && promptTokens+a.MaxTokens > mi.ContextTokens {
		a.Logger.Warn("prompt may exceed context window", "model", a.Model,
			"prompt_tokens_est", promptTokens, "max_tokens", a.MaxTokens, "context_tokens", mi.ContextTokens)
	}

	resp, err := a.Runtime.Generate(ctx, ai.GenerateRequest{
		Model: a.Model,
		Messages: []ai.Message{
			{Role: "system", Content: sys},
			{Role: "user", Content: user},
		},
		MaxTokens:   a.MaxTokens,
		Temperature: a.Temperature,
	})
	if err != nil {
		return nil, err
	}
	a.Logger.Info("model replied", "model", a.Model, "request_id", resp.RequestID,
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	if cost, ok := ai.EstimateCostUSD(a.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens); ok {
		a.Logger.Debug("estimated cost", "usd", fmt.Sprintf("%.5f", cost))
	}

	code := ExtractCode(resp.Content())
	if code == "" {
		return nil, ErrNoCode
	}
	out := &Response{Code: code, Usage: resp.Usage}
	if a.Exec == nil {
		return out, nil
	}

	res, err := a.Exec.Run(ctx, code, req.Frame, req.OnChart)
	if err != nil {
		return nil, fmt.Errorf("run generated code: %w", err)
	}
	out.Executed = true
	if res.Type != "plot" {
		out.Answer = res.Value
	}
	return out, nil
}
