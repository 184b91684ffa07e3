// Package runner executes one natural-language query end to end: resolve
// credentials, load the dataset, generate (and optionally run) code, clean it
// and package the outcome as a QueryResult.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/pandacode-cli/internal/agent"
	"github.com/KaramelBytes/pandacode-cli/internal/ai"
	"github.com/KaramelBytes/pandacode-cli/internal/config"
	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/KaramelBytes/pandacode-cli/internal/packager"
	"github.com/KaramelBytes/pandacode-cli/internal/sandbox"
)

const msgMissingCredentials = "API key or base URL not found. Provide them via CLI arguments or environment variables."

// Params are the per-request inputs. Empty override fields fall back to config.
type Params struct {
	Query      string
	FilePath   string
	Preference string
	APIKey     string
	APIBaseURL string
	Model      string
	// NoExec disables running the generated code for this request.
	NoExec bool
}

// Runner carries the long-lived collaborators shared by requests.
type Runner struct {
	Config   *config.Global
	Packager *packager.Packager
	Logger   *slog.Logger

	// NewRuntime builds the chat runtime for a provider.
	NewRuntime func(provider string, cfg ai.RuntimeConfig) (ai.Runtime, error)
	// NewExecutor builds the code executor; an error disables execution.
	NewExecutor func() (agent.Executor, error)

	now func() time.Time
}

// New wires a Runner with the production runtime registry and Python executor.
func New(cfg *config.Global, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		Config:     cfg,
		Packager:   packager.New(cfg.ChartsDir, logger),
		Logger:     logger,
		NewRuntime: ai.MustRuntime,
		NewExecutor: func() (agent.Executor, error) {
			py, err := sandbox.NewPython(cfg.PythonPath, logger)
			if err != nil {
				return nil, err
			}
			return py, nil
		},
		now: time.Now,
	}
}

// Run processes one query. It never returns an error: failures are reported
// inside the result with their kind.
func (r *Runner) Run(ctx context.Context, p Params) *QueryResult {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	if r.Config.RequestTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.Config.RequestTimeoutSec)*time.Second)
		defer cancel()
	}
	res := &QueryResult{
		Timestamp:    now(),
		Query:        p.Query,
		Preference:   string(packager.PreferenceDefault),
		ConfigSource: SourceEnv,
	}

	apiKey, baseURL, model := r.Config.APIKey, r.Config.APIBaseURL, r.Config.DefaultModel
	if p.APIKey != "" || p.APIBaseURL != "" || p.Model != "" {
		res.ConfigSource = SourceCLI
	}
	if p.APIKey != "" {
		apiKey = p.APIKey
	}
	if p.APIBaseURL != "" {
		baseURL = p.APIBaseURL
	}
	if model == "" {
		model = ai.DefaultModel
	}
	if p.Model != "" {
		model = p.Model
	}
	res.Model = model

	if p.Model == "" {
		if err := ai.ValidateEnvDefaultModel(model); err != nil {
			return res.fail(KindConfig, err.Error())
		}
	}
	if apiKey == "" || baseURL == "" {
		return res.fail(KindConfig, msgMissingCredentials)
	}
	pref, err := packager.ParsePreference(p.Preference)
	if err != nil {
		return res.fail(KindConfig, err.Error())
	}
	res.Preference = string(pref)

	fr, err := frame.Load(ctx, p.FilePath, frame.Options{Python: r.Config.PythonPath})
	if err != nil {
		return res.fail(KindData, fmt.Sprintf("Error loading file: %v", err))
	}
	rows, cols := fr.Shape()
	r.Logger.Info("dataset loaded", "name", fr.Name, "rows", rows, "columns", cols)

	rt, err := r.NewRuntime(r.Config.Provider, ai.RuntimeConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		HTTPTimeout: time.Duration(r.Config.HTTPTimeoutSec) * time.Second,
		RetryMax:    r.Config.RetryMaxAttempts,
		BaseDelay:   time.Duration(r.Config.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(r.Config.RetryMaxDelayMs) * time.Millisecond,
	})
	if err != nil {
		return res.fail(KindConfig, err.Error())
	}

	var exec agent.Executor
	if r.Config.ExecuteCode && !p.NoExec && r.NewExecutor != nil {
		if exec, err = r.NewExecutor(); err != nil {
			r.Logger.Warn("code execution disabled", "error", err)
			exec = nil
		}
	}

	var chart string
	ag := agent.New(rt, exec, model, r.Logger)
	out, err := ag.Generate(ctx, agent.Request{
		Query:      p.Query,
		Frame:      fr,
		Preference: pref,
		OnChart: func(path string) {
			if name, ok := r.Packager.CaptureChart(path); ok {
				chart = name
			}
		},
	})
	if err != nil {
		kind, msg := classify(err)
		return res.fail(kind, msg)
	}

	cleaned := packager.CleanGeneratedCode(out.Code, pref)
	res.Code = &cleaned
	res.Tokens = packager.EstimateTokens(cleaned)
	res.Answer = strings.TrimSpace(out.Answer)
	res.Chart = chart
	return res
}

func classify(err error) (ErrorKind, string) {
	var execErr *sandbox.ExecError
	switch {
	case errors.Is(err, agent.ErrNoCode):
		return KindGeneration, "No code was generated"
	case errors.As(err, &execErr):
		return KindExecution, fmt.Sprintf("Error during code generation: %v", err)
	default:
		return KindProvider, fmt.Sprintf("Error during code generation: %v", err)
	}
}
