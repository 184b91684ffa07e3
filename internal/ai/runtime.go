package ai

import "context"

// Runtime is a minimal interface implemented by chat backends: the built-in
// OpenAI-compatible client and the openai-go SDK adapter.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
)

// Providers lists the registered provider names in a stable order.
func Providers() []string {
	return []string{ProviderDeepSeek, ProviderOpenAI}
}
