package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type sdkCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// SDKClient adapts the official openai-go SDK to Runtime. It works with any
// OpenAI-compatible base URL, DeepSeek included.
type SDKClient struct {
	completions sdkCompletions
	apiKey      string
	baseURL     string
}

// NewSDKClient builds an SDK-backed runtime. An empty baseURL selects DefaultBaseURL.
func NewSDKClient(apiKey, baseURL string, httpTimeout time.Duration, retryMax int) *SDKClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithHTTPClient(&http.Client{Timeout: httpTimeout}),
		option.WithMaxRetries(sdkMaxRetries(retryMax)),
	}
	client := openai.NewClient(opts...)
	return &SDKClient{completions: &client.Chat.Completions, apiKey: apiKey, baseURL: baseURL}
}

// sdkMaxRetries converts a total attempt count, as used by Client, into the
// SDK's retry count.
func sdkMaxRetries(attempts int) int {
	if attempts <= 1 {
		return 0
	}
	return attempts - 1
}

func (c *SDKClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("API key is missing")
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := c.completions.New(ctx, params)
	if err != nil {
		return nil, c.convertError(ctx, err)
	}
	out := &GenerateResponse{
		ID: completion.ID,
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}
	for _, ch := range completion.Choices {
		out.Choices = append(out.Choices, Choice{Message: Message{Role: "assistant", Content: ch.Message.Content}})
	}
	return out, nil
}

// convertError maps SDK errors onto the same typed errors the built-in client returns.
func (c *SDKClient) convertError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		return &UnreachableError{Host: c.baseURL, Err: err}
	}
	apiErr := &APIError{StatusCode: sdkErr.StatusCode, Code: sdkErr.Code, Message: sdkErr.Message}
	if sdkErr.Response != nil {
		apiErr.RequestID = extractRequestID(sdkErr.Response)
		return classifyAPIError(apiErr, sdkErr.Response)
	}
	return classifyAPIError(apiErr, &http.Response{Header: http.Header{}})
}
