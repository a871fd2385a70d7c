package advisor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIBackend talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIBackend struct {
	client openai.Client
}

// OpenAIOptions configures NewOpenAIBackend. HTTPClient is optional.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewOpenAIBackend(opts OpenAIOptions) (*OpenAIBackend, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, NewError(ErrCodeInvalidInput, "openai api key is required")
	}
	baseURL, err := normalizeOpenAIBaseURL(opts.BaseURL)
	if err != nil {
		return nil, WrapError(ErrCodeInvalidInput, "invalid openai base url", err)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		option.WithBaseURL(baseURL),
		// The gateway owns retries by falling back to the mock.
		option.WithMaxRetries(0),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return &OpenAIBackend{client: openai.NewClient(reqOpts...)}, nil
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(req.Model),
		Messages:         messages,
		Temperature:      openai.Float(req.Temperature),
		TopP:             openai.Float(req.TopP),
		FrequencyPenalty: openai.Float(req.FrequencyPenalty),
		PresencePenalty:  openai.Float(req.PresencePenalty),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// normalizeOpenAIBaseURL accepts a bare host, a base with or without /v1, or
// a full /chat/completions URL and returns the API root the SDK expects.
func normalizeOpenAIBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultOpenAIBaseURL, nil
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasSuffix(lower, "/chat/completions"):
		trimmed = trimmed[:len(trimmed)-len("/chat/completions")]
	case strings.HasSuffix(lower, "/responses"):
		trimmed = trimmed[:len(trimmed)-len("/responses")]
	case strings.HasSuffix(lower, "/v1"):
	default:
		trimmed += "/v1"
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid base_url scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid base_url host")
	}
	return trimmed, nil
}
