package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1500

// AnthropicBackend sends completions to the Anthropic Messages API.
type AnthropicBackend struct {
	client anthropic.Client
}

type AnthropicOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewAnthropicBackend(opts AnthropicOptions) (*AnthropicBackend, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, NewError(ErrCodeInvalidInput, "anthropic api key is required")
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return &AnthropicBackend{client: anthropic.NewClient(reqOpts...)}, nil
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

func (b *AnthropicBackend) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages:    anthropicMessages(req.Messages),
	}
	system := req.System
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = strings.TrimSpace(system + "\n\n" + m.Content)
		}
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// anthropicMessages drops system turns and merges consecutive turns from the
// same role, since the API requires user and assistant to alternate.
func anthropicMessages(in []Message) []anthropic.MessageParam {
	type turn struct {
		role Role
		text string
	}
	var turns []turn
	for _, m := range in {
		if m.Role == RoleSystem {
			continue
		}
		role := RoleUser
		if m.Role == RoleAssistant {
			role = RoleAssistant
		}
		if n := len(turns); n > 0 && turns[n-1].role == role {
			turns[n-1].text += "\n\n" + m.Content
			continue
		}
		turns = append(turns, turn{role: role, text: m.Content})
	}
	// The conversation has to open with a user turn.
	if len(turns) > 0 && turns[0].role == RoleAssistant {
		turns = turns[1:]
	}

	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.text)))
		} else {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(t.text)))
		}
	}
	return out
}
