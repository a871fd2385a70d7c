package advisor

import (
	"context"
	"strings"
)

const (
	TemplateModelName = "template"

	// maxHistoryTurns bounds how much prior conversation is replayed to a
	// remote model.
	maxHistoryTurns = 20
)

// ModelParams are the chat-completion knobs a caller may override.
type ModelParams struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// ResponseRequest is one question in context.
type ResponseRequest struct {
	Profile  *FinancialProfile
	Mode     AdvisoryMode
	Topic    Topic
	Question string
	// History holds earlier turns of the session, oldest first, without the
	// current question.
	History []ChatMessage
	Params  ModelParams
}

// Reply is the unfinalized answer body.
type Reply struct {
	Text     string
	Model    string
	Fallback bool
}

// Responder turns a question into an answer body. FinalizeResponse is
// applied by the caller.
type Responder interface {
	Name() string
	Respond(ctx context.Context, req ResponseRequest) (Reply, error)
}

// LLMResponder sends the assembled advisory prompt through a Gateway.
type LLMResponder struct {
	gateway *Gateway
}

func NewLLMResponder(gateway *Gateway) *LLMResponder {
	if gateway == nil {
		gateway = NewGateway(GatewayOptions{})
	}
	return &LLMResponder{gateway: gateway}
}

func (r *LLMResponder) Name() string { return "llm" }

func (r *LLMResponder) Respond(ctx context.Context, req ResponseRequest) (Reply, error) {
	completion := r.gateway.Generate(ctx, CompletionRequest{
		Model:            req.Params.Model,
		System:           PersonalizedSystemPrompt(req.Profile, req.Mode),
		Messages:         completionMessages(req),
		MaxTokens:        req.Params.MaxTokens,
		Temperature:      req.Params.Temperature,
		TopP:             req.Params.TopP,
		FrequencyPenalty: req.Params.FrequencyPenalty,
		PresencePenalty:  req.Params.PresencePenalty,
		Question:         req.Question,
	})
	return Reply{Text: completion.Text, Model: completion.Model, Fallback: completion.Fallback}, nil
}

func completionMessages(req ResponseRequest) []Message {
	history := req.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role == RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	return append(messages, Message{
		Role: RoleUser,
		Content: BuildAdvisoryPrompt(PromptInput{
			Profile:  req.Profile,
			Mode:     req.Mode,
			Question: req.Question,
			Topic:    req.Topic,
		}),
	})
}

// TemplateResponder answers from the built-in narratives without any model.
type TemplateResponder struct{}

func (TemplateResponder) Name() string { return "template" }

func (TemplateResponder) Respond(_ context.Context, req ResponseRequest) (Reply, error) {
	topic := req.Topic
	if topic == "" {
		topic = ClassifyQuestion(req.Question)
	}
	return Reply{
		Text:  ComposeNarrative(req.Profile, req.Mode, topic),
		Model: TemplateModelName,
	}, nil
}
