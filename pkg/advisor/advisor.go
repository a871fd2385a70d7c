package advisor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chat-completion defaults applied when a request leaves a knob unset.
const (
	DefaultModelName   = "gpt-3.5-turbo"
	DefaultMaxTokens   = 1500
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
)

const (
	FallbackModelName = "fallback"
	apologyMessage    = "I apologize, but I'm having trouble processing your request right now. " +
		"Please try again later or contact support if the issue persists."
)

// AdviceRequest is one chat question. Pointer knobs distinguish "unset"
// from an explicit zero.
type AdviceRequest struct {
	Message          string            `json:"message"`
	SessionID        string            `json:"session_id,omitempty"`
	ModelName        string            `json:"model_name,omitempty"`
	MaxTokens        *int              `json:"max_tokens,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	FinancialProfile *FinancialProfile `json:"financial_profile,omitempty"`
	AdvisoryMode     string            `json:"advisory_mode,omitempty"`
}

type AdviceResponse struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"session_id"`
	Message      string       `json:"message"`
	ModelName    string       `json:"model_name"`
	CreatedAt    time.Time    `json:"created_at"`
	TokenCount   int          `json:"token_count"`
	AdvisoryMode AdvisoryMode `json:"advisory_mode"`
	ProfileBased bool         `json:"profile_based"`
}

// Options configures New. Every field is optional. DefaultModel replaces
// DefaultModelName for requests that name no model.
type Options struct {
	Store        ChatStore
	Responder    Responder
	Cache        *GuidanceCache
	Logger       *slog.Logger
	Observer     Observer
	Now          func() time.Time
	NewID        func() string
	DefaultModel string
}

// Advisor answers questions, keeps their history and serves structured
// guidance.
type Advisor struct {
	store        ChatStore
	responder    Responder
	cache        *GuidanceCache
	logger       *slog.Logger
	observer     Observer
	now          func() time.Time
	newID        func() string
	defaultModel string
}

func New(opts Options) *Advisor {
	a := &Advisor{
		store:        opts.Store,
		responder:    opts.Responder,
		cache:        opts.Cache,
		logger:       opts.Logger,
		observer:     opts.Observer,
		now:          opts.Now,
		newID:        opts.NewID,
		defaultModel: strings.TrimSpace(opts.DefaultModel),
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.store == nil {
		a.store = NewMemoryChatStore(a.now)
	}
	if a.observer == nil {
		a.observer = nopObserver{}
	}
	if a.responder == nil {
		a.responder = NewLLMResponder(NewGateway(GatewayOptions{
			Logger:   a.logger,
			Observer: a.observer,
		}))
	}
	if a.newID == nil {
		a.newID = func() string { return uuid.NewString() }
	}
	if a.defaultModel == "" {
		a.defaultModel = DefaultModelName
	}
	return a
}

// ResponderName reports which strategy answers chat questions.
func (a *Advisor) ResponderName() string { return a.responder.Name() }

// GenerateAdvice never returns nil. Any failure, including a panic further
// down, yields an apology carrying the caller's session id.
func (a *Advisor) GenerateAdvice(ctx context.Context, req AdviceRequest) (resp *AdviceResponse) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = a.newID()
	}
	mode := ParseAdvisoryMode(req.AdvisoryMode)

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("advice generation panicked", "session_id", sessionID, "panic", r)
			resp = a.apology(sessionID, mode)
		}
	}()

	out, err := a.generate(ctx, sessionID, mode, req)
	if err != nil {
		a.logger.Error("advice generation failed", "session_id", sessionID, "err", err)
		return a.apology(sessionID, mode)
	}
	return out
}

func (a *Advisor) generate(ctx context.Context, sessionID string, mode AdvisoryMode, req AdviceRequest) (*AdviceResponse, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, NewError(ErrCodeInvalidInput, "message is required")
	}
	profile := req.FinancialProfile
	topic := ClassifyQuestion(question)

	history, err := a.store.List(ctx, sessionID)
	if err != nil {
		a.logger.Warn("load chat history failed; answering without it", "session_id", sessionID, "err", err)
		history = nil
	}
	if _, err := a.store.Append(ctx, sessionID, RoleUser, question); err != nil {
		return nil, err
	}

	reply, err := a.responder.Respond(ctx, ResponseRequest{
		Profile:  profile,
		Mode:     mode,
		Topic:    topic,
		Question: question,
		History:  history,
		Params:   modelParams(req, a.defaultModel),
	})
	if err != nil {
		return nil, err
	}

	text := FinalizeResponse(reply.Text, profile, topic)
	saved, err := a.store.Append(ctx, sessionID, RoleAssistant, text)
	if err != nil {
		return nil, err
	}

	a.observer.ObserveAdvice(topic, mode, a.responder.Name())
	a.logger.Info("advice generated",
		"session_id", sessionID,
		"topic", topic,
		"mode", mode,
		"model", reply.Model,
		"fallback", reply.Fallback,
	)
	return &AdviceResponse{
		ID:           a.newID(),
		SessionID:    sessionID,
		Message:      text,
		ModelName:    reply.Model,
		CreatedAt:    saved.CreatedAt,
		TokenCount:   saved.TokenCount,
		AdvisoryMode: mode,
		ProfileBased: profile != nil,
	}, nil
}

func (a *Advisor) apology(sessionID string, mode AdvisoryMode) *AdviceResponse {
	return &AdviceResponse{
		ID:           a.newID(),
		SessionID:    sessionID,
		Message:      apologyMessage,
		ModelName:    FallbackModelName,
		CreatedAt:    a.now().UTC(),
		TokenCount:   EstimateTokens(apologyMessage),
		AdvisoryMode: mode,
	}
}

func modelParams(req AdviceRequest, defaultModel string) ModelParams {
	params := ModelParams{
		Model:       strings.TrimSpace(req.ModelName),
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
	if params.Model == "" {
		params.Model = defaultModel
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		params.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		params.TopP = *req.TopP
	}
	if req.FrequencyPenalty != nil {
		params.FrequencyPenalty = *req.FrequencyPenalty
	}
	if req.PresencePenalty != nil {
		params.PresencePenalty = *req.PresencePenalty
	}
	return params
}

// GenerateComprehensiveGuidance builds every structured recommendation for p.
func (a *Advisor) GenerateComprehensiveGuidance(p *FinancialProfile) *InvestmentGuidance {
	if a.cache == nil {
		return BuildInvestmentGuidance(p)
	}
	return a.cache.Get(p)
}

func (a *Advisor) GetChatHistory(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	return a.store.List(ctx, sessionID)
}

func (a *Advisor) ClearChatHistory(ctx context.Context, sessionID string) error {
	if err := a.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	a.logger.Info("chat history cleared", "session_id", sessionID)
	return nil
}

func (a *Advisor) IsProfileComplete(p *FinancialProfile) bool {
	return IsProfileComplete(p)
}
