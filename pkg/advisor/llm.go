package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
	"unicode"
)

// Role is the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn sent to a backend.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries the OpenAI-style chat-completion parameters.
// Messages are ordered oldest first and end with the new user turn.
type CompletionRequest struct {
	Model            string
	System           string
	Messages         []Message
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64

	// Question is the user's raw text. The mock backend answers it instead
	// of the assembled prompt.
	Question string
}

// Completion is what the gateway hands back. It always has text.
type Completion struct {
	Text    string
	Model   string
	Backend string
	// Fallback is set when the mock answered because the remote backend was
	// missing or failed.
	Fallback bool
}

// Backend is one way of producing a completion.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Observer receives gateway and orchestrator events. internal/metrics
// implements it.
type Observer interface {
	ObserveLLMCall(backend, outcome string, elapsed time.Duration)
	ObserveAdvice(topic Topic, mode AdvisoryMode, responder string)
}

type nopObserver struct{}

func (nopObserver) ObserveLLMCall(string, string, time.Duration) {}
func (nopObserver) ObserveAdvice(Topic, AdvisoryMode, string)    {}

// LLM call outcomes reported to the Observer.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomePanic     = "panic"
	OutcomeEmpty     = "empty"
	OutcomeNoBackend = "no_backend"
	OutcomeFallback  = "fallback"
)

const (
	DefaultLLMTimeout = 30 * time.Second
	MockModelName     = "mock"
)

var errEmptyCompletion = errors.New("llm response content is empty")

// GatewayOptions configures NewGateway. Remote may be nil.
type GatewayOptions struct {
	Remote   Backend
	Mock     *MockBackend
	Timeout  time.Duration
	Logger   *slog.Logger
	Observer Observer
}

// Gateway routes completions to the remote backend and falls back to the
// mock whenever that is not possible.
type Gateway struct {
	remote   Backend
	mock     *MockBackend
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
}

func NewGateway(opts GatewayOptions) *Gateway {
	g := &Gateway{
		remote:   opts.Remote,
		mock:     opts.Mock,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if g.mock == nil {
		g.mock = NewMockBackend(nil)
	}
	if g.timeout <= 0 {
		g.timeout = DefaultLLMTimeout
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.observer == nil {
		g.observer = nopObserver{}
	}
	return g
}

// RemoteName is empty when no remote backend is configured.
func (g *Gateway) RemoteName() string {
	if g.remote == nil {
		return ""
	}
	return g.remote.Name()
}

// Generate never fails. Without a remote backend, or when the remote call
// errors, times out, panics or comes back empty, the mock answers.
func (g *Gateway) Generate(ctx context.Context, req CompletionRequest) Completion {
	if g.remote == nil {
		return g.mockCompletion(req, OutcomeNoBackend, false)
	}

	start := time.Now()
	text, err := g.callRemote(ctx, req)
	elapsed := time.Since(start)
	if err == nil {
		g.observer.ObserveLLMCall(g.remote.Name(), OutcomeSuccess, elapsed)
		return Completion{Text: text, Model: req.Model, Backend: g.remote.Name()}
	}

	outcome := classifyLLMError(err)
	g.observer.ObserveLLMCall(g.remote.Name(), outcome, elapsed)
	g.logger.Warn("llm call failed; using mock response",
		"backend", g.remote.Name(),
		"model", req.Model,
		"outcome", outcome,
		"elapsed_ms", elapsed.Milliseconds(),
		"err", err,
	)
	return g.mockCompletion(req, OutcomeFallback, true)
}

func (g *Gateway) callRemote(ctx context.Context, req CompletionRequest) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &backendPanic{value: r}
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err = g.remote.Complete(callCtx, req)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func (g *Gateway) mockCompletion(req CompletionRequest, outcome string, fallback bool) Completion {
	start := time.Now()
	text := g.mock.Respond(questionOf(req))
	g.observer.ObserveLLMCall(g.mock.Name(), outcome, time.Since(start))
	return Completion{Text: text, Model: MockModelName, Backend: g.mock.Name(), Fallback: fallback}
}

func questionOf(req CompletionRequest) string {
	if req.Question != "" {
		return req.Question
	}
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

type backendPanic struct {
	value any
}

func (p *backendPanic) Error() string {
	return fmt.Sprintf("llm backend panicked: %v", p.value)
}

func classifyLLMError(err error) string {
	var bp *backendPanic
	switch {
	case errors.As(err, &bp):
		return OutcomePanic
	case errors.Is(err, errEmptyCompletion):
		return OutcomeEmpty
	case isTimeoutError(err):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "context deadline exceeded") || strings.Contains(message, "timeout")
}

// MockBackend is a deterministic keyword responder used when no remote model
// is configured or reachable.
type MockBackend struct {
	now func() time.Time
}

// NewMockBackend uses time.Now when now is nil.
func NewMockBackend(now func() time.Time) *MockBackend {
	if now == nil {
		now = time.Now
	}
	return &MockBackend{now: now}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Complete(_ context.Context, req CompletionRequest) (string, error) {
	return m.Respond(questionOf(req)), nil
}

var greetingWords = map[string]struct{}{"hello": {}, "hi": {}, "hey": {}}

// Respond picks greeting, weather, time or a generic echo, in that order.
// Greetings and "time" match whole words only.
func (m *MockBackend) Respond(message string) string {
	lower := strings.ToLower(message)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	hasWord := func(set map[string]struct{}) bool {
		for _, w := range words {
			if _, ok := set[w]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case hasWord(greetingWords):
		return "Hello! How can I assist you today?"
	case strings.Contains(lower, "weather"):
		return "I'm sorry, I don't have access to real-time weather data. " +
			"You might want to check a weather service for current conditions."
	case hasWord(map[string]struct{}{"time": {}}):
		return "I don't have access to real-time information, but the current server time is approximately " +
			m.now().Format(time.RFC3339)
	default:
		return fmt.Sprintf("Thank you for your message: %q. This is a mock response since no LLM backend is available. "+
			"To enable real LLM responses, configure FIN_ADVISOR_LLM_API_KEY.", message)
	}
}
