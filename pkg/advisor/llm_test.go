package advisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeBackend struct {
	name     string
	complete func(ctx context.Context, req CompletionRequest) (string, error)

	mu    sync.Mutex
	calls []CompletionRequest
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.complete(ctx, req)
}

type llmCall struct {
	backend, outcome string
}

type recordingObserver struct {
	mu     sync.Mutex
	calls  []llmCall
	advice []Topic
}

func (o *recordingObserver) ObserveLLMCall(backend, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, llmCall{backend, outcome})
}

func (o *recordingObserver) ObserveAdvice(topic Topic, _ AdvisoryMode, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advice = append(o.advice, topic)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMockBackend_Respond(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock := NewMockBackend(func() time.Time { return now })

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "Hi there!", "Hello! How can I assist you today?"},
		{"greeting any case", "HEY, quick one", "Hello! How can I assist you today?"},
		{"weather", "What's the weather like?", "I'm sorry, I don't have access to real-time weather data."},
		{"time", "What time is it?", "current server time is approximately 2024-03-01T09:30:00Z"},
		{"this is not a greeting", "this is about my portfolio", "Thank you for your message: \"this is about my portfolio\"."},
		{"sometimes is not time", "sometimes I overspend", "This is a mock response"},
		{"echo", "Should I buy gold?", "Thank you for your message: \"Should I buy gold?\""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assertContains(t, mock.Respond(tc.message), tc.want, tc.name)
		})
	}
}

func TestGateway_NoRemoteUsesMock(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	g := NewGateway(GatewayOptions{Observer: obs, Logger: discardLogger()})
	if g.RemoteName() != "" {
		t.Fatalf("expected no remote, got %q", g.RemoteName())
	}

	got := g.Generate(context.Background(), CompletionRequest{Model: "gpt-4o", Question: "hello"})
	if got.Model != MockModelName || got.Backend != "mock" || got.Fallback {
		t.Fatalf("unexpected completion %+v", got)
	}
	if got.Text != "Hello! How can I assist you today?" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if len(obs.calls) != 1 || obs.calls[0] != (llmCall{"mock", OutcomeNoBackend}) {
		t.Fatalf("unexpected observations %+v", obs.calls)
	}
}

func TestGateway_RemoteSuccess(t *testing.T) {
	t.Parallel()

	remote := &fakeBackend{name: "fake", complete: func(_ context.Context, req CompletionRequest) (string, error) {
		return "  remote answer  ", nil
	}}
	obs := &recordingObserver{}
	g := NewGateway(GatewayOptions{Remote: remote, Observer: obs, Logger: discardLogger()})

	got := g.Generate(context.Background(), CompletionRequest{Model: "gpt-4o", Question: "q"})
	if got.Text != "remote answer" || got.Model != "gpt-4o" || got.Backend != "fake" || got.Fallback {
		t.Fatalf("unexpected completion %+v", got)
	}
	if obs.calls[0] != (llmCall{"fake", OutcomeSuccess}) {
		t.Fatalf("unexpected observation %+v", obs.calls[0])
	}
}

func TestGateway_FallsBackToMock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		complete func(ctx context.Context, req CompletionRequest) (string, error)
		timeout  time.Duration
		outcome  string
	}{
		{
			name: "error",
			complete: func(context.Context, CompletionRequest) (string, error) {
				return "", errors.New("401 unauthorized")
			},
			outcome: OutcomeError,
		},
		{
			name: "empty",
			complete: func(context.Context, CompletionRequest) (string, error) {
				return " \n ", nil
			},
			outcome: OutcomeEmpty,
		},
		{
			name: "panic",
			complete: func(context.Context, CompletionRequest) (string, error) {
				panic("boom")
			},
			outcome: OutcomePanic,
		},
		{
			name: "timeout",
			complete: func(ctx context.Context, _ CompletionRequest) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
			timeout: 20 * time.Millisecond,
			outcome: OutcomeTimeout,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			obs := &recordingObserver{}
			g := NewGateway(GatewayOptions{
				Remote:   &fakeBackend{name: "fake", complete: tc.complete},
				Timeout:  tc.timeout,
				Observer: obs,
				Logger:   discardLogger(),
			})

			got := g.Generate(context.Background(), CompletionRequest{Model: "gpt-4o", Question: "What's the weather?"})
			if !got.Fallback || got.Model != MockModelName {
				t.Fatalf("expected mock fallback, got %+v", got)
			}
			assertContains(t, got.Text, "weather data", "mock text")

			want := []llmCall{{"fake", tc.outcome}, {"mock", OutcomeFallback}}
			if len(obs.calls) != 2 || obs.calls[0] != want[0] || obs.calls[1] != want[1] {
				t.Fatalf("got observations %+v want %+v", obs.calls, want)
			}
		})
	}
}

func TestGateway_CallerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	remote := &fakeBackend{name: "fake", complete: func(ctx context.Context, _ CompletionRequest) (string, error) {
		return "", ctx.Err()
	}}
	g := NewGateway(GatewayOptions{Remote: remote, Logger: discardLogger()})
	if got := g.Generate(ctx, CompletionRequest{Question: "hi"}); !got.Fallback {
		t.Fatalf("expected fallback after cancellation, got %+v", got)
	}
}

func TestQuestionOf(t *testing.T) {
	t.Parallel()

	req := CompletionRequest{Messages: []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "second"},
	}}
	if got := questionOf(req); got != "second" {
		t.Fatalf("got %q want %q", got, "second")
	}
	req.Question = "raw"
	if got := questionOf(req); got != "raw" {
		t.Fatalf("got %q want %q", got, "raw")
	}
}

func TestIsTimeoutError(t *testing.T) {
	t.Parallel()

	if isTimeoutError(nil) {
		t.Fatal("nil is not a timeout")
	}
	if !isTimeoutError(context.DeadlineExceeded) {
		t.Fatal("expected deadline exceeded to be a timeout")
	}
	if !isTimeoutError(errors.New("Client.Timeout exceeded while awaiting headers")) {
		t.Fatal("expected client timeout message to be a timeout")
	}
	if isTimeoutError(errors.New("connection refused")) {
		t.Fatal("connection refused is not a timeout")
	}
	if !strings.Contains((&backendPanic{value: "x"}).Error(), "panicked") {
		t.Fatal("unexpected panic error text")
	}
}
