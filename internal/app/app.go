// Package app turns resolved Settings into a ready Advisor. Both the HTTP
// server and the CLI go through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"finadvisor/internal/config"
	"finadvisor/pkg/advisor"
)

// App owns the advisor and the resources behind it.
type App struct {
	Advisor *advisor.Advisor
	Gateway *advisor.Gateway

	closers []func() error
}

// Options carries the non-config inputs of New.
type Options struct {
	Logger   *slog.Logger
	Observer advisor.Observer
}

// New opens the chat store, builds the completion backend and assembles the
// advisor. Callers must Close the result.
func New(ctx context.Context, s config.Settings, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{}

	store, err := a.openStore(s, logger)
	if err != nil {
		return nil, err
	}

	var responder advisor.Responder
	switch s.Responder {
	case config.ResponderTemplate:
		responder = advisor.TemplateResponder{}
	default:
		remote, err := NewBackend(ctx, s.LLM)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Gateway = advisor.NewGateway(advisor.GatewayOptions{
			Remote:   remote,
			Timeout:  s.LLM.Timeout,
			Logger:   logger,
			Observer: opts.Observer,
		})
		responder = advisor.NewLLMResponder(a.Gateway)
		if remote == nil {
			logger.Warn("no llm api key configured; answers come from the mock backend", "provider", s.LLM.Provider)
		}
	}

	cache, err := advisor.NewGuidanceCache(s.CacheEntries, s.CacheTTL)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("guidance cache: %w", err)
	}
	a.closers = append(a.closers, func() error { cache.Close(); return nil })

	a.Advisor = advisor.New(advisor.Options{
		Store:        store,
		Responder:    responder,
		Cache:        cache,
		Logger:       logger,
		Observer:     opts.Observer,
		DefaultModel: s.LLM.Model,
	})
	logger.Info("advisor ready",
		"store", s.Store,
		"responder", a.Advisor.ResponderName(),
		"llm_provider", s.LLM.Provider,
		"llm_model", s.LLM.Model,
	)
	return a, nil
}

func (a *App) openStore(s config.Settings, logger *slog.Logger) (advisor.ChatStore, error) {
	var opts advisor.SQLStoreOptions
	switch s.Store {
	case config.StoreMemory:
		return advisor.NewMemoryChatStore(nil), nil
	case config.StorePostgres:
		opts = advisor.SQLStoreOptions{Dialect: advisor.DialectPostgres, DSN: s.PostgresDSN, Logger: logger}
	default:
		dbPath := s.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(s.DataDir, "advisor.db")
		}
		opts = advisor.SQLStoreOptions{Dialect: advisor.DialectSQLite, DSN: dbPath, Logger: logger}
	}
	store, err := advisor.OpenSQLChatStore(opts)
	if err != nil {
		return nil, fmt.Errorf("open chat store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases everything New opened, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewBackend returns nil without an API key.
func NewBackend(ctx context.Context, s config.LLMSettings) (advisor.Backend, error) {
	if s.APIKey == "" {
		return nil, nil
	}
	switch s.Provider {
	case config.ProviderAnthropic:
		return advisor.NewAnthropicBackend(advisor.AnthropicOptions{APIKey: s.APIKey, BaseURL: s.BaseURL})
	case config.ProviderGemini:
		return advisor.NewGeminiBackend(ctx, advisor.GeminiOptions{APIKey: s.APIKey, BaseURL: s.BaseURL})
	case config.ProviderOpenAI, "":
		return advisor.NewOpenAIBackend(advisor.OpenAIOptions{APIKey: s.APIKey, BaseURL: s.BaseURL})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}
