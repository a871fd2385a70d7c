package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"finadvisor/internal/metrics"
	"finadvisor/pkg/advisor"
)

// Options configures NewRouter. Metrics may be nil; CORSOrigins defaults to
// every origin.
type Options struct {
	Advisor     *advisor.Advisor
	Logger      *slog.Logger
	Metrics     *metrics.Collector
	CORSOrigins []string
}

// NewRouter builds the HTTP API router.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.InstrumentHandler)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))

	h := &handler{advisor: opts.Advisor, logger: logger}

	r.Get("/api/health", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/v1/financial-advisor", func(r chi.Router) {
		r.Post("/chat", h.chat)

		// Structured guidance
		r.Post("/investment-guidance/comprehensive", h.comprehensiveGuidance)
		r.Post("/investment-guidance/stocks", profileEndpoint(advisor.GenerateStockRecommendations))
		r.Post("/investment-guidance/sip", profileEndpoint(advisor.GenerateSIPRecommendations))
		r.Post("/investment-guidance/mutual-funds", profileEndpoint(advisor.GenerateMutualFundRecommendations))
		r.Post("/investment-guidance/etf", profileEndpoint(advisor.GenerateETFRecommendations))
		r.Post("/investment-guidance/bonds", profileEndpoint(advisor.GenerateBondRecommendations))
		r.Post("/investment-guidance/alternatives", profileEndpoint(advisor.GenerateAlternativeInvestments))
		r.Post("/investment-guidance/monthly-plan", profileEndpoint(advisor.CreateMonthlyInvestmentPlan))
		r.Post("/investment-guidance/asset-allocation", profileEndpoint(advisor.CalculateAssetAllocation))

		// Narratives
		r.Post("/investment-recommendations", narrativeEndpoint(advisor.InvestmentRecommendationsText))
		r.Post("/budgeting-advice", narrativeEndpoint(advisor.BudgetingAdvice))
		r.Post("/retirement-plan", narrativeEndpoint(advisor.RetirementPlan))
		r.Get("/age-based-goals/{age}", h.ageBasedGoals)

		// Reference data
		r.Get("/profile/template", h.profileTemplate)
		r.Post("/profile/validate", h.validateProfile)
		r.Get("/advisory-modes", h.advisoryModes)
		r.Post("/classify", h.classify)
	})

	// Chat history
	r.Get("/api/v1/chat/history/{sessionID}", h.getChatHistory)
	r.Delete("/api/v1/chat/history/{sessionID}", h.clearChatHistory)

	// Plain LLM access without the advisory framing requirements
	r.Route("/api/v1/llm", func(r chi.Router) {
		r.Post("/ask", h.ask)
		r.Post("/simple-chat", h.chat)
		r.Get("/chat/history/{sessionID}", h.getChatHistory)
		r.Delete("/chat/history/{sessionID}", h.clearChatHistory)
		r.Get("/health", h.health)
		r.Get("/models", h.models)
	})

	return r
}

type handler struct {
	advisor *advisor.Advisor
	logger  *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(message)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
