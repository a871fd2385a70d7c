package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finadvisor/internal/metrics"
	"finadvisor/pkg/advisor"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestRouter builds a router over an in-memory store and the template
// responder, so no test reaches the network.
func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return setupRouterWithStore(t, advisor.NewMemoryChatStore(nil), discardLogger())
}

func setupRouterWithStore(t *testing.T, store advisor.ChatStore, logger *slog.Logger) http.Handler {
	t.Helper()
	a := advisor.New(advisor.Options{
		Store:     store,
		Responder: advisor.TemplateResponder{},
		Logger:    logger,
	})
	return NewRouter(Options{Advisor: a, Logger: logger})
}

// doRequest performs a request and returns the response.
func doRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// parseJSON parses the response body into a map.
func parseJSON(rr *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &result)
	return result
}

func testProfile() map[string]interface{} {
	return map[string]interface{}{
		"age":                   32,
		"income_range":          "RANGE_50K_75K",
		"risk_tolerance":        "MODERATE",
		"investment_experience": "INTERMEDIATE",
		"financial_goals":       []string{"RETIREMENT"},
		"monthly_expenses":      2500,
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	rr := doRequest(router, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := parseJSON(rr)
	if resp["status"] != "ok" || resp["responder"] != "template" {
		t.Fatalf("unexpected health payload: %v", resp)
	}
}

func TestChatAndHistory(t *testing.T) {
	router := setupTestRouter(t)

	rr := doRequest(router, http.MethodPost, "/api/v1/financial-advisor/chat", map[string]interface{}{
		"message":           "Should I buy a house next year?",
		"session_id":        "sess-api",
		"advisory_mode":     "budgeting",
		"financial_profile": testProfile(),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := parseJSON(rr)
	if resp["session_id"] != "sess-api" {
		t.Fatalf("expected session id to be echoed, got %v", resp["session_id"])
	}
	if resp["advisory_mode"] != "BUDGETING" || resp["profile_based"] != true {
		t.Fatalf("unexpected response: %v", resp)
	}
	if msg, _ := resp["message"].(string); strings.TrimSpace(msg) == "" {
		t.Fatalf("expected a message, got %v", resp["message"])
	}

	rr = doRequest(router, http.MethodGet, "/api/v1/chat/history/sess-api", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var history chatHistoryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history.Messages))
	}
	if history.Messages[0].Role != advisor.RoleUser || history.Messages[1].Role != advisor.RoleAssistant {
		t.Fatalf("unexpected roles %q/%q", history.Messages[0].Role, history.Messages[1].Role)
	}

	rr = doRequest(router, http.MethodDelete, "/api/v1/chat/history/sess-api", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on clear, got %d", rr.Code)
	}
	rr = doRequest(router, http.MethodGet, "/api/v1/chat/history/sess-api", nil)
	if got := len(parseJSON(rr)["messages"].([]interface{})); got != 0 {
		t.Fatalf("expected empty history after clear, got %d", got)
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name      string
		body      interface{}
		errorCode string
	}{
		{"blank message", map[string]interface{}{"message": "   "}, "INVALID_INPUT"},
		{"invalid age", map[string]interface{}{
			"message":           "hi",
			"financial_profile": map[string]interface{}{"age": 12},
		}, "VALIDATION_ERROR"},
		{"unknown enum", map[string]interface{}{
			"message":           "hi",
			"financial_profile": map[string]interface{}{"risk_tolerance": "RECKLESS"},
		}, "VALIDATION_ERROR"},
		{"unknown field", map[string]interface{}{"message": "hi", "mood": "sunny"}, ""},
		{"malformed", `{"message":`, ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(router, http.MethodPost, "/api/v1/financial-advisor/chat", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			resp := parseJSON(rr)
			if tc.errorCode != "" && resp["error_code"] != tc.errorCode {
				t.Fatalf("expected error code %s, got %v", tc.errorCode, resp["error_code"])
			}
			if tc.errorCode == "" && resp["error"] == nil {
				t.Fatalf("expected error message, got %v", resp)
			}
		})
	}
}

func TestGuidanceEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	rr := doRequest(router, http.MethodPost, "/api/v1/financial-advisor/investment-guidance/comprehensive", testProfile())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var guidance advisor.InvestmentGuidance
	if err := json.Unmarshal(rr.Body.Bytes(), &guidance); err != nil {
		t.Fatalf("decode guidance: %v", err)
	}
	if guidance.AssetAllocation.Total() != 100 {
		t.Fatalf("expected allocation to sum to 100, got %d", guidance.AssetAllocation.Total())
	}
	if len(guidance.ImportantDisclaimers) == 0 {
		t.Fatal("expected disclaimers")
	}

	for _, path := range []string{"stocks", "sip", "mutual-funds", "etf", "bonds", "alternatives"} {
		rr := doRequest(router, http.MethodPost, "/api/v1/financial-advisor/investment-guidance/"+path, testProfile())
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		var items []map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if len(items) == 0 {
			t.Fatalf("%s: expected recommendations", path)
		}
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/investment-guidance/asset-allocation", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty body, got %d", rr.Code)
	}
	var alloc advisor.AssetAllocation
	if err := json.Unmarshal(rr.Body.Bytes(), &alloc); err != nil {
		t.Fatalf("decode allocation: %v", err)
	}
	if alloc.Total() != 100 {
		t.Fatalf("expected default allocation to sum to 100, got %d", alloc.Total())
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/investment-guidance/monthly-plan", testProfile())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if _, ok := parseJSON(rr)["total_monthly_investment"]; !ok {
		t.Fatalf("expected total_monthly_investment in %s", rr.Body.String())
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/investment-guidance/stocks",
		map[string]interface{}{"age": 150})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid profile, got %d", rr.Code)
	}
}

func TestNarrativeEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{"investment-recommendations", "budgeting-advice", "retirement-plan"} {
		rr := doRequest(router, http.MethodPost, "/api/v1/financial-advisor/"+path, testProfile())
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		resp := parseJSON(rr)
		if content, _ := resp["content"].(string); content == "" {
			t.Fatalf("%s: expected content, got %v", path, resp)
		}
		if summary, _ := resp["profile_summary"].(string); !strings.Contains(summary, "32") {
			t.Fatalf("%s: expected summary to mention age, got %q", path, summary)
		}
	}
}

func TestAgeBasedGoals(t *testing.T) {
	router := setupTestRouter(t)

	rr := doRequest(router, http.MethodGet, "/api/v1/financial-advisor/age-based-goals/45", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := parseJSON(rr)
	if resp["age_group"] != "Mid Career (40s)" {
		t.Fatalf("unexpected age group %v", resp["age_group"])
	}
	if goals, _ := resp["goals"].(string); goals == "" {
		t.Fatal("expected goals text")
	}

	for _, age := range []string{"abc", "12", "101"} {
		rr := doRequest(router, http.MethodGet, "/api/v1/financial-advisor/age-based-goals/"+age, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("age %s: expected 400, got %d", age, rr.Code)
		}
	}
}

func TestValidateProfile(t *testing.T) {
	router := setupTestRouter(t)

	rr := doRequest(router, http.MethodPost, "/api/v1/financial-advisor/profile/validate", testProfile())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp profileValidationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid || !resp.Completeness.IsComplete || resp.AgeGroup != "Early Career (30s)" {
		t.Fatalf("unexpected validation result %+v", resp)
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/profile/validate",
		map[string]interface{}{"age": 10, "risk_tolerance": "MODERATE"})
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Valid || resp.Error == "" {
		t.Fatalf("expected invalid profile, got %+v", resp)
	}
	if resp.Completeness.IsComplete || !resp.Completeness.RiskToleranceProvided || resp.Completeness.IncomeRangeProvided {
		t.Fatalf("unexpected completeness %+v", resp.Completeness)
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/profile/validate", nil)
	resp = profileValidationResponse{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid || resp.Completeness.IsComplete || resp.AgeGroup != "Unknown" {
		t.Fatalf("unexpected result for empty profile %+v", resp)
	}
}

func TestAdvisoryModesAndClassify(t *testing.T) {
	router := setupTestRouter(t)

	rr := doRequest(router, http.MethodGet, "/api/v1/financial-advisor/advisory-modes", nil)
	var modes []advisoryModeInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &modes); err != nil {
		t.Fatalf("decode modes: %v", err)
	}
	if len(modes) != len(advisor.AdvisoryModes()) || modes[0].Mode != advisor.ModeGeneral || modes[0].Description == "" {
		t.Fatalf("unexpected modes %+v", modes)
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/classify",
		map[string]string{"question": "Should I take a car loan?"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var classified classifyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &classified); err != nil {
		t.Fatalf("decode classify: %v", err)
	}
	if classified.Topic != advisor.ClassifyQuestion("Should I take a car loan?") || classified.NextSteps == "" {
		t.Fatalf("unexpected classification %+v", classified)
	}

	rr = doRequest(router, http.MethodPost, "/api/v1/financial-advisor/classify", map[string]string{"question": ""})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty question, got %d", rr.Code)
	}
}

type brokenStore struct {
	advisor.ChatStore
}

func (brokenStore) List(context.Context, string) ([]advisor.ChatMessage, error) {
	return nil, advisor.NewError(advisor.ErrCodeStorage, "database unavailable")
}

func TestChatHistoryStorageError(t *testing.T) {
	router := setupRouterWithStore(t, brokenStore{advisor.NewMemoryChatStore(nil)}, discardLogger())

	rr := doRequest(router, http.MethodGet, "/api/v1/chat/history/sess-x", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := parseJSON(rr)
	if resp["error_code"] != "STORAGE_ERROR" || resp["message"] != "database unavailable" {
		t.Fatalf("unexpected error payload %v", resp)
	}
	if id, _ := resp["request_id"].(string); id == "" {
		t.Fatal("expected request id in error response")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	collector, err := metrics.New()
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	a := advisor.New(advisor.Options{Responder: advisor.TemplateResponder{}, Logger: discardLogger(), Observer: collector})
	router := NewRouter(Options{Advisor: a, Logger: discardLogger(), Metrics: collector})

	doRequest(router, http.MethodGet, "/api/health", nil)
	doRequest(router, http.MethodPost, "/api/v1/financial-advisor/chat", map[string]string{"message": "How do I budget?"})

	rr := doRequest(router, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`finadvisor_http_requests_total{method="GET",route="/api/health",status="200"} 1`,
		`finadvisor_advice_responses_total`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, body)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	a := advisor.New(advisor.Options{Responder: advisor.TemplateResponder{}, Logger: discardLogger()})
	router := NewRouter(Options{Advisor: a, Logger: discardLogger(), CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/financial-advisor/chat", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
