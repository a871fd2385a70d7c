package mobile

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"finadvisor/pkg/advisor"
)

func setupMobileCore(t *testing.T) *Core {
	t.Helper()
	core, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = core.Close() })
	return core
}

const profileJSON = `{"age":28,"income_range":"RANGE_50K_75K","risk_tolerance":"AGGRESSIVE","investment_experience":"BEGINNER"}`

func TestMobileCoreChatFlow(t *testing.T) {
	core := setupMobileCore(t)

	resp, err := core.AskJSON(`{"message":"How do I start investing?","session_id":"m1","financial_profile":` + profileJSON + `}`)
	if err != nil {
		t.Fatalf("AskJSON: %v", err)
	}
	var advice advisor.AdviceResponse
	if err := json.Unmarshal([]byte(resp), &advice); err != nil {
		t.Fatalf("unmarshal advice: %v", err)
	}
	if advice.SessionID != "m1" || !advice.ProfileBased || advice.Message == "" {
		t.Fatalf("unexpected advice %+v", advice)
	}

	history, err := core.ChatHistoryJSON("m1")
	if err != nil {
		t.Fatalf("ChatHistoryJSON: %v", err)
	}
	var messages []advisor.ChatMessage
	if err := json.Unmarshal([]byte(history), &messages); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	if err := core.ClearChatHistory("m1"); err != nil {
		t.Fatalf("ClearChatHistory: %v", err)
	}
	history, err = core.ChatHistoryJSON("m1")
	if err != nil {
		t.Fatalf("ChatHistoryJSON: %v", err)
	}
	if history != "[]" {
		t.Fatalf("expected empty history, got %s", history)
	}
}

func TestMobileCoreGuidance(t *testing.T) {
	core := setupMobileCore(t)

	out, err := core.AssetAllocationJSON(profileJSON)
	if err != nil {
		t.Fatalf("AssetAllocationJSON: %v", err)
	}
	var alloc advisor.AssetAllocation
	if err := json.Unmarshal([]byte(out), &alloc); err != nil {
		t.Fatalf("unmarshal allocation: %v", err)
	}
	if alloc.Total() != 100 {
		t.Fatalf("expected allocation to sum to 100, got %d", alloc.Total())
	}

	if out, err = core.GuidanceJSON(""); err != nil || out == "" {
		t.Fatalf("GuidanceJSON without profile: %q %v", out, err)
	}
	if _, err := core.MonthlyPlanJSON(profileJSON); err != nil {
		t.Fatalf("MonthlyPlanJSON: %v", err)
	}
}

func TestMobileCoreErrors(t *testing.T) {
	core := setupMobileCore(t)

	if _, err := core.AskJSON(`{"message":"  "}`); !advisor.IsErrorCode(err, advisor.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input for blank message, got %v", err)
	}
	if _, err := core.AskJSON(`not json`); !advisor.IsErrorCode(err, advisor.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input for bad json, got %v", err)
	}
	if _, err := core.GuidanceJSON(`{"age":5}`); !advisor.IsErrorCode(err, advisor.ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := ClassifyQuestion("What about my home loan EMI?"); got == "" {
		t.Fatal("expected a topic")
	}
	var nilCore *Core
	if err := nilCore.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
