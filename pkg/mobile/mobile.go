package mobile

import (
	"context"
	"encoding/json"
	"strings"

	"finadvisor/pkg/advisor"
)

// Core wraps the advisor for gomobile bindings. Every payload crosses the
// boundary as a JSON string.
type Core struct {
	advisor *advisor.Advisor
	store   *advisor.SQLChatStore
}

// Open keeps chat history in the SQLite file at dbPath. Answers come from
// the offline template responder.
func Open(dbPath string) (*Core, error) {
	store, err := advisor.OpenSQLChatStore(advisor.SQLStoreOptions{DSN: dbPath})
	if err != nil {
		return nil, err
	}
	return &Core{
		advisor: advisor.New(advisor.Options{Store: store, Responder: advisor.TemplateResponder{}}),
		store:   store,
	}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}

// AskJSON answers an advice request and returns the response as JSON.
func (c *Core) AskJSON(requestJSON string) (string, error) {
	var req advisor.AdviceRequest
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return "", advisor.WrapError(advisor.ErrCodeInvalidInput, "decode advice request", err)
	}
	if strings.TrimSpace(req.Message) == "" {
		return "", advisor.NewError(advisor.ErrCodeInvalidInput, "message is required")
	}
	if err := req.FinancialProfile.Validate(); err != nil {
		return "", err
	}
	return marshalJSON(c.advisor.GenerateAdvice(context.Background(), req))
}

// GuidanceJSON returns comprehensive investment guidance for a profile.
// An empty string means no profile.
func (c *Core) GuidanceJSON(profileJSON string) (string, error) {
	profile, err := parseProfile(profileJSON)
	if err != nil {
		return "", err
	}
	return marshalJSON(c.advisor.GenerateComprehensiveGuidance(profile))
}

// AssetAllocationJSON returns the recommended allocation for a profile.
func (c *Core) AssetAllocationJSON(profileJSON string) (string, error) {
	profile, err := parseProfile(profileJSON)
	if err != nil {
		return "", err
	}
	return marshalJSON(advisor.CalculateAssetAllocation(profile))
}

// MonthlyPlanJSON returns the monthly investment plan for a profile.
func (c *Core) MonthlyPlanJSON(profileJSON string) (string, error) {
	profile, err := parseProfile(profileJSON)
	if err != nil {
		return "", err
	}
	return marshalJSON(advisor.CreateMonthlyInvestmentPlan(profile))
}

// ChatHistoryJSON returns the session's messages, oldest first.
func (c *Core) ChatHistoryJSON(sessionID string) (string, error) {
	messages, err := c.advisor.GetChatHistory(context.Background(), sessionID)
	if err != nil {
		return "", err
	}
	if messages == nil {
		messages = []advisor.ChatMessage{}
	}
	return marshalJSON(messages)
}

// ClearChatHistory deletes every message of a session.
func (c *Core) ClearChatHistory(sessionID string) error {
	return c.advisor.ClearChatHistory(context.Background(), sessionID)
}

// ClassifyQuestion returns the topic name for a question.
func ClassifyQuestion(question string) string {
	return string(advisor.ClassifyQuestion(question))
}

func parseProfile(profileJSON string) (*advisor.FinancialProfile, error) {
	if strings.TrimSpace(profileJSON) == "" {
		return nil, nil
	}
	var profile advisor.FinancialProfile
	if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
		return nil, advisor.WrapError(advisor.ErrCodeInvalidInput, "decode profile", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
