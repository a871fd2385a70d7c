package api

import "finadvisor/pkg/advisor"

type healthResponse struct {
	Status    string `json:"status"`
	Responder string `json:"responder"`
}

type classifyPayload struct {
	Question string `json:"question"`
}

type classifyResponse struct {
	Topic              advisor.Topic `json:"topic"`
	SpecializedContext string        `json:"specialized_context"`
	NextSteps          string        `json:"next_steps"`
}

type narrativeResponse struct {
	ProfileSummary string `json:"profile_summary"`
	Content        string `json:"content"`
}

type ageGoalsResponse struct {
	Age      int    `json:"age"`
	AgeGroup string `json:"age_group"`
	Goals    string `json:"goals"`
}

type profileValidationResponse struct {
	Valid        bool                        `json:"valid"`
	Error        string                      `json:"error,omitempty"`
	Completeness advisor.ProfileCompleteness `json:"completeness"`
	AgeGroup     string                      `json:"age_group"`
}

type advisoryModeInfo struct {
	Mode        advisor.AdvisoryMode `json:"mode"`
	Description string               `json:"description"`
}

type chatHistoryResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []advisor.ChatMessage `json:"messages"`
}

type askPayload struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

type modelsResponse struct {
	Models  []advisor.ModelInfo `json:"models"`
	Default string              `json:"default"`
}
