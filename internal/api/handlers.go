package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finadvisor/pkg/advisor"
)

const maxBodyBytes = 1 << 20

const defaultAskQuestion = "Hello! How can I help you with your financial questions today?"

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Responder: h.advisor.ResponderName()})
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var payload advisor.AdviceRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeErrorResponse(w, r, http.StatusBadRequest, advisor.NewError(advisor.ErrCodeInvalidInput, "message is required"))
		return
	}
	if err := payload.FinancialProfile.Validate(); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.advisor.GenerateAdvice(r.Context(), payload))
}

// ask answers a bare question. A blank question gets a greeting rather
// than a 400.
func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	var payload askPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	question := strings.TrimSpace(payload.Question)
	if question == "" {
		question = defaultAskQuestion
	}
	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("simple-%d", time.Now().UnixMilli())
	}
	maxTokens, temperature := advisor.DefaultMaxTokens, advisor.DefaultTemperature
	writeJSON(w, http.StatusOK, h.advisor.GenerateAdvice(r.Context(), advisor.AdviceRequest{
		Message:     question,
		SessionID:   sessionID,
		ModelName:   payload.ModelName,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}))
}

func (h *handler) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{Models: h.advisor.Models(), Default: h.advisor.DefaultModel()})
}

func (h *handler) profileTemplate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, advisor.NewProfileTemplate())
}

func (h *handler) comprehensiveGuidance(w http.ResponseWriter, r *http.Request) {
	profile, ok := readProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.advisor.GenerateComprehensiveGuidance(profile))
}

// profileEndpoint serves one structured generator over a posted profile.
func profileEndpoint[T any](build func(*advisor.FinancialProfile) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := readProfile(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, build(profile))
	}
}

func narrativeEndpoint(build func(*advisor.FinancialProfile) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := readProfile(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, narrativeResponse{
			ProfileSummary: advisor.ProfileSummary(profile),
			Content:        build(profile),
		})
	}
}

func (h *handler) ageBasedGoals(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "age")
	age, err := strconv.Atoi(raw)
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, advisor.NewError(advisor.ErrCodeInvalidInput, fmt.Sprintf("invalid age %q", raw)))
		return
	}
	probe := &advisor.FinancialProfile{Age: advisor.IntPtr(age)}
	if err := probe.Validate(); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, ageGoalsResponse{
		Age:      age,
		AgeGroup: advisor.AgeGroup(probe.Age),
		Goals:    advisor.AgeBasedGoals(probe.Age),
	})
}

func (h *handler) validateProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := decodeProfile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := profileValidationResponse{
		Valid:        true,
		Completeness: advisor.CheckProfile(profile),
	}
	if profile != nil {
		resp.AgeGroup = advisor.AgeGroup(profile.Age)
	} else {
		resp.AgeGroup = advisor.AgeGroup(nil)
	}
	if err := profile.Validate(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) advisoryModes(w http.ResponseWriter, r *http.Request) {
	modes := advisor.AdvisoryModes()
	out := make([]advisoryModeInfo, 0, len(modes))
	for _, m := range modes {
		out = append(out, advisoryModeInfo{Mode: m, Description: m.Description()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	var payload classifyPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Question) == "" {
		writeErrorResponse(w, r, http.StatusBadRequest, advisor.NewError(advisor.ErrCodeInvalidInput, "question is required"))
		return
	}
	topic := advisor.ClassifyQuestion(payload.Question)
	writeJSON(w, http.StatusOK, classifyResponse{
		Topic:              topic,
		SpecializedContext: advisor.SpecializedContext(topic),
		NextSteps:          advisor.NextSteps(topic),
	})
}

func (h *handler) getChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.advisor.GetChatHistory(r.Context(), sessionID)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	if messages == nil {
		messages = []advisor.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, chatHistoryResponse{SessionID: sessionID, Messages: messages})
}

func (h *handler) clearChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.advisor.ClearChatHistory(r.Context(), sessionID); err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}

// readProfile decodes and validates the request profile, writing a 400 on
// failure.
func readProfile(w http.ResponseWriter, r *http.Request) (*advisor.FinancialProfile, bool) {
	profile, err := decodeProfile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err := profile.Validate(); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	return profile, true
}

// decodeProfile treats an empty body as "no profile".
func decodeProfile(r *http.Request) (*advisor.FinancialProfile, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("request body too large")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var profile advisor.FinancialProfile
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
