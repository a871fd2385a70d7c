package advisor

// ModelInfo describes a model a client may name in AdviceRequest.ModelName.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var modelCatalog = map[string][]ModelInfo{
	"openai": {
		{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Description: "Fast and efficient for most conversational tasks"},
		{ID: "gpt-4", Name: "GPT-4", Description: "Most capable model, best for complex reasoning"},
		{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Description: "Latest GPT-4 model with improved performance"},
	},
	"anthropic": {
		{ID: "claude-3-5-haiku-latest", Name: "Claude 3.5 Haiku", Description: "Fast responses for everyday questions"},
		{ID: "claude-3-5-sonnet-latest", Name: "Claude 3.5 Sonnet", Description: "Stronger reasoning for detailed planning"},
	},
	"gemini": {
		{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Description: "Low latency general purpose model"},
		{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Description: "Higher quality answers for complex questions"},
	},
	"mock": {
		{ID: MockModelName, Name: "Offline mock", Description: "Canned answers used when no LLM backend is configured"},
	},
	"template": {
		{ID: TemplateModelName, Name: "Template", Description: "Deterministic topic templates built from the profile"},
	},
}

// Models lists what the active responder can answer with.
func (a *Advisor) Models() []ModelInfo {
	key := "template"
	if r, ok := a.responder.(*LLMResponder); ok {
		key = r.gateway.RemoteName()
		if key == "" {
			key = "mock"
		}
	}
	models := modelCatalog[key]
	if len(models) == 0 {
		models = []ModelInfo{{ID: a.defaultModel, Name: a.defaultModel, Description: "Configured default model"}}
	}
	out := make([]ModelInfo, len(models))
	copy(out, models)
	return out
}

// DefaultModel is used when a request names no model.
func (a *Advisor) DefaultModel() string { return a.defaultModel }
