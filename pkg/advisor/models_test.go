package advisor

import (
	"strings"
	"testing"
)

func TestAdvisor_Models(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		responder   Responder
		wantFirst   string
		wantDefault string
		model       string
	}{
		{"template", TemplateResponder{}, TemplateModelName, DefaultModelName, ""},
		{"mock only", NewLLMResponder(NewGateway(GatewayOptions{Logger: discardLogger()})), MockModelName, DefaultModelName, ""},
		{"openai", NewLLMResponder(NewGateway(GatewayOptions{Remote: &fakeBackend{name: "openai"}, Logger: discardLogger()})), "gpt-3.5-turbo", "gpt-4", "gpt-4"},
		{"unknown backend", NewLLMResponder(NewGateway(GatewayOptions{Remote: &fakeBackend{name: "local"}, Logger: discardLogger()})), "llama3", "llama3", "llama3"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := New(Options{Responder: tc.responder, Logger: discardLogger(), DefaultModel: tc.model})
			models := a.Models()
			if len(models) == 0 || models[0].ID != tc.wantFirst {
				t.Fatalf("expected first model %q, got %+v", tc.wantFirst, models)
			}
			if a.DefaultModel() != tc.wantDefault {
				t.Fatalf("expected default %q, got %q", tc.wantDefault, a.DefaultModel())
			}
		})
	}
}

func TestAdvisor_ModelsReturnsCopy(t *testing.T) {
	a := New(Options{Responder: TemplateResponder{}, Logger: discardLogger()})
	a.Models()[0].ID = "changed"
	if a.Models()[0].ID != TemplateModelName {
		t.Fatal("expected catalog to be unaffected by callers")
	}
}

func TestNewProfileTemplate(t *testing.T) {
	tmpl := NewProfileTemplate()

	for _, field := range []string{"age", "risk_tolerance", "investment_experience", "income_range"} {
		if tmpl.RequiredFields[field] == "" {
			t.Fatalf("expected required field %q", field)
		}
	}
	if got := tmpl.RequiredFields["risk_tolerance"]; got != "CONSERVATIVE, MODERATE, AGGRESSIVE" {
		t.Fatalf("unexpected risk tolerance values %q", got)
	}
	if got := tmpl.RequiredFields["income_range"]; !strings.HasPrefix(got, "BELOW_25K, RANGE_25K_50K") || !strings.HasSuffix(got, "ABOVE_150K") {
		t.Fatalf("unexpected income values %q", got)
	}
	assertContains(t, tmpl.OptionalFields["financial_goals"], "CHILD_EDUCATION", "financial goals")
	assertContains(t, tmpl.OptionalFields["preferred_investment_types"], "ROBO_ADVISOR", "investment types")
	if len(tmpl.OptionalFields) != 11 {
		t.Fatalf("expected 11 optional fields, got %d", len(tmpl.OptionalFields))
	}
	if len(tmpl.ExampleInterests) == 0 {
		t.Fatal("expected example interests")
	}
}
