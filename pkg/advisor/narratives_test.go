package advisor

import (
	"strings"
	"testing"
)

func TestAgeBasedGoals(t *testing.T) {
	t.Parallel()

	if got := AgeBasedGoals(nil); got != "Please provide your age for personalized financial goals." {
		t.Fatalf("unexpected nil-age text: %q", got)
	}

	tests := []struct {
		age   int
		stage string
	}{
		{24, "In Your 20s - Foundation Building:"},
		{34, "In Your 30s - Acceleration Phase:"},
		{45, "In Your 40s - Peak Earning Years:"},
		{59, "In Your 50s - Pre-Retirement Planning:"},
		{82, "In Your 60s+ - Retirement Transition:"},
	}
	for _, tc := range tests {
		got := AgeBasedGoals(IntPtr(tc.age))
		if !strings.HasPrefix(got, "Financial milestones for your age (") {
			t.Errorf("age %d: unexpected header %q", tc.age, got)
		}
		assertContains(t, got, tc.stage, "stage heading")
		if strings.Count(got, "\n- ") != 5 {
			t.Errorf("age %d: expected five milestones, got %q", tc.age, got)
		}
	}

	if got := AgeBasedGoals(IntPtr(18)); got != "Financial milestones for your age (18):" {
		t.Fatalf("expected header only below 20, got %q", got)
	}
}

func TestBudgetingAdvice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *FinancialProfile
		stage   string
	}{
		{"no profile", nil, ""},
		{"20s", &FinancialProfile{Age: IntPtr(25)}, "Young Adult Budgeting (20s):"},
		{"40s", &FinancialProfile{Age: IntPtr(41)}, "Mid-Career Budgeting (30s-40s):"},
		{"50s", &FinancialProfile{Age: IntPtr(50)}, "Pre-Retirement Budgeting (50+):"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := BudgetingAdvice(tc.profile)
			if !strings.HasPrefix(got, "Personalized Budgeting Strategy:\n\n") {
				t.Fatalf("unexpected header: %q", got)
			}
			assertContains(t, got, "General Budgeting Tips:\n- Track expenses", "tips")
			if tc.stage != "" {
				assertContains(t, got, tc.stage, "stage")
			} else {
				assertNotContains(t, got, "Budgeting (", "no stage without age")
			}
			assertNotContains(t, got, "\n\n\n", "collapsed blank lines")
		})
	}
}

func TestBuildRetirementPlanData(t *testing.T) {
	t.Parallel()

	if _, ok := BuildRetirementPlanData(&FinancialProfile{}); ok {
		t.Fatal("expected ok=false without age")
	}

	tests := []struct {
		name     string
		profile  *FinancialProfile
		years    int
		strategy string
	}{
		{"long", &FinancialProfile{Age: IntPtr(30)}, 35, "Long-Term Strategy (30+ years)"},
		{"medium", &FinancialProfile{Age: IntPtr(45)}, 20, "Medium-Term Strategy (15-30 years)"},
		{"exactly fifteen is short", &FinancialProfile{Age: IntPtr(40), RetirementAgeTarget: IntPtr(55)}, 15, "Short-Term Strategy (<15 years)"},
		{"retired", &FinancialProfile{Age: IntPtr(70)}, 0, "Currently in Retirement"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, ok := BuildRetirementPlanData(tc.profile)
			if !ok {
				t.Fatal("expected ok")
			}
			if data.YearsToRetirement != tc.years {
				t.Errorf("expected %d years, got %d", tc.years, data.YearsToRetirement)
			}
			if data.Strategy.Title != tc.strategy {
				t.Errorf("got %q want %q", data.Strategy.Title, tc.strategy)
			}
		})
	}
}

func TestRetirementPlan(t *testing.T) {
	t.Parallel()

	if got := RetirementPlan(nil); got != "Please provide your age and financial information for a personalized retirement plan." {
		t.Fatalf("unexpected text: %q", got)
	}
	got := RetirementPlan(&FinancialProfile{Age: IntPtr(30), RetirementAgeTarget: IntPtr(60)})
	assertContains(t, got, "Current Age: 30\nTarget Retirement Age: 60\nYears to Retirement: 30", "horizon")
	assertContains(t, got, "Medium-Term Strategy (15-30 years):\n- ", "strategy")
}

func TestInvestmentRecommendationsText(t *testing.T) {
	t.Parallel()

	if got := InvestmentRecommendationsText(&FinancialProfile{RiskTolerance: RiskModerate}); got != "Please provide your age and risk tolerance for personalized investment recommendations." {
		t.Fatalf("unexpected text: %q", got)
	}

	got := InvestmentRecommendationsText(&FinancialProfile{
		Age:           IntPtr(30),
		RiskTolerance: RiskAggressive,
		Interests:     []string{"tech", "hiking"},
	})
	assertContains(t, got, "- Stocks/Equity: 70%\n- Bonds/Fixed Income: 30%", "split")
	assertContains(t, got, "For aggressive growth, consider:", "risk block")
	assertContains(t, got, "Based on your interests (tech, hiking)", "interests")
	assertContains(t, got, "- Technology sector ETFs (Nifty IT, ITBEES)", "tech pick")
	assertContains(t, got, "- Diversified funds aligned with your interests", "fallback pick")

	old := InvestmentRecommendationsText(&FinancialProfile{Age: IntPtr(90)})
	assertContains(t, old, "- Stocks/Equity: 20%", "equity floor")
	assertNotContains(t, old, "consider:", "no risk block without risk tolerance")
}

func TestBuildTopicNarrative(t *testing.T) {
	t.Parallel()

	if _, ok := BuildTopicNarrative(completeProfile(30), TopicGeneral); ok {
		t.Fatal("expected GENERAL to have no topic narrative")
	}

	for _, topic := range Topics() {
		if topic == TopicGeneral {
			continue
		}
		for _, p := range []*FinancialProfile{nil, completeProfile(30)} {
			n, ok := BuildTopicNarrative(p, topic)
			if !ok {
				t.Fatalf("%s: expected a narrative", topic)
			}
			if n.Topic != topic || n.Title == "" || len(n.Guidance.Items) == 0 || len(n.Figures) == 0 {
				t.Errorf("%s: incomplete narrative %+v", topic, n)
			}
			if !strings.HasPrefix(n.Summary, "Investor Profile: ") {
				t.Errorf("%s: unexpected summary %q", topic, n.Summary)
			}
		}
	}
}

func TestBuildTopicNarrative_Figures(t *testing.T) {
	t.Parallel()

	p := completeProfile(30)
	p.MonthlyExpenses = amountPtr(40000)
	p.DebtAmount = amountPtr(150000)

	loan, _ := BuildTopicNarrative(p, TopicLoan)
	want := map[string]string{
		"Estimated monthly income":             "₹62,500",
		"Ceiling for all EMIs (40% of income)": "₹25,000",
		"Current outstanding debt":             "₹150,000",
	}
	for _, f := range loan.Figures {
		if w, ok := want[f.Label]; ok {
			if f.Value != w {
				t.Errorf("%s: got %q want %q", f.Label, f.Value, w)
			}
			delete(want, f.Label)
		}
	}
	if len(want) != 0 {
		t.Errorf("missing figures: %v", want)
	}

	business, _ := BuildTopicNarrative(p, TopicBusiness)
	found := false
	for _, f := range business.Figures {
		if f.Label == "Emergency fund target (12 months)" {
			found = true
			if f.Value != "₹480,000" {
				t.Errorf("got %q want %q", f.Value, "₹480,000")
			}
		}
	}
	if !found {
		t.Fatal("expected an emergency fund figure when expenses are known")
	}
}

func TestComposeNarrative(t *testing.T) {
	t.Parallel()

	p := completeProfile(34)

	home := ComposeNarrative(p, ModeGeneral, TopicRealEstate)
	if !strings.HasPrefix(home, "🏠 Home Buying Plan\n\nInvestor Profile: ") {
		t.Fatalf("unexpected real estate narrative: %q", home)
	}
	assertContains(t, home, "Your numbers:\n- Estimated monthly income: ₹62,500", "figures")
	assertContains(t, home, "How to approach it:\n- ", "guidance")

	invest := ComposeNarrative(p, ModeGeneral, TopicInvestment)
	assertContains(t, invest, "- Equity: 66%", "allocation figure")
	assertContains(t, invest, "Themes to look at:", "themes")

	tests := []struct {
		name    string
		profile *FinancialProfile
		mode    AdvisoryMode
		want    string
	}{
		{"budgeting", p, ModeBudgeting, BudgetingAdvice(p)},
		{"retirement", p, ModeRetirement, RetirementPlan(p)},
		{"investment", p, ModeInvestment, InvestmentRecommendationsText(p)},
		{"general with age", p, ModeGeneral, AgeBasedGoals(p.Age)},
		{"tax mode falls to age goals", p, ModeTaxPlanning, AgeBasedGoals(p.Age)},
		{"general without profile", nil, ModeGeneral, BudgetingAdvice(nil)},
	}
	for _, tc := range tests {
		if got := ComposeNarrative(tc.profile, tc.mode, TopicGeneral); got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}
