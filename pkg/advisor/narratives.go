package advisor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/shopspring/decimal"
)

// Narratives are built in two steps: a Build function computes everything
// from the profile, then a pongo2 template turns it into text. Tests target
// the data functions; templates only lay words out.

// NarrativeSection is a titled bullet list.
type NarrativeSection struct {
	Title string
	Items []string
}

// NarrativeFigure is one labelled, preformatted number.
type NarrativeFigure struct {
	Label string
	Value string
}

var (
	ageGoalsTemplate = pongo2.Must(pongo2.FromString(`{% autoescape off %}Financial milestones for your age ({{ age }}):

{% if stage %}{{ stage.Title }}:
{% for item in stage.Items %}- {{ item }}
{% endfor %}{% endif %}{% endautoescape %}`))

	budgetingTemplate = pongo2.Must(pongo2.FromString(`{% autoescape off %}Personalized Budgeting Strategy:

{% if stage %}{{ stage.Title }}:
{% for item in stage.Items %}- {{ item }}
{% endfor %}
{% endif %}{{ tips.Title }}:
{% for item in tips.Items %}- {{ item }}
{% endfor %}{% endautoescape %}`))

	retirementTemplate = pongo2.Must(pongo2.FromString(`{% autoescape off %}Personalized Retirement Planning:

Current Age: {{ current_age }}
Target Retirement Age: {{ target_age }}
Years to Retirement: {{ years_left }}

{{ strategy.Title }}:
{% for item in strategy.Items %}- {{ item }}
{% endfor %}{% endautoescape %}`))

	investmentTextTemplate = pongo2.Must(pongo2.FromString(`{% autoescape off %}Based on your age ({{ age }}), here's a suggested asset allocation:
- Stocks/Equity: {{ equity }}%
- Bonds/Fixed Income: {{ bonds }}%

{% if risk %}{{ risk.Title }}
{% for item in risk.Items %}- {{ item }}
{% endfor %}{% endif %}{% if interests %}
Based on your interests ({{ interests|join:", " }}), you might consider:
{% for item in interest_picks %}- {{ item }}
{% endfor %}{% endif %}{% endautoescape %}`))

	topicTemplate = pongo2.Must(pongo2.FromString(`{% autoescape off %}{{ title }}

{{ summary }}
{% if figures %}
Your numbers:
{% for f in figures %}- {{ f.Label }}: {{ f.Value }}
{% endfor %}{% endif %}
{{ guidance.Title }}:
{% for item in guidance.Items %}- {{ item }}
{% endfor %}{% endautoescape %}`))
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

func renderNarrative(tpl *pongo2.Template, ctx pongo2.Context) string {
	out, err := tpl.Execute(ctx)
	if err != nil {
		// Templates are static; an execution error is a programming bug.
		panic(fmt.Sprintf("render narrative: %v", err))
	}
	return strings.TrimRight(blankRuns.ReplaceAllString(out, "\n\n"), "\n")
}

// lifeStages is ordered by starting age.
var lifeStages = []struct {
	from    int
	section NarrativeSection
}{
	{20, NarrativeSection{"In Your 20s - Foundation Building", []string{
		"Build emergency fund (3-6 months expenses)",
		"Start investing early (even small SIPs)",
		"Maximize employer EPF and VPF contributions",
		"Pay off high-interest debt",
		"Build good credit history",
	}}},
	{30, NarrativeSection{"In Your 30s - Acceleration Phase", []string{
		"Aim to save 1x your annual salary by 30",
		"Increase retirement contributions to 15-20%",
		"Consider home ownership if financially ready",
		"Start a dedicated education fund if you have children",
		"Review and increase insurance coverage",
	}}},
	{40, NarrativeSection{"In Your 40s - Peak Earning Years", []string{
		"Target 3x annual salary in retirement savings by 40",
		"Maximize NPS and PPF contributions",
		"Focus on children's education funding",
		"Consider long-term health insurance top-ups",
		"Review estate planning documents",
	}}},
	{50, NarrativeSection{"In Your 50s - Pre-Retirement Planning", []string{
		"Aim for 5-7x annual salary in retirement savings",
		"Use the additional NPS deduction under Section 80CCD(1B)",
		"Create detailed retirement budget",
		"Consider healthcare costs in retirement",
		"Pay off home loan if possible",
	}}},
	{60, NarrativeSection{"In Your 60s+ - Retirement Transition", []string{
		"Target 8-10x annual salary for comfortable retirement",
		"Plan pension and annuity payouts (SCSS, NPS annuity)",
		"Shift to more conservative investments",
		"Finalize health insurance and long-term care plans",
		"Consider legacy and estate planning",
	}}},
}

// lifeStageFor returns nil for ages below 20.
func lifeStageFor(age int) *NarrativeSection {
	for i := len(lifeStages) - 1; i >= 0; i-- {
		if age >= lifeStages[i].from {
			s := lifeStages[i].section
			return &s
		}
	}
	return nil
}

// AgeBasedGoals lists the financial milestones for the investor's decade.
func AgeBasedGoals(age *int) string {
	if age == nil {
		return "Please provide your age for personalized financial goals."
	}
	ctx := pongo2.Context{"age": *age}
	if stage := lifeStageFor(*age); stage != nil {
		ctx["stage"] = stage
	}
	return renderNarrative(ageGoalsTemplate, ctx)
}

var budgetingTips = NarrativeSection{"General Budgeting Tips", []string{
	"Track expenses for at least one month",
	"Use the envelope method for discretionary spending",
	"Automate savings and bill payments",
	"Review and adjust budget quarterly",
}}

func budgetingStage(p *FinancialProfile) *NarrativeSection {
	if !p.hasAge() {
		return nil
	}
	switch age := *p.Age; {
	case age < 30:
		return &NarrativeSection{"Young Adult Budgeting (20s)", []string{
			"Follow 50/30/20 rule: 50% needs, 30% wants, 20% savings",
			"Prioritize building emergency fund first",
			"Keep housing costs under 30% of income",
		}}
	case age < 50:
		return &NarrativeSection{"Mid-Career Budgeting (30s-40s)", []string{
			"Increase savings rate to 20-25% if possible",
			"Balance family expenses with retirement savings",
			"Consider tax-advantaged accounts for children's education",
		}}
	default:
		return &NarrativeSection{"Pre-Retirement Budgeting (50+)", []string{
			"Aim for 25-30% savings rate with catch-up contributions",
			"Focus on debt elimination before retirement",
			"Plan for healthcare cost increases",
		}}
	}
}

// BudgetingAdvice gives the age-tiered budgeting strategy plus general tips.
// It works without a profile.
func BudgetingAdvice(p *FinancialProfile) string {
	ctx := pongo2.Context{"tips": budgetingTips}
	if stage := budgetingStage(p); stage != nil {
		ctx["stage"] = stage
	}
	return renderNarrative(budgetingTemplate, ctx)
}

// RetirementPlanData is the computed half of RetirementPlan.
type RetirementPlanData struct {
	CurrentAge        int
	TargetAge         int
	YearsToRetirement int
	Strategy          NarrativeSection
}

// BuildRetirementPlanData reports ok=false when age is missing.
func BuildRetirementPlanData(p *FinancialProfile) (RetirementPlanData, bool) {
	if !p.hasAge() {
		return RetirementPlanData{}, false
	}
	target := p.retirementTarget(defaultRetirementAge)
	left := target - *p.Age

	var strategy NarrativeSection
	switch {
	case left > 30:
		strategy = NarrativeSection{"Long-Term Strategy (30+ years)", []string{
			"Focus on aggressive growth investments",
			"Maximize compound interest with early contributions",
			"Consider NPS and PPF for tax-efficient growth",
		}}
	case left > 15:
		strategy = NarrativeSection{"Medium-Term Strategy (15-30 years)", []string{
			"Balance growth with some stability",
			"Increase contribution rates annually",
			"Diversify across asset classes",
		}}
	case left > 0:
		strategy = NarrativeSection{"Short-Term Strategy (<15 years)", []string{
			"Shift towards more conservative investments",
			"Maximize catch-up contributions if 50+",
			"Plan withdrawal strategies",
		}}
	default:
		strategy = NarrativeSection{"Currently in Retirement", []string{
			"Focus on capital preservation",
			"Implement systematic withdrawal plan",
			"Keep 2-3 years of expenses in liquid and debt funds",
		}}
	}

	return RetirementPlanData{
		CurrentAge:        *p.Age,
		TargetAge:         target,
		YearsToRetirement: max(0, left),
		Strategy:          strategy,
	}, true
}

// RetirementPlan renders the retirement horizon and the matching strategy.
func RetirementPlan(p *FinancialProfile) string {
	data, ok := BuildRetirementPlanData(p)
	if !ok {
		return "Please provide your age and financial information for a personalized retirement plan."
	}
	return renderNarrative(retirementTemplate, pongo2.Context{
		"current_age": data.CurrentAge,
		"target_age":  data.TargetAge,
		"years_left":  data.YearsToRetirement,
		"strategy":    data.Strategy,
	})
}

var riskSuggestions = map[RiskTolerance]NarrativeSection{
	RiskConservative: {"Given your conservative risk tolerance, consider:", []string{
		"AAA-rated corporate bonds and debt funds",
		"Dividend-paying blue-chip stocks",
		"Government securities, PPF and bank FDs",
	}},
	RiskModerate: {"With moderate risk tolerance, consider:", []string{
		"Diversified index funds (Nifty 50, Sensex)",
		"Mix of growth and value stocks",
		"International diversification",
	}},
	RiskAggressive: {"For aggressive growth, consider:", []string{
		"Growth stocks and small-cap funds",
		"Technology and innovation sectors",
		"Emerging market themes (small allocation)",
	}},
}

// interestPick maps one interest to a single suggestion; first hit wins.
func interestPick(interest string) string {
	one := []string{interest}
	switch {
	case interestsMatch(one, []string{"technology", "tech"}):
		return "Technology sector ETFs (Nifty IT, ITBEES)"
	case interestsMatch(one, []string{"environment", "green", "sustainable"}):
		return "ESG (Environmental, Social, Governance) funds"
	case interestsMatch(one, healthcareKeywords):
		return "Healthcare sector funds (Nifty Pharma, Nifty Healthcare)"
	case interestsMatch(one, realEstateKeywords):
		return "Real Estate Investment Trusts (REITs)"
	case interestsMatch(one, []string{"travel", "tourism"}):
		return "Travel and leisure sector investments"
	default:
		return "Diversified funds aligned with your interests"
	}
}

// InvestmentRecommendationsText is the short equity/bond split plus risk and
// interest suggestions. Equity is max(20, 100-age).
func InvestmentRecommendationsText(p *FinancialProfile) string {
	if !p.hasAge() {
		return "Please provide your age and risk tolerance for personalized investment recommendations."
	}
	equity := max(minEquityPercentage, 100-*p.Age)

	ctx := pongo2.Context{
		"age":    *p.Age,
		"equity": equity,
		"bonds":  100 - equity,
	}
	if section, ok := riskSuggestions[p.RiskTolerance]; ok {
		ctx["risk"] = section
	}
	if len(p.Interests) > 0 {
		picks := make([]string, len(p.Interests))
		for i, interest := range p.Interests {
			picks[i] = interestPick(interest)
		}
		ctx["interests"] = p.Interests
		ctx["interest_picks"] = picks
	}
	return renderNarrative(investmentTextTemplate, ctx)
}

// TopicNarrative is the data behind a canned, profile-aware answer.
type TopicNarrative struct {
	Topic    Topic
	Title    string
	Summary  string
	Figures  []NarrativeFigure
	Guidance NarrativeSection
}

type topicNarrativeBuilder func(p *FinancialProfile) TopicNarrative

var topicNarrativeBuilders = map[Topic]topicNarrativeBuilder{
	TopicRealEstate: realEstateNarrative,
	TopicVehicle:    vehicleNarrative,
	TopicLoan:       loanNarrative,
	TopicEducation:  educationNarrative,
	TopicBusiness:   businessNarrative,
	TopicLifeEvents: lifeEventsNarrative,
	TopicTravel:     travelNarrative,
	TopicInvestment: investmentNarrative,
}

// Share of estimated monthly income used in affordability figures.
var (
	homeEMIShare    = decimal.RequireFromString("0.30")
	vehicleEMIShare = decimal.RequireFromString("0.10")
	totalEMIShare   = decimal.RequireFromString("0.40")
	travelShare     = decimal.RequireFromString("0.05")
)

func incomeShare(p *FinancialProfile, share decimal.Decimal) Amount {
	var band IncomeRange
	if p != nil {
		band = p.IncomeRange
	}
	return Amount{EstimateMonthlyIncome(band).Mul(share).Round(0)}
}

func baseFigures(p *FinancialProfile) []NarrativeFigure {
	var band IncomeRange
	if p != nil {
		band = p.IncomeRange
	}
	return []NarrativeFigure{
		{"Estimated monthly income", EstimateMonthlyIncome(band).Rupees()},
		{"Recommended monthly investment", RecommendedMonthlyInvestment(p).Rupees()},
	}
}

func emergencyFundFigure(p *FinancialProfile, months int64) (NarrativeFigure, bool) {
	if p == nil || p.MonthlyExpenses == nil || !p.MonthlyExpenses.IsPositive() {
		return NarrativeFigure{}, false
	}
	target := Amount{p.MonthlyExpenses.Mul(decimal.NewFromInt(months))}
	return NarrativeFigure{fmt.Sprintf("Emergency fund target (%d months)", months), target.Rupees()}, true
}

func realEstateNarrative(p *FinancialProfile) TopicNarrative {
	figures := append(baseFigures(p), NarrativeFigure{"Comfortable home loan EMI (30% of income)", incomeShare(p, homeEMIShare).Rupees()})
	if p != nil && p.CurrentSavings != nil {
		figures = append(figures, NarrativeFigure{"Savings available for down payment", p.CurrentSavings.Rupees()})
	}
	items := []string{
		"Plan a down payment of at least 20% of the property value plus 7-10% for stamp duty and registration",
		"Keep your home loan EMI within 30% of take-home income",
		"Verify RERA registration and clear title before paying any advance",
		"Claim interest deduction under Section 24(b) and principal under Section 80C",
	}
	if p.ageBelow(35) {
		items = append(items, "A longer tenure keeps the EMI low now; prepay as income grows")
	} else if p.hasAge() {
		items = append(items, "Choose a tenure that ends before your retirement age")
	}
	return TopicNarrative{
		Title:    "🏠 Home Buying Plan",
		Figures:  figures,
		Guidance: NarrativeSection{"How to approach it", items},
	}
}

func vehicleNarrative(p *FinancialProfile) TopicNarrative {
	return TopicNarrative{
		Title:   "🚗 Vehicle Purchase Plan",
		Figures: append(baseFigures(p), NarrativeFigure{"Comfortable vehicle EMI (10% of income)", incomeShare(p, vehicleEMIShare).Rupees()}),
		Guidance: NarrativeSection{"How to approach it", []string{
			"Pay at least 20% down and keep the loan tenure at or under 4 years",
			"Compare on-road price, insurance and maintenance, not just the EMI",
			"Check electric vehicle incentives and lower running costs",
			"Avoid topping up the car loan with accessories",
		}},
	}
}

func loanNarrative(p *FinancialProfile) TopicNarrative {
	figures := append(baseFigures(p), NarrativeFigure{"Ceiling for all EMIs (40% of income)", incomeShare(p, totalEMIShare).Rupees()})
	if p != nil && p.DebtAmount != nil && p.DebtAmount.IsPositive() {
		figures = append(figures, NarrativeFigure{"Current outstanding debt", p.DebtAmount.Rupees()})
	}
	items := []string{
		"Repay the highest-interest debt first and avoid revolving credit card balances",
		"Compare fixed and floating rates and ask about prepayment charges",
		"Keep your credit score above 750 to qualify for better rates",
		"Consider a balance transfer when the rate gap is above 1%",
	}
	if p.isConservative() {
		items = append(items, "Prefer fixed-rate loans for predictable EMIs")
	}
	return TopicNarrative{
		Title:    "💳 Loan and Credit Plan",
		Figures:  figures,
		Guidance: NarrativeSection{"How to approach it", items},
	}
}

func educationNarrative(p *FinancialProfile) TopicNarrative {
	items := []string{
		"Estimate today's course cost and grow it at 8-10% a year for education inflation",
		"Use equity SIPs for goals more than 7 years away and shift to debt funds as the date nears",
		"Compare education loans for moratorium period and Section 80E interest deduction",
		"Apply early for scholarships and merit grants",
	}
	if p.hasGoal(GoalChildEducation) || (p != nil && p.NumberOfDependents > 0) {
		items = append(items, "Open a Sukanya Samriddhi account or a dedicated child education SIP")
	}
	return TopicNarrative{
		Title:    "🎓 Education Funding Plan",
		Figures:  baseFigures(p),
		Guidance: NarrativeSection{"How to approach it", items},
	}
}

func businessNarrative(p *FinancialProfile) TopicNarrative {
	figures := baseFigures(p)
	if f, ok := emergencyFundFigure(p, 12); ok {
		figures = append(figures, f)
	}
	return TopicNarrative{
		Title:   "💼 Business Funding Plan",
		Figures: figures,
		Guidance: NarrativeSection{"How to approach it", []string{
			"Keep 12 months of personal expenses aside before quitting a salaried job",
			"Start with bootstrapping or MUDRA loans before giving up equity",
			"Separate business and personal accounts from day one",
			"Budget working capital for at least 6 months of operations",
		}},
	}
}

func lifeEventsNarrative(p *FinancialProfile) TopicNarrative {
	figures := baseFigures(p)
	if f, ok := emergencyFundFigure(p, 6); ok {
		figures = append(figures, f)
	}
	items := []string{
		"Set a fixed event budget and fund it through a recurring deposit",
		"Avoid personal loans for celebrations",
		"Review joint finances and nominations after the event",
	}
	if p != nil && (p.MaritalStatus == MaritalMarried || p.NumberOfDependents > 0) {
		items = append(items, "Add family floater health cover and a term plan for your dependents")
	}
	return TopicNarrative{
		Title:    "👪 Life Event Plan",
		Figures:  figures,
		Guidance: NarrativeSection{"How to approach it", items},
	}
}

func travelNarrative(p *FinancialProfile) TopicNarrative {
	return TopicNarrative{
		Title:   "✈️ Travel Fund Plan",
		Figures: append(baseFigures(p), NarrativeFigure{"Monthly travel fund (5% of income)", incomeShare(p, travelShare).Rupees()}),
		Guidance: NarrativeSection{"How to approach it", []string{
			"Save for trips in a liquid fund or recurring deposit",
			"Buy travel insurance before booking",
			"Use a forex card to lock exchange rates for international trips",
			"Never dip into your emergency fund for travel",
		}},
	}
}

func investmentNarrative(p *FinancialProfile) TopicNarrative {
	alloc := CalculateAssetAllocation(p)
	plan := CreateMonthlyInvestmentPlan(p)
	figures := []NarrativeFigure{
		{"Equity", fmt.Sprintf("%d%%", alloc.EquityPercentage)},
		{"Debt", fmt.Sprintf("%d%%", alloc.DebtPercentage)},
		{"Gold", fmt.Sprintf("%d%%", alloc.GoldPercentage)},
		{"International", fmt.Sprintf("%d%%", alloc.InternationalPercentage)},
		{"Alternatives", fmt.Sprintf("%d%%", alloc.AlternativePercentage)},
	}
	for _, b := range plan.InvestmentBreakdown {
		figures = append(figures, NarrativeFigure{b.InvestmentName + " per month", b.MonthlyAmount.Rupees()})
	}
	items := []string{alloc.Rationale}
	items = append(items, InterestBasedRecommendations(interestsOf(p))...)
	return TopicNarrative{
		Title:    "📈 Investment Plan",
		Figures:  figures,
		Guidance: NarrativeSection{"Themes to look at", items},
	}
}

func interestsOf(p *FinancialProfile) []string {
	if p == nil {
		return nil
	}
	return p.Interests
}

// BuildTopicNarrative computes the canned answer for a topic. GENERAL and
// unknown topics return ok=false; the caller picks a mode narrative instead.
func BuildTopicNarrative(p *FinancialProfile, topic Topic) (TopicNarrative, bool) {
	build, ok := topicNarrativeBuilders[topic]
	if !ok {
		return TopicNarrative{}, false
	}
	n := build(p)
	n.Topic = topic
	n.Summary = ProfileSummary(p)
	return n, true
}

// ComposeNarrative is the template path's answer body. Specific topics get
// their own narrative; GENERAL questions are answered by the advisory mode.
func ComposeNarrative(p *FinancialProfile, mode AdvisoryMode, topic Topic) string {
	if n, ok := BuildTopicNarrative(p, topic); ok {
		return renderNarrative(topicTemplate, pongo2.Context{
			"title":    n.Title,
			"summary":  n.Summary,
			"figures":  n.Figures,
			"guidance": n.Guidance,
		})
	}

	switch mode.normalized() {
	case ModeBudgeting:
		return BudgetingAdvice(p)
	case ModeRetirement:
		return RetirementPlan(p)
	case ModeInvestment:
		return InvestmentRecommendationsText(p)
	default:
		if p.hasAge() {
			return AgeBasedGoals(p.Age)
		}
		return BudgetingAdvice(p)
	}
}
