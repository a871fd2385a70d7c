package advisor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InvestmentGuidance is the full set of structured recommendations for one
// profile. It is built once and not mutated afterwards.
type InvestmentGuidance struct {
	UserProfileSummary        string                     `json:"user_profile_summary"`
	InvestmentStrategy        InvestmentStrategy         `json:"investment_strategy"`
	AssetAllocation           AssetAllocation            `json:"asset_allocation"`
	StockRecommendations      []StockRecommendation      `json:"stock_recommendations"`
	SIPRecommendations        []SIPRecommendation        `json:"sip_recommendations"`
	MutualFundRecommendations []MutualFundRecommendation `json:"mutual_fund_recommendations"`
	ETFRecommendations        []ETFRecommendation        `json:"etf_recommendations"`
	BondRecommendations       []BondRecommendation       `json:"bond_recommendations"`
	AlternativeInvestments    []AlternativeInvestment    `json:"alternative_investments"`
	MonthlyInvestmentPlan     MonthlyInvestmentPlan      `json:"monthly_investment_plan"`
	RiskManagement            RiskManagement             `json:"risk_management"`
	TaxOptimization           TaxOptimization            `json:"tax_optimization"`
	RebalancingStrategy       RebalancingStrategy        `json:"rebalancing_strategy"`
	InvestmentTimeline        InvestmentTimeline         `json:"investment_timeline"`
	PerformanceTracking       PerformanceTracking        `json:"performance_tracking"`
	ImportantDisclaimers      []string                   `json:"important_disclaimers"`
}

type InvestmentStrategy struct {
	Approach          string   `json:"approach"`
	Rationale         string   `json:"rationale"`
	KeyPrinciples     []string `json:"key_principles"`
	InvestmentHorizon string   `json:"investment_horizon"`
}

type RiskManagement struct {
	DiversificationStrategy string   `json:"diversification_strategy"`
	StopLossStrategy        string   `json:"stop_loss_strategy"`
	HedgingRecommendations  []string `json:"hedging_recommendations"`
	EmergencyFundGuidance   string   `json:"emergency_fund_guidance"`
}

type TaxOptimization struct {
	TaxSavingInstruments []string `json:"tax_saving_instruments"`
	LTCGStrategy         string   `json:"ltcg_strategy"`
	STCGMinimization     string   `json:"stcg_minimization"`
	TaxHarvestingTips    []string `json:"tax_harvesting_tips"`
}

type RebalancingStrategy struct {
	Frequency       string   `json:"frequency"`
	Methodology     string   `json:"methodology"`
	TriggerPoints   []string `json:"trigger_points"`
	RebalancingTips []string `json:"rebalancing_tips"`
}

type InvestmentTimeline struct {
	ShortTermGoals  []TimelineGoal `json:"short_term_goals"`
	MediumTermGoals []TimelineGoal `json:"medium_term_goals"`
	LongTermGoals   []TimelineGoal `json:"long_term_goals"`
}

type TimelineGoal struct {
	Goal                   string   `json:"goal"`
	TimeHorizon            string   `json:"time_horizon"`
	RecommendedInvestments []string `json:"recommended_investments"`
	TargetAmount           string   `json:"target_amount"`
}

type PerformanceTracking struct {
	KeyMetrics          []string `json:"key_metrics"`
	ReviewFrequency     string   `json:"review_frequency"`
	BenchmarkComparison string   `json:"benchmark_comparison"`
	TrackingTools       []string `json:"tracking_tools"`
}

// BuildInvestmentGuidance runs every generator against p. It never fails;
// missing profile fields fall back to documented defaults.
func BuildInvestmentGuidance(p *FinancialProfile) *InvestmentGuidance {
	return &InvestmentGuidance{
		UserProfileSummary:        ProfileSummary(p),
		InvestmentStrategy:        BuildInvestmentStrategy(p),
		AssetAllocation:           CalculateAssetAllocation(p),
		StockRecommendations:      GenerateStockRecommendations(p),
		SIPRecommendations:        GenerateSIPRecommendations(p),
		MutualFundRecommendations: GenerateMutualFundRecommendations(p),
		ETFRecommendations:        GenerateETFRecommendations(p),
		BondRecommendations:       GenerateBondRecommendations(p),
		AlternativeInvestments:    GenerateAlternativeInvestments(p),
		MonthlyInvestmentPlan:     CreateMonthlyInvestmentPlan(p),
		RiskManagement:            BuildRiskManagement(p),
		TaxOptimization:           BuildTaxOptimization(),
		RebalancingStrategy:       BuildRebalancingStrategy(),
		InvestmentTimeline:        BuildInvestmentTimeline(p),
		PerformanceTracking:       BuildPerformanceTracking(),
		ImportantDisclaimers:      Disclaimers(),
	}
}

// ProfileSummary renders a one-line description of the investor.
func ProfileSummary(p *FinancialProfile) string {
	var sb strings.Builder
	sb.WriteString("Investor Profile: ")
	if p.hasAge() {
		fmt.Fprintf(&sb, "%d years old", *p.Age)
	} else {
		sb.WriteString("age not provided")
	}
	if p == nil {
		return sb.String()
	}
	if p.RiskTolerance != "" {
		fmt.Fprintf(&sb, ", %s risk tolerance", strings.ToLower(string(p.RiskTolerance)))
	}
	if p.InvestmentExperience != "" {
		fmt.Fprintf(&sb, ", %s investment experience", strings.ToLower(string(p.InvestmentExperience)))
	}
	if p.IncomeRange != "" {
		fmt.Fprintf(&sb, ", %s income range", p.IncomeRange.Description())
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(&sb, ", interested in: %s", strings.Join(p.Interests, ", "))
	}
	return sb.String()
}

var strategyApproaches = map[RiskTolerance]string{
	RiskConservative: "Conservative Growth Strategy",
	RiskModerate:     "Balanced Growth Strategy",
	RiskAggressive:   "Aggressive Wealth Creation Strategy",
}

var keyPrinciples = []string{
	"Start early and invest regularly through SIPs",
	"Diversify across asset classes and sectors",
	"Maintain emergency fund before investing",
	"Review and rebalance portfolio periodically",
	"Stay invested for long-term to benefit from compounding",
	"Don't try to time the market",
	"Invest based on goals, not emotions",
}

// BuildInvestmentStrategy picks approach, rationale and horizon.
func BuildInvestmentStrategy(p *FinancialProfile) InvestmentStrategy {
	age := p.ageOr(defaultAge)

	var rationale string
	switch {
	case age < 35:
		rationale = "Focus on long-term wealth creation through equity investments with time advantage for compounding"
	case age < 50:
		rationale = "Balanced approach between growth and stability to build wealth while managing risk"
	default:
		rationale = "Capital preservation with moderate growth to secure retirement and reduce volatility"
	}

	// The strategy horizon assumes retirement at 60 unless the investor says otherwise.
	years := p.retirementTarget(60) - age
	var horizon string
	switch {
	case years > 20:
		horizon = "Long-term (20+ years) - Focus on wealth creation"
	case years > 10:
		horizon = "Medium to Long-term (10-20 years) - Balanced growth approach"
	default:
		horizon = "Medium-term (5-10 years) - Capital preservation with moderate growth"
	}

	return InvestmentStrategy{
		Approach:          strategyApproaches[p.risk()],
		Rationale:         rationale,
		KeyPrinciples:     append([]string(nil), keyPrinciples...),
		InvestmentHorizon: horizon,
	}
}

// BuildRiskManagement sizes the emergency fund guidance by dependents and debt.
func BuildRiskManagement(p *FinancialProfile) RiskManagement {
	rm := RiskManagement{
		DiversificationStrategy: "Diversify across asset classes, sectors, and market caps to reduce concentration risk",
		StopLossStrategy:        "Set stop-loss at 15-20% for individual stocks, review and adjust quarterly",
		HedgingRecommendations: []string{
			"Maintain 10% allocation in gold for inflation hedge",
			"Keep 6-month emergency fund in liquid investments",
			"Consider international diversification for currency risk",
		},
		EmergencyFundGuidance: "Maintain 6-12 months of expenses in liquid funds or savings account",
	}
	if p == nil {
		return rm
	}
	if p.MonthlyExpenses != nil && p.MonthlyExpenses.IsPositive() {
		low := Amount{p.MonthlyExpenses.Mul(decimal.NewFromInt(6))}
		high := Amount{p.MonthlyExpenses.Mul(decimal.NewFromInt(12))}
		rm.EmergencyFundGuidance = fmt.Sprintf("Maintain 6-12 months of expenses (%s - %s) in liquid funds or savings account",
			low.Rupees(), high.Rupees())
	}
	if p.NumberOfDependents > 0 {
		rm.HedgingRecommendations = append(rm.HedgingRecommendations,
			"Secure term life cover of at least 10-15x annual income to protect your dependents")
	}
	if p.DebtAmount != nil && p.DebtAmount.IsPositive() {
		rm.HedgingRecommendations = append(rm.HedgingRecommendations,
			"Prioritise repaying high-interest debt before increasing equity exposure")
	}
	return rm
}

func BuildTaxOptimization() TaxOptimization {
	return TaxOptimization{
		TaxSavingInstruments: []string{
			"ELSS Mutual Funds (Section 80C)",
			"PPF (Section 80C)",
			"NSC (Section 80C)",
			"Health Insurance (Section 80D)",
		},
		LTCGStrategy:     "Hold equity investments for more than 1 year to benefit from LTCG tax rates",
		STCGMinimization: "Avoid frequent trading to minimize short-term capital gains tax",
		TaxHarvestingTips: []string{
			"Book profits and losses strategically to optimize tax liability",
			"Use LTCG exemption limit of ₹1 lakh annually",
			"Consider tax-free bonds for debt allocation in higher tax brackets",
		},
	}
}

func BuildRebalancingStrategy() RebalancingStrategy {
	return RebalancingStrategy{
		Frequency:   "Quarterly review, annual rebalancing",
		Methodology: "Threshold-based rebalancing when allocation deviates by 5% or more",
		TriggerPoints: []string{
			"Asset allocation deviation > 5%",
			"Major life events (marriage, job change, etc.)",
			"Significant market movements (>20% in any direction)",
		},
		RebalancingTips: []string{
			"Use new investments to rebalance before selling existing holdings",
			"Consider tax implications when rebalancing in taxable accounts",
			"Maintain discipline and stick to target allocation",
		},
	}
}

type timelineBucket int

const (
	shortTerm timelineBucket = iota
	mediumTerm
	longTerm
)

type timelineEntry struct {
	bucket timelineBucket
	goal   TimelineGoal
}

var emergencyFundGoal = timelineEntry{shortTerm, TimelineGoal{
	Goal:                   "Emergency Fund",
	TimeHorizon:            "6-12 months",
	RecommendedInvestments: []string{"Liquid Funds", "Savings Account", "FD"},
	TargetAmount:           "6 months of expenses",
}}

var homePurchaseGoal = timelineEntry{mediumTerm, TimelineGoal{
	Goal:                   "Home Purchase",
	TimeHorizon:            "5-7 years",
	RecommendedInvestments: []string{"Hybrid Funds", "Debt Funds", "PPF"},
	TargetAmount:           "20-30% of property value",
}}

var retirementGoal = timelineEntry{longTerm, TimelineGoal{
	Goal:                   "Retirement",
	TimeHorizon:            "20-30 years",
	RecommendedInvestments: []string{"Equity SIPs", "EPF", "NPS", "Direct Equity"},
	TargetAmount:           "25-30x annual expenses",
}}

// goalTimeline places each declared goal in a horizon bucket.
var goalTimeline = map[FinancialGoal]timelineEntry{
	GoalEmergencyFund: emergencyFundGoal,
	GoalHomePurchase:  homePurchaseGoal,
	GoalRetirement:    retirementGoal,
	GoalDebtPayoff: {shortTerm, TimelineGoal{
		Goal:                   "Debt Payoff",
		TimeHorizon:            "1-3 years",
		RecommendedInvestments: []string{"Prepayment from surplus", "Liquid Funds"},
		TargetAmount:           "Outstanding high-interest balance",
	}},
	GoalTravel: {shortTerm, TimelineGoal{
		Goal:                   "Travel Fund",
		TimeHorizon:            "1-2 years",
		RecommendedInvestments: []string{"Recurring Deposit", "Liquid Funds"},
		TargetAmount:           "Estimated trip cost plus 10% buffer",
	}},
	GoalInsurance: {shortTerm, TimelineGoal{
		Goal:                   "Insurance Cover",
		TimeHorizon:            "Within 6 months",
		RecommendedInvestments: []string{"Term Life Insurance", "Family Floater Health Cover"},
		TargetAmount:           "10-15x annual income life cover",
	}},
	GoalEducation: {mediumTerm, TimelineGoal{
		Goal:                   "Education Funding",
		TimeHorizon:            "3-7 years",
		RecommendedInvestments: []string{"Hybrid Funds", "Debt Funds", "Recurring Deposit"},
		TargetAmount:           "Projected course fees with 8-10% annual inflation",
	}},
	GoalBusinessInvestment: {mediumTerm, TimelineGoal{
		Goal:                   "Business Capital",
		TimeHorizon:            "3-5 years",
		RecommendedInvestments: []string{"Short Duration Debt Funds", "Balanced Advantage Funds"},
		TargetAmount:           "Initial capital plus 12 months of operating runway",
	}},
	GoalChildEducation: {longTerm, TimelineGoal{
		Goal:                   "Children's Education",
		TimeHorizon:            "10-18 years",
		RecommendedInvestments: []string{"Equity SIPs", "Sukanya Samriddhi Yojana", "PPF"},
		TargetAmount:           "Projected higher education cost at 10% inflation",
	}},
	GoalWealthBuilding: {longTerm, TimelineGoal{
		Goal:                   "Wealth Building",
		TimeHorizon:            "10+ years",
		RecommendedInvestments: []string{"Equity SIPs", "Index Funds", "Direct Equity"},
		TargetAmount:           "Financial independence corpus",
	}},
}

// BuildInvestmentTimeline uses the declared goals, or an emergency fund,
// home purchase and retirement plan when none are given.
func BuildInvestmentTimeline(p *FinancialProfile) InvestmentTimeline {
	entries := []timelineEntry{emergencyFundGoal, homePurchaseGoal, retirementGoal}
	if p != nil && len(p.FinancialGoals) > 0 {
		entries = entries[:0:0]
		seen := make(map[FinancialGoal]bool)
		for _, g := range p.FinancialGoals {
			entry, ok := goalTimeline[g]
			if !ok || seen[g] {
				continue
			}
			seen[g] = true
			entries = append(entries, entry)
		}
	}

	var tl InvestmentTimeline
	tl.ShortTermGoals = []TimelineGoal{}
	tl.MediumTermGoals = []TimelineGoal{}
	tl.LongTermGoals = []TimelineGoal{}
	for _, e := range entries {
		goal := e.goal
		goal.RecommendedInvestments = append([]string(nil), goal.RecommendedInvestments...)
		switch e.bucket {
		case shortTerm:
			tl.ShortTermGoals = append(tl.ShortTermGoals, goal)
		case mediumTerm:
			tl.MediumTermGoals = append(tl.MediumTermGoals, goal)
		case longTerm:
			tl.LongTermGoals = append(tl.LongTermGoals, goal)
		}
	}
	return tl
}

func BuildPerformanceTracking() PerformanceTracking {
	return PerformanceTracking{
		KeyMetrics: []string{
			"Absolute Returns",
			"CAGR (Compound Annual Growth Rate)",
			"Portfolio Beta",
			"Sharpe Ratio",
			"Asset Allocation Drift",
		},
		ReviewFrequency:     "Monthly monitoring, quarterly detailed review",
		BenchmarkComparison: "Compare equity portion with Nifty 50, debt portion with 10-year G-Sec",
		TrackingTools: []string{
			"Portfolio tracking apps",
			"Mutual fund statements",
			"Demat account statements",
			"Financial advisor reports",
		},
	}
}

var disclaimers = []string{
	"This investment guidance is for educational purposes only and should not be considered as personalized financial advice",
	"Past performance does not guarantee future results",
	"All investments are subject to market risks, please read all scheme-related documents carefully",
	"Consult with a qualified financial advisor before making investment decisions",
	"Consider your risk tolerance, investment horizon, and financial goals before investing",
	"Diversification does not guarantee profits or protect against losses",
	"Tax implications may vary based on individual circumstances and may change over time",
}

// Disclaimers returns a copy of the standard disclaimer list.
func Disclaimers() []string {
	return append([]string(nil), disclaimers...)
}
