package advisor

import (
	"fmt"
	"strings"
)

// AdvisoryMode narrows the focus of a chat answer.
type AdvisoryMode string

const (
	ModeGeneral           AdvisoryMode = "GENERAL"
	ModeInvestment        AdvisoryMode = "INVESTMENT_FOCUSED"
	ModeBudgeting         AdvisoryMode = "BUDGETING"
	ModeRetirement        AdvisoryMode = "RETIREMENT_PLANNING"
	ModeDebtManagement    AdvisoryMode = "DEBT_MANAGEMENT"
	ModeTaxPlanning       AdvisoryMode = "TAX_PLANNING"
	ModeInsurancePlanning AdvisoryMode = "INSURANCE_PLANNING"
	ModeEmergencyFund     AdvisoryMode = "EMERGENCY_FUND"
)

type modeText struct {
	description  string
	focus        string
	instructions string
}

var advisoryModeOrder = []AdvisoryMode{
	ModeGeneral,
	ModeInvestment,
	ModeBudgeting,
	ModeRetirement,
	ModeDebtManagement,
	ModeTaxPlanning,
	ModeInsurancePlanning,
	ModeEmergencyFund,
}

var advisoryModeText = map[AdvisoryMode]modeText{
	ModeGeneral: {
		description:  "General financial advice",
		focus:        "General financial planning and advice",
		instructions: "Provide comprehensive financial guidance covering all aspects of personal finance.",
	},
	ModeInvestment: {
		description:  "Investment-focused advice",
		focus:        "Investment recommendations, portfolio optimization, and wealth building strategies",
		instructions: "Focus on investment strategies, asset allocation, and portfolio management suitable for their profile.",
	},
	ModeBudgeting: {
		description:  "Budgeting and expense management",
		focus:        "Budget planning, expense management, and financial discipline",
		instructions: "Emphasize budgeting techniques, expense tracking, and spending optimization strategies.",
	},
	ModeRetirement: {
		description:  "Retirement planning",
		focus:        "Retirement corpus calculation, pension planning, and post-retirement financial security",
		instructions: "Concentrate on retirement savings strategies, timeline planning, and retirement income planning.",
	},
	ModeDebtManagement: {
		description:  "Debt management",
		focus:        "Debt consolidation, EMI optimization, and debt-free strategies",
		instructions: "Prioritize debt reduction strategies, consolidation options, and debt-free planning.",
	},
	ModeTaxPlanning: {
		description:  "Tax planning",
		focus:        "Tax-saving investments, deductions under various sections, and tax optimization",
		instructions: "Focus on tax-efficient strategies, deductions, and tax-advantaged accounts.",
	},
	ModeInsurancePlanning: {
		description:  "Insurance planning",
		focus:        "Life insurance, health insurance, and comprehensive risk coverage",
		instructions: "Address insurance needs, coverage gaps, and risk management strategies.",
	},
	ModeEmergencyFund: {
		description:  "Emergency fund planning",
		focus:        "Emergency fund creation, liquidity management, and financial safety nets",
		instructions: "Emphasize emergency fund building, liquidity needs, and financial safety net creation.",
	},
}

// ParseAdvisoryMode is case-insensitive. Empty or unknown input yields ModeGeneral.
func ParseAdvisoryMode(raw string) AdvisoryMode {
	mode := AdvisoryMode(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := advisoryModeText[mode]; ok {
		return mode
	}
	return ModeGeneral
}

// AdvisoryModes lists every mode, ModeGeneral first.
func AdvisoryModes() []AdvisoryMode {
	return append([]AdvisoryMode(nil), advisoryModeOrder...)
}

func (m AdvisoryMode) normalized() AdvisoryMode {
	return ParseAdvisoryMode(string(m))
}

func (m AdvisoryMode) Description() string { return advisoryModeText[m.normalized()].description }
func (m AdvisoryMode) Focus() string       { return advisoryModeText[m.normalized()].focus }

// ProfileContext renders one "- Label: value" line per field that is set.
// A nil profile renders as the empty string.
func ProfileContext(p *FinancialProfile) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	line := func(label string, value any) {
		fmt.Fprintf(&sb, "- %s: %v\n", label, value)
	}

	if p.Age != nil {
		line("Age", fmt.Sprintf("%d years", *p.Age))
	}
	if p.IncomeRange != "" {
		line("Income Range", p.IncomeRange.Description())
	}
	if p.RiskTolerance != "" {
		line("Risk Tolerance", p.RiskTolerance.Description())
	}
	if p.InvestmentExperience != "" {
		line("Investment Experience", p.InvestmentExperience)
	}
	if p.CurrentSavings != nil {
		line("Current Savings", p.CurrentSavings.Rupees())
	}
	if p.MonthlyExpenses != nil {
		line("Monthly Expenses", p.MonthlyExpenses.Rupees())
	}
	if p.EmploymentStatus != "" {
		line("Employment", p.EmploymentStatus)
	}
	if p.MaritalStatus != "" {
		line("Marital Status", p.MaritalStatus)
	}
	if p.NumberOfDependents > 0 {
		line("Dependents", p.NumberOfDependents)
	}
	if len(p.Interests) > 0 {
		line("Interests", strings.Join(p.Interests, ", "))
	}
	if len(p.FinancialGoals) > 0 {
		goals := make([]string, len(p.FinancialGoals))
		for i, g := range p.FinancialGoals {
			goals[i] = string(g)
		}
		line("Financial Goals", strings.Join(goals, ", "))
	}
	if p.RetirementAgeTarget != nil {
		line("Target Retirement Age", *p.RetirementAgeTarget)
	}
	if p.DebtAmount != nil && p.DebtAmount.IsPositive() {
		line("Current Debt", p.DebtAmount.Rupees())
	}
	return sb.String()
}

var specializedContexts = map[Topic][]string{
	TopicRealEstate: {
		"REAL ESTATE & PROPERTY EXPERTISE:",
		"Home loan eligibility, interest rates, and EMI calculations",
		"Property valuation, location analysis, and market trends",
		"Down payment planning and funding strategies",
		"Stamp duty, registration costs, and hidden expenses",
		"RERA compliance, legal verification, and documentation",
		"Property investment vs. self-occupation analysis",
		"Tax benefits under Section 80C, 24(b), and capital gains",
		"Home insurance and property maintenance costs",
		"Rental yield calculations and property management",
		"Real estate market cycles and timing considerations",
	},
	TopicVehicle: {
		"VEHICLE FINANCING EXPERTISE:",
		"Auto loan vs. personal loan comparison",
		"Down payment optimization and loan tenure planning",
		"Interest rate negotiations and bank comparisons",
		"Vehicle insurance, maintenance, and depreciation costs",
		"New vs. used vehicle financial analysis",
		"Electric vehicle incentives and financing options",
		"Vehicle loan prepayment strategies",
		"Two-wheeler vs. four-wheeler financing decisions",
		"Commercial vehicle financing for business use",
		"Vehicle upgrade and replacement planning",
	},
	TopicLoan: {
		"LOAN & CREDIT EXPERTISE:",
		"Personal loan, business loan, and specialized lending options",
		"Interest rate types (fixed vs. floating) and negotiations",
		"EMI calculations, loan tenure optimization, and prepayment strategies",
		"Credit score improvement and loan eligibility enhancement",
		"Loan consolidation and debt restructuring options",
		"Collateral vs. unsecured loan considerations",
		"Co-applicant benefits and joint loan applications",
		"Loan insurance and protection schemes",
		"Balance transfer options and refinancing strategies",
		"Default management and legal implications",
	},
	TopicEducation: {
		"EDUCATION FINANCING EXPERTISE:",
		"Education loan eligibility, limits, and interest rates",
		"Collateral vs. non-collateral education loans",
		"Study abroad financing and forex considerations",
		"Education savings plans and child-specific investments",
		"Scholarship opportunities and grant applications",
		"Professional course financing (MBA, medical, engineering)",
		"Education insurance and student protection plans",
		"Tax benefits on education expenses and loan interest",
		"Career ROI analysis and course selection guidance",
		"Education inflation planning and corpus calculation",
	},
	TopicBusiness: {
		"BUSINESS & ENTREPRENEURSHIP EXPERTISE:",
		"Startup funding options (bootstrapping, angel investors, VCs)",
		"Business loan types and eligibility criteria",
		"Working capital management and cash flow planning",
		"Business registration, compliance, and tax planning",
		"Partnership vs. proprietorship vs. company structures",
		"Business insurance and risk management",
		"Equipment financing and asset acquisition strategies",
		"Export-import financing and trade finance",
		"Business expansion funding and scaling strategies",
		"Exit planning and business valuation methods",
	},
	TopicLifeEvents: {
		"LIFE EVENT FINANCIAL PLANNING:",
		"Marriage and wedding expense planning",
		"Joint financial planning for couples",
		"Family protection through insurance and investments",
		"Maternity and childcare financial preparation",
		"Elder care and parents' financial support",
		"Divorce financial planning and asset division",
		"Emergency planning for health and job loss",
		"Relocation and job change financial management",
		"Festival and celebration budgeting",
		"Legacy planning and wealth transfer strategies",
	},
	TopicTravel: {
		"TRAVEL & LIFESTYLE FINANCING:",
		"Travel savings and vacation fund planning",
		"Travel insurance and international coverage",
		"Forex planning and currency exchange strategies",
		"Travel loans and credit card benefits",
		"International investment and NRI planning",
		"Travel budgeting and expense management",
		"Frequent traveler financial optimization",
		"Business travel expense management",
		"Adventure and luxury travel financing",
		"Travel emergency fund and contingency planning",
	},
	TopicInvestment: {
		"INVESTMENT & WEALTH BUILDING EXPERTISE:",
		"Comprehensive portfolio construction and optimization",
		"Tax-efficient investment strategies and planning",
		"Risk assessment and diversification techniques",
		"Market timing and systematic investment approaches",
		"Alternative investments (REITs, gold, commodities)",
		"International diversification and global exposure",
		"Retirement planning and pension optimization",
		"Estate planning and wealth transfer strategies",
		"Performance monitoring and rebalancing techniques",
		"Behavioral finance and investment psychology",
	},
	TopicGeneral: {
		"COMPREHENSIVE FINANCIAL PLANNING:",
		"Holistic financial health assessment and improvement",
		"Goal-based financial planning and prioritization",
		"Cash flow management and budgeting techniques",
		"Risk management through insurance and diversification",
		"Tax planning and optimization strategies",
		"Investment planning across asset classes",
		"Retirement and post-retirement financial security",
		"Estate planning and wealth preservation",
		"Financial discipline and behavioral coaching",
		"Regular review and adjustment strategies",
	},
}

// SpecializedContext returns the domain briefing for a topic. Unknown topics
// get the general briefing.
func SpecializedContext(topic Topic) string {
	lines, ok := specializedContexts[topic]
	if !ok {
		lines = specializedContexts[TopicGeneral]
	}
	return bulletBlock(lines[0], lines[1:], "- ")
}

func bulletBlock(heading string, items []string, bullet string) string {
	var sb strings.Builder
	sb.WriteString(heading)
	sb.WriteString("\n")
	for _, item := range items {
		sb.WriteString(bullet)
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}

const advisoryPreamble = "You are a professional financial advisor with expertise in Indian financial markets, " +
	"investment products, real estate, vehicle financing, and comprehensive financial planning. " +
	"Provide detailed, practical, and personalized financial advice based on the user's profile and specific questions."

var responseGuidelines = []string{
	"Provide specific, actionable advice tailored to the user's profile",
	"Include relevant calculations, timelines, and financial projections when applicable",
	"Mention specific Indian financial products, banks, and investment options",
	"Consider tax implications and regulatory aspects in India",
	"Provide step-by-step action plans where appropriate",
	"Include important disclaimers about financial risks",
	"Use emojis and formatting to make the response engaging and easy to read",
}

// PromptInput is everything BuildAdvisoryPrompt reads.
type PromptInput struct {
	Profile  *FinancialProfile
	Mode     AdvisoryMode
	Question string
	// Topic is derived from Question when empty.
	Topic Topic
}

// BuildAdvisoryPrompt assembles the user-turn prompt sent to a remote model.
// The question is embedded verbatim.
func BuildAdvisoryPrompt(in PromptInput) string {
	topic := in.Topic
	if topic == "" {
		topic = ClassifyQuestion(in.Question)
	}

	var sb strings.Builder
	sb.WriteString(advisoryPreamble)
	sb.WriteString("\n\n")

	if in.Profile != nil {
		sb.WriteString("USER PROFILE:\n")
		sb.WriteString(ProfileContext(in.Profile))
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "ADVISORY FOCUS: %s\n\n", in.Mode.Focus())
	fmt.Fprintf(&sb, "SPECIALIZED CONTEXT: %s\n\n", SpecializedContext(topic))
	fmt.Fprintf(&sb, "USER QUESTION: %s\n\n", in.Question)

	sb.WriteString("RESPONSE GUIDELINES:\n")
	for i, g := range responseGuidelines {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, g)
	}
	sb.WriteString("\nPlease provide comprehensive financial advice:")
	return sb.String()
}

const defaultSystemPrompt = "You are a helpful financial advisor chatbot. Provide general financial advice and " +
	"encourage users to consult with qualified professionals for personalized guidance. Always include appropriate disclaimers."

var systemGuidelines = []string{
	"Provide specific, actionable advice tailored to their age and situation",
	"Consider their risk tolerance and experience level",
	"Incorporate their personal interests when suggesting investment themes",
	"Be encouraging but realistic about expectations",
	"Always emphasize the importance of diversification",
	"Suggest age-appropriate investment timelines",
	"Include disclaimers about seeking professional advice for major decisions",
}

func ageSpecificConsiderations(age int) []string {
	switch {
	case age < 30:
		return []string{
			"Time is your greatest asset - start investing early even with small amounts",
			"Focus on building good financial habits and emergency fund",
			"Take advantage of compound interest over the long term",
		}
	case age < 50:
		return []string{
			"Peak earning years - maximize retirement contributions",
			"Balance current family needs with future financial security",
			"Consider tax-efficient investment strategies",
		}
	default:
		return []string{
			"Catch-up contributions available for retirement accounts",
			"Shift towards more conservative investment approach",
			"Plan for healthcare costs and potential long-term care needs",
		}
	}
}

// PersonalizedSystemPrompt is the system message handed to remote backends.
// Without a profile it falls back to a generic advisor persona.
func PersonalizedSystemPrompt(p *FinancialProfile, mode AdvisoryMode) string {
	if p == nil {
		return defaultSystemPrompt
	}

	var sb strings.Builder
	sb.WriteString("You are a knowledgeable and empathetic financial advisor chatbot. ")
	sb.WriteString("Provide personalized financial advice based on the following user profile:\n\n")

	sb.WriteString("USER PROFILE:\n")
	if p.Age != nil {
		fmt.Fprintf(&sb, "- Age: %d years old\n", *p.Age)
	}
	if p.IncomeRange != "" {
		fmt.Fprintf(&sb, "- Income Range: %s\n", p.IncomeRange.Description())
	}
	if p.RiskTolerance != "" {
		fmt.Fprintf(&sb, "- Risk Tolerance: %s\n", p.RiskTolerance.Description())
	}
	if p.InvestmentExperience != "" {
		fmt.Fprintf(&sb, "- Investment Experience: %s\n", p.InvestmentExperience.Description())
	}
	if p.EmploymentStatus != "" {
		fmt.Fprintf(&sb, "- Employment: %s\n", p.EmploymentStatus.Description())
	}
	if p.MaritalStatus != "" {
		fmt.Fprintf(&sb, "- Marital Status: %s\n", p.MaritalStatus.Description())
	}
	if p.NumberOfDependents > 0 {
		fmt.Fprintf(&sb, "- Dependents: %d\n", p.NumberOfDependents)
	}
	if p.CurrentSavings != nil {
		fmt.Fprintf(&sb, "- Current Savings: %s\n", p.CurrentSavings.Rupees())
	}
	if p.MonthlyExpenses != nil {
		fmt.Fprintf(&sb, "- Monthly Expenses: %s\n", p.MonthlyExpenses.Rupees())
	}
	if p.DebtAmount != nil && p.DebtAmount.IsPositive() {
		fmt.Fprintf(&sb, "- Current Debt: %s\n", p.DebtAmount.Rupees())
	}
	if len(p.FinancialGoals) > 0 {
		goals := make([]string, len(p.FinancialGoals))
		for i, g := range p.FinancialGoals {
			goals[i] = g.Description()
		}
		fmt.Fprintf(&sb, "- Financial Goals: %s\n", strings.Join(goals, ", "))
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(&sb, "- Personal Interests: %s\n", strings.Join(p.Interests, ", "))
	}

	if p.Age != nil {
		sb.WriteString("\n")
		sb.WriteString(bulletBlock("AGE-SPECIFIC CONSIDERATIONS:", ageSpecificConsiderations(*p.Age), "- "))
	}

	fmt.Fprintf(&sb, "\nFOCUS AREA: %s\n", mode.Description())
	sb.WriteString(advisoryModeText[mode.normalized()].instructions)
	sb.WriteString("\n\n")
	sb.WriteString(bulletBlock("GUIDELINES:", systemGuidelines, "- "))
	return sb.String()
}

const (
	personalizedHeader = "🎯 **Personalized Financial Advice for You**"
	disclaimerSuffix   = "⚠️ **Important Disclaimer**: This advice is for educational purposes only. " +
		"Please consult with a qualified financial advisor for decisions specific to your situation. " +
		"All investments are subject to market risks."
)

type nextStepBlock struct {
	heading string
	steps   []string
}

var nextStepBlocks = map[Topic]nextStepBlock{
	TopicRealEstate: {"🏠 **Next Steps for Property Planning:**", []string{
		"Use our comprehensive-guidance API for complete investment planning",
		"Calculate your home loan eligibility and EMI",
		"Research property locations and market trends",
		"Plan your down payment and additional costs",
		"Consider property insurance and legal verification",
	}},
	TopicVehicle: {"🚗 **Next Steps for Vehicle Planning:**", []string{
		"Compare auto loan offers from different banks",
		"Calculate total cost of ownership including insurance",
		"Consider new vs. used vehicle options",
		"Plan for vehicle maintenance and depreciation",
		"Explore electric vehicle incentives if applicable",
	}},
	TopicLoan: {"💳 **Next Steps for Loan Planning:**", []string{
		"Check your credit score before applying",
		"Compare fixed and floating rate offers from at least three lenders",
		"Keep total EMIs under 40% of your monthly income",
		"Evaluate prepayment and balance transfer options",
		"Read the fine print on processing fees and penalties",
	}},
	TopicEducation: {"🎓 **Next Steps for Education Planning:**", []string{
		"Research education loan options and eligibility",
		"Start a dedicated education savings plan",
		"Explore scholarship and grant opportunities",
		"Consider international study financing if applicable",
		"Plan for education inflation over time",
	}},
	TopicBusiness: {"💼 **Next Steps for Business Planning:**", []string{
		"Prepare a detailed business plan and financial projections",
		"Research funding options suitable for your business stage",
		"Consider business registration and compliance requirements",
		"Plan for working capital and cash flow management",
		"Explore business insurance and risk management",
	}},
	TopicLifeEvents: {"👪 **Next Steps for Life Event Planning:**", []string{
		"Estimate the full cost of the event and set a savings target",
		"Review health and life insurance cover for your family",
		"Update nominees on bank accounts and investments",
		"Keep your emergency fund untouched for the event budget",
		"Revisit your financial plan after the event",
	}},
	TopicTravel: {"✈️ **Next Steps for Travel Planning:**", []string{
		"Open a separate recurring deposit for your travel fund",
		"Buy travel insurance before booking",
		"Plan forex purchases early and compare forex cards",
		"Avoid funding trips with personal loans",
		"Track travel spending against your budget",
	}},
	TopicGeneral: {"💡 **Recommended Next Steps:**", []string{
		"Use our comprehensive-guidance API for complete financial planning",
		"Consider creating a detailed financial profile for personalized advice",
		"Start with small, consistent steps toward your financial goals",
		"Review and adjust your plan regularly",
		"Seek professional advice for complex decisions",
	}},
}

// NextSteps returns the follow-up block for a topic. Topics without their own
// block share the general one.
func NextSteps(topic Topic) string {
	block, ok := nextStepBlocks[topic]
	if !ok {
		block = nextStepBlocks[TopicGeneral]
	}
	return strings.TrimRight(bulletBlock(block.heading, block.steps, "• "), "\n")
}

// FinalizeResponse wraps a model or template answer with the personalized
// header (only when the profile carries an age), next steps for the topic
// and the disclaimer.
func FinalizeResponse(body string, p *FinancialProfile, topic Topic) string {
	var sb strings.Builder
	if p.hasAge() {
		sb.WriteString(personalizedHeader)
		sb.WriteString("\n\n")
	}
	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(NextSteps(topic))
	sb.WriteString("\n\n")
	sb.WriteString(disclaimerSuffix)
	return sb.String()
}
