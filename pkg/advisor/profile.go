package advisor

import (
	"fmt"
	"strings"
)

// IncomeRange is a monthly income band.
type IncomeRange string

const (
	IncomeBelow25K   IncomeRange = "BELOW_25K"
	Income25KTo50K   IncomeRange = "RANGE_25K_50K"
	Income50KTo75K   IncomeRange = "RANGE_50K_75K"
	Income75KTo100K  IncomeRange = "RANGE_75K_100K"
	Income100KTo150K IncomeRange = "RANGE_100K_150K"
	IncomeAbove150K  IncomeRange = "ABOVE_150K"
)

var incomeRangeDescriptions = map[IncomeRange]string{
	IncomeBelow25K:   "Below $25,000",
	Income25KTo50K:   "$25,000 - $50,000",
	Income50KTo75K:   "$50,000 - $75,000",
	Income75KTo100K:  "$75,000 - $100,000",
	Income100KTo150K: "$100,000 - $150,000",
	IncomeAbove150K:  "Above $150,000",
}

// RiskTolerance describes how much volatility an investor accepts.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "CONSERVATIVE"
	RiskModerate     RiskTolerance = "MODERATE"
	RiskAggressive   RiskTolerance = "AGGRESSIVE"
)

var riskToleranceDescriptions = map[RiskTolerance]string{
	RiskConservative: "Conservative - Prefer stable, low-risk investments",
	RiskModerate:     "Moderate - Balanced approach to risk and return",
	RiskAggressive:   "Aggressive - Comfortable with high-risk, high-reward investments",
}

// InvestmentExperience is the investor's self-reported experience level.
type InvestmentExperience string

const (
	ExperienceBeginner     InvestmentExperience = "BEGINNER"
	ExperienceIntermediate InvestmentExperience = "INTERMEDIATE"
	ExperienceAdvanced     InvestmentExperience = "ADVANCED"
)

var experienceDescriptions = map[InvestmentExperience]string{
	ExperienceBeginner:     "Beginner - Little to no investment experience",
	ExperienceIntermediate: "Intermediate - Some investment experience",
	ExperienceAdvanced:     "Advanced - Extensive investment experience",
}

// FinancialGoal is one of the goals an investor is saving towards.
type FinancialGoal string

const (
	GoalRetirement         FinancialGoal = "RETIREMENT"
	GoalEmergencyFund      FinancialGoal = "EMERGENCY_FUND"
	GoalHomePurchase       FinancialGoal = "HOME_PURCHASE"
	GoalEducation          FinancialGoal = "EDUCATION"
	GoalDebtPayoff         FinancialGoal = "DEBT_PAYOFF"
	GoalWealthBuilding     FinancialGoal = "WEALTH_BUILDING"
	GoalTravel             FinancialGoal = "TRAVEL"
	GoalBusinessInvestment FinancialGoal = "BUSINESS_INVESTMENT"
	GoalChildEducation     FinancialGoal = "CHILD_EDUCATION"
	GoalInsurance          FinancialGoal = "INSURANCE"
)

var goalDescriptions = map[FinancialGoal]string{
	GoalRetirement:         "Retirement Planning",
	GoalEmergencyFund:      "Emergency Fund",
	GoalHomePurchase:       "Home Purchase",
	GoalEducation:          "Education Funding",
	GoalDebtPayoff:         "Debt Payoff",
	GoalWealthBuilding:     "Wealth Building",
	GoalTravel:             "Travel Fund",
	GoalBusinessInvestment: "Business Investment",
	GoalChildEducation:     "Children's Education",
	GoalInsurance:          "Insurance Planning",
}

// EmploymentStatus of the investor.
type EmploymentStatus string

const (
	EmployedFullTime EmploymentStatus = "EMPLOYED_FULL_TIME"
	EmployedPartTime EmploymentStatus = "EMPLOYED_PART_TIME"
	SelfEmployed     EmploymentStatus = "SELF_EMPLOYED"
	Unemployed       EmploymentStatus = "UNEMPLOYED"
	Retired          EmploymentStatus = "RETIRED"
	Student          EmploymentStatus = "STUDENT"
)

var employmentDescriptions = map[EmploymentStatus]string{
	EmployedFullTime: "Full-time Employee",
	EmployedPartTime: "Part-time Employee",
	SelfEmployed:     "Self-employed",
	Unemployed:       "Unemployed",
	Retired:          "Retired",
	Student:          "Student",
}

// MaritalStatus of the investor.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalDivorced MaritalStatus = "DIVORCED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
)

var maritalDescriptions = map[MaritalStatus]string{
	MaritalSingle:   "Single",
	MaritalMarried:  "Married",
	MaritalDivorced: "Divorced",
	MaritalWidowed:  "Widowed",
}

// InvestmentType is an instrument family the investor prefers.
type InvestmentType string

const (
	InvestStocks         InvestmentType = "STOCKS"
	InvestBonds          InvestmentType = "BONDS"
	InvestMutualFunds    InvestmentType = "MUTUAL_FUNDS"
	InvestETF            InvestmentType = "ETF"
	InvestRealEstate     InvestmentType = "REAL_ESTATE"
	InvestCryptocurrency InvestmentType = "CRYPTOCURRENCY"
	InvestCommodities    InvestmentType = "COMMODITIES"
	InvestSavingsAccount InvestmentType = "SAVINGS_ACCOUNT"
	InvestCD             InvestmentType = "CD"
	InvestRoboAdvisor    InvestmentType = "ROBO_ADVISOR"
)

var investmentTypeDescriptions = map[InvestmentType]string{
	InvestStocks:         "Individual Stocks",
	InvestBonds:          "Bonds",
	InvestMutualFunds:    "Mutual Funds",
	InvestETF:            "Exchange-Traded Funds (ETFs)",
	InvestRealEstate:     "Real Estate",
	InvestCryptocurrency: "Cryptocurrency",
	InvestCommodities:    "Commodities",
	InvestSavingsAccount: "High-Yield Savings",
	InvestCD:             "Certificates of Deposit",
	InvestRoboAdvisor:    "Robo-Advisor Portfolios",
}

// TimeHorizon is the investor's planning horizon.
type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "SHORT_TERM"
	HorizonMedium TimeHorizon = "MEDIUM_TERM"
	HorizonLong   TimeHorizon = "LONG_TERM"
)

var horizonDescriptions = map[TimeHorizon]string{
	HorizonShort:  "Short-term (1-3 years)",
	HorizonMedium: "Medium-term (3-10 years)",
	HorizonLong:   "Long-term (10+ years)",
}

func (r IncomeRange) Description() string          { return incomeRangeDescriptions[r] }
func (r RiskTolerance) Description() string        { return riskToleranceDescriptions[r] }
func (e InvestmentExperience) Description() string { return experienceDescriptions[e] }
func (g FinancialGoal) Description() string        { return goalDescriptions[g] }
func (s EmploymentStatus) Description() string     { return employmentDescriptions[s] }
func (s MaritalStatus) Description() string        { return maritalDescriptions[s] }
func (t InvestmentType) Description() string       { return investmentTypeDescriptions[t] }
func (h TimeHorizon) Description() string          { return horizonDescriptions[h] }

// FinancialProfile is the investor snapshot every generator reads from.
// Zero values (nil pointers, empty enum strings) mean "not provided".
type FinancialProfile struct {
	Age                      *int                 `json:"age,omitempty"`
	IncomeRange              IncomeRange          `json:"income_range,omitempty"`
	RiskTolerance            RiskTolerance        `json:"risk_tolerance,omitempty"`
	InvestmentExperience     InvestmentExperience `json:"investment_experience,omitempty"`
	FinancialGoals           []FinancialGoal      `json:"financial_goals,omitempty"`
	CurrentSavings           *Amount              `json:"current_savings,omitempty"`
	MonthlyExpenses          *Amount              `json:"monthly_expenses,omitempty"`
	DebtAmount               *Amount              `json:"debt_amount,omitempty"`
	EmploymentStatus         EmploymentStatus     `json:"employment_status,omitempty"`
	MaritalStatus            MaritalStatus        `json:"marital_status,omitempty"`
	NumberOfDependents       int                  `json:"number_of_dependents,omitempty"`
	RetirementAgeTarget      *int                 `json:"retirement_age_target,omitempty"`
	Interests                []string             `json:"interests,omitempty"`
	PreferredInvestmentTypes []InvestmentType     `json:"preferred_investment_types,omitempty"`
	TimeHorizon              TimeHorizon          `json:"time_horizon,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// IsProfileComplete reports whether the four fields needed for personalised
// guidance are present.
func IsProfileComplete(p *FinancialProfile) bool {
	return p != nil &&
		p.Age != nil &&
		p.RiskTolerance != "" &&
		p.InvestmentExperience != "" &&
		p.IncomeRange != ""
}

// ProfileCompleteness mirrors IsProfileComplete field by field.
type ProfileCompleteness struct {
	IsComplete                   bool `json:"is_complete"`
	AgeProvided                  bool `json:"age_provided"`
	RiskToleranceProvided        bool `json:"risk_tolerance_provided"`
	InvestmentExperienceProvided bool `json:"investment_experience_provided"`
	IncomeRangeProvided          bool `json:"income_range_provided"`
}

// CheckProfile reports which of the required fields are present.
func CheckProfile(p *FinancialProfile) ProfileCompleteness {
	if p == nil {
		return ProfileCompleteness{}
	}
	return ProfileCompleteness{
		IsComplete:                   IsProfileComplete(p),
		AgeProvided:                  p.Age != nil,
		RiskToleranceProvided:        p.RiskTolerance != "",
		InvestmentExperienceProvided: p.InvestmentExperience != "",
		IncomeRangeProvided:          p.IncomeRange != "",
	}
}

// Validate checks ranges and enum values. Generators never call it; it is
// meant for request boundaries.
func (p *FinancialProfile) Validate() error {
	if p == nil {
		return nil
	}
	if p.Age != nil && (*p.Age < 18 || *p.Age > 100) {
		return NewError(ErrCodeValidation, fmt.Sprintf("age must be between 18 and 100, got %d", *p.Age))
	}
	if p.RetirementAgeTarget != nil && (*p.RetirementAgeTarget < 18 || *p.RetirementAgeTarget > 100) {
		return NewError(ErrCodeValidation, fmt.Sprintf("retirement age target must be between 18 and 100, got %d", *p.RetirementAgeTarget))
	}
	if p.NumberOfDependents < 0 {
		return NewError(ErrCodeValidation, "number of dependents must not be negative")
	}
	for name, amount := range map[string]*Amount{
		"current_savings":  p.CurrentSavings,
		"monthly_expenses": p.MonthlyExpenses,
		"debt_amount":      p.DebtAmount,
	} {
		if amount != nil && amount.IsNegative() {
			return NewError(ErrCodeValidation, name+" must not be negative")
		}
	}

	if err := checkEnum("income_range", p.IncomeRange, incomeRangeDescriptions); err != nil {
		return err
	}
	if err := checkEnum("risk_tolerance", p.RiskTolerance, riskToleranceDescriptions); err != nil {
		return err
	}
	if err := checkEnum("investment_experience", p.InvestmentExperience, experienceDescriptions); err != nil {
		return err
	}
	if err := checkEnum("employment_status", p.EmploymentStatus, employmentDescriptions); err != nil {
		return err
	}
	if err := checkEnum("marital_status", p.MaritalStatus, maritalDescriptions); err != nil {
		return err
	}
	if err := checkEnum("time_horizon", p.TimeHorizon, horizonDescriptions); err != nil {
		return err
	}
	for _, g := range p.FinancialGoals {
		if err := checkEnum("financial_goals", g, goalDescriptions); err != nil {
			return err
		}
	}
	for _, t := range p.PreferredInvestmentTypes {
		if err := checkEnum("preferred_investment_types", t, investmentTypeDescriptions); err != nil {
			return err
		}
	}
	return nil
}

func checkEnum[T ~string](field string, value T, known map[T]string) error {
	if value == "" {
		return nil
	}
	if _, ok := known[value]; !ok {
		return NewError(ErrCodeValidation, fmt.Sprintf("unknown %s %q", field, string(value)))
	}
	return nil
}

// AgeGroup buckets an age into a life stage label. Nil yields "Unknown".
func AgeGroup(age *int) string {
	if age == nil {
		return "Unknown"
	}
	switch a := *age; {
	case a < 30:
		return "Young Adult (20s)"
	case a < 40:
		return "Early Career (30s)"
	case a < 50:
		return "Mid Career (40s)"
	case a < 60:
		return "Pre-Retirement (50s)"
	default:
		return "Retirement Age (60+)"
	}
}

// YearsToRetirement is zero once the target has been reached.
func (p *FinancialProfile) YearsToRetirement() int {
	if p == nil || p.Age == nil {
		return 0
	}
	left := p.retirementTarget(defaultRetirementAge) - *p.Age
	if left < 0 {
		return 0
	}
	return left
}

const (
	defaultAge           = 35
	defaultRetirementAge = 65
)

func (p *FinancialProfile) hasAge() bool {
	return p != nil && p.Age != nil
}

func (p *FinancialProfile) ageOr(fallback int) int {
	if !p.hasAge() {
		return fallback
	}
	return *p.Age
}

// ageBelow is false when age is absent.
func (p *FinancialProfile) ageBelow(limit int) bool {
	return p.hasAge() && *p.Age < limit
}

func (p *FinancialProfile) risk() RiskTolerance {
	if p == nil || p.RiskTolerance == "" {
		return RiskModerate
	}
	return p.RiskTolerance
}

func (p *FinancialProfile) isConservative() bool {
	return p != nil && p.RiskTolerance == RiskConservative
}

func (p *FinancialProfile) isAggressive() bool {
	return p != nil && p.RiskTolerance == RiskAggressive
}

func (p *FinancialProfile) retirementTarget(fallback int) int {
	if p == nil || p.RetirementAgeTarget == nil {
		return fallback
	}
	return *p.RetirementAgeTarget
}

func (p *FinancialProfile) hasGoal(goals ...FinancialGoal) bool {
	if p == nil {
		return false
	}
	for _, have := range p.FinancialGoals {
		for _, want := range goals {
			if have == want {
				return true
			}
		}
	}
	return false
}

// interestMatches reports whether any interest contains any keyword,
// case-insensitively.
func (p *FinancialProfile) interestMatches(keywords ...string) bool {
	if p == nil {
		return false
	}
	return interestsMatch(p.Interests, keywords)
}

func interestsMatch(interests, keywords []string) bool {
	for _, interest := range interests {
		lower := strings.ToLower(interest)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
