package advisor

import "strings"

// ProfileTemplate documents the accepted profile fields for clients that
// build a profile form.
type ProfileTemplate struct {
	RequiredFields   map[string]string `json:"required_fields"`
	OptionalFields   map[string]string `json:"optional_fields"`
	ExampleInterests []string          `json:"example_interests"`
}

func joinValues[T ~string](values ...T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// NewProfileTemplate lists every enum value in declaration order.
func NewProfileTemplate() ProfileTemplate {
	incomes := joinValues(IncomeBelow25K, Income25KTo50K, Income50KTo75K, Income75KTo100K, Income100KTo150K, IncomeAbove150K)
	goals := joinValues(GoalRetirement, GoalEmergencyFund, GoalHomePurchase, GoalEducation, GoalDebtPayoff,
		GoalWealthBuilding, GoalTravel, GoalBusinessInvestment, GoalChildEducation, GoalInsurance)
	investmentTypes := joinValues(InvestStocks, InvestBonds, InvestMutualFunds, InvestETF, InvestRealEstate,
		InvestCryptocurrency, InvestCommodities, InvestSavingsAccount, InvestCD, InvestRoboAdvisor)
	employment := joinValues(EmployedFullTime, EmployedPartTime, SelfEmployed, Unemployed, Retired, Student)

	return ProfileTemplate{
		RequiredFields: map[string]string{
			"age":                   "Integer (18-100)",
			"risk_tolerance":        joinValues(RiskConservative, RiskModerate, RiskAggressive),
			"investment_experience": joinValues(ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced),
			"income_range":          incomes,
		},
		OptionalFields: map[string]string{
			"financial_goals":            "Array of: " + goals,
			"interests":                  "Array of strings (e.g. technology, healthcare, environment)",
			"current_savings":            "Decimal amount",
			"monthly_expenses":           "Decimal amount",
			"debt_amount":                "Decimal amount",
			"employment_status":          employment,
			"marital_status":             joinValues(MaritalSingle, MaritalMarried, MaritalDivorced, MaritalWidowed),
			"number_of_dependents":       "Integer (0 or more)",
			"retirement_age_target":      "Integer (18-100)",
			"preferred_investment_types": "Array of: " + investmentTypes,
			"time_horizon":               joinValues(HorizonShort, HorizonMedium, HorizonLong),
		},
		ExampleInterests: []string{
			"technology", "healthcare", "environment", "real estate",
			"travel", "education", "renewable energy", "artificial intelligence",
		},
	}
}
