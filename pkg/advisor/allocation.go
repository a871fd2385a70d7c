package advisor

import (
	"fmt"
	"strings"
)

// AssetAllocation is a five-way percentage split. The percentages are
// non-negative and always sum to 100.
type AssetAllocation struct {
	EquityPercentage        int    `json:"equity_percentage"`
	DebtPercentage          int    `json:"debt_percentage"`
	GoldPercentage          int    `json:"gold_percentage"`
	InternationalPercentage int    `json:"international_percentage"`
	AlternativePercentage   int    `json:"alternative_percentage"`
	Rationale               string `json:"rationale"`
}

// Total sums the five percentages.
func (a AssetAllocation) Total() int {
	return a.EquityPercentage + a.DebtPercentage + a.GoldPercentage + a.InternationalPercentage + a.AlternativePercentage
}

const (
	minEquityPercentage = 20
	maxEquityPercentage = 85
	equityPlusDebt      = 80
	goldPercentage      = 10
	alternativeShare    = 5
)

// riskEquityAdjustments shifts the age-based equity share per risk tolerance.
// Tolerances missing from the table leave the base untouched.
var riskEquityAdjustments = map[RiskTolerance]func(base int) int{
	RiskAggressive: func(base int) int {
		return min(maxEquityPercentage, base+10)
	},
	RiskConservative: func(base int) int {
		return max(minEquityPercentage, base-15)
	},
}

// CalculateAssetAllocation derives the split from age and risk tolerance.
// A missing age is treated as 35, a missing risk tolerance as moderate.
func CalculateAssetAllocation(p *FinancialProfile) AssetAllocation {
	age := p.ageOr(defaultAge)
	risk := p.risk()

	equity := max(minEquityPercentage, 100-age)
	if adjust, ok := riskEquityAdjustments[risk]; ok {
		equity = adjust(equity)
	}

	international := 10
	if age >= 50 {
		international = 5
	}

	alloc := AssetAllocation{
		EquityPercentage:        equity,
		DebtPercentage:          equityPlusDebt - equity,
		GoldPercentage:          goldPercentage,
		InternationalPercentage: international,
		AlternativePercentage:   alternativeShare,
	}

	// Debt absorbs any drift from 100.
	alloc.DebtPercentage -= alloc.Total() - 100

	// Very young investors would end up with negative debt; take the
	// shortfall from equity instead.
	if alloc.DebtPercentage < 0 {
		alloc.EquityPercentage += alloc.DebtPercentage
		alloc.DebtPercentage = 0
	}

	alloc.Rationale = fmt.Sprintf("Age-based allocation (%d years) with %s risk tolerance adjustment",
		age, strings.ToLower(string(risk)))
	return alloc
}
