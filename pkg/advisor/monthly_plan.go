package advisor

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonthlyInvestmentPlan splits the recommended monthly investment into
// buckets. The four allocations and the breakdown both sum to the total.
type MonthlyInvestmentPlan struct {
	TotalMonthlyInvestment  Amount                `json:"total_monthly_investment"`
	SIPAllocation           Amount                `json:"sip_allocation"`
	DirectEquityAllocation  Amount                `json:"direct_equity_allocation"`
	DebtAllocation          Amount                `json:"debt_allocation"`
	EmergencyFundAllocation Amount                `json:"emergency_fund_allocation"`
	InvestmentBreakdown     []InvestmentBreakdown `json:"investment_breakdown"`
}

type InvestmentBreakdown struct {
	InvestmentName    string `json:"investment_name"`
	MonthlyAmount     Amount `json:"monthly_amount"`
	PercentageOfTotal string `json:"percentage_of_total"`
	Rationale         string `json:"rationale"`
}

var incomeMidpoints = map[IncomeRange]int64{
	IncomeBelow25K:   20000,
	Income25KTo50K:   37500,
	Income50KTo75K:   62500,
	Income75KTo100K:  87500,
	Income100KTo150K: 125000,
	IncomeAbove150K:  200000,
}

var defaultInvestmentByIncome = map[IncomeRange]int64{
	IncomeBelow25K:   2000,
	Income25KTo50K:   5000,
	Income50KTo75K:   10000,
	Income75KTo100K:  15000,
	Income100KTo150K: 25000,
	IncomeAbove150K:  40000,
}

const (
	fallbackMonthlyIncome     = 50000
	fallbackMonthlyInvestment = 10000
)

var (
	youngSurplusFraction = decimal.RequireFromString("0.30")
	surplusFraction      = decimal.RequireFromString("0.25")
)

// EstimateMonthlyIncome returns the midpoint of the income band.
func EstimateMonthlyIncome(r IncomeRange) Amount {
	if v, ok := incomeMidpoints[r]; ok {
		return NewAmountFromInt(v)
	}
	return NewAmountFromInt(fallbackMonthlyIncome)
}

// RecommendedMonthlyInvestment computes how much the investor should put
// away each month. With savings and expenses known it takes a share of the
// monthly surplus; otherwise it falls back to a flat amount per income band.
// A negative surplus yields zero.
func RecommendedMonthlyInvestment(p *FinancialProfile) Amount {
	if p == nil || p.CurrentSavings == nil || p.MonthlyExpenses == nil {
		var band IncomeRange
		if p != nil {
			band = p.IncomeRange
		}
		if v, ok := defaultInvestmentByIncome[band]; ok {
			return NewAmountFromInt(v)
		}
		return NewAmountFromInt(fallbackMonthlyInvestment)
	}

	surplus := EstimateMonthlyIncome(p.IncomeRange).Sub(p.MonthlyExpenses.Decimal)
	fraction := surplusFraction
	if p.ageBelow(30) {
		fraction = youngSurplusFraction
	}
	// Round half away from zero; the value is non-negative so this is half-up.
	recommended := surplus.Mul(fraction).Round(0)
	if recommended.IsNegative() {
		return Amount{decimal.Zero}
	}
	return Amount{recommended}
}

type planBucket struct {
	name      string
	percent   int64
	rationale string
}

// planBuckets must total 100. The last bucket absorbs rounding.
var planBuckets = []planBucket{
	{"Equity SIPs", 50, "Systematic investment in equity mutual funds for long-term wealth creation"},
	{"Direct Equity", 20, "Direct stock investments for higher potential returns"},
	{"Debt Instruments", 20, "Fixed income investments for stability and regular income"},
	{"Emergency Fund", 10, "Liquid savings for unexpected expenses"},
}

// CreateMonthlyInvestmentPlan splits the recommended total 50/20/20/10.
func CreateMonthlyInvestmentPlan(p *FinancialProfile) MonthlyInvestmentPlan {
	total := RecommendedMonthlyInvestment(p).Decimal
	hundred := decimal.NewFromInt(100)

	amounts := make([]decimal.Decimal, len(planBuckets))
	remaining := total
	for i, bucket := range planBuckets {
		if i == len(planBuckets)-1 {
			amounts[i] = remaining
			break
		}
		amounts[i] = total.Mul(decimal.NewFromInt(bucket.percent)).Div(hundred).Round(2)
		remaining = remaining.Sub(amounts[i])
	}

	breakdown := make([]InvestmentBreakdown, len(planBuckets))
	for i, bucket := range planBuckets {
		breakdown[i] = InvestmentBreakdown{
			InvestmentName:    bucket.name,
			MonthlyAmount:     Amount{amounts[i]},
			PercentageOfTotal: fmt.Sprintf("%d%%", bucket.percent),
			Rationale:         bucket.rationale,
		}
	}

	return MonthlyInvestmentPlan{
		TotalMonthlyInvestment:  Amount{total},
		SIPAllocation:           Amount{amounts[0]},
		DirectEquityAllocation:  Amount{amounts[1]},
		DebtAllocation:          Amount{amounts[2]},
		EmergencyFundAllocation: Amount{amounts[3]},
		InvestmentBreakdown:     breakdown,
	}
}
