package advisor

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockRecommendation is a single direct-equity pick.
type StockRecommendation struct {
	StockName           string `json:"stock_name"`
	StockSymbol         string `json:"stock_symbol"`
	Sector              string `json:"sector"`
	InvestmentRationale string `json:"investment_rationale"`
	TargetAllocation    string `json:"target_allocation"`
	RiskLevel           string `json:"risk_level"`
	TimeHorizon         string `json:"time_horizon"`
	WhySuitable         string `json:"why_suitable"`
}

// SIPRecommendation is a monthly systematic investment into one fund.
type SIPRecommendation struct {
	FundName            string `json:"fund_name"`
	FundType            string `json:"fund_type"`
	RecommendedAmount   Amount `json:"recommended_amount"`
	SIPFrequency        string `json:"sip_frequency"`
	ExpectedReturns     string `json:"expected_returns"`
	RiskLevel           string `json:"risk_level"`
	InvestmentRationale string `json:"investment_rationale"`
	MinimumTenure       string `json:"minimum_tenure"`
}

// MutualFundRecommendation describes a lump-sum mutual fund pick.
type MutualFundRecommendation struct {
	FundName            string            `json:"fund_name"`
	FundCategory        string            `json:"fund_category"`
	FundHouse           string            `json:"fund_house"`
	ExpenseRatio        string            `json:"expense_ratio"`
	HistoricalReturns   map[string]string `json:"historical_returns"`
	InvestmentRationale string            `json:"investment_rationale"`
	SuitableFor         string            `json:"suitable_for"`
}

type ETFRecommendation struct {
	ETFName             string `json:"etf_name"`
	ETFSymbol           string `json:"etf_symbol"`
	UnderlyingIndex     string `json:"underlying_index"`
	ExpenseRatio        string `json:"expense_ratio"`
	InvestmentRationale string `json:"investment_rationale"`
	Liquidity           string `json:"liquidity"`
}

type BondRecommendation struct {
	BondType            string `json:"bond_type"`
	Issuer              string `json:"issuer"`
	Maturity            string `json:"maturity"`
	Yield               string `json:"yield"`
	CreditRating        string `json:"credit_rating"`
	InvestmentRationale string `json:"investment_rationale"`
}

type AlternativeInvestment struct {
	InvestmentType      string `json:"investment_type"`
	InvestmentName      string `json:"investment_name"`
	ExpectedReturns     string `json:"expected_returns"`
	RiskLevel           string `json:"risk_level"`
	Liquidity           string `json:"liquidity"`
	MinimumInvestment   string `json:"minimum_investment"`
	InvestmentRationale string `json:"investment_rationale"`
}

// Interest keyword sets shared by the generators below.
var (
	technologyKeywords  = []string{"technology", "tech", "artificial intelligence"}
	healthcareKeywords  = []string{"healthcare", "medical"}
	cleanEnergyKeywords = []string{"environment", "green", "sustainable", "renewable", "energy"}
	consumerKeywords    = []string{"consumer", "fmcg", "retail"}
	realEstateKeywords  = []string{"real estate", "property"}
)

// percentBand is an inclusive target allocation range such as 10-15%.
type percentBand struct {
	low, high int
}

func (b percentBand) String() string {
	return fmt.Sprintf("%d-%d%%", b.low, b.high)
}

// narrowed keeps the lower half of the band.
func (b percentBand) narrowed() percentBand {
	return percentBand{low: b.low, high: b.low + (b.high-b.low+1)/2}
}

type stockPick struct {
	name, symbol, sector string
	rationale            string
	risk, horizon        string
	whySuitable          string
	band                 percentBand

	// Optional overrides. Conservative profiles otherwise get band.narrowed().
	conservativeBand *percentBand
	youngBand        *percentBand
}

func (s stockPick) recommend(p *FinancialProfile) StockRecommendation {
	band := s.band
	switch {
	case p.isConservative() && s.conservativeBand != nil:
		band = *s.conservativeBand
	case p.isConservative():
		band = band.narrowed()
	case s.youngBand != nil && p.ageBelow(35):
		band = *s.youngBand
	}
	return StockRecommendation{
		StockName:           s.name,
		StockSymbol:         s.symbol,
		Sector:              s.sector,
		InvestmentRationale: s.rationale,
		TargetAllocation:    band.String(),
		RiskLevel:           s.risk,
		TimeHorizon:         s.horizon,
		WhySuitable:         s.whySuitable,
	}
}

var anchorStocks = []stockPick{
	{
		name:             "Reliance Industries",
		symbol:           "RELIANCE",
		sector:           "Oil & Gas / Telecom",
		rationale:        "Diversified business model with strong presence in energy, retail, and telecom",
		risk:             "Medium",
		horizon:          "3-5 years",
		whySuitable:      "Stable dividend-paying stock suitable for conservative investors",
		band:             percentBand{10, 15},
		conservativeBand: &percentBand{15, 18},
	},
	{
		name:        "HDFC Bank",
		symbol:      "HDFCBANK",
		sector:      "Banking",
		rationale:   "Leading private sector bank with consistent performance and strong fundamentals",
		risk:        "Medium",
		horizon:     "3-7 years",
		whySuitable: "Banking sector exposure with stable returns and dividend yield",
		band:        percentBand{10, 15},
	},
}

type sectorStockRule struct {
	keywords []string
	picks    []stockPick
}

// sectorStockRules are evaluated in order; each matching rule adds its picks.
var sectorStockRules = []sectorStockRule{
	{
		keywords: technologyKeywords,
		picks: []stockPick{
			{
				name:        "Infosys",
				symbol:      "INFY",
				sector:      "Information Technology",
				rationale:   "Global IT services leader riding enterprise technology spending and digital transformation",
				risk:        "Medium",
				horizon:     "3-5 years",
				whySuitable: "Aligns with your interest in technology and offers exposure to global IT services",
				band:        percentBand{5, 10},
				youngBand:   &percentBand{10, 15},
			},
			{
				name:        "Tata Consultancy Services",
				symbol:      "TCS",
				sector:      "Information Technology",
				rationale:   "India's largest IT services company with strong global presence and consistent technology-led growth",
				risk:        "Medium",
				horizon:     "3-7 years",
				whySuitable: "Premium IT stock with strong fundamentals and regular dividends",
				band:        percentBand{8, 12},
			},
		},
	},
	{
		keywords: healthcareKeywords,
		picks: []stockPick{
			{
				name:        "Dr. Reddy's Laboratories",
				symbol:      "DRREDDY",
				sector:      "Pharmaceuticals",
				rationale:   "Leading pharmaceutical company with strong generic and API business",
				risk:        "Medium-High",
				horizon:     "3-5 years",
				whySuitable: "Exposure to growing healthcare sector aligned with your interests",
				band:        percentBand{5, 10},
			},
		},
	},
	{
		keywords: cleanEnergyKeywords,
		picks: []stockPick{
			{
				name:        "Tata Power",
				symbol:      "TATAPOWER",
				sector:      "Power / Renewable Energy",
				rationale:   "Integrated utility scaling solar and wind capacity alongside its distribution business",
				risk:        "Medium-High",
				horizon:     "5-7 years",
				whySuitable: "Participation in India's energy transition in line with your sustainability interests",
				band:        percentBand{4, 8},
			},
		},
	},
	{
		keywords: consumerKeywords,
		picks: []stockPick{
			{
				name:        "Hindustan Unilever",
				symbol:      "HINDUNILVR",
				sector:      "FMCG",
				rationale:   "Defensive consumer staples leader with pricing power and deep rural distribution",
				risk:        "Low-Medium",
				horizon:     "3-5 years",
				whySuitable: "Steady consumption-driven growth matching your interest in consumer businesses",
				band:        percentBand{5, 10},
			},
		},
	},
}

var growthStock = stockPick{
	name:        "Asian Paints",
	symbol:      "ASIANPAINT",
	sector:      "Paints & Coatings",
	rationale:   "Market leader in decorative paints with strong brand and distribution network",
	risk:        "Medium",
	horizon:     "5-7 years",
	whySuitable: "Quality growth stock with consistent performance and market leadership",
	band:        percentBand{5, 8},
}

// GenerateStockRecommendations returns the anchor picks, sector picks for
// matching interests, and a growth pick for young aggressive investors.
func GenerateStockRecommendations(p *FinancialProfile) []StockRecommendation {
	picks := append([]stockPick(nil), anchorStocks...)
	for _, rule := range sectorStockRules {
		if p.interestMatches(rule.keywords...) {
			picks = append(picks, rule.picks...)
		}
	}
	if p.ageBelow(35) && p.isAggressive() {
		picks = append(picks, growthStock)
	}

	seen := make(map[string]struct{}, len(picks))
	out := make([]StockRecommendation, 0, len(picks))
	for _, pick := range picks {
		if _, dup := seen[pick.symbol]; dup {
			continue
		}
		seen[pick.symbol] = struct{}{}
		out = append(out, pick.recommend(p))
	}
	return out
}

// sipPoolShare is the part of the monthly investment routed through SIPs.
var sipPoolShare = decimal.RequireFromString("0.6")

type sipFund struct {
	name, fundType string
	returns, risk  string
	rationale      string
	tenure         string
	share          decimal.Decimal // of the SIP pool
	fixed          decimal.Decimal // used instead of share when non-zero
	eligible       func(p *FinancialProfile) bool
}

var sipCatalog = []sipFund{
	{
		name:      "SBI Bluechip Fund",
		fundType:  "Large Cap Equity",
		returns:   "10-12% annually",
		risk:      "Medium",
		rationale: "Invests in large-cap stocks providing stability and consistent returns",
		tenure:    "5+ years",
		share:     decimal.RequireFromString("0.4"),
	},
	{
		name:      "HDFC Flexi Cap Fund",
		fundType:  "Flexi Cap Equity",
		returns:   "12-15% annually",
		risk:      "Medium-High",
		rationale: "Flexible allocation across market caps for optimal risk-return balance",
		tenure:    "7+ years",
		share:     decimal.RequireFromString("0.3"),
	},
	{
		name:      "Axis Small Cap Fund",
		fundType:  "Small Cap Equity",
		returns:   "15-18% annually",
		risk:      "High",
		rationale: "Higher growth potential through small-cap exposure for long-term wealth creation",
		tenure:    "10+ years",
		share:     decimal.RequireFromString("0.2"),
		eligible: func(p *FinancialProfile) bool {
			return p.ageBelow(40) && !p.isConservative()
		},
	},
	{
		name:      "Mirae Asset Tax Saver Fund",
		fundType:  "ELSS (Tax Saving)",
		returns:   "12-15% annually",
		risk:      "Medium-High",
		rationale: "Tax-saving investment under Section 80C with equity exposure",
		tenure:    "3 years (lock-in)",
		// Roughly the yearly 80C limit spread across twelve months.
		fixed: decimal.NewFromInt(12500),
	},
	{
		name:      "Motilal Oswal Nasdaq 100 Fund",
		fundType:  "International Equity",
		returns:   "10-14% annually",
		risk:      "Medium-High",
		rationale: "Exposure to US technology giants and international diversification",
		tenure:    "7+ years",
		share:     decimal.RequireFromString("0.1"),
		eligible: func(p *FinancialProfile) bool {
			return p.ageBelow(50)
		},
	},
}

// GenerateSIPRecommendations splits the SIP pool across the eligible funds.
func GenerateSIPRecommendations(p *FinancialProfile) []SIPRecommendation {
	pool := RecommendedMonthlyInvestment(p).Mul(sipPoolShare)

	out := make([]SIPRecommendation, 0, len(sipCatalog))
	for _, fund := range sipCatalog {
		if fund.eligible != nil && !fund.eligible(p) {
			continue
		}
		amount := fund.fixed
		if amount.IsZero() {
			amount = pool.Mul(fund.share).Round(2)
		}
		out = append(out, SIPRecommendation{
			FundName:            fund.name,
			FundType:            fund.fundType,
			RecommendedAmount:   Amount{amount},
			SIPFrequency:        "Monthly",
			ExpectedReturns:     fund.returns,
			RiskLevel:           fund.risk,
			InvestmentRationale: fund.rationale,
			MinimumTenure:       fund.tenure,
		})
	}
	return out
}

type mutualFundEntry struct {
	MutualFundRecommendation
	eligible func(p *FinancialProfile) bool
}

var mutualFundCatalog = []mutualFundEntry{
	{MutualFundRecommendation: MutualFundRecommendation{
		FundName:            "ICICI Prudential Bluechip Fund",
		FundCategory:        "Large Cap",
		FundHouse:           "ICICI Prudential",
		ExpenseRatio:        "1.05%",
		HistoricalReturns:   map[string]string{"1_year": "12.5%", "3_year": "15.2%", "5_year": "13.8%"},
		InvestmentRationale: "Consistent performer in large-cap category with experienced fund management",
		SuitableFor:         "Conservative to moderate risk investors seeking steady returns",
	}},
	{MutualFundRecommendation: MutualFundRecommendation{
		FundName:            "DSP Midcap Fund",
		FundCategory:        "Mid Cap",
		FundHouse:           "DSP Mutual Fund",
		ExpenseRatio:        "1.75%",
		HistoricalReturns:   map[string]string{"1_year": "18.3%", "3_year": "22.1%", "5_year": "16.7%"},
		InvestmentRationale: "Well-diversified mid-cap portfolio with focus on quality companies",
		SuitableFor:         "Moderate to aggressive investors with 7+ year investment horizon",
	}},
	{MutualFundRecommendation: MutualFundRecommendation{
		FundName:            "HDFC Balanced Advantage Fund",
		FundCategory:        "Hybrid - Dynamic Asset Allocation",
		FundHouse:           "HDFC Mutual Fund",
		ExpenseRatio:        "1.15%",
		HistoricalReturns:   map[string]string{"1_year": "9.8%", "3_year": "11.5%", "5_year": "10.2%"},
		InvestmentRationale: "Dynamic asset allocation between equity and debt based on market conditions",
		SuitableFor:         "Conservative investors seeking balanced exposure to equity and debt",
	}},
	{
		MutualFundRecommendation: MutualFundRecommendation{
			FundName:            "Mirae Asset ESG Sector Leaders Fund",
			FundCategory:        "Thematic - ESG",
			FundHouse:           "Mirae Asset",
			ExpenseRatio:        "0.65%",
			HistoricalReturns:   map[string]string{"1_year": "14.1%", "3_year": "13.4%"},
			InvestmentRationale: "Invests in companies screened for environmental, social and governance practices",
			SuitableFor:         "Investors who want their equity exposure aligned with sustainability goals",
		},
		eligible: func(p *FinancialProfile) bool { return p.interestMatches(cleanEnergyKeywords...) },
	},
}

// GenerateMutualFundRecommendations returns the core funds plus thematic
// funds that match the profile's interests.
func GenerateMutualFundRecommendations(p *FinancialProfile) []MutualFundRecommendation {
	out := make([]MutualFundRecommendation, 0, len(mutualFundCatalog))
	for _, entry := range mutualFundCatalog {
		if entry.eligible != nil && !entry.eligible(p) {
			continue
		}
		rec := entry.MutualFundRecommendation
		rec.HistoricalReturns = copyReturns(entry.HistoricalReturns)
		out = append(out, rec)
	}
	return out
}

func copyReturns(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type etfEntry struct {
	ETFRecommendation
	eligible func(p *FinancialProfile) bool
}

var etfCatalog = []etfEntry{
	{ETFRecommendation: ETFRecommendation{
		ETFName:             "SBI ETF Nifty 50",
		ETFSymbol:           "SETFNIF50",
		UnderlyingIndex:     "Nifty 50",
		ExpenseRatio:        "0.10%",
		InvestmentRationale: "Low-cost exposure to India's top 50 companies with high liquidity",
		Liquidity:           "High",
	}},
	{ETFRecommendation: ETFRecommendation{
		ETFName:             "ICICI Prudential Nifty Bank ETF",
		ETFSymbol:           "BANKBEES",
		UnderlyingIndex:     "Nifty Bank",
		ExpenseRatio:        "0.15%",
		InvestmentRationale: "Focused exposure to banking sector with sectoral diversification",
		Liquidity:           "High",
	}},
	{ETFRecommendation: ETFRecommendation{
		ETFName:             "HDFC Gold ETF",
		ETFSymbol:           "HDFCGOLD",
		UnderlyingIndex:     "Gold Prices",
		ExpenseRatio:        "0.50%",
		InvestmentRationale: "Hedge against inflation and currency devaluation",
		Liquidity:           "Medium",
	}},
	{
		ETFRecommendation: ETFRecommendation{
			ETFName:             "Nippon India ETF Nifty IT",
			ETFSymbol:           "ITBEES",
			UnderlyingIndex:     "Nifty IT",
			ExpenseRatio:        "0.22%",
			InvestmentRationale: "Basket exposure to listed Indian technology services companies",
			Liquidity:           "High",
		},
		eligible: func(p *FinancialProfile) bool { return p.interestMatches(technologyKeywords...) },
	},
}

// GenerateETFRecommendations returns index, sector and gold ETFs.
func GenerateETFRecommendations(p *FinancialProfile) []ETFRecommendation {
	out := make([]ETFRecommendation, 0, len(etfCatalog))
	for _, entry := range etfCatalog {
		if entry.eligible != nil && !entry.eligible(p) {
			continue
		}
		out = append(out, entry.ETFRecommendation)
	}
	return out
}

type bondEntry struct {
	BondRecommendation
	eligible func(p *FinancialProfile) bool
}

var bondCatalog = []bondEntry{
	{BondRecommendation: BondRecommendation{
		BondType:            "Government Bond",
		Issuer:              "Government of India",
		Maturity:            "10 years",
		Yield:               "7.2%",
		CreditRating:        "AAA (Sovereign)",
		InvestmentRationale: "Risk-free investment with guaranteed returns backed by government",
	}},
	{
		BondRecommendation: BondRecommendation{
			BondType:            "Corporate Bond",
			Issuer:              "HDFC Ltd",
			Maturity:            "5 years",
			Yield:               "8.5%",
			CreditRating:        "AAA",
			InvestmentRationale: "Higher yield than government bonds with AAA credit rating",
		},
		eligible: func(p *FinancialProfile) bool { return !p.isConservative() },
	},
}

// GenerateBondRecommendations always includes the sovereign bond; corporate
// paper is left out for conservative investors.
func GenerateBondRecommendations(p *FinancialProfile) []BondRecommendation {
	out := make([]BondRecommendation, 0, len(bondCatalog))
	for _, entry := range bondCatalog {
		if entry.eligible != nil && !entry.eligible(p) {
			continue
		}
		out = append(out, entry.BondRecommendation)
	}
	return out
}

type alternativeEntry struct {
	AlternativeInvestment
	eligible func(p *FinancialProfile) bool
}

var alternativeCatalog = []alternativeEntry{
	{
		AlternativeInvestment: AlternativeInvestment{
			InvestmentType:      "REIT",
			InvestmentName:      "Embassy Office Parks REIT",
			ExpectedReturns:     "8-10%",
			RiskLevel:           "Medium",
			Liquidity:           "Medium (Listed)",
			MinimumInvestment:   "₹10,000",
			InvestmentRationale: "Exposure to commercial real estate with regular dividend income",
		},
		eligible: func(p *FinancialProfile) bool { return p.interestMatches(realEstateKeywords...) },
	},
	{AlternativeInvestment: AlternativeInvestment{
		InvestmentType:      "Commodity",
		InvestmentName:      "Digital Gold",
		ExpectedReturns:     "6-8%",
		RiskLevel:           "Medium",
		Liquidity:           "High",
		MinimumInvestment:   "₹100",
		InvestmentRationale: "Inflation hedge and portfolio diversification",
	}},
}

// GenerateAlternativeInvestments returns digital gold and, for investors
// interested in property, a listed REIT.
func GenerateAlternativeInvestments(p *FinancialProfile) []AlternativeInvestment {
	out := make([]AlternativeInvestment, 0, len(alternativeCatalog))
	for _, entry := range alternativeCatalog {
		if entry.eligible != nil && !entry.eligible(p) {
			continue
		}
		out = append(out, entry.AlternativeInvestment)
	}
	return out
}

type interestTheme struct {
	keywords []string
	themes   []string
}

// interestThemes: first matching entry wins per interest.
var interestThemes = []interestTheme{
	{technologyKeywords, []string{"IT Sector Funds", "Technology ETFs", "Infosys", "TCS", "Tech Mutual Funds"}},
	{healthcareKeywords, []string{"Pharma Sector Funds", "Healthcare ETFs", "Dr. Reddy's", "Biocon"}},
	{[]string{"environment", "green"}, []string{"ESG Funds", "Green Bonds", "Renewable Energy Stocks"}},
	{[]string{"real estate"}, []string{"REITs", "Real Estate Mutual Funds", "Property Stocks"}},
}

var defaultInterestThemes = []string{"Diversified Equity Funds", "Large Cap Stocks", "Index Funds"}

// InterestBasedRecommendations maps free-form interests to investment
// themes, de-duplicated in first-seen order.
func InterestBasedRecommendations(interests []string) []string {
	if len(interests) == 0 {
		return append([]string(nil), defaultInterestThemes...)
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(items ...string) {
		for _, item := range items {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	for _, interest := range interests {
		matched := false
		for _, theme := range interestThemes {
			if interestsMatch([]string{interest}, theme.keywords) {
				add(theme.themes...)
				matched = true
				break
			}
		}
		if !matched {
			add("Diversified Equity Funds")
		}
	}
	return out
}
