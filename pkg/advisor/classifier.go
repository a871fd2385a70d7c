package advisor

import "strings"

// Topic is the domain category a free-text question is routed to.
type Topic string

const (
	TopicRealEstate Topic = "REAL_ESTATE"
	TopicVehicle    Topic = "VEHICLE_FINANCE"
	TopicLoan       Topic = "LOAN_FINANCE"
	TopicEducation  Topic = "EDUCATION_PLANNING"
	TopicBusiness   Topic = "BUSINESS_FINANCE"
	TopicLifeEvents Topic = "LIFE_EVENTS"
	TopicTravel     Topic = "TRAVEL_PLANNING"
	TopicInvestment Topic = "INVESTMENT"
	TopicGeneral    Topic = "GENERAL"
)

type topicRule struct {
	topic    Topic
	keywords []string
}

// topicRules is checked top to bottom and the first hit wins, so the order
// here is part of the contract.
var topicRules = []topicRule{
	{TopicRealEstate, []string{"house", "home", "property", "real estate", "flat", "apartment"}},
	{TopicVehicle, []string{"car", "vehicle", "bike", "auto loan", "automobile"}},
	{TopicLoan, []string{"loan", "emi", "interest rate", "mortgage", "credit"}},
	{TopicEducation, []string{"education", "college", "school", "child", "study"}},
	{TopicBusiness, []string{"business", "startup", "entrepreneur"}},
	{TopicLifeEvents, []string{"marriage", "wedding", "family"}},
	{TopicTravel, []string{"travel", "vacation", "holiday"}},
	{TopicInvestment, []string{"investment", "sip", "mutual fund", "stock", "equity"}},
}

// ClassifyQuestion maps a question to a topic by case-insensitive substring
// match against topicRules. Anything unmatched is TopicGeneral.
func ClassifyQuestion(question string) Topic {
	lower := strings.ToLower(question)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.topic
			}
		}
	}
	return TopicGeneral
}

// Topics lists every topic in priority order, TopicGeneral last.
func Topics() []Topic {
	out := make([]Topic, 0, len(topicRules)+1)
	for _, rule := range topicRules {
		out = append(out, rule.topic)
	}
	return append(out, TopicGeneral)
}
