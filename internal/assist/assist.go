// Package assist answers common compliance questions from a static, ordered
// rule list keyed by keyword containment. It is deliberately not an engine:
// rules are data, evaluated top to bottom, first match wins.
package assist

import "strings"

// Rule maps question keywords to a canned answer.
type Rule struct {
	Keywords []string
	Answer   string
}

// DefaultRules is the built-in rule list, evaluated in order.
var DefaultRules = []Rule{
	{
		Keywords: []string{"gst"},
		Answer:   "GST filing deadlines are typically the 20th of the following month. For monthly filers, file GSTR-1 by 11th and GSTR-3B by 20th. Late filing attracts penalties starting from ₹50 per day.",
	},
	{
		Keywords: []string{"itr", "income tax"},
		Answer:   "ITR filing deadline for individuals is July 31st of the assessment year. For businesses, it's September 30th. E-filing is mandatory for most taxpayers with income above ₹2.5 lakhs.",
	},
	{
		Keywords: []string{"compliance", "startup"},
		Answer:   "For startups, key compliances include: 1) Annual filing with MCA, 2) GST returns if registered, 3) TDS compliance if applicable, 4) ESI/PF if employees > threshold, 5) Income tax returns.",
	},
}

// DefaultAnswer is returned when no rule matches.
const DefaultAnswer = "I understand your question about Indian legal compliance. Based on current laws, I recommend consulting the specific provisions of the relevant act. For detailed guidance, you may want to book a consultation with one of our verified professionals."

// Answer returns the first matching rule's answer for a question.
func Answer(question string) string {
	return AnswerWith(DefaultRules, question)
}

// AnswerWith evaluates an explicit rule list against a question.
func AnswerWith(rules []Rule, question string) string {
	lower := strings.ToLower(question)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Answer
			}
		}
	}
	return DefaultAnswer
}
