package agent

import (
	"regexp"
	"strings"
)

// Input guardrail messages. A rejection is a final answer: the session
// completes without a review round.
const (
	rejectEmpty = "Please provide a mathematical question or problem."

	rejectOffTopic = "I'm designed specifically for mathematical problems. Please ask a maths related question."

	rejectNonMath = "This doesn't appear to be a mathematical question. I specialize in solving math problems. " +
		"Please ask about equations, calculations, or mathematical concepts."
)

var mathKeywords = []string{
	"solve", "equation", "derivative", "integral", "function", "graph", "plot",
	"algebra", "calculus", "geometry", "trigonometry", "statistics", "probability",
	"matrix", "vector", "limit", "series", "theorem", "proof", "formula",
	"calculate", "compute", "simplify", "factor", "expand", "evaluate",
	"polynomial", "exponential", "logarithm", "sine", "cosine", "tangent",
	"differential", "optimization", "minimum", "maximum", "area", "volume",
	"perimeter", "distance", "slope", "intercept", "quadratic", "linear",
	"parabola", "circle", "triangle", "rectangle", "sphere", "cylinder",
	"binomial", "factorial", "permutation", "combination", "variance", "deviation",
}

var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[+\-*/=<>≤≥≠±∞]`),
	regexp.MustCompile(`[xy]\^?\d*`),
	regexp.MustCompile(`\d+[xy]`),
	regexp.MustCompile(`(?i)sin|cos|tan|log|ln|sqrt`),
	regexp.MustCompile(`∫|∑|∏|∂|∆|π|θ|α|β|γ|λ|μ|σ`),
	regexp.MustCompile(`\b\d+\.\d+\b`),
	regexp.MustCompile(`\b\d+/\d+\b`),
	regexp.MustCompile(`\([^)]*[xy][^)]*\)`),
	regexp.MustCompile(`[a-z]\s*²|[a-z]\s*³`),
}

var nonMathIndicators = []string{
	"write a story", "tell me a joke", "weather", "news", "recipe",
	"movie", "book recommendation", "health advice", "relationship",
	"what is your opinion", "how do you feel", "personal experience",
}

// edgeCaseWords cover phrasings like "what is 15% of 80" that carry no
// math keyword or symbol.
var edgeCaseWords = []string{"find", "what is", "how much", "calculate"}

// ValidateMathInput checks whether a topic looks like a mathematical
// question. On rejection the returned message is the answer shown to the
// user.
func ValidateMathInput(topic string) (bool, string) {
	if strings.TrimSpace(topic) == "" {
		return false, rejectEmpty
	}

	lower := strings.ToLower(strings.TrimSpace(topic))

	for _, indicator := range nonMathIndicators {
		if strings.Contains(lower, indicator) {
			return false, rejectOffTopic
		}
	}

	for _, keyword := range mathKeywords {
		if strings.Contains(lower, keyword) {
			return true, ""
		}
	}

	for _, pattern := range mathPatterns {
		if pattern.MatchString(lower) {
			return true, ""
		}
	}

	for _, word := range edgeCaseWords {
		if strings.Contains(lower, word) {
			return true, ""
		}
	}

	return false, rejectNonMath
}
