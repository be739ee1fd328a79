package pipeline

import "strings"

// ApprovalPolicy decides whether a piece of feedback accepts the pending
// draft rather than requesting a revision. This is a policy hook: the
// affirmative vocabulary is a product decision, not a transport one.
type ApprovalPolicy interface {
	IsApproval(text string) bool
}

// DefaultApprovalTokens are the affirmative responses accepted out of the
// box. "approve" is the documented token; the rest match common ways
// users say yes.
var DefaultApprovalTokens = []string{
	"approve",
	"approved",
	"yes",
	"ok",
	"correct",
	"good",
	"looks good",
}

// TokenPolicy matches normalized feedback against a fixed token set.
// Matching is exact after normalization, so "I don't approve" is a
// revision request, not an approval.
type TokenPolicy struct {
	tokens map[string]struct{}
}

// NewTokenPolicy creates a policy from the given tokens. An empty list
// falls back to DefaultApprovalTokens.
func NewTokenPolicy(tokens []string) *TokenPolicy {
	if len(tokens) == 0 {
		tokens = DefaultApprovalTokens
	}
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[normalizeFeedback(tok)] = struct{}{}
	}
	return &TokenPolicy{tokens: set}
}

func (p *TokenPolicy) IsApproval(text string) bool {
	_, ok := p.tokens[normalizeFeedback(text)]
	return ok
}

// normalizeFeedback lowercases, trims, and collapses inner whitespace so
// "  Looks   Good " and "looks good" compare equal.
func normalizeFeedback(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
