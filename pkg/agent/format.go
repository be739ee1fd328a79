package agent

import "regexp"

// mathReplacement rewrites plain-text math into display notation.
type mathReplacement struct {
	pattern *regexp.Regexp
	replace string
}

var mathReplacements = []mathReplacement{
	{regexp.MustCompile(`(\d+)/(\d+)`), `\frac{$1}{$2}`},
	{regexp.MustCompile(`\^(\d+)`), `^{$1}`},
	{regexp.MustCompile(`\^([a-zA-Z]+)`), `^{$1}`},
	{regexp.MustCompile(`sqrt\(([^)]+)\)`), `\sqrt{$1}`},
	{regexp.MustCompile(`√\(([^)]+)\)`), `\sqrt{$1}`},
	{regexp.MustCompile(`(?i)\bpi\b`), `π`},
	{regexp.MustCompile(`(?i)\binfinity\b`), `∞`},
	{regexp.MustCompile(`(?i)\btheta\b`), `θ`},
	{regexp.MustCompile(`(?i)\balpha\b`), `α`},
	{regexp.MustCompile(`(?i)\bbeta\b`), `β`},
	{regexp.MustCompile(`(?i)\bgamma\b`), `γ`},
	{regexp.MustCompile(`d/dx`), `\frac{d}{dx}`},
	{regexp.MustCompile(`(?i)\bintegral\b`), `∫`},
}

// FormatMathOutput rewrites fractions, exponents, roots, and named
// constants in solver output for better client display. The content
// stays opaque to the core; this is presentation polish only.
func FormatMathOutput(text string) string {
	if text == "" {
		return text
	}

	formatted := text
	for _, r := range mathReplacements {
		formatted = r.pattern.ReplaceAllString(formatted, r.replace)
	}
	return formatted
}
