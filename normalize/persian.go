package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// Persian normalizes Persian text.
//
// Steps, in order:
//   - NFKC compatibility folding (presentation forms, ligatures, full-width
//     Latin and non-breaking spaces fold to their base characters)
//   - Arabic yeh/alef maksura to Persian yeh, Arabic kaf to keheh
//   - Arabic-Indic digits to Persian digits (optional)
//   - removal of diacritics (nonspacing marks) and tatweel
//   - whitespace runs collapsed to one space, ends trimmed
type Persian struct {
	keepDiacritics bool
	unifyDigits    bool
}

var _ Normalizer = (*Persian)(nil)

// PersianOption configures a Persian normalizer.
type PersianOption func(*Persian)

// WithKeepDiacritics keeps nonspacing marks such as fatha and kasra.
func WithKeepDiacritics() PersianOption {
	return func(p *Persian) {
		p.keepDiacritics = true
	}
}

// WithoutDigitUnification leaves Arabic-Indic digits untouched.
func WithoutDigitUnification() PersianOption {
	return func(p *Persian) {
		p.unifyDigits = false
	}
}

// NewPersian creates a Persian normalizer.
func NewPersian(opts ...PersianOption) *Persian {
	p := &Persian{unifyDigits: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Normalize returns the canonical form of text.
func (p *Persian) Normalize(text string) string {
	if text == "" {
		return text
	}
	// Transformers carry state, so a fresh chain is built per call.
	out, _, err := transform.String(p.transformer(), text)
	if err != nil {
		// Only reachable on transformer bugs; fall back to the folded input.
		out = norm.NFKC.String(text)
	}
	return strings.Join(strings.Fields(out), " ")
}

func (p *Persian) transformer() transform.Transformer {
	steps := []transform.Transformer{
		norm.NFKC,
		runes.Map(p.unify),
	}
	if !p.keepDiacritics {
		steps = append(steps, runes.Remove(runes.In(unicode.Mn)))
	}
	steps = append(steps, runes.Remove(runes.Predicate(func(r rune) bool {
		return r == tatweel
	})))
	return transform.Chain(steps...)
}

func (p *Persian) unify(r rune) rune {
	switch r {
	case 'ي', 'ى': // ARABIC LETTER YEH, ALEF MAKSURA
		return 'ی' // FARSI YEH
	case 'ك': // ARABIC LETTER KAF
		return 'ک' // KEHEH
	}
	if p.unifyDigits && r >= '٠' && r <= '٩' {
		return r - '٠' + '۰'
	}
	return r
}
