package normalize

// Normalizer maps raw text to a canonical form.
// Implementations must be safe for concurrent use.
type Normalizer interface {
	Normalize(text string) string
}

// Func adapts an ordinary function to the Normalizer interface.
type Func func(text string) string

// Normalize calls f(text).
func (f Func) Normalize(text string) string {
	return f(text)
}

// Identity returns text unchanged.
var Identity Normalizer = Func(func(text string) string { return text })
