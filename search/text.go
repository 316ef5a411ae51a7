package search

import "strings"

// VerbatimBoost is added to the score of documents containing every query word.
const VerbatimBoost = 0.3

// Stop words to filter out when checking for verbatim matches
var stopWords = map[string]bool{
	"و": true, "در": true, "به": true, "از": true, "که": true, "با": true,
	"را": true, "این": true, "آن": true, "برای": true, "یا": true, "تا": true,
	"the": true, "a": true, "an": true, "and": true, "of": true, "for": true,
	"with": true, "in": true, "to": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}،؛؟«»"))

		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWordSet := make(map[string]bool)
	for _, word := range tokenizeAndFilter(document) {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}
