package sentiment

import "strings"

// Label is the coarse sentiment bucket shared by ratings and review text.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// negativeWords is checked before positiveWords. Multi-word negations come first
// so they are matched as a whole.
var negativeWords = []string{
	"not good", "not great", "never again",
	"bad", "terrible", "worst", "poor", "disappointing", "waste",
	"horrible", "awful", "hate",
}

var positiveWords = []string{
	"good", "great", "amazing", "best", "excellent", "love",
	"wonderful", "fantastic", "perfect", "glad", "happy",
}

// negatedPositives are removed from the text before the positive scan, so
// "not good" never counts as "good".
var negatedPositives = []string{"not good", "not great"}

// Lexicon is the outcome of a keyword scan over review text.
type Lexicon struct {
	Label       Label
	HasNegative bool
	HasPositive bool
}

// Classify maps review text to a sentiment label using fixed word lists.
// Matching is case-insensitive substring matching, not tokenized.
func Classify(text string) Lexicon {
	lower := strings.ToLower(text)

	hasNegative := containsAny(lower, negativeWords)

	masked := lower
	for _, phrase := range negatedPositives {
		masked = strings.ReplaceAll(masked, phrase, " ")
	}
	hasPositive := containsAny(masked, positiveWords)

	label := Neutral
	switch {
	case hasNegative && !hasPositive:
		label = Negative
	case hasPositive && !hasNegative:
		label = Positive
	}

	return Lexicon{Label: label, HasNegative: hasNegative, HasPositive: hasPositive}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
