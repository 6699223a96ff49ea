package sentiment

// Confidence qualifies how much the derived sentiment can be trusted.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// ConflictAssessment reconciles a star rating with the sentiment of its text.
// It is recomputed on every generation and never persisted.
type ConflictAssessment struct {
	RatingImplied Label
	TextImplied   Label
	Conflicting   bool
	Confidence    Confidence
	HasNegative   bool
	HasPositive   bool
}

// RatingSentiment returns the sentiment a star rating suggests by convention.
func RatingSentiment(rating int) Label {
	switch {
	case rating <= 2:
		return Negative
	case rating == 3:
		return Neutral
	default:
		return Positive
	}
}

// Assess compares the rating-implied sentiment with the lexicon result.
// Only one-sided text contradicting a clearly positive or negative rating is a conflict.
func Assess(rating int, lex Lexicon) ConflictAssessment {
	implied := RatingSentiment(rating)

	conflicting := (implied == Negative && lex.HasPositive && !lex.HasNegative) ||
		(implied == Positive && lex.HasNegative && !lex.HasPositive)

	confidence := High
	if conflicting {
		confidence = Low
	}

	return ConflictAssessment{
		RatingImplied: implied,
		TextImplied:   lex.Label,
		Conflicting:   conflicting,
		Confidence:    confidence,
		HasNegative:   lex.HasNegative,
		HasPositive:   lex.HasPositive,
	}
}

// Analyze classifies text and assesses it against rating in one step.
func Analyze(rating int, text string) ConflictAssessment {
	return Assess(rating, Classify(text))
}

// HasSignal reports whether the text hit either word list.
func (a ConflictAssessment) HasSignal() bool {
	return a.HasNegative || a.HasPositive
}

// Effective is the sentiment a reply should address. Text wins over the rating
// when they conflict; any negative signal is treated as negative feedback.
func (a ConflictAssessment) Effective() Label {
	switch {
	case a.Conflicting:
		return a.TextImplied
	case a.RatingImplied == Negative || a.TextImplied == Negative:
		return Negative
	case a.HasSignal():
		return a.TextImplied
	default:
		return a.RatingImplied
	}
}
