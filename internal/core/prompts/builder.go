package prompts

import (
	"fmt"
	"strings"

	"github.com/markdave123-py/reviewdesk/internal/core/sentiment"
)

// Prompt is one (system, user) pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

// Builder renders the three generation prompts. System prompts are rendered
// once at construction; the user prompts are pure functions of their inputs.
type Builder struct {
	brand    Brand
	customer string
	summary  string
	actions  string
}

func NewBuilder(b Brand) *Builder {
	return &Builder{
		brand:    b,
		customer: customerSystemPrompt(b),
		summary:  summarySystemPrompt(b),
		actions:  actionsSystemPrompt(b),
	}
}

// Brand returns the brand the builder was configured with.
func (b *Builder) Brand() Brand {
	return b.brand
}

// CustomerResponse asks for the customer-facing reply.
func (b *Builder) CustomerResponse(rating int, reviewText string, a sentiment.ConflictAssessment) Prompt {
	var sb strings.Builder

	sb.WriteString("IMPORTANT: Read the REVIEW TEXT, not just the star rating.\n\n")
	fmt.Fprintf(&sb, "Customer Rating: %d stars\n", rating)
	fmt.Fprintf(&sb, "Review Text: \"%s\"\n", reviewText)
	fmt.Fprintf(&sb, "Rating Sentiment: %s\n", a.RatingImplied)
	fmt.Fprintf(&sb, "Text Sentiment: %s\n", a.TextImplied)
	fmt.Fprintf(&sb, "Sentiment To Address: %s\n", addressLine(a))

	if a.Conflicting {
		fmt.Fprintf(&sb, "\nCONFLICT: the %d-star rating suggests %s feedback but the text reads %s. "+
			"Trust the TEXT over the rating and reply to the %s feedback.\n",
			rating, strings.ToLower(string(a.RatingImplied)), strings.ToLower(string(a.TextImplied)),
			strings.ToLower(string(a.TextImplied)))
	}

	sb.WriteString(`
If the text criticizes or complains, reply as to NEGATIVE feedback: apologize, show empathy, include the support channels.
If the text praises, reply as to POSITIVE feedback: thank the customer warmly.

Examples:
- "Not a good website" with 4 stars is NEGATIVE feedback: respond with empathy and acknowledge the criticism.
- "Amazing service" with 1 star is POSITIVE feedback: thank them warmly.

Write the reply now, following your system instructions.`)

	return Prompt{System: b.customer, User: sb.String()}
}

// AdminSummary asks for the five-field plain-text report.
func (b *Builder) AdminSummary(rating int, reviewText string, a sentiment.ConflictAssessment) Prompt {
	var sb strings.Builder

	sb.WriteString("Analyze the REVIEW TEXT first, then compare it with the star rating.\n\n")
	fmt.Fprintf(&sb, "Review Text: \"%s\"\n", reviewText)
	fmt.Fprintf(&sb, "Star Rating: %d/5 stars\n", rating)
	fmt.Fprintf(&sb, "Rating Sentiment: %s\n", a.RatingImplied)
	fmt.Fprintf(&sb, "Text Sentiment (keyword scan): %s\n", a.TextImplied)

	if a.Conflicting {
		fmt.Fprintf(&sb, "\nCONFLICT DETECTED: Rating is %d stars but text sentiment is %s. "+
			"Use LOW confidence, add \"MANUAL REVIEW RECOMMENDED\" to Key Issue(s), explain the contradiction "+
			"and suggest likely causes (rating entered by mistake, sarcasm, missing context).\n",
			rating, strings.ToUpper(string(a.TextImplied)))
	}

	sb.WriteString(`
RULES
1. Identify the sentiment words in the text:
   Negative: "not good", "bad", "terrible", "worst", "poor", "disappointing", "waste", "horrible", "awful", "hate"
   Positive: "good", "great", "amazing", "best", "excellent", "love", "wonderful", "fantastic", "perfect", "glad", "happy"
   Neutral: "okay", "fine", "average", "decent", "acceptable"
2. Decide the text sentiment independently of the rating.
3. Low rating (1-2) with positive text, or high rating (4-5) with negative text, is a CONFLICT: confidence low.
   Rating and text that agree: confidence high. Mixed or unclear text: confidence medium.

Respond with exactly these five lines:
Sentiment: <Positive|Neutral|Negative> (<high|medium|low> confidence)
Key Issue(s): <one or two sentences>
Category: <Product Quality|Delivery|Customer Service|App/Website|Pricing|Other>
Urgency: <Low|Medium|High|Critical>
Customer Expectation: <what the customer wants next>

PLAIN TEXT ONLY. Do not use asterisks, underscores or any markdown. Write "Sentiment:" exactly as shown.`)

	return Prompt{System: b.summary, User: sb.String()}
}

// Actions asks for a JSON array of 2-4 emoji-prefixed actions.
func (b *Builder) Actions(rating int, reviewText string, a sentiment.ConflictAssessment) Prompt {
	var sb strings.Builder

	sb.WriteString("Customer Review Analysis\n\n")
	fmt.Fprintf(&sb, "Rating: %d stars\n", rating)
	fmt.Fprintf(&sb, "Rating Sentiment: %s\n", a.RatingImplied)
	fmt.Fprintf(&sb, "Text Sentiment: %s\n", a.TextImplied)
	if a.Conflicting {
		sb.WriteString("CONFLICT DETECTED: rating and text sentiment do NOT match.\n")
	}
	fmt.Fprintf(&sb, "Context: %s\n", actionContext(rating, a))
	fmt.Fprintf(&sb, "Review: \"%s\"\n", reviewText)

	if a.Conflicting {
		sb.WriteString(`
CONFLICT INSTRUCTIONS
- The FIRST action MUST be: contact the customer to clarify the rating.
- Find out whether the rating was entered incorrectly and ask for more context.
- Prioritize understanding how satisfied the customer really is.
`)
	}

	sb.WriteString("\nRecommend 2-4 specific, actionable next steps.\n")
	sb.WriteString("Return ONLY a JSON array of strings, each starting with an emoji prefix as described in your instructions.")

	return Prompt{System: b.actions, User: sb.String()}
}

func addressLine(a sentiment.ConflictAssessment) string {
	switch a.Effective() {
	case sentiment.Negative:
		return "negative (INCLUDE SUPPORT CONTACT DETAILS)"
	case sentiment.Positive:
		return "positive"
	default:
		return "neutral"
	}
}

func actionContext(rating int, a sentiment.ConflictAssessment) string {
	if a.Conflicting {
		if a.RatingImplied == sentiment.Negative {
			return "Low rating but positive text, likely a rating error. Contact the customer to clarify."
		}
		return "High rating but negative text, the customer may be unhappy. Follow up immediately."
	}
	switch {
	case rating <= 2:
		return "URGENT: customer recovery needed."
	case rating == 3:
		return "Follow-up recommended."
	default:
		return "Positive reinforcement opportunity."
	}
}
