package generator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/markdave123-py/reviewdesk/internal/core/prompts"
	"github.com/markdave123-py/reviewdesk/internal/core/sentiment"
)

const supportTemplate = `Thank you for sharing your feedback with us. We understand your concerns and truly appreciate you bringing this to our attention. 🙏 We're committed to improving and would love to help make things right.

Please connect with our support team:
📞 Call: %s (24/7)
📧 Email: %s
💬 WhatsApp: %s
🌐 Help Center: %s

We value your input and look forward to serving you better. 💙`

const thankYouTemplate = "Thank you so much for your wonderful feedback! 🌟 We're thrilled to hear about your positive experience. " +
	"Your kind words motivate our team to keep delivering excellence. Happy shopping! 🛍️"

const neutralTemplate = "Thank you for taking the time to share your feedback. We truly value your input and are always working to improve. " +
	"If there's anything specific we can help with, please don't hesitate to reach out!"

// FallbackResponse picks a fixed customer reply. Conflicts and low ratings get
// the support template so the customer always has a way to reach us.
func FallbackResponse(a sentiment.ConflictAssessment, b prompts.Brand) string {
	switch {
	case a.Conflicting || a.RatingImplied == sentiment.Negative:
		return fmt.Sprintf(supportTemplate, b.Phone, b.Email, b.WhatsApp, b.HelpCenter)
	case a.RatingImplied == sentiment.Positive:
		return thankYouTemplate
	default:
		return neutralTemplate
	}
}

// FallbackSummary synthesizes the five-field admin report from the
// assessment, in the same field order the summary prompt asks for.
func FallbackSummary(rating int, text string, a sentiment.ConflictAssessment) string {
	label := a.RatingImplied
	if a.HasSignal() {
		label = a.TextImplied
	}

	sentimentLine := fmt.Sprintf("Sentiment: %s (%s confidence)", label, a.Confidence)
	if a.Conflicting {
		sentimentLine = fmt.Sprintf("Sentiment: %s (%s confidence - rating conflicts with text)", label, a.Confidence)
	}

	issues := fmt.Sprintf("Key Issue(s): Customer provided %d-star rating.", rating)
	switch {
	case a.Conflicting && a.RatingImplied == sentiment.Negative:
		issues += " Customer gave very low rating but text is positive - likely rating error or misunderstanding. MANUAL REVIEW RECOMMENDED."
	case a.Conflicting:
		issues += " Customer gave high rating but text is negative/critical. Contradictory feedback requires clarification. MANUAL REVIEW RECOMMENDED."
	default:
		issues += " Review text requires manual review for detailed analysis."
	}

	return strings.Join([]string{
		sentimentLine,
		issues,
		"Category: " + Categorize(text),
		"Urgency: " + urgency(rating, label, a.Conflicting),
		"Customer Expectation: " + expectation(rating, label, a.Conflicting),
	}, "\n\n")
}

func urgency(rating int, label sentiment.Label, conflicting bool) string {
	switch {
	case label == sentiment.Negative && rating == 1 && !conflicting:
		return "High"
	case label == sentiment.Negative || conflicting || rating == 3:
		return "Medium"
	default:
		return "Low"
	}
}

func expectation(rating int, label sentiment.Label, conflicting bool) string {
	switch {
	case conflicting:
		return "Requires follow-up to clarify actual satisfaction level and correct any rating errors."
	case label == sentiment.Negative:
		return "Immediate attention and resolution of concerns."
	case rating == 3:
		return "Acknowledgment and follow-up to understand specific feedback."
	default:
		return "Recognition and continued quality service."
	}
}

// categoryKeywords is scanned in order; the first category with a matching
// word wins. A trailing '*' matches any word with that prefix.
var categoryKeywords = []struct {
	name  string
	words []string
}{
	{"Delivery", []string{"deliver*", "shipping", "shipped", "arriv*", "package*", "parcel*", "courier", "late"}},
	{"Customer Service", []string{"support", "service", "staff", "agent*", "rude", "refund*", "helpdesk"}},
	{"App/Website", []string{"app", "apps", "website*", "site", "login", "checkout", "crash*", "bug*", "page*"}},
	{"Pricing", []string{"price*", "pricing", "expensive", "cheap*", "cost*", "overpriced", "discount*"}},
}

// Categorize assigns a review to one of the admin report categories by word
// matching. Reviews that match nothing fall under Product Quality.
func Categorize(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, c := range categoryKeywords {
		for _, kw := range c.words {
			prefix, isPrefix := strings.CutSuffix(kw, "*")
			for _, w := range words {
				if w == prefix || (isPrefix && strings.HasPrefix(w, prefix)) {
					return c.name
				}
			}
		}
	}
	return "Product Quality"
}

// FallbackActions returns a fixed action list chosen by rating sentiment and
// conflict. Conflicts always lead with contacting the customer.
func FallbackActions(a sentiment.ConflictAssessment) []string {
	if a.Conflicting {
		if a.RatingImplied == sentiment.Negative {
			return []string{
				"⚠️ Priority: Contact customer immediately - positive feedback with 1-2 star rating suggests rating error",
				"📞 Clarification: Ask customer to confirm if rating was entered correctly",
				"🔄 Correction: Offer to help update rating if it was a mistake",
				"🙏 Appreciation: Thank them for the positive feedback regardless",
			}
		}
		return []string{
			"⚠️ Urgent: Contact customer - high rating but negative feedback indicates hidden issues",
			"🔍 Investigation: Understand why they gave high rating despite complaints",
			"📞 Follow-up: Clarify concerns and offer resolution",
			"📊 Analysis: Document this contradictory feedback for team review",
		}
	}

	switch a.RatingImplied {
	case sentiment.Positive:
		return []string{
			"🌟 Recognition: Share this positive feedback with the team",
			"💡 Strategy: Consider enrolling customer in loyalty program",
			"📢 Amplification: Request permission to use as testimonial",
		}
	case sentiment.Neutral:
		return []string{
			"📞 Outreach: Follow up with customer for more details",
			"🔍 Investigation: Review mentioned areas for improvement opportunities",
			"📊 Process: Document feedback for product team review",
		}
	default:
		return []string{
			"📞 Priority: Contact customer within 24 hours to apologize and resolve",
			"🔍 Investigation: Investigate reported issues immediately",
			"🎁 Recovery: Prepare compensation offer for customer",
			"⚡ Escalation: Alert management if issue is systemic",
		}
	}
}
