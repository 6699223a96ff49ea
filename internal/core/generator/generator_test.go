package generator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/markdave123-py/reviewdesk/internal/core/prompts"
	"github.com/markdave123-py/reviewdesk/internal/core/sentiment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errDown = errors.New("provider down")

// fakeLLM answers by system prompt so each flow can be scripted separately.
type fakeLLM struct {
	mu      sync.Mutex
	replies map[string]string
	calls   atomic.Int32
	systems []string
}

func (f *fakeLLM) Generate(_ context.Context, system, _ string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	if out, ok := f.replies[system]; ok {
		return out, nil
	}
	return "", errDown
}

type systemPrompts struct {
	customer, summary, actions string
}

func newTestGenerator(t *testing.T, replies func(sp systemPrompts) map[string]string) (*Generator, *fakeLLM, systemPrompts) {
	t.Helper()
	b := prompts.NewBuilder(prompts.DefaultBrand())
	a := sentiment.Analyze(3, "placeholder text")
	sp := systemPrompts{
		customer: b.CustomerResponse(3, "x", a).System,
		summary:  b.AdminSummary(3, "x", a).System,
		actions:  b.Actions(3, "x", a).System,
	}
	f := &fakeLLM{}
	if replies != nil {
		f.replies = replies(sp)
	}
	return New(f, b), f, sp
}

func TestGenerateNegativeReviewWithFailingLLM(t *testing.T) {
	g, _, _ := newTestGenerator(t, nil)

	res := g.Generate(context.Background(), 1, "This is the worst product I have ever bought, truly terrible.")

	assert.False(t, res.Assessment.Conflicting)
	assert.Contains(t, res.Response, "Call: 1800-123-4567")
	assert.Contains(t, res.Response, "Email: support@example.com")
	assert.Contains(t, res.Response, "WhatsApp: +1-555-0100")
	assert.Contains(t, res.Summary, "Sentiment: Negative (high confidence)")
	assert.GreaterOrEqual(t, len(res.Actions), 2)
	assert.LessOrEqual(t, len(res.Actions), MaxActions)
}

func TestGeneratePositiveTextLowRatingWithFailingLLM(t *testing.T) {
	g, _, _ := newTestGenerator(t, nil)

	res := g.Generate(context.Background(), 1, "Wonderful experience, very glad to use this.")

	assert.True(t, res.Assessment.Conflicting)
	assert.Equal(t, sentiment.Low, res.Assessment.Confidence)
	assert.Contains(t, res.Summary, "low confidence")
	assert.Contains(t, res.Summary, "MANUAL REVIEW RECOMMENDED")
	require.NotEmpty(t, res.Actions)
	assert.Contains(t, res.Actions[0], "Contact customer")
	assert.Contains(t, res.Actions[1], "Clarification")
}

func TestGenerateFallbacksAreDeterministic(t *testing.T) {
	g, _, _ := newTestGenerator(t, nil)
	text := "Not good website, the checkout kept failing"

	first := g.Generate(context.Background(), 5, text)
	for i := 0; i < 5; i++ {
		again := g.Generate(context.Background(), 5, text)
		assert.Equal(t, first.Response, again.Response)
		assert.Equal(t, first.Summary, again.Summary)
		assert.Equal(t, first.Actions, again.Actions)
	}
}

func TestGenerateUsesModelOutput(t *testing.T) {
	g, _, _ := newTestGenerator(t, func(sp systemPrompts) map[string]string {
		return map[string]string{
			sp.customer: "  Thanks **so** much!  ",
			sp.summary:  "## Report\n**Sentiment:** Positive (high confidence)\nKey Issue(s): __none__",
			sp.actions:  "Here you go:\n[\"🌟 Recognition: share with team\", \"💡 Strategy: loyalty offer\"]\nThanks",
		}
	})

	res := g.Generate(context.Background(), 5, "Great product, fast and easy to use")

	assert.Equal(t, "  Thanks **so** much!  ", res.Response)
	assert.Equal(t, "Report\nSentiment: Positive (high confidence)\nKey Issue(s): none", res.Summary)
	assert.Equal(t, []string{"🌟 Recognition: share with team", "💡 Strategy: loyalty offer"}, res.Actions)
}

func TestActionsFallsBackToLineSplit(t *testing.T) {
	g, _, _ := newTestGenerator(t, func(sp systemPrompts) map[string]string {
		return map[string]string{
			sp.actions: "1. 📞 Call the customer back today\n2. ok\n- 🔍 Check the order history for delays\n• 📊 Log the feedback for the product team",
		}
	})
	a := sentiment.Analyze(2, "It was slow")

	actions := g.Actions(context.Background(), 2, "It was slow", a)

	assert.Equal(t, []string{
		"📞 Call the customer back today",
		"🔍 Check the order history for delays",
		"📊 Log the feedback for the product team",
	}, actions)
}

func TestActionsUnparseableOutputUsesTemplates(t *testing.T) {
	g, _, _ := newTestGenerator(t, func(sp systemPrompts) map[string]string {
		return map[string]string{sp.actions: "ok\nsure\n[]"}
	})
	a := sentiment.Analyze(4, "Nice enough phone case")

	actions := g.Actions(context.Background(), 4, "Nice enough phone case", a)

	assert.Equal(t, FallbackActions(a), actions)
}

func TestSummaryEmptyAfterCleanupUsesFallback(t *testing.T) {
	g, _, _ := newTestGenerator(t, func(sp systemPrompts) map[string]string {
		return map[string]string{sp.summary: "**  **"}
	})
	text := "Average product, does the job"
	a := sentiment.Analyze(3, text)

	assert.Equal(t, FallbackSummary(3, text, a), g.Summary(context.Background(), 3, text, a))
}

func TestRegenerateSkipsCustomerResponse(t *testing.T) {
	g, f, sp := newTestGenerator(t, nil)

	summary, actions := g.Regenerate(context.Background(), 3, "Average product, does the job")

	assert.NotEmpty(t, summary)
	assert.NotEmpty(t, actions)
	assert.Equal(t, int32(2), f.calls.Load())
	assert.NotContains(t, f.systems, sp.customer)
}

// barrierLLM only answers once all expected calls are in flight.
type barrierLLM struct {
	want    int32
	arrived atomic.Int32
	ready   chan struct{}
	once    sync.Once
}

func (b *barrierLLM) Generate(ctx context.Context, _, _ string) (string, error) {
	if b.arrived.Add(1) == b.want {
		b.once.Do(func() { close(b.ready) })
	}
	select {
	case <-b.ready:
		return `["📞 Outreach: follow up with the customer"]`, nil
	case <-time.After(2 * time.Second):
		return "", errors.New("flows did not run concurrently")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGenerateRunsFlowsConcurrently(t *testing.T) {
	llm := &barrierLLM{want: 3, ready: make(chan struct{})}
	g := New(llm, prompts.NewBuilder(prompts.DefaultBrand()))

	res := g.Generate(context.Background(), 3, "Average product, does the job")

	assert.Equal(t, `["📞 Outreach: follow up with the customer"]`, res.Response)
	assert.Equal(t, []string{"📞 Outreach: follow up with the customer"}, res.Actions)
}
