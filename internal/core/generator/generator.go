package generator

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/reviewdesk/internal/core"
	"github.com/markdave123-py/reviewdesk/internal/core/prompts"
	"github.com/markdave123-py/reviewdesk/internal/core/sentiment"
	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/monitoring"
)

const (
	flowResponse = "response"
	flowSummary  = "summary"
	flowActions  = "actions"

	reasonLLMFailure  = "llm_failure"
	reasonNoJSON      = "no_json_array"
	reasonUnparseable = "unparseable"
)

// Result holds the three generated artifacts for one review.
type Result struct {
	Response   string
	Summary    string
	Actions    []string
	Assessment sentiment.ConflictAssessment
}

// Generator turns a review into a customer reply, an admin summary and a list
// of recommended actions. It never returns an error: every flow ends on either
// model output or a deterministic fallback.
type Generator struct {
	llm     core.LLMProvider
	prompts *prompts.Builder
}

func New(llm core.LLMProvider, builder *prompts.Builder) *Generator {
	return &Generator{llm: llm, prompts: builder}
}

// Generate runs the three flows concurrently.
func (g *Generator) Generate(ctx context.Context, rating int, text string) Result {
	a := sentiment.Analyze(rating, text)
	if a.Conflicting {
		monitoring.ConflictsTotal.Inc()
		logging.Info("rating conflicts with review text", logrus.Fields{
			"rating":         rating,
			"text_implied":   a.TextImplied,
			"rating_implied": a.RatingImplied,
		})
	}

	res := Result{Assessment: a}

	var eg errgroup.Group
	eg.Go(func() error {
		res.Response = g.CustomerResponse(ctx, rating, text, a)
		return nil
	})
	eg.Go(func() error {
		res.Summary = g.Summary(ctx, rating, text, a)
		return nil
	})
	eg.Go(func() error {
		res.Actions = g.Actions(ctx, rating, text, a)
		return nil
	})
	_ = eg.Wait()

	return res
}

// Regenerate recomputes the admin-facing artifacts only. The customer reply
// is left untouched.
func (g *Generator) Regenerate(ctx context.Context, rating int, text string) (string, []string) {
	a := sentiment.Analyze(rating, text)

	var (
		summary string
		actions []string
		eg      errgroup.Group
	)
	eg.Go(func() error {
		summary = g.Summary(ctx, rating, text, a)
		return nil
	})
	eg.Go(func() error {
		actions = g.Actions(ctx, rating, text, a)
		return nil
	})
	_ = eg.Wait()

	return summary, actions
}

// CustomerResponse returns the model reply unmodified, or a template on failure.
func (g *Generator) CustomerResponse(ctx context.Context, rating int, text string, a sentiment.ConflictAssessment) string {
	p := g.prompts.CustomerResponse(rating, text, a)
	out, err := g.llm.Generate(ctx, p.System, p.User)
	if err != nil {
		fellBack(flowResponse, reasonLLMFailure, rating, err)
		return FallbackResponse(a, g.prompts.Brand())
	}
	return out
}

// Summary returns the model report with markdown stripped, or a synthesized
// report on failure.
func (g *Generator) Summary(ctx context.Context, rating int, text string, a sentiment.ConflictAssessment) string {
	p := g.prompts.AdminSummary(rating, text, a)
	out, err := g.llm.Generate(ctx, p.System, p.User)
	if err == nil {
		if cleaned := StripMarkdown(out); cleaned != "" {
			return cleaned
		}
		err = errEmptyAfterCleanup
	}
	fellBack(flowSummary, reasonLLMFailure, rating, err)
	return FallbackSummary(rating, text, a)
}

// Actions returns at most MaxActions entries parsed from the model output, or
// template actions when the call fails or nothing usable can be parsed.
func (g *Generator) Actions(ctx context.Context, rating int, text string, a sentiment.ConflictAssessment) []string {
	p := g.prompts.Actions(rating, text, a)
	out, err := g.llm.Generate(ctx, p.System, p.User)
	if err != nil {
		fellBack(flowActions, reasonLLMFailure, rating, err)
		return FallbackActions(a)
	}

	if actions, ok := DefaultJSONArray.Parse(out); ok {
		return actions
	}
	monitoring.FallbacksTotal.WithLabelValues(flowActions, reasonNoJSON).Inc()

	if actions, ok := DefaultLineSplit.Parse(out); ok {
		return actions
	}
	fellBack(flowActions, reasonUnparseable, rating, nil)
	return FallbackActions(a)
}

func fellBack(flow, reason string, rating int, err error) {
	monitoring.FallbacksTotal.WithLabelValues(flow, reason).Inc()

	fields := logrus.Fields{
		"flow":   flow,
		"reason": reason,
		"rating": rating,
	}
	if err != nil {
		fields["error"] = strings.TrimSpace(err.Error())
	}
	logging.Warn("using fallback output", fields)
}
