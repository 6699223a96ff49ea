package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/core"
	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/monitoring"
)

// ErrCompletionFailed is the single failure signal callers see. Transport
// errors, non-success statuses and empty completions all collapse into it.
var ErrCompletionFailed = errors.New("llm completion failed")

// Gateway wraps a provider with failure normalization, logging and metrics.
type Gateway struct {
	provider core.LLMProvider
	name     string

	// Timeout bounds each call when positive.
	Timeout time.Duration
}

func NewGateway(provider core.LLMProvider, name string) *Gateway {
	return &Gateway{provider: provider, name: name}
}

func (g *Gateway) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.provider.Generate(ctx, systemPrompt, userPrompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty completion")
	}
	elapsed := time.Since(start)
	monitoring.ObserveLLM(g.name, elapsed, err)

	if err != nil {
		logging.Warn("LLM call failed", logrus.Fields{
			"provider": g.name,
			"duration": elapsed.String(),
			"error":    err.Error(),
		})
		return "", fmt.Errorf("%w: %s: %v", ErrCompletionFailed, g.name, err)
	}
	return text, nil
}

var _ core.LLMProvider = (*Gateway)(nil)
