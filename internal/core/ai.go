package core

import "context"

// LLMProvider sends one (system prompt, user prompt) pair to a completion API.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
