package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/codi/pkg/models"
)

const proposeSystemPrompt = `You translate a user goal into tool intents.
Reply with a JSON array only. Each element is {"intent": "<name>", "params": {...}}.
Use only the intents listed by the user. Return [] when no intent applies.`

const answerSystemPrompt = `You answer questions briefly and accurately. Reply in the language of the question.`

// AnthropicReasoner proposes intents and answers questions with a Claude model.
type AnthropicReasoner struct {
	completer Completer
	intents   []string
}

// NewAnthropicReasoner returns a reasoner that may propose any of intents.
func NewAnthropicReasoner(c Completer, intents []string) *AnthropicReasoner {
	sorted := append([]string(nil), intents...)
	sort.Strings(sorted)
	return &AnthropicReasoner{completer: c, intents: sorted}
}

// Propose implements Reasoner.
func (r *AnthropicReasoner) Propose(ctx context.Context, goal string, input map[string]any) ([]models.Intent, error) {
	if r == nil || r.completer == nil {
		return nil, ErrReasoningUnavailable
	}
	output, err := r.completer.Complete(ctx, proposeSystemPrompt, r.buildPrompt(goal, input))
	if err != nil {
		return nil, fmt.Errorf("propose intents: %w", err)
	}
	return ParseIntents(output)
}

// Answer implements tools.Answerer.
func (r *AnthropicReasoner) Answer(ctx context.Context, question string) (string, error) {
	if r == nil || r.completer == nil {
		return "", ErrReasoningUnavailable
	}
	out, err := r.completer.Complete(ctx, answerSystemPrompt, question)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (r *AnthropicReasoner) buildPrompt(goal string, input map[string]any) string {
	var sb strings.Builder
	sb.WriteString("Available intents:\n")
	for _, name := range r.intents {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	sb.WriteString("\nGoal:\n")
	sb.WriteString(goal)
	sb.WriteString("\n")
	if len(input) > 0 {
		if data, err := json.MarshalIndent(input, "", "  "); err == nil {
			sb.WriteString("\nContext:\n")
			sb.Write(data)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
