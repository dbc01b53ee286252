// Package reasoning provides the collaborators that turn a goal into intents
// and answer free-form questions.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/codi/pkg/models"
)

// ErrReasoningUnavailable is returned when no reasoning backend is configured.
var ErrReasoningUnavailable = errors.New("reasoning unavailable")

// Reasoner proposes an ordered list of intents for a goal.
type Reasoner interface {
	Propose(ctx context.Context, goal string, input map[string]any) ([]models.Intent, error)
}

// Unavailable is a Reasoner and Answerer that always fails with
// ErrReasoningUnavailable.
type Unavailable struct{}

// Propose implements Reasoner.
func (Unavailable) Propose(context.Context, string, map[string]any) ([]models.Intent, error) {
	return nil, ErrReasoningUnavailable
}

// Answer fails with ErrReasoningUnavailable.
func (Unavailable) Answer(context.Context, string) (string, error) {
	return "", ErrReasoningUnavailable
}

// proposal is the JSON shape a model is asked to return.
type proposal struct {
	Intent string         `json:"intent"`
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// ParseIntents extracts a JSON array of intents from model output. Text
// around the array is ignored.
func ParseIntents(output string) ([]models.Intent, error) {
	start := strings.Index(output, "[")
	end := strings.LastIndex(output, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var raw []proposal
	if err := json.Unmarshal([]byte(output[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse intents: %w", err)
	}

	intents := make([]models.Intent, 0, len(raw))
	for i, p := range raw {
		name := p.Intent
		if name == "" {
			name = p.Name
		}
		if name == "" {
			return nil, fmt.Errorf("intent %d has no name", i)
		}
		intents = append(intents, models.Intent{Name: name, Params: p.Params})
	}
	return intents, nil
}
