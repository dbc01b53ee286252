package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/codi/pkg/models"
)

// Answerer produces an answer to a free-form question.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// QuestionTool answers questions through an Answerer.
type QuestionTool struct {
	answerer Answerer
}

// NewQuestionTool creates a question tool backed by answerer.
func NewQuestionTool(answerer Answerer) *QuestionTool {
	return &QuestionTool{answerer: answerer}
}

// Answer is returned by answer_question.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Invoke implements Capability.
func (q *QuestionTool) Invoke(ctx context.Context, action models.Action) (any, error) {
	p, ok := action.Params.(models.AnswerQuestionParams)
	if !ok {
		return nil, fmt.Errorf("%w: question tool cannot handle %s", ErrUnsupportedAction, action.Type)
	}
	if q.answerer == nil {
		return nil, errors.New("no answerer configured")
	}
	answer, err := q.answerer.Answer(ctx, p.Question)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	return Answer{Question: p.Question, Answer: strings.TrimSpace(answer)}, nil
}
