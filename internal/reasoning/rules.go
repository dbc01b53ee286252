package reasoning

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/ShayCichocki/codi/pkg/models"
)

var (
	clauseSplit = regexp.MustCompile(`(?i),|;|\b(?:and then|then|and|y luego|y después|luego|después|y)\b`)
	contentMark = regexp.MustCompile(`(?i)\b(?:with the text|with content|con el texto|con contenido)\b`)
	createRe    = regexp.MustCompile(`(?i)\b(?:create|write|make|crea|crear|escribe|genera)\b`)
	analyzeRe   = regexp.MustCompile(`(?i)\b(?:analy[sz]e|analiza|analizar|read|lee|count|cuenta)\b`)
	textFileRe  = regexp.MustCompile(`[\w./-]+\.(?:txt|md|csv|log|json|yaml|yml)\b`)
	zipFileRe   = regexp.MustCompile(`[\w./-]+\.zip\b`)
	quotedRe    = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
	withTextRe  = regexp.MustCompile(`(?i)(?:with the text|with content|con el texto|con contenido)\s+(.+)$`)
)

// Rules is a deterministic Reasoner driven by surface patterns. It stands in
// for a model in tests and offline runs: the same goal always yields the
// same intents.
type Rules struct{}

// Propose implements Reasoner. The goal is split into clauses and each
// clause contributes at most one intent, in goal order.
func (Rules) Propose(ctx context.Context, goal string, input map[string]any) ([]models.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	attachments := attachmentNames(input)

	var intents []models.Intent
	for _, clause := range splitClauses(goal) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if in, ok := clauseIntent(clause, attachments); ok {
			intents = append(intents, in)
		}
	}
	if len(intents) == 0 && strings.HasSuffix(strings.TrimSpace(goal), "?") {
		intents = append(intents, models.Intent{
			Name:   string(models.ActionAnswerQuestion),
			Params: map[string]any{"question": strings.TrimSpace(goal)},
		})
	}
	return intents, nil
}

// splitClauses splits goal at separators. Separators inside double quotes
// are ignored, and once a clause has introduced its content a bare "and" or
// "y" belongs to the content.
func splitClauses(goal string) []string {
	var clauses []string
	start, pos := 0, 0
	for {
		loc := clauseSplit.FindStringIndex(goal[pos:])
		if loc == nil {
			return append(clauses, goal[start:])
		}
		a, b := pos+loc[0], pos+loc[1]
		pos = b
		clause := goal[start:a]
		if strings.Count(clause, `"`)%2 == 1 {
			continue
		}
		if contentMark.MatchString(clause) && weakSeparator(goal[a:b]) {
			continue
		}
		clauses = append(clauses, clause)
		start = b
	}
}

func weakSeparator(sep string) bool {
	switch strings.ToLower(sep) {
	case "and", "y":
		return true
	}
	return false
}

// Answer returns a fixed acknowledgement so question intents succeed offline.
func (Rules) Answer(_ context.Context, question string) (string, error) {
	return fmt.Sprintf("No reasoning backend is configured; received question: %s", strings.TrimSpace(question)), nil
}

func clauseIntent(clause string, attachments []string) (models.Intent, bool) {
	if zip := zipFileRe.FindString(clause); zip != "" {
		return models.Intent{
			Name:   string(models.ActionInspectZip),
			Params: map[string]any{"zip_path": zip},
		}, true
	}
	if strings.Contains(clause, "ZIP") {
		for _, a := range attachments {
			if strings.EqualFold(path.Ext(a), ".zip") {
				return models.Intent{
					Name:   string(models.ActionInspectZip),
					Params: map[string]any{"zip_path": a},
				}, true
			}
		}
	}

	file := textFileRe.FindString(clause)
	switch {
	case file != "" && createRe.MatchString(clause):
		return models.Intent{
			Name:   string(models.ActionCreateFile),
			Params: map[string]any{"filename": file, "content": clauseContent(clause)},
		}, true
	case file != "" && analyzeRe.MatchString(clause):
		return models.Intent{
			Name:   string(models.ActionAnalyzeText),
			Params: map[string]any{"path": file},
		}, true
	}
	return models.Intent{}, false
}

func clauseContent(clause string) string {
	if m := withTextRe.FindStringSubmatch(clause); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), `"'`)
	}
	if m := quotedRe.FindStringSubmatch(clause); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	return ""
}

func attachmentNames(input map[string]any) []string {
	switch v := input["attachments"].(type) {
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
