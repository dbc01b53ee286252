package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/codi/pkg/models"
)

func TestBuild_CoreTable(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name   string
		intent models.Intent
		want   models.Action
	}{
		{
			name:   "create_file with content",
			intent: models.Intent{Name: "create_file", Params: map[string]any{"filename": "a.txt", "content": "hi"}},
			want:   models.Action{Type: models.ActionCreateFile, Tool: ToolFile, Params: models.CreateFileParams{Filename: "a.txt", Content: "hi"}},
		},
		{
			name:   "create_file content defaults to empty",
			intent: models.Intent{Name: "create_file", Params: map[string]any{"filename": "a.txt"}},
			want:   models.Action{Type: models.ActionCreateFile, Tool: ToolFile, Params: models.CreateFileParams{Filename: "a.txt"}},
		},
		{
			name:   "analyze_text",
			intent: models.Intent{Name: "analyze_text", Params: map[string]any{"path": "notes.txt"}},
			want:   models.Action{Type: models.ActionAnalyzeText, Tool: ToolFile, Params: models.AnalyzeTextParams{Path: "notes.txt"}},
		},
		{
			name:   "inspect_zip",
			intent: models.Intent{Name: "inspect_zip", Params: map[string]any{"zip_path": "b.zip"}},
			want:   models.Action{Type: models.ActionInspectZip, Tool: ToolFile, Params: models.InspectZipParams{ZipPath: "b.zip"}},
		},
		{
			name:   "answer_question uses question",
			intent: models.Intent{Name: "answer_question", Params: map[string]any{"question": "why?", "query": "q"}},
			want:   models.Action{Type: models.ActionAnswerQuestion, Tool: ToolQuestion, Params: models.AnswerQuestionParams{Question: "why?"}},
		},
		{
			name:   "answer_question falls back to query",
			intent: models.Intent{Name: "answer_question", Params: map[string]any{"query": "q", "text": "t"}},
			want:   models.Action{Type: models.ActionAnswerQuestion, Tool: ToolQuestion, Params: models.AnswerQuestionParams{Question: "q"}},
		},
		{
			name:   "answer_question falls back to objective",
			intent: models.Intent{Name: "answer_question", Params: map[string]any{"objective": "o"}},
			want:   models.Action{Type: models.ActionAnswerQuestion, Tool: ToolQuestion, Params: models.AnswerQuestionParams{Question: "o"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.intent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_ValidationErrors(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name    string
		intent  models.Intent
		wantErr error
	}{
		{"missing name", models.Intent{}, ErrUnknownIntent},
		{"unknown name", models.Intent{Name: "launch_rocket"}, ErrUnknownIntent},
		{"system intent not in core table", models.Intent{Name: "list_directory"}, ErrUnknownIntent},
		{"create_file without filename", models.Intent{Name: "create_file", Params: map[string]any{"content": "x"}}, ErrMissingParameter},
		{"analyze_text without path", models.Intent{Name: "analyze_text"}, ErrMissingParameter},
		{"inspect_zip without zip_path", models.Intent{Name: "inspect_zip", Params: map[string]any{"path": "a.zip"}}, ErrMissingParameter},
		{"answer_question without any text", models.Intent{Name: "answer_question", Params: map[string]any{"question": "  "}}, ErrMissingParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.intent)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestBuild_SystemIntents(t *testing.T) {
	b := NewBuilder(WithSystemIntents())

	got, err := b.Build(models.Intent{Name: "list_directory"})
	require.NoError(t, err)
	assert.Equal(t, models.ListDirectoryParams{Path: "."}, got.Params)
	assert.Equal(t, ToolSystem, got.Tool)

	got, err = b.Build(models.Intent{Name: "write_code", Params: map[string]any{"path": "main.go", "content": "package main", "operation": "modify"}})
	require.NoError(t, err)
	assert.Equal(t, models.WriteCodeParams{Path: "main.go", Content: "package main", Operation: models.CodeModify}, got.Params)

	_, err = b.Build(models.Intent{Name: "write_code", Params: map[string]any{"path": "x", "operation": "delete"}})
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestBuild_DoesNotMutateIntent(t *testing.T) {
	b := NewBuilder()
	params := map[string]any{"filename": "a.txt"}
	_, err := b.Build(models.Intent{Name: "create_file", Params: params})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"filename": "a.txt"}, params)
}

func TestIntents(t *testing.T) {
	assert.Equal(t, []string{"analyze_text", "answer_question", "create_file", "inspect_zip"}, NewBuilder().Intents())
	assert.Len(t, NewBuilder(WithSystemIntents()).Intents(), 6)
}

func TestTool(t *testing.T) {
	b := NewBuilder()
	tool, ok := b.Tool("answer_question")
	assert.True(t, ok)
	assert.Equal(t, ToolQuestion, tool)

	_, ok = b.Tool("list_directory")
	assert.False(t, ok)
	tool, ok = NewBuilder(WithSystemIntents()).Tool("list_directory")
	assert.True(t, ok)
	assert.Equal(t, ToolSystem, tool)
}
