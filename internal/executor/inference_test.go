package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/codi/pkg/models"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name       string
		task       models.Task
		wantIntent string
		wantParams map[string]any
		wantSim    string
	}{
		{
			name:       "english create file with text",
			task:       models.Task{Title: "Analyze objective", Description: "Validate and analyze: Create a file called notes.txt with the text hello world"},
			wantIntent: "create_file",
			wantParams: map[string]any{"filename": "notes.txt", "content": "hello world"},
		},
		{
			name:       "spanish create file",
			task:       models.Task{Title: "Crear archivo", Description: "crear archivo prueba.txt con el texto OK"},
			wantIntent: "create_file",
			wantParams: map[string]any{"filename": "prueba.txt", "content": "OK"},
		},
		{
			name:       "quoted content",
			task:       models.Task{Title: "Write a new file out/report.md containing \"# Report\""},
			wantIntent: "create_file",
			wantParams: map[string]any{"filename": "out/report.md", "content": "# Report"},
		},
		{
			name:    "create file without name is simulated",
			task:    models.Task{Title: "Create a file"},
			wantSim: "Simulated: file creation needs a filename",
		},
		{
			name:       "inspect zip",
			task:       models.Task{Title: "Analyze objective", Description: "Validate and analyze: inspect the zip bundle.zip"},
			wantIntent: "inspect_zip",
			wantParams: map[string]any{"zip_path": "bundle.zip"},
		},
		{
			name:       "analyze text file",
			task:       models.Task{Title: "Analyze objective", Description: "Validate and analyze: analiza el archivo datos.csv"},
			wantIntent: "analyze_text",
			wantParams: map[string]any{"path": "datos.csv"},
		},
		{
			name:    "template verb does not bind to unrelated path",
			task:    models.Task{Title: "Analyze objective", Description: "Validate and analyze: summary goes into notes.txt"},
			wantSim: "Executed: Analyze objective",
		},
		{
			name:    "generic task is simulated",
			task:    models.Task{Title: "Validate results", Description: "Check the results meet the objective"},
			wantSim: "Executed: Validate results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(&tt.task)
			if tt.wantIntent == "" {
				assert.Nil(t, got.Intent)
				assert.Equal(t, tt.wantSim, got.Simulated)
				return
			}
			require.NotNil(t, got.Intent)
			assert.Equal(t, tt.wantIntent, got.Intent.Name)
			assert.Equal(t, tt.wantParams, got.Intent.Params)
		})
	}
}
