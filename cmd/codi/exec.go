package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/codi/pkg/models"
)

var execFormat string

var execCmd = &cobra.Command{
	Use:   "exec <intents.yaml|->",
	Short: "Execute a batch of intents directly",
	Long: `Execute a list of intents without planning or reasoning.

Every intent runs, even when others fail, and one result is printed per
intent in input order. Use "-" to read the batch from stdin.

File format:
  intents:
    - name: create_file
      params:
        filename: notes.txt
        content: hello
    - name: analyze_text
      params:
        path: notes.txt

A bare list of intents is accepted as well.`,
	Args: cobra.ExactArgs(1),
	RunE: execIntents,
}

func init() {
	execCmd.Flags().StringVarP(&execFormat, "format", "f", formatText, "Output format: text, json, or yaml")
}

// intentSpec is one intent as written in a batch file. The name may be
// given as name or intent.
type intentSpec struct {
	Name   string         `yaml:"name"`
	Intent string         `yaml:"intent"`
	Params map[string]any `yaml:"params"`
}

type intentFile struct {
	Intents []intentSpec `yaml:"intents"`
}

// parseIntents decodes a batch file. Both {intents: [...]} and a bare list
// are accepted.
func parseIntents(data []byte) ([]models.Intent, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse intents: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("parse intents: empty document")
	}

	var specs []intentSpec
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		if err := node.Content[0].Decode(&specs); err != nil {
			return nil, fmt.Errorf("parse intents: %w", err)
		}
	default:
		var f intentFile
		if err := node.Content[0].Decode(&f); err != nil {
			return nil, fmt.Errorf("parse intents: %w", err)
		}
		specs = f.Intents
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("parse intents: no intents")
	}

	intents := make([]models.Intent, 0, len(specs))
	for _, s := range specs {
		name := s.Name
		if name == "" {
			name = s.Intent
		}
		intents = append(intents, models.Intent{Name: name, Params: s.Params})
	}
	return intents, nil
}

func readBatch(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func execIntents(cmd *cobra.Command, args []string) error {
	if err := validFormat(execFormat); err != nil {
		return err
	}
	data, err := readBatch(args[0], cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read intents: %w", err)
	}
	intents, err := parseIntents(data)
	if err != nil {
		return err
	}

	return withApp(appOptions{}, func(ctx context.Context, a *app) error {
		results := a.executor.ExecuteIntents(ctx, intents)
		if err := writeIntentResults(cmd.OutOrStdout(), execFormat, results); err != nil {
			return err
		}
		for _, r := range results {
			if !r.OK() {
				return fmt.Errorf("%d of %d intents failed", countFailed(results), len(results))
			}
		}
		return nil
	})
}

func countFailed(results []models.IntentResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

func writeIntentResults(w io.Writer, format string, results []models.IntentResult) error {
	if format != formatText {
		return writeValue(w, format, results)
	}
	for i, r := range results {
		if r.OK() {
			printStatus(w, "✓", fmt.Sprintf("%d. %s", i+1, r.ActionType), color.FgGreen)
			continue
		}
		printStatus(w, "✗", fmt.Sprintf("%d. %s [%s]: %s", i+1, r.ActionType, r.ErrorKind, r.Error), color.FgRed)
	}
	return nil
}
