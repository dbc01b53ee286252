package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ShayCichocki/codi/pkg/models"
)

// Inference is the outcome of matching a task's text against the rule set.
// Exactly one of Intent or Simulated is meaningful.
type Inference struct {
	Intent    *models.Intent
	Simulated string
	Rule      string
}

// Filler words allowed between a verb and its object, e.g. "analyze the file notes.txt".
const filler = `(?:(?:the|a|an|file|text|zip|archive|contents?|of|in|words|el|la|un|una|archivo|fichero|texto|contenido|de|del|en|palabras)\s+)*`

var (
	createFilePhrase = regexp.MustCompile(`(?i)\b(?:create|make|write|generate|crear|crea|generar|genera|escribir|escribe)\s+(?:(?:a|an|the|un|una|el)\s+)?(?:(?:new|nuevo)\s+)?(?:file|archivo|fichero)\b`)
	inspectZipPhrase = regexp.MustCompile(`(?i)\b(?:inspect|analy[sz]e|extract|unzip|open|list|analiza|inspecciona|extrae|descomprime|revisa)\w*\s+` + filler + `([\w\-./]+\.zip)\b`)
	analyzePhrase    = regexp.MustCompile(`(?i)\b(?:analy[sz]e|read|summari[sz]e|count|analiza|lee|resume|cuenta)\w*\s+` + filler + `([\w\-./]+\.(?:txt|md|csv|log|json|ya?ml))\b`)
	filenamePattern  = regexp.MustCompile(`[\w\-./]+\.[A-Za-z0-9]{1,8}\b`)
	contentPhrase    = regexp.MustCompile(`(?i)\b(?:with\s+(?:the\s+)?(?:text|content)|con\s+(?:el\s+)?(?:texto|contenido))\s*:?\s+(.+)$`)
	quotedText       = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
)

// Infer synthesizes an intent from a task's title and description using a
// fixed, ordered rule set. Tasks matching no rule get a simulated result.
func Infer(task *models.Task) Inference {
	text := strings.TrimSpace(task.Title + "\n" + task.Description)

	if locs := createFilePhrase.FindAllStringIndex(text, -1); locs != nil {
		var name string
		for _, loc := range locs {
			if name = strings.TrimRight(filenamePattern.FindString(firstLine(text[loc[1]:])), "./"); name != "" {
				break
			}
		}
		if name == "" {
			return Inference{Simulated: "Simulated: file creation needs a filename", Rule: "create_file"}
		}
		return Inference{
			Intent: &models.Intent{Name: string(models.ActionCreateFile), Params: map[string]any{
				"filename": name,
				"content":  contentOf(text, name),
			}},
			Rule: "create_file",
		}
	}

	if m := inspectZipPhrase.FindStringSubmatch(text); m != nil {
		return Inference{
			Intent: &models.Intent{Name: string(models.ActionInspectZip), Params: map[string]any{"zip_path": m[1]}},
			Rule:   "inspect_zip",
		}
	}

	if m := analyzePhrase.FindStringSubmatch(text); m != nil {
		return Inference{
			Intent: &models.Intent{Name: string(models.ActionAnalyzeText), Params: map[string]any{"path": m[1]}},
			Rule:   "analyze_text",
		}
	}

	return Inference{Simulated: fmt.Sprintf("Executed: %s", task.Title)}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// contentOf extracts file content from "with the text ..." phrasing on any
// line, falling back to the first quoted string that is not the filename.
func contentOf(text, filename string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := contentPhrase.FindStringSubmatch(line); m != nil {
			return unquote(m[1])
		}
	}
	for _, m := range quotedText.FindAllStringSubmatch(text, -1) {
		q := m[1] + m[2]
		if q != "" && q != filename {
			return q
		}
	}
	return ""
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		return s[1 : len(s)-1]
	}
	return s
}
