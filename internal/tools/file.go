package tools

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ShayCichocki/codi/pkg/models"
)

// maxExtractBytes caps the total uncompressed size extracted from one archive.
const maxExtractBytes = 256 << 20

// FileTool creates, analyzes and unpacks files inside the workspace.
type FileTool struct {
	guard *Guard
}

// NewFileTool creates a file tool confined by guard.
func NewFileTool(guard *Guard) *FileTool {
	return &FileTool{guard: guard}
}

// FileWriteResult is returned by create_file.
type FileWriteResult struct {
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
	Message string `json:"message"`
}

// TextAnalysis is returned by analyze_text.
type TextAnalysis struct {
	Path       string   `json:"path"`
	Lines      int      `json:"lines"`
	Words      int      `json:"words"`
	Characters int      `json:"characters"`
	TopWords   []string `json:"top_words,omitempty"`
	Preview    string   `json:"preview,omitempty"`
}

// ZipInspection is returned by inspect_zip.
type ZipInspection struct {
	ZipPath     string   `json:"zip_path"`
	Files       []string `json:"files"`
	FileCount   int      `json:"file_count"`
	ExtractedTo string   `json:"extracted_to"`
}

// Invoke implements Capability.
func (f *FileTool) Invoke(ctx context.Context, action models.Action) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch p := action.Params.(type) {
	case models.CreateFileParams:
		return f.create(p)
	case models.AnalyzeTextParams:
		return f.analyze(p)
	case models.InspectZipParams:
		return f.inspectZip(ctx, p)
	default:
		return nil, fmt.Errorf("%w: file tool cannot handle %s", ErrUnsupportedAction, action.Type)
	}
}

func (f *FileTool) create(p models.CreateFileParams) (FileWriteResult, error) {
	path, err := f.guard.Resolve(p.Filename)
	if err != nil {
		return FileWriteResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return FileWriteResult{}, fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(p.Content), 0644); err != nil {
		return FileWriteResult{}, fmt.Errorf("write file: %w", err)
	}
	rel := f.guard.Rel(path)
	return FileWriteResult{
		Path:    rel,
		Bytes:   len(p.Content),
		Message: fmt.Sprintf("Successfully wrote %d bytes to %s", len(p.Content), rel),
	}, nil
}

func (f *FileTool) analyze(p models.AnalyzeTextParams) (TextAnalysis, error) {
	path, err := f.guard.Resolve(p.Path)
	if err != nil {
		return TextAnalysis{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return TextAnalysis{}, fmt.Errorf("read file: %w", err)
	}
	return AnalyzeText(f.guard.Rel(path), string(data)), nil
}

// AnalyzeText computes basic statistics over text.
func AnalyzeText(path, text string) TextAnalysis {
	a := TextAnalysis{Path: path, Characters: len([]rune(text))}
	if text != "" {
		a.Lines = strings.Count(text, "\n")
		if !strings.HasSuffix(text, "\n") {
			a.Lines++
		}
	}

	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		a.Words++
		if len([]rune(w)) > 3 {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > 5 {
		words = words[:5]
	}
	a.TopWords = words

	preview := []rune(text)
	if len(preview) > 200 {
		preview = preview[:200]
	}
	a.Preview = string(preview)
	return a
}

// inspectZip lists the archive and extracts it next to itself into
// <name>_extracted.
func (f *FileTool) inspectZip(ctx context.Context, p models.InspectZipParams) (ZipInspection, error) {
	path, err := f.guard.Resolve(p.ZipPath)
	if err != nil {
		return ZipInspection{}, err
	}
	r, err := zip.OpenReader(path)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return ZipInspection{}, fmt.Errorf("%w: %v", ErrPathEscapesWorkspace, err)
	}
	if err != nil {
		return ZipInspection{}, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	target := ExtractDir(path)
	if err := os.MkdirAll(target, 0755); err != nil {
		return ZipInspection{}, fmt.Errorf("create extract directory: %w", err)
	}

	var total int64
	files := make([]string, 0, len(r.File))
	for _, zf := range r.File {
		if err := ctx.Err(); err != nil {
			return ZipInspection{}, err
		}
		files = append(files, zf.Name)
		n, err := extractEntry(zf, target, maxExtractBytes-total)
		if err != nil {
			return ZipInspection{}, err
		}
		total += n
	}

	return ZipInspection{
		ZipPath:     f.guard.Rel(path),
		Files:       files,
		FileCount:   len(files),
		ExtractedTo: f.guard.Rel(target),
	}, nil
}

// ExtractDir returns the directory inspect_zip extracts zipPath into.
func ExtractDir(zipPath string) string {
	return strings.TrimSuffix(zipPath, filepath.Ext(zipPath)) + "_extracted"
}

func extractEntry(zf *zip.File, target string, budget int64) (int64, error) {
	dest := filepath.Join(target, zf.Name)
	rel, err := filepath.Rel(target, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 0, fmt.Errorf("%w: zip entry %s", ErrPathEscapesWorkspace, zf.Name)
	}

	if zf.FileInfo().IsDir() {
		return 0, os.MkdirAll(dest, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	src, err := zf.Open()
	if err != nil {
		return 0, fmt.Errorf("open zip entry %s: %w", zf.Name, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", zf.Name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(src, budget+1))
	if err != nil {
		return n, fmt.Errorf("extract %s: %w", zf.Name, err)
	}
	if n > budget {
		return n, fmt.Errorf("zip %s exceeds extraction limit", zf.Name)
	}
	return n, nil
}
