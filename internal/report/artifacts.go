package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact file names written by Run.
const (
	ArtifactContext   = "llm_ctx.json"
	ArtifactPrompt    = "llm_instruction_fewshot_prompt.txt"
	ArtifactNarrative = "llm_daily_report.txt"
)

type artifactWriter struct {
	dir     string
	written []string
}

func newArtifactWriter(dir string) *artifactWriter {
	return &artifactWriter{dir: dir}
}

func (w *artifactWriter) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return w.write(name, data)
}

func (w *artifactWriter) writeText(name, text string) error {
	return w.write(name, []byte(strings.TrimSpace(text)))
}

func (w *artifactWriter) write(name string, data []byte) error {
	if w.dir == "" {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.written = append(w.written, path)
	return nil
}
