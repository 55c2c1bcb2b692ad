package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/house-energy-service/internal/domain"
)

//go:embed prompts/*.txt
var promptFS embed.FS

const (
	contextSeparator = "\n\n---\n\nContext:\n"
	promptTrailer    = "\n\nNow generate the 4-part energy report:"
)

// Prompt is the narrator input for one report.
type Prompt struct {
	// Preamble is the instruction plus the few-shot example for the season.
	Preamble string
	// Text is the full prompt sent to the narrator.
	Text string
}

// Preamble returns the instruction followed by the season's few-shot
// example. Seasons without an example get the instruction alone.
func Preamble(season domain.Season) (string, error) {
	instruction, err := promptFS.ReadFile("prompts/instruction.txt")
	if err != nil {
		return "", fmt.Errorf("read instruction: %w", err)
	}
	// Unknown seasons have no example file.
	example, _ := promptFS.ReadFile("prompts/" + strings.ToLower(string(season)) + ".txt")
	return strings.TrimSpace(string(instruction) + "\n" + string(example)), nil
}

// ComposePrompt renders the prompt for a report context, choosing the
// few-shot example by today's season.
func ComposePrompt(rc domain.ReportContext) (Prompt, error) {
	preamble, err := Preamble(rc.Today.Season)
	if err != nil {
		return Prompt{}, err
	}
	ctxJSON, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("encode report context: %w", err)
	}
	return Prompt{
		Preamble: preamble,
		Text:     preamble + contextSeparator + string(ctxJSON) + promptTrailer,
	}, nil
}
