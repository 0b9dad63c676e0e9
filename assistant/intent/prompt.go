package intent

import (
	_ "embed"
	"strings"
)

//go:embed template/extractor.txt
var extractorRaw string

// ExtractorPrompt returns the trimmed system prompt for the extractor.
func ExtractorPrompt() string {
	return strings.TrimSpace(extractorRaw)
}
