// Package cli provides output formatting for the command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lioncity/rentqa/internal/models"
)

// OutputFormat is the format for answer output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteResult writes a query result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteResult(w io.Writer, result *models.QueryResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeResultText(w, result)
		return nil
	}
}

func writeResultText(w io.Writer, result *models.QueryResult) {
	fmt.Fprintf(w, "\n%s\n", result.Answer)
	if len(result.Citations) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSources:\n")
	for i, c := range result.Citations {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d] %s\n", i+1, c.Title)
		if c.URL != "" {
			fmt.Fprintf(w, "    %s\n", c.URL)
		}
		fmt.Fprintf(w, "    %s\n", c.Snippet)
	}
}
