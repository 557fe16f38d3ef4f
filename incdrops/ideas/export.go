package ideas

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"codeberg.org/incdrops/server/internal/generator"
)

// parses a format name, case-insensitively
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatTXT, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (f Format) Filename() string {
	return "incdrops-saved-ideas." + string(f)
}

// writes saved ideas in the given format
func Export(w io.Writer, format Format, saved []generator.Idea, now time.Time) error {
	switch format {
	case FormatTXT:
		return exportTXT(w, saved)
	case FormatCSV:
		return exportCSV(w, saved)
	case FormatJSON:
		return exportJSON(w, saved, now)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func exportTXT(w io.Writer, saved []generator.Idea) error {
	var sb strings.Builder
	rule := strings.Repeat("=", 50)

	sb.WriteString("====================================\n")
	sb.WriteString("     INCDROPS - SAVED IDEAS\n")
	sb.WriteString("====================================\n\n")

	for i, idea := range saved {
		fmt.Fprintf(&sb, "\n%s\nIDEA #%d\n%s\n\n", rule, i+1, rule)
		fmt.Fprintf(&sb, "Title: %s\n\nDescription:\n%s\n\n", idea.Title, idea.Description)

		if len(idea.Platforms) > 0 {
			fmt.Fprintf(&sb, "Platforms: %s\n\n", strings.Join(idea.Platforms, ", "))
		}

		if len(idea.Hashtags) > 0 {
			fmt.Fprintf(&sb, "Hashtags: %s\n\n", strings.Join(idea.Hashtags, " "))
		}

		if idea.Type != "" {
			fmt.Fprintf(&sb, "Type: %s\n\n", idea.Type)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// every field is quoted, spreadsheet imports of the first export version rely on it
func exportCSV(w io.Writer, saved []generator.Idea) error {
	var sb strings.Builder

	sb.WriteString("Title,Description,Platforms,Hashtags,Type\n")

	for _, idea := range saved {
		fields := []string{
			idea.Title,
			idea.Description,
			strings.Join(idea.Platforms, ", "),
			strings.Join(idea.Hashtags, " "),
			idea.Type,
		}

		for i, f := range fields {
			if i > 0 {
				sb.WriteByte(',')
			}

			sb.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`)
		}

		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonExport struct {
	ExportDate time.Time        `json:"exportDate"`
	TotalIdeas int              `json:"totalIdeas"`
	Ideas      []generator.Idea `json:"ideas"`
}

func exportJSON(w io.Writer, saved []generator.Idea, now time.Time) error {
	if saved == nil {
		saved = []generator.Idea{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(jsonExport{
		ExportDate: now.UTC(),
		TotalIdeas: len(saved),
		Ideas:      saved,
	})
}
