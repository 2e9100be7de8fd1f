package report

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements the Formatter interface.
func (m *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Replay Session Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Session\n\n")
	b.WriteString("| Item | Value |\n")
	b.WriteString("|------|-------|\n")
	fmt.Fprintf(&b, "| Duration | %d ms |\n", s.Session.DurationMs)
	fmt.Fprintf(&b, "| Frames fed | %d |\n", s.Session.FramesFed)
	fmt.Fprintf(&b, "| Canvas | %dx%d |\n", s.Session.Width, s.Session.Height)
	fmt.Fprintf(&b, "| Pixel format | %s |\n", s.Session.PixelFormat)
	fmt.Fprintf(&b, "| Capture rate | %.1f fps |\n", s.Session.FPS)
	fmt.Fprintf(&b, "| Cache window | %d s |\n", s.Session.CacheSeconds)
	fmt.Fprintf(&b, "| Scenes | %s |\n", strings.Join(s.Session.Scenes, ", "))
	fmt.Fprintf(&b, "| Audio sources | %s |\n", strings.Join(s.Session.AudioSources, ", "))
	fmt.Fprintf(&b, "| Recording backend | %s |\n", s.Session.Backend)
	fmt.Fprintf(&b, "| Output directory | %s |\n", s.Session.OutputDir)
	b.WriteString("\n")

	b.WriteString("## Cached Scenes\n\n")
	if len(s.Cache) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| Scene | Video frames | Audio frames |\n")
		b.WriteString("|-------|--------------|--------------|\n")
		for _, c := range s.Cache {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", c.Scene, c.VideoFrames, c.AudioFrames)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Saved Replays\n\n")
	if len(s.Saved) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| File | Size |\n")
		b.WriteString("|------|------|\n")
		for _, f := range s.Saved {
			fmt.Fprintf(&b, "| %s | %s |\n", f.Path, formatBytes(f.Size))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Errors\n\n")
	if len(s.Errors) == 0 {
		b.WriteString("None.\n")
	} else {
		for _, msg := range s.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}

	return b.String()
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	}
}
