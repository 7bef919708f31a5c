package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/thedittmer/intel-hub/internal/aggregate"
	"github.com/thedittmer/intel-hub/internal/models"
)

const defaultWidth = 80

// Width returns the terminal width of w, or 80 when w is not a terminal.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Header renders the application banner.
func Header(title, subtitle string) string {
	out := HeaderStyle.Render("🧠 " + title)
	if subtitle != "" {
		out += "\n" + DimStyle.Render(subtitle)
	}
	return out
}

// Item renders one feed entry. index is its 1-based feed position.
func Item(index int, item models.Item, saved bool, summary string, width int) string {
	var b strings.Builder

	mark := " "
	if saved {
		mark = SavedStyle.String()
	}
	fmt.Fprintf(&b, "%s %s %s  %s\n",
		CommandStyle.Render(fmt.Sprintf("[%d]", index)),
		mark,
		SourceStyle.Render(item.Icon+" "+item.Source),
		DateStyle.Render(item.Date),
	)
	b.WriteString(ArrowStyle.String() + TitleStyle.Width(max(width-4, 20)).Render(item.Title) + "\n")
	b.WriteString(ArrowStyle.String() + LinkStyle.Render(item.URL) + "\n")
	if summary != "" {
		b.WriteString(SummaryStyle.Width(max(width-4, 20)).Render(summary) + "\n")
	}
	return b.String()
}

// Feed renders the whole feed in order.
func Feed(items []models.Item, saved map[string]bool, summaries map[string]string, width int) string {
	if len(items) == 0 {
		return DimStyle.Render("No new items found. Try a wider window (--days).") + "\n"
	}
	var b strings.Builder
	for i, item := range items {
		b.WriteString(Item(i+1, item, saved[item.ID], summaries[item.ID], width))
		b.WriteString("\n")
	}
	return b.String()
}

// Outcomes renders one warning line per failed source.
func Outcomes(report aggregate.Report) string {
	var b strings.Builder
	for _, o := range report.Failed() {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("⚠ %s %q skipped (%s): %v", o.Kind, o.Label, o.Failure, o.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

// Bookmark renders one stored bookmark as a card headed by its id.
func Bookmark(b models.Bookmark, width int) string {
	inner := max(width-4, 20)

	var sb strings.Builder
	sb.WriteString(DimStyle.Render(b.ID) + "\n")
	fmt.Fprintf(&sb, "%s  %s\n", SourceStyle.Render(b.Source), DateStyle.Render(b.SavedAt.Format(models.SavedAtLayout)))
	sb.WriteString(TitleStyle.Width(inner).Render(b.Title) + "\n")
	sb.WriteString(LinkStyle.Render(b.URL))
	if b.Memo != "" {
		sb.WriteString("\n" + SummaryStyle.Width(inner).Render(b.Memo))
	}
	return BoxStyle.Width(max(width-2, 24)).Render(sb.String()) + "\n"
}

// Section renders a heading above a block of output.
func Section(title string) string {
	return SectionStyle.Render(title)
}

// MenuOption renders one numbered menu line.
func MenuOption(key, label string) string {
	return KeyStyle.Render(key+".") + " " + label
}

// Status renders a one-line status bar from parts.
func Status(parts ...string) string {
	return StatusStyle.Render(strings.Join(parts, " · "))
}

// Highlight emphasizes every case-insensitive occurrence of each word of
// query in text.
func Highlight(text, query string) string {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		return text
	}
	marked := make([]bool, len(text))
	for _, w := range strings.Fields(strings.ToLower(query)) {
		for start := 0; ; {
			i := strings.Index(lower[start:], w)
			if i < 0 {
				break
			}
			for j := start + i; j < start+i+len(w); j++ {
				marked[j] = true
			}
			start += i + len(w)
		}
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		j := i
		for j < len(text) && marked[j] == marked[i] {
			j++
		}
		if marked[i] {
			b.WriteString(HighlightStyle.Render(text[i:j]))
		} else {
			b.WriteString(text[i:j])
		}
		i = j
	}
	return b.String()
}

func Success(msg string) string { return SuccessStyle.Render("✓ " + msg) }
func Error(msg string) string   { return ErrorStyle.Render("✗ " + msg) }
func Warning(msg string) string { return WarningStyle.Render("⚠ " + msg) }

// Stream prints incremental summary text. Update receives the accumulated
// text and writes only what was not printed yet.
type Stream struct {
	w       io.Writer
	printed int
}

func NewStream(w io.Writer) *Stream {
	return &Stream{w: w}
}

func (s *Stream) Update(accumulated string) {
	if len(accumulated) <= s.printed {
		return
	}
	fmt.Fprint(s.w, accumulated[s.printed:])
	s.printed = len(accumulated)
}

// Done ends the streamed block. It reports whether anything was printed.
func (s *Stream) Done() bool {
	if s.printed > 0 {
		fmt.Fprintln(s.w)
	}
	return s.printed > 0
}
