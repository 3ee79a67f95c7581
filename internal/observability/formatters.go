// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/founder-match/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintSubject outputs a short summary of the member recommendations are for.
func (p *Printer) PrintSubject(profile *types.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	name := profile.Name
	if name == "" {
		name = profile.ID.String()
	}
	sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", profile.Role.DisplayName()))
	if role, ok := types.ComplementaryRole(profile.Role); ok {
		sb.WriteString(fmt.Sprintf("Matching: %s candidates\n", role.DisplayName()))
	}
	if len(profile.Industries) > 0 {
		sb.WriteString(fmt.Sprintf("Industry: %s\n", strings.Join(profile.Industries, ", ")))
	}
	if len(profile.Skills) > 0 {
		count := min(len(profile.Skills), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("Skills:   %s", strings.Join(profile.Skills[:count], ", ")))
		if len(profile.Skills) > count {
			sb.WriteString(fmt.Sprintf(" (+%d)", len(profile.Skills)-count))
		}
		sb.WriteString("\n")
	}

	p.printBox("SUBJECT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs ranked recommendations with score, origin and reasoning.
func (p *Printer) PrintRecommendations(recs []types.EnrichedRecommendation, cached bool, message string) {
	var sb strings.Builder

	origin := "freshly generated"
	if cached {
		origin = "served from cache"
	}
	sb.WriteString(fmt.Sprintf("%d recommendation(s), %s\n", len(recs), origin))

	if len(recs) == 0 {
		if message != "" {
			sb.WriteString("\n" + message + "\n")
		}
		p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	count := min(len(recs), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := recs[i]
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("#%d  %s (%d%%)\n", i+1, rec.Profile.Name, rec.ScorePercentage))
		sb.WriteString(fmt.Sprintf("    Score: %.2f  Source: %s\n", rec.Score, rec.Source))
		if len(rec.Profile.ExpertiseDomains) > 0 {
			sb.WriteString(fmt.Sprintf("    Expertise: %s\n", strings.Join(rec.Profile.ExpertiseDomains, ", ")))
		}
		for _, line := range wrap(rec.Reasoning, boxWidth-8) {
			sb.WriteString("    " + line + "\n")
		}
	}

	if len(recs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(recs)-maxItemsToShow))
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width runes, breaking on spaces.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
