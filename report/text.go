package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// textWriter writes padded columns and remembers the first error.
type textWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = tw.p.Fprintf(tw.w, format, args...)
}

// row writes cells padded to the given display widths. The last cell is not
// padded.
func (tw *textWriter) row(widths []int, cells ...string) {
	var sb strings.Builder
	sb.WriteString("  ")
	for i, c := range cells {
		if i < len(cells)-1 && i < len(widths) {
			c = runewidth.FillRight(runewidth.Truncate(c, widths[i], "…"), widths[i]) + "  "
		}
		sb.WriteString(c)
	}
	sb.WriteByte('\n')
	if tw.err == nil {
		_, tw.err = io.WriteString(tw.w, sb.String())
	}
}

// WriteText writes s in human readable form. Numbers are formatted for
// language lang.
func WriteText(w io.Writer, s *Summary, lang language.Tag) error {
	tw := &textWriter{w: w, p: message.NewPrinter(lang)}
	tw.printf("Font %s\n", s.Font)
	if len(s.Issues) > 0 {
		tw.printf("\nIssues\n")
		for _, issue := range s.Issues {
			tw.printf("  - %s\n", issue)
		}
	}
	if len(s.Functions) > 0 {
		tw.printf("\nFunctions (%d)\n", len(s.Functions))
		widths := []int{6, 5, 7, 14, 9}
		tw.row(widths, "#", "args", "results", "halt", "steps", "argument categories")
		for _, f := range s.Functions {
			tw.row(widths, strconv.Itoa(f.Number), strconv.Itoa(f.Args), strconv.Itoa(f.Results),
				f.Run.Halt, tw.p.Sprintf("%d", f.Run.Steps), formatCategories(f.Categories))
		}
	}
	if len(s.Programs) > 0 {
		tw.printf("\nPrograms (%d)\n", len(s.Programs))
		widths := []int{12, 14, 9}
		tw.row(widths, "program", "halt", "steps", "maxima")
		for _, ps := range s.Programs {
			tw.row(widths, ps.Program, ps.Halt, tw.p.Sprintf("%d", ps.Steps), formatMaxima(ps.Maxima))
		}
	}
	if len(s.Maxima) > 0 {
		tw.printf("\nMaxima\n")
		for _, cat := range sortedKeys(s.Maxima) {
			tw.row([]int{10}, cat, tw.p.Sprintf("%d", s.Maxima[cat]))
		}
	}
	if len(s.Effects) > 0 {
		tw.printf("\nGraphics state effects (%d)\n", len(s.Effects))
		widths := []int{16, 24}
		tw.row(widths, "call stack", "location", "field")
		for _, e := range s.Effects {
			tw.row(widths, e.CallStack, e.Location, e.Field)
		}
	}
	writeRecords(tw, s)
	return tw.err
}

func writeRecords(tw *textWriter, s *Summary) {
	if len(s.Severity) == 0 {
		return
	}
	counts := make([]string, 0, len(s.Severity))
	for _, sev := range sortedKeys(s.Severity) {
		counts = append(counts, tw.p.Sprintf("%d %s", s.Severity[sev], strings.ToLower(sev)))
	}
	tw.printf("\nRecords: %s\n", strings.Join(counts, ", "))
	for _, f := range s.Functions {
		for _, r := range f.Run.Records {
			tw.printf("  [%s] %s function %d, %s: %s\n", r.Severity, r.Code, f.Number, r.Location, r.Message)
		}
	}
	for _, ps := range s.Programs {
		for _, r := range ps.Records {
			tw.printf("  [%s] %s %s: %s\n", r.Severity, r.Code, r.Location, r.Message)
		}
	}
}

func formatCategories(cats map[int][]string) string {
	parts := make([]string, 0, len(cats))
	for _, arg := range sortedKeys(cats) {
		parts = append(parts, fmt.Sprintf("%d:%s", arg, strings.Join(cats[arg], "/")))
	}
	return strings.Join(parts, " ")
}

func formatMaxima(maxima map[string]int) string {
	parts := make([]string, 0, len(maxima))
	for _, cat := range sortedKeys(maxima) {
		parts = append(parts, fmt.Sprintf("%s=%d", cat, maxima[cat]))
	}
	return strings.Join(parts, " ")
}
