package optparse

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"github.com/goliatone/go-cliconf/redact"
)

const (
	DefaultMaxHelpPosition = 30
	DefaultIndentIncrement = 1
	defaultTerminalWidth   = 80
	minHelpWidth           = 11
)

// HelpDoc is everything rendered by FormatHelp.
type HelpDoc struct {
	Usage       string
	Description string
	Epilog      string
	// Main labels the description as a command list.
	Main     bool
	Groups   []Group
	Defaults *Defaults
}

// HelpFormatter renders usage, description and option listings. The zero
// value is usable and picks its width from the terminal.
type HelpFormatter struct {
	Width           int
	MaxHelpPosition int
	IndentIncrement int
}

// NewHelpFormatter sizes the formatter to the current terminal.
func NewHelpFormatter() *HelpFormatter {
	return &HelpFormatter{
		Width:           TerminalWidth() - 2,
		MaxHelpPosition: DefaultMaxHelpPosition,
		IndentIncrement: DefaultIndentIncrement,
	}
}

// TerminalWidth reports the stdout terminal width, falling back to
// $COLUMNS and then 80 columns.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return defaultTerminalWidth
}

func (h *HelpFormatter) settings() (width, maxPos, step int) {
	width, maxPos, step = h.Width, h.MaxHelpPosition, h.IndentIncrement
	if width <= 0 {
		width = TerminalWidth() - 2
	}
	if maxPos <= 0 {
		maxPos = DefaultMaxHelpPosition
	}
	if step <= 0 {
		step = DefaultIndentIncrement
	}
	return width, maxPos, step
}

// FormatUsage renders the usage block.
func (h *HelpFormatter) FormatUsage(usage string) string {
	return fmt.Sprintf("\nUsage: %s\n", indentLines(dedent.Dedent(usage), "  "))
}

// FormatDescription renders the description block, labeled Commands for a
// multi-command entry point.
func (h *HelpFormatter) FormatDescription(description string, main bool) string {
	if description == "" {
		return ""
	}
	label := "Description"
	if main {
		label = "Commands"
	}
	description = strings.TrimRight(strings.TrimLeft(description, "\n"), " \t\r\n")
	description = indentLines(dedent.Dedent(description), "  ")
	return fmt.Sprintf("%s:\n%s\n", label, description)
}

// FormatHeading renders a group heading. The default group has none.
func (h *HelpFormatter) FormatHeading(heading string) string {
	if heading == DefaultGroup {
		return ""
	}
	return heading + ":\n"
}

// FormatEpilog renders the epilog verbatim.
func (h *HelpFormatter) FormatEpilog(epilog string) string {
	return epilog
}

// FormatOptionStrings renders "-s, --long <metavar>".
func (h *HelpFormatter) FormatOptionStrings(opt Option) string {
	var parts []string
	if opt.Short != "" {
		parts = append(parts, "-"+opt.Short)
	}
	if opt.Key != "" {
		parts = append(parts, "--"+opt.Key)
	}
	s := strings.Join(parts, ", ")
	if opt.TakesArg() {
		s += " <" + strings.ToLower(opt.MetavarOrDest()) + ">"
	}
	return s
}

// ExpandDefault replaces %default in the option help with its resolved
// default. Credentials in URL defaults are redacted.
func (h *HelpFormatter) ExpandDefault(opt Option, defaults *Defaults) string {
	value, _ := defaults.Lookup(opt.Dest)
	text := strings.ReplaceAll(opt.Help, "%default", defaultString(value))
	if !opt.IsURL() {
		return text
	}
	raws := defaultStrings(value)
	for i, redacted := range redact.Strings(raws) {
		if raws[i] == "" || raws[i] == redacted {
			continue
		}
		text = strings.ReplaceAll(text, raws[i], redacted)
	}
	return text
}

func defaultString(v any) string {
	switch val := v.(type) {
	case nil:
		return "none"
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func defaultStrings(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

type optionLayout struct {
	width        int
	helpPosition int
	helpWidth    int
}

func (h *HelpFormatter) layout(groups []Group) optionLayout {
	width, maxPos, step := h.settings()
	maxLen := 0
	for _, g := range groups {
		indent := groupIndent(g, step)
		for _, opt := range g.Options {
			if opt.Hidden {
				continue
			}
			if n := len(h.FormatOptionStrings(opt)) + indent; n > maxLen {
				maxLen = n
			}
		}
	}
	pos := min(maxLen+2, maxPos)
	return optionLayout{
		width:        width,
		helpPosition: pos,
		helpWidth:    max(width-pos, minHelpWidth),
	}
}

func groupIndent(g Group, step int) int {
	if g.Name == DefaultGroup {
		return step
	}
	return 2 * step
}

// formatOption renders one option at indent with its help wrapped at the
// help column.
func (h *HelpFormatter) formatOption(opt Option, indent int, l optionLayout, defaults *Defaults) string {
	var b strings.Builder

	opts := h.FormatOptionStrings(opt)
	optWidth := l.helpPosition - indent - 2
	indentFirst := 0
	if len(opts) > optWidth {
		fmt.Fprintf(&b, "%*s%s\n", indent, "", opts)
		indentFirst = l.helpPosition
	} else {
		fmt.Fprintf(&b, "%*s%-*s  ", indent, "", optWidth, opts)
	}

	lines := wrapLines(h.ExpandDefault(opt, defaults), l.helpWidth)
	if len(lines) == 0 {
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%*s%s\n", indentFirst, "", lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(&b, "%*s%s\n", l.helpPosition, "", line)
	}
	return b.String()
}

// FormatOption renders a single parser level option.
func (h *HelpFormatter) FormatOption(opt Option, defaults *Defaults) string {
	g := Group{Name: DefaultGroup, Options: []Option{opt}}
	_, _, step := h.settings()
	return h.formatOption(opt, step, h.layout([]Group{g}), defaults)
}

// FormatOptions renders every visible option. Default group options come
// first without a heading, then each named group under its heading.
func (h *HelpFormatter) FormatOptions(groups []Group, defaults *Defaults) string {
	_, _, step := h.settings()
	l := h.layout(groups)

	var sections []string
	for _, g := range orderGroups(groups) {
		var b strings.Builder
		b.WriteString(h.FormatHeading(g.Name))
		indent := groupIndent(g, step)
		visible := 0
		for _, opt := range g.Options {
			if opt.Hidden {
				continue
			}
			visible++
			b.WriteString(h.formatOption(opt, indent, l, defaults))
		}
		if visible > 0 {
			sections = append(sections, b.String())
		}
	}
	return strings.Join(sections, "\n")
}

// FormatHelp renders the full help text.
func (h *HelpFormatter) FormatHelp(doc HelpDoc) string {
	var b strings.Builder
	if doc.Usage != "" {
		b.WriteString(h.FormatUsage(doc.Usage))
		b.WriteString("\n")
	}
	if doc.Description != "" {
		b.WriteString(h.FormatDescription(doc.Description, doc.Main))
		b.WriteString("\n")
	}
	b.WriteString(h.FormatOptions(doc.Groups, doc.Defaults))
	b.WriteString(h.FormatEpilog(doc.Epilog))
	return b.String()
}

func orderGroups(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Name == DefaultGroup {
			out = append(out, g)
		}
	}
	for _, g := range groups {
		if g.Name != DefaultGroup {
			out = append(out, g)
		}
	}
	return out
}

func wrapLines(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	wrapped := wordwrap.WrapString(strings.Join(strings.Fields(text), " "), uint(width))
	return strings.Split(wrapped, "\n")
}

func indentLines(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
