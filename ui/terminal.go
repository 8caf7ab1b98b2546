package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	indent "github.com/openconfig/goyang/pkg/indent"
	"golang.org/x/term"
)

const (
	indentUnit      = "  "
	sectionWidth    = 50
	promptPrefix    = "> "
	interpretPrefix = "→ "
)

// TerminalUI writes to an output stream and reads answers from an input
// stream, os.Stdout and os.Stdin by default.
type TerminalUI struct {
	level int
	out   io.Writer
	in    *bufio.Reader
	// fd is the input descriptor when input is a real terminal, -1
	// otherwise. Secret only disables echo when it is set.
	fd          int
	interactive bool
	au          aurora.Aurora
}

// NewTerminalUI colours output only when stdout is a terminal.
func NewTerminalUI() *TerminalUI {
	u := NewStreamUI(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	if term.IsTerminal(int(os.Stdin.Fd())) {
		u.fd = int(os.Stdin.Fd())
	}
	u.interactive = term.IsTerminal(int(os.Stdout.Fd()))
	return u
}

// NewStreamUI builds a TerminalUI over arbitrary streams. Spinners are off
// and Secret reads plain lines.
func NewStreamUI(in io.Reader, out io.Writer, colors bool) *TerminalUI {
	return &TerminalUI{
		out: out,
		in:  bufio.NewReader(in),
		fd:  -1,
		au:  aurora.NewAurora(colors),
	}
}

func (u *TerminalUI) prefix() string {
	return strings.Repeat(indentUnit, u.level)
}

func (u *TerminalUI) line(s string) {
	fmt.Fprintf(u.out, "%s%s\n", u.prefix(), s)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	}
	return t.Text
}

func (u *TerminalUI) styled(sev Severity, format string, args []any) {
	u.line(u.Style(StyledText{Text: fmt.Sprintf(format, args...), Severity: sev}))
}

func (u *TerminalUI) Info(format string, args ...any)     { u.styled(SeverityInfo, format, args) }
func (u *TerminalUI) Success(format string, args ...any)  { u.styled(SeveritySuccess, format, args) }
func (u *TerminalUI) Warn(format string, args ...any)     { u.styled(SeverityWarn, format, args) }
func (u *TerminalUI) Error(format string, args ...any)    { u.styled(SeverityError, format, args) }
func (u *TerminalUI) Critical(format string, args ...any) { u.styled(SeverityCritical, format, args) }

func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := max(sectionWidth-runewidth.StringWidth(titled), 6)
	left := bars / 2
	fmt.Fprintf(u.out, "\n%s%s%s%s\n\n",
		u.prefix(), strings.Repeat("=", left), titled, strings.Repeat("=", bars-left))
}

func (u *TerminalUI) Interpret(value string) {
	fmt.Fprintf(u.out, "%s%s%s%s\n", u.prefix(), indentUnit, interpretPrefix, u.au.Cyan(value).String())
}

func (u *TerminalUI) readLine() (string, error) {
	text, err := u.in.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// Ask returns "" once input is exhausted so a closed stdin cannot spin the
// validation loop forever.
func (u *TerminalUI) Ask(validate func(string) error) string {
	for {
		fmt.Fprintf(u.out, "%s%s", u.prefix(), promptPrefix)
		input, err := u.readLine()
		if err != nil {
			fmt.Fprintln(u.out)
			return ""
		}
		if validate == nil {
			return input
		}
		verr := validate(input)
		if verr == nil {
			return input
		}
		u.Error("%s", verr)
	}
}

func (u *TerminalUI) Secret(prompt string) (string, error) {
	u.line(prompt)
	fmt.Fprintf(u.out, "%s%s", u.prefix(), promptPrefix)
	if u.fd < 0 {
		return u.readLine()
	}
	raw, err := term.ReadPassword(u.fd)
	fmt.Fprintln(u.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(raw), nil
}

func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	u.Info("%s %s", prompt, hint)
	answer := u.Ask(func(s string) error {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "y", "yes", "n", "no":
			return nil
		}
		return fmt.Errorf("please answer y or n")
	})
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	}
	return false
}

// Choose returns -1 when input runs out before a valid pick.
func (u *TerminalUI) Choose(prompt string, options []string) int {
	for i, opt := range options {
		u.Info("%d. %s", i+1, opt)
	}
	u.Info("%s [1-%d]", prompt, len(options))
	picked := -1
	u.Ask(func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 || n > len(options) {
			return fmt.Errorf("please enter a number between 1 and %d", len(options))
		}
		picked = n - 1
		return nil
	})
	return picked
}

func (u *TerminalUI) KeyValue(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r[0]))
	}
	for _, r := range rows {
		u.line(runewidth.FillRight(r[0], width) + "  " + r[1])
	}
}

func (u *TerminalUI) Table(headers []string, rows [][]string) {
	u.TableWithGroups(headers, [][][]string{rows})
}

// visible is the display width of s once colour codes are stripped.
func visible(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

func (u *TerminalUI) TableWithGroups(headers []string, groups [][][]string) {
	if len(groups) == 0 {
		return
	}
	cols := len(headers)
	for _, g := range groups {
		for _, r := range g {
			cols = max(cols, len(r))
		}
	}
	if cols == 0 {
		return
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], visible(cell))
		}
	}
	measure(headers)
	for _, g := range groups {
		for _, r := range g {
			measure(r)
		}
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rule := func(left, mid, right string) string {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return dim.Render(left + strings.Join(parts, mid) + right)
	}
	bar := dim.Render("│")
	row := func(cells []string) string {
		parts := make([]string, cols)
		for i := range parts {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = " " + cell + strings.Repeat(" ", widths[i]-visible(cell)) + " "
		}
		return bar + strings.Join(parts, bar) + bar
	}

	u.line(rule("┌", "┬", "┐"))
	if len(headers) > 0 {
		u.line(row(headers))
		u.line(rule("├", "┼", "┤"))
	}
	for i, g := range groups {
		if i > 0 {
			u.line(rule("├", "┼", "┤"))
		}
		for _, r := range g {
			u.line(row(r))
		}
	}
	u.line(rule("└", "┴", "┘"))
}

func (u *TerminalUI) Spinner(msg string) func() {
	if !u.interactive {
		u.line(msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		fmt.Fprintln(u.out)
	}
}

func (u *TerminalUI) Indent() UI {
	child := *u
	child.level++
	return &child
}

func (u *TerminalUI) Writer() io.Writer {
	if u.level == 0 {
		return u.out
	}
	return indent.NewWriter(u.out, u.prefix())
}
