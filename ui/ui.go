// Package ui is the terminal surface of the walletkit CLI: styled status
// lines, tables, prompts and spinners. Commands take a UI so tests can swap
// in RecordingUI.
package ui

import (
	"encoding/json"
	"io"
)

// Severity is the visual weight of a line or an inline value.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityCritical
)

// StyledText is a value annotated with a severity. It marshals to JSON as
// its plain text.
//
//	u.Info("chain %s", u.Style(ui.StyledText{Text: "0x38", Severity: ui.SeveritySuccess}))
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

func Good(text string) StyledText    { return StyledText{Text: text, Severity: SeveritySuccess} }
func Caution(text string) StyledText { return StyledText{Text: text, Severity: SeverityWarn} }
func Bad(text string) StyledText     { return StyledText{Text: text, Severity: SeverityError} }

// UI is everything a command may do with the terminal.
//
// Child UIs returned by Indent share input and output with their parent, so
// scripted input in tests is consumed in call order whatever the nesting.
type UI interface {
	// Style renders t in its severity colour, or as plain text when colours
	// are off.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error only prints; callers decide whether to stop.
	Error(format string, args ...any)
	// Critical is for values the user must check before approving anything
	// on a device.
	Critical(format string, args ...any)

	// Section prints a "===== title =====" separator.
	Section(title string)

	// KeyValue prints label/value rows with values aligned.
	KeyValue(rows [][2]string)

	// Table prints a bordered table. A nil header skips the header row.
	Table(headers []string, rows [][]string)

	// TableWithGroups is Table with a divider between row groups, e.g. one
	// group per scanned chain.
	TableWithGroups(headers []string, groups [][][]string)

	// Spinner shows msg until the returned func is called.
	Spinner(msg string) func()

	// Interpret echoes how the last answer was understood.
	Interpret(value string)

	// Ask reads a line after a "> " prompt, repeating until validate
	// accepts it. A nil validate accepts anything.
	Ask(validate func(string) error) string

	// Secret reads a line without echoing it, for device PINs and
	// passphrases.
	Secret(prompt string) (string, error)

	Confirm(prompt string, defaultYes bool) bool

	// Choose lists options numbered from 1 and returns the 0-based index
	// picked.
	Choose(prompt string, options []string) int

	Indent() UI

	// Writer prefixes every written line with the current indent.
	Writer() io.Writer
}
