package ui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Entry is one recorded UI call.
type Entry struct {
	Method string
	Value  string
}

type recorder struct {
	mu      sync.Mutex
	entries []Entry
	inputs  []string
	next    int
	buf     bytes.Buffer
}

// RecordingUI captures output and serves scripted answers. Running out of
// answers, or an answer a validator rejects, panics: the test script is
// wrong and there is nobody to retype it.
type RecordingUI struct {
	rec   *recorder
	level int
}

func NewRecordingUI(inputs ...string) *RecordingUI {
	return &RecordingUI{rec: &recorder{inputs: inputs}}
}

func (r *RecordingUI) record(method, value string) {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	r.rec.entries = append(r.rec.entries, Entry{Method: method, Value: value})
}

func (r *RecordingUI) answer(caller string) string {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	if r.rec.next >= len(r.rec.inputs) {
		panic(fmt.Sprintf("RecordingUI: %s wants input but all %d scripted answers are used", caller, len(r.rec.inputs)))
	}
	in := r.rec.inputs[r.rec.next]
	r.rec.next++
	return in
}

func (r *RecordingUI) Style(t StyledText) string { return t.Text }

func (r *RecordingUI) Info(format string, args ...any)     { r.record("Info", fmt.Sprintf(format, args...)) }
func (r *RecordingUI) Success(format string, args ...any)  { r.record("Success", fmt.Sprintf(format, args...)) }
func (r *RecordingUI) Warn(format string, args ...any)     { r.record("Warn", fmt.Sprintf(format, args...)) }
func (r *RecordingUI) Error(format string, args ...any)    { r.record("Error", fmt.Sprintf(format, args...)) }
func (r *RecordingUI) Critical(format string, args ...any) { r.record("Critical", fmt.Sprintf(format, args...)) }

func (r *RecordingUI) Section(title string)   { r.record("Section", title) }
func (r *RecordingUI) Interpret(value string) { r.record("Interpret", value) }

// KeyValue records one "label: value" entry per row.
func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

// Table records one entry per row with cells joined by " | ".
func (r *RecordingUI) Table(headers []string, rows [][]string) {
	r.TableWithGroups(headers, [][][]string{rows})
}

func (r *RecordingUI) TableWithGroups(headers []string, groups [][][]string) {
	if len(headers) > 0 {
		r.record("TableHeader", strings.Join(headers, " | "))
	}
	for _, g := range groups {
		for _, row := range g {
			r.record("TableRow", strings.Join(row, " | "))
		}
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

func (r *RecordingUI) Ask(validate func(string) error) string {
	in := r.answer("Ask")
	r.record("Ask", in)
	if validate != nil {
		if err := validate(in); err != nil {
			panic(fmt.Sprintf("RecordingUI: scripted answer %q rejected: %s", in, err))
		}
	}
	return in
}

func (r *RecordingUI) Secret(prompt string) (string, error) {
	r.record("Secret", prompt)
	return r.answer("Secret"), nil
}

// Confirm accepts y/yes and n/no; an empty answer takes the default.
func (r *RecordingUI) Confirm(prompt string, defaultYes bool) bool {
	r.record("Confirm", prompt)
	switch strings.ToLower(strings.TrimSpace(r.answer("Confirm"))) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	}
	return false
}

// Choose accepts a 1-based number or the option text, case-insensitively.
func (r *RecordingUI) Choose(prompt string, options []string) int {
	r.record("Choose", prompt)
	in := strings.TrimSpace(r.answer("Choose"))
	if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(options) {
		return n - 1
	}
	for i, opt := range options {
		if strings.EqualFold(in, opt) {
			return i
		}
	}
	panic(fmt.Sprintf("RecordingUI: %q matches none of %v", in, options))
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{rec: r.rec, level: r.level + 1}
}

// Writer ignores indentation.
func (r *RecordingUI) Writer() io.Writer {
	return &lockedWriter{rec: r.rec}
}

type lockedWriter struct{ rec *recorder }

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.rec.mu.Lock()
	defer w.rec.mu.Unlock()
	return w.rec.buf.Write(p)
}

func (r *RecordingUI) Entries() []Entry {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return append([]Entry(nil), r.rec.entries...)
}

// Messages returns the values recorded by one method, in order.
func (r *RecordingUI) Messages(method string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}

func (r *RecordingUI) InfoMessages() []string     { return r.Messages("Info") }
func (r *RecordingUI) ErrorMessages() []string    { return r.Messages("Error") }
func (r *RecordingUI) CriticalMessages() []string { return r.Messages("Critical") }

// HasMessage reports whether any entry contains substr, ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	substr = strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), substr) {
			return true
		}
	}
	return false
}

func (r *RecordingUI) Output() string {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return r.rec.buf.String()
}
