// Package confirm abstracts the interactive yes/no prompt shown before
// destructive actions, so tests and non-interactive runs can inject a fixed
// answer instead of blocking on a terminal.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Provider answers a confirmation prompt.
type Provider interface {
	// Confirm asks the user the given question and reports the answer.
	Confirm(prompt string) (bool, error)
}

// Auto is a Provider that always answers with a fixed value. It backs the
// --yes flag and automatic test responses.
type Auto bool

// Confirm returns the fixed answer.
func (a Auto) Confirm(string) (bool, error) {
	return bool(a), nil
}

// Terminal prompts on Out and reads a y/n answer from In.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// reader buffers In across prompts so type-ahead answers are not lost
	// between consecutive Confirm calls.
	reader *bufio.Reader
}

// NewTerminal returns a Terminal bound to stdin and stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

// Confirm prints the prompt and reads one line. Answers starting with "y"
// (case-insensitive) confirm; anything else, including an empty line,
// declines.
func (t *Terminal) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(t.Out, "%s [y/N] ", prompt); err != nil {
		return false, err
	}

	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("error reading confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
