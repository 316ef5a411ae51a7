package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// errNotInteractive is returned when a value is missing and stdin is not a terminal.
var errNotInteractive = errors.New("not running in a terminal")

// isInteractive reports whether r is a terminal. Tests replace it.
var isInteractive = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompter asks for values that were given neither as flags nor in the
// config file.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isInteractive(in),
	}
}

// ask prints label and reads one trimmed line. name is used in the error
// when prompting is not possible.
func (p *prompter) ask(label, name string) (string, error) {
	if !p.interactive {
		return "", fmt.Errorf("%s is required: %w", name, errNotInteractive)
	}

	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

// askInt is ask for integer values.
func (p *prompter) askInt(label, name string) (int, error) {
	value, err := p.ask(label, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", name, value)
	}
	return n, nil
}
