package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads line-oriented input from the terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter wraps the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prompts for a line of input.
func (p *Prompter) Ask(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// AskDefault prompts with a default used on empty input.
func (p *Prompter) AskDefault(label, def string) string {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// AskSecret prompts without echoing when stdin is a terminal.
func (p *Prompter) AskSecret(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}

	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// Confirm asks a yes/no question, default no.
func (p *Prompter) Confirm(label string) bool {
	answer := strings.ToLower(p.Ask(label + " (y/N)"))
	return answer == "y" || answer == "yes"
}

// Choose prompts until one of the choices is entered; empty input picks
// the default.
func (p *Prompter) Choose(label string, choices []string, def string) string {
	for {
		answer := p.AskDefault(label, def)
		for _, c := range choices {
			if answer == c {
				return answer
			}
		}
		fmt.Fprintln(p.out, dimStyle.Render("valid choices: "+strings.Join(choices, ", ")))
	}
}
