// Package console runs the interactive line-oriented flows of the shift tools.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/midanish/PTEO-Shift-Report/pkg/terminal"
)

// ErrInputClosed is returned when the input ends before a prompt is answered.
var ErrInputClosed = errors.New("input closed")

const sectionWidth = 60

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	cfg     terminal.Config
}

// NewPrompter creates a Prompter.
func NewPrompter(in io.Reader, out io.Writer, cfg terminal.Config) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out, cfg: cfg}
}

// Printf writes formatted text.
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Section prints a titled separator block.
func (p *Prompter) Section(title string) {
	rule := terminal.DrawSeparator(sectionWidth)
	p.Printf("\n%s\n%s\n%s\n", rule, p.cfg.Colorize(terminal.Cyan, title), rule)
}

// Success prints a green status line.
func (p *Prompter) Success(msg string) {
	p.Printf("%s\n", p.cfg.Colorize(terminal.Green, "✅ "+msg))
}

// Warn prints a yellow status line.
func (p *Prompter) Warn(msg string) {
	p.Printf("%s\n", p.cfg.Colorize(terminal.Yellow, "⚠️  "+msg))
}

// Fail prints a red status line.
func (p *Prompter) Fail(msg string) {
	p.Printf("%s\n", p.cfg.Colorize(terminal.Red, "❌ "+msg))
}

// Ask prints prompt and returns the trimmed answer.
func (p *Prompter) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.Printf("%s", prompt)

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}

		p.Printf("\n")

		return "", ErrInputClosed
	}

	return strings.TrimSpace(p.scanner.Text()), nil
}

// AskNonEmpty repeats prompt until the answer is not blank.
func (p *Prompter) AskNonEmpty(ctx context.Context, prompt, emptyMsg string) (string, error) {
	for {
		answer, err := p.Ask(ctx, prompt)
		if err != nil {
			return "", err
		}

		if answer != "" {
			return answer, nil
		}

		p.Fail(emptyMsg)
	}
}

// AskInt repeats prompt until the answer is an integer within [lo, hi].
// rangeMsg is shown for integers outside the bounds.
func (p *Prompter) AskInt(ctx context.Context, prompt string, lo, hi int, rangeMsg string) (int, error) {
	for {
		answer, err := p.Ask(ctx, prompt)
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(answer)

		switch {
		case convErr != nil:
			p.Fail("Invalid input. Please enter a number.")
		case n < lo || n > hi:
			p.Fail(rangeMsg)
		default:
			return n, nil
		}
	}
}

// Confirm returns true for yes or y, in any case.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := p.Ask(ctx, prompt)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

// Choose lists options and returns the 0-based index of the chosen one.
func (p *Prompter) Choose(ctx context.Context, noun string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("choose %s: no options", noun)
	}

	for i, opt := range options {
		p.Printf("  %d. %s\n", i+1, opt)
	}

	prompt := fmt.Sprintf("Enter %s number (1-%d): ", noun, len(options))
	msg := "Invalid choice. Please enter " + choiceList(len(options)) + "."

	n, err := p.AskInt(ctx, prompt, 1, len(options), msg)
	if err != nil {
		return 0, err
	}

	return n - 1, nil
}

// choiceList renders 1..n as "1", "1 or 2", "1, 2, or 3".
func choiceList(n int) string {
	nums := make([]string, n)
	for i := range nums {
		nums[i] = strconv.Itoa(i + 1)
	}

	switch n {
	case 1:
		return nums[0]
	case 2:
		return nums[0] + " or " + nums[1]
	default:
		return strings.Join(nums[:n-1], ", ") + ", or " + nums[n-1]
	}
}
