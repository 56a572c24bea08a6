// Package selector lets the user choose one movie among search candidates.
package selector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"moviereview/pkg/models"
)

const yearPlaceholder = "----"

var (
	ErrNoCandidates  = errors.New("no movies to choose from")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrCancelled     = errors.New("selection cancelled")
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// ChoiceError reports input that is not a number.
type ChoiceError struct {
	Input string
	Err   error
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("%v: %q is not a number", ErrInvalidChoice, e.Input)
}

func (e *ChoiceError) Unwrap() []error {
	return []error{ErrInvalidChoice, e.Err}
}

// ParseChoice turns a line of user input into a 1-based index. Empty input
// means 1. Range is checked by the caller.
func ParseChoice(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ChoiceError{Input: raw, Err: err}
	}
	return i, nil
}

// Label formats a candidate as "YEAR - ORIGINAL TITLE".
func Label(m models.Movie) string {
	year := yearPlaceholder
	if m.Year != nil {
		year = strconv.Itoa(*m.Year)
	}
	return fmt.Sprintf("%s - %s", year, m.OriginalTitle)
}

// Render prints the numbered candidate list.
func Render(w io.Writer, movies []models.Movie) {
	fmt.Fprintf(w, "\n%s\n\n", headerStyle.Render("SEARCH RESULTS 🔎"))
	for i, m := range movies {
		fmt.Fprintf(w, "%d. %s\n", i+1, Label(m))
	}
}

// Prompt asks for a number on a line-oriented terminal.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer

	// pending holds a read that outlived a cancelled Select.
	pending chan readResult
}

type readResult struct {
	line string
	err  error
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Select shows movies and asks until the answer is in range. Input that is
// not a number ends the selection with an error, and so does cancelling ctx.
func (p *Prompt) Select(ctx context.Context, movies []models.Movie) (models.Movie, error) {
	if len(movies) == 0 {
		return models.Movie{}, ErrNoCandidates
	}

	Render(p.out, movies)
	for {
		fmt.Fprintf(p.out, "\n%s ", headerStyle.Render("Choose a movie (1 is by default):"))

		line, err := p.readLine(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Movie{}, ctxErr
		}
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return models.Movie{}, fmt.Errorf("failed to read choice: %w", err)
		}

		i, perr := ParseChoice(strings.TrimRight(line, "\r\n"))
		if perr != nil {
			return models.Movie{}, perr
		}
		if i >= 1 && i <= len(movies) {
			return movies[i-1], nil
		}
		if err != nil {
			// EOF after an out-of-range answer: nothing left to read.
			return models.Movie{}, fmt.Errorf("failed to read choice: %w", err)
		}
	}
}

func (p *Prompt) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan readResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		return r.line, r.err
	}
}
