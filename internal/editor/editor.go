// Package editor collects review text through the user's external editor.
package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

var ErrNoEditor = errors.New("no editor configured (set EDITOR)")

type Editor struct {
	command string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	logger  *zap.Logger
}

type Option func(*Editor)

// WithStdio overrides the streams handed to the editor process.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(e *Editor) {
		e.stdin, e.stdout, e.stderr = stdin, stdout, stderr
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an editor that runs command, e.g. "vim" or "code --wait".
func New(command string, opts ...Option) *Editor {
	e := &Editor{
		command: command,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit writes initText to a temporary markdown file, opens it in the editor,
// waits for the editor to exit and returns the file content exactly as left.
// The editor's exit status is ignored.
func (e *Editor) Edit(initText string) (string, error) {
	args := strings.Fields(e.command)
	if len(args) == 0 {
		return "", ErrNoEditor
	}

	tmpFile, err := os.CreateTemp("", "review-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(initText); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(args[0], append(args[1:], tmpPath)...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	e.logger.Debug("opening editor", zap.String("editor", args[0]), zap.String("path", tmpPath))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to run editor %q: %w", args[0], err)
		}
		e.logger.Warn("editor exited with non-zero status", zap.Int("exit_code", exitErr.ExitCode()))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read review: %w", err)
	}
	return string(data), nil
}
