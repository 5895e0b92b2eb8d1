package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".chronoctl_history"
	historySize     = 500
)

type lineReader interface {
	GetLine(prompt string) (string, error)
	Close()
}

// lineEditor uses readline on a terminal and a plain scanner otherwise, so
// command files can be piped in.
type lineEditor struct {
	rl *readline.Instance

	scanner *bufio.Scanner
	out     io.Writer
}

func newLineEditor(in *os.File, out io.Writer) *lineEditor {
	if !term.IsTerminal(int(in.Fd())) {
		return newScriptEditor(in, out)
	}
	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline unavailable (%v), using basic input\n", err)
		return newScriptEditor(in, out)
	}
	return &lineEditor{rl: rl}
}

func newScriptEditor(in io.Reader, out io.Writer) *lineEditor {
	return &lineEditor{scanner: bufio.NewScanner(in), out: out}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// GetLine returns io.EOF on Ctrl-D, Ctrl-C or end of input.
func (e *lineEditor) GetLine(prompt string) (string, error) {
	if e.rl != nil {
		e.rl.SetPrompt(prompt)
		line, err := e.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				return "", io.EOF
			}
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			_ = e.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	if e.out != nil {
		fmt.Fprint(e.out, prompt)
	}
	if !e.scanner.Scan() {
		if err := e.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return e.scanner.Text(), nil
}

func (e *lineEditor) Close() {
	if e.rl != nil {
		_ = e.rl.Close()
		e.rl = nil
	}
}

// runConsole reads lines until EOF or .quit. Command errors are reported on
// errOut and do not end the loop.
func runConsole(c *console, ed lineReader, errOut io.Writer) error {
	for {
		line, err := ed.GetLine(c.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := c.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
}
