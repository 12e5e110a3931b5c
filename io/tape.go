package io

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Tape is a Console over plain byte streams. Without Ansi set the
// cursor, color and clear requests are dropped, which keeps the output
// stream byte exact for tests and pipes.
type Tape struct {
	Input  io.Reader
	Output io.Writer
	Keys   []byte // Keys pending for ReadKey.
	Ansi   bool   // Emit ANSI escape sequences for screen control.

	reader *bufio.Reader
	source io.Reader
}

var _ Console = (*Tape)(nil)

func (tc *Tape) output() io.Writer {
	if tc.Output == nil {
		return io.Discard
	}
	return tc.Output
}

// Write writes raw bytes to the output stream.
func (tc *Tape) Write(data []byte) (n int, err error) {
	return tc.output().Write(data)
}

// ReadLine reads the next line from the input stream, stripping the
// line terminator. A final unterminated line is returned without error.
func (tc *Tape) ReadLine() (line string, err error) {
	if tc.Input == nil {
		err = ErrConsoleInput
		return
	}

	if tc.reader == nil || tc.source != tc.Input {
		tc.reader = bufio.NewReader(tc.Input)
		tc.source = tc.Input
	}

	line, err = tc.reader.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")

	return
}

// ReadKey pops the first pending key.
func (tc *Tape) ReadKey() (key byte, ok bool) {
	if len(tc.Keys) == 0 {
		return
	}

	key = tc.Keys[0]
	tc.Keys = tc.Keys[1:]
	ok = true

	return
}

func (tc *Tape) escape(format string, args ...any) {
	if !tc.Ansi {
		return
	}
	fmt.Fprintf(tc.output(), "\033["+format, args...)
}

// SetCursor moves the cursor, using zero based coordinates.
func (tc *Tape) SetCursor(left, top int) {
	tc.escape("%d;%dH", top+1, left+1)
}

// ShowCursor shows or hides the cursor.
func (tc *Tape) ShowCursor(show bool) {
	if show {
		tc.escape("?25h")
	} else {
		tc.escape("?25l")
	}
}

// SetColors sets the foreground and background colors.
func (tc *Tape) SetColors(fg, bg Color) {
	tc.escape("%d;%dm", fg.Ansi(), bg.Ansi()+10)
}

// Clear clears the screen and homes the cursor.
func (tc *Tape) Clear() {
	tc.escape("2J")
	tc.escape("H")
}
