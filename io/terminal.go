package io

import (
	"os"
)

const (
	keyBackspace = 0x08
	keyDelete    = 0x7f
)

// Terminal is an interactive Console on a tty. The input is switched to
// raw mode so that single key presses can be polled with ReadKey.
type Terminal struct {
	Tape

	keys    chan byte
	restore func()
}

var _ Console = (*Terminal)(nil)

// NewTerminal attaches a terminal console to the given files.
// When in is not a tty the raw mode switch fails and the terminal
// falls back to cooked input.
func NewTerminal(in, out *os.File) (term *Terminal) {
	term = &Terminal{
		Tape: Tape{
			Output: out,
			Ansi:   true,
		},
		keys: make(chan byte, 64),
	}

	restore, err := setRawIO(in)
	if err == nil {
		term.restore = restore
	}

	go func() {
		defer close(term.keys)
		var one [1]byte
		for {
			n, err := in.Read(one[:])
			if err != nil {
				return
			}
			if n == 1 {
				term.keys <- one[0]
			}
		}
	}()

	return
}

// ReadKey returns a pending key press without blocking.
func (term *Terminal) ReadKey() (key byte, ok bool) {
	select {
	case key, ok = <-term.keys:
	default:
	}
	return
}

// ReadLine collects keys up to a line terminator, echoing as it goes.
func (term *Terminal) ReadLine() (line string, err error) {
	var buf []byte
	for {
		key, ok := <-term.keys
		if !ok {
			if len(buf) == 0 {
				err = ErrConsoleInput
			}
			break
		}
		if key == '\r' || key == '\n' {
			term.Write([]byte{'\n'})
			break
		}
		if key == keyBackspace || key == keyDelete {
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				term.Write([]byte("\b \b"))
			}
			continue
		}
		buf = append(buf, key)
		term.Write([]byte{key})
	}

	line = string(buf)
	return
}

// Close restores the terminal mode, colors and cursor.
func (term *Terminal) Close() (err error) {
	term.escape("0m")
	term.ShowCursor(true)
	if term.restore != nil {
		term.restore()
		term.restore = nil
	}
	return
}
