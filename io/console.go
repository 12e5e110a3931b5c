// Package io provides the host side devices of the AVM: the console
// the guest program talks to through syscalls, and the file backed
// persistent store (NVRAM).
package io

import (
	"io"
)

// Console defines the host console used by the syscall layer.
// Implementations need not be safe for concurrent use; the CPU calls
// them from its single execution loop.
type Console interface {
	io.Writer
	// ReadLine blocks until a full line is read, without its terminator.
	ReadLine() (line string, err error)
	// ReadKey returns the next pending key, or ok == false if none is waiting.
	ReadKey() (key byte, ok bool)
	// SetCursor moves the cursor to column left, row top.
	SetCursor(left, top int)
	// ShowCursor turns cursor visibility on or off.
	ShowCursor(show bool)
	// SetColors sets the foreground and background colors.
	SetColors(fg, bg Color)
	// Clear clears the screen.
	Clear()
}
