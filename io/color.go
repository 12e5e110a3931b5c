package io

import (
	"fmt"
)

// Color is the console color palette seen by guest programs.
type Color uint8

const (
	COLOR_BLACK          = Color(0)  // black
	COLOR_RED            = Color(1)  // red
	COLOR_GREEN          = Color(2)  // green
	COLOR_YELLOW         = Color(3)  // yellow
	COLOR_BLUE           = Color(4)  // blue
	COLOR_MAGENTA        = Color(5)  // magenta
	COLOR_CYAN           = Color(6)  // cyan
	COLOR_WHITE          = Color(7)  // white
	COLOR_BRIGHT_BLACK   = Color(8)  // brightblack
	COLOR_BRIGHT_RED     = Color(9)  // brightred
	COLOR_BRIGHT_GREEN   = Color(10) // brightgreen
	COLOR_BRIGHT_YELLOW  = Color(11) // brightyellow
	COLOR_BRIGHT_BLUE    = Color(12) // brightblue
	COLOR_BRIGHT_MAGENTA = Color(13) // brightmagenta
	COLOR_BRIGHT_CYAN    = Color(14) // brightcyan
	COLOR_BRIGHT_WHITE   = Color(15) // brightwhite
	COLOR_GRAY           = Color(16) // gray
	COLOR_BRIGHT_GRAY    = Color(17) // brightgray
)

var colorNames = [...]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"brightblack", "brightred", "brightgreen", "brightyellow",
	"brightblue", "brightmagenta", "brightcyan", "brightwhite",
	"gray", "brightgray",
}

// ansiForeground maps a Color to its SGR foreground code.
// Unknown colors render as bright white.
var ansiForeground = [...]int{
	30, 31, 32, 33, 34, 35, 36, 97,
	30, 91, 92, 93, 94, 95, 96, 97,
	90, 37,
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// Ansi returns the SGR foreground code for the color.
// Background codes are offset by 10.
func (c Color) Ansi() int {
	if int(c) < len(ansiForeground) {
		return ansiForeground[c]
	}
	return 97
}
