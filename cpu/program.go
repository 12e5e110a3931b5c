package cpu

import (
	"fmt"
	"io"
	"iter"
)

// Line is a single line of assembly source, and the bytes it emitted.
type Line struct {
	LineNo  int    // Source line number, starting at 1.
	Address int    // Address of the first emitted byte.
	Size    int    // Number of emitted bytes.
	Text    string // Original source text.
}

// Program is an assembled image, with its source line mapping.
type Program struct {
	Code  []byte
	Lines []Line
}

type Debug struct {
	*Line
	Index int
}

// Debug finds the source line that emitted the byte at ip.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, line := range prog.Lines {
		if int(ip) >= line.Address && int(ip) < line.Address+line.Size {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: int(ip) - line.Address,
			}
			break
		}
	}

	return
}

// Source iterates over the lines which emitted code.
func (prog *Program) Source() iter.Seq2[uint16, *Line] {
	return func(yield func(addr uint16, line *Line) bool) {
		for n := range prog.Lines {
			line := &prog.Lines[n]
			if line.Size == 0 {
				continue
			}
			if !yield(uint16(line.Address), line) {
				return
			}
		}
	}
}

// WriteListing writes every source line prefixed by its address.
func (prog *Program) WriteListing(w io.Writer) (err error) {
	for _, line := range prog.Lines {
		_, err = fmt.Fprintf(w, "%6d: %v\n", line.Address, line.Text)
		if err != nil {
			return
		}
	}

	return
}

// WriteBinary writes the raw program image.
func (prog *Program) WriteBinary(w io.Writer) (err error) {
	_, err = w.Write(prog.Code)
	return
}

// ReadBinary reads a raw program image, with no source mapping.
func ReadBinary(r io.Reader) (prog *Program, err error) {
	code, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(code) > MEMORY_MAX {
		err = ErrProgramTooLarge
		return
	}

	prog = &Program{Code: code}
	return
}
