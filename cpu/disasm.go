package cpu

import (
	"fmt"
	"io"
)

// Decode renders the instruction at address in assembler syntax, and
// returns its size in bytes. Bytes that are not an opcode, or an opcode
// with truncated operands, decode as a single byte literal.
func Decode(code []byte, address int) (text string, size int) {
	if address < 0 || address >= len(code) {
		return
	}

	op := Opcode(code[address])
	size = 1 + op.OperandBytes()
	if !op.Valid() || address+size > len(code) {
		return fmt.Sprintf("%d", code[address]), 1
	}

	arg := code[address+1 : address+size]
	word := func(n int) uint16 {
		return uint16(arg[n]) | uint16(arg[n+1])<<8
	}

	switch op.Operand() {
	case ARG_NONE:
		text = op.String()
	case ARG_BYTE:
		text = fmt.Sprintf("%v %d", op, arg[0])
	case ARG_WORD, ARG_ADDR, ARG_OFFSET:
		text = fmt.Sprintf("%v #%d", op, word(0))
	case ARG_BYTE_ADDR, ARG_BYTE_OFFSET:
		text = fmt.Sprintf("%v %d #%d", op, arg[0], word(1))
	case ARG_INT_ADDR:
		text = fmt.Sprintf("%v INT.%v #%d", op, InterruptCode(arg[0]), word(1))
	case ARG_SYSCALL:
		text = fmt.Sprintf("%v STD.%v", op, Syscall(arg[0]))
	}

	return
}

// Disassemble writes a listing of a program image, one instruction per
// line, prefixed by its address.
func Disassemble(code []byte, w io.Writer) (err error) {
	for address := 0; address < len(code); {
		text, size := Decode(code, address)
		_, err = fmt.Fprintf(w, "%6d: %v\n", address, text)
		if err != nil {
			return
		}
		address += size
	}

	return
}
