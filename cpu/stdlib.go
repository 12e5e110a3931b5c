package cpu

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avmlang/avm/io"
)

// readString reads a NUL terminated string from memory.
func (cpu *Cpu) readString(address uint16) string {
	var text []byte
	for range MEMORY_MAX {
		ch := cpu.Memory[address]
		if ch == 0 {
			break
		}
		text = append(text, ch)
		address++
	}
	return string(text)
}

// writeString writes at most maxLen-1 bytes of text to memory, followed
// by a NUL terminator. Nothing is written when maxLen is 0.
func (cpu *Cpu) writeString(address uint16, text string, maxLen byte) {
	if maxLen == 0 {
		return
	}
	n := min(len(text), int(maxLen)-1)
	for i := range n {
		cpu.Memory[address+uint16(i)] = text[i]
	}
	cpu.Memory[address+uint16(n)] = 0
}

// stdlib executes a standard library call, using the stack for its
// arguments and results.
func (cpu *Cpu) stdlib(call Syscall) (err error) {
	con := cpu.Console

	switch call {
	case STD_PRINT_INT:
		_, err = fmt.Fprintf(con, "%d", cpu.Memory[cpu.top()])
	case STD_PRINT_INT16:
		_, err = fmt.Fprintf(con, "%d", cpu.read16(cpu.top16()))
	case STD_PRINT_CHAR:
		_, err = con.Write([]byte{cpu.Memory[cpu.top()]})
	case STD_PRINT_CHAR_POP:
		_, err = con.Write([]byte{cpu.pop()})
	case STD_PRINT_STRING:
		_, err = fmt.Fprint(con, cpu.readString(cpu.pop16()))
	case STD_PRINT_NEW_LINE:
		_, err = fmt.Fprintln(con)
	case STD_READ_STRING:
		maxLen := cpu.pop()
		address := cpu.pop16()
		line, rerr := con.ReadLine()
		if rerr != nil {
			line = ""
		}
		cpu.writeString(address, line, maxLen)
	case STD_READ_KEY:
		key, _ := con.ReadKey()
		cpu.push(key)
	case STD_SET_CURSOR_POSITION:
		top := cpu.pop()
		left := cpu.pop()
		con.SetCursor(int(left), int(top))
	case STD_SHOW_CURSOR:
		con.ShowCursor(cpu.pop() != 0)
	case STD_SET_COLORS:
		fg := cpu.pop()
		bg := cpu.pop()
		con.SetColors(io.Color(fg), io.Color(bg))
	case STD_CONSOLE_CLEAR:
		con.Clear()
	case STD_STRING_TO_INT:
		text := cpu.readString(cpu.pop16())
		value, perr := strconv.ParseUint(strings.TrimSpace(text), 10, 8)
		if perr != nil {
			err = ErrInterrupt(INT_PARSE_ERROR)
			return
		}
		cpu.push(byte(value))
	case STD_INT_TO_STRING:
		value := cpu.pop()
		maxLen := cpu.pop()
		address := cpu.pop16()
		cpu.writeString(address, strconv.Itoa(int(value)), maxLen)
	case STD_MEM_CPY:
		n := cpu.pop()
		target := cpu.pop16()
		source := cpu.pop16()
		for i := range uint16(n) {
			cpu.Memory[target+i] = cpu.Memory[source+i]
		}
	case STD_MEM_SET:
		value := cpu.pop()
		n := cpu.pop16()
		address := cpu.pop16()
		for i := range n {
			cpu.Memory[address+i] = value
		}
	case STD_MEM_SWAP:
		n := cpu.pop()
		target := cpu.pop16()
		source := cpu.pop16()
		for i := range uint16(n) {
			a, b := source+i, target+i
			cpu.Memory[a], cpu.Memory[b] = cpu.Memory[b], cpu.Memory[a]
		}
	case STD_MEM_CMP:
		n := cpu.pop()
		target := cpu.pop16()
		source := cpu.pop16()
		var result uint16
		for i := range uint16(n) {
			if cpu.Memory[source+i] != cpu.Memory[target+i] {
				result = source + i
				break
			}
		}
		cpu.push16(result)
	case STD_STRLEN:
		cpu.push16(uint16(len(cpu.readString(cpu.pop16()))))
	case STD_SLEEP:
		ms := cpu.pop16()
		cpu.Sleep(time.Duration(ms) * time.Millisecond)
	case STD_GET_RANDOM_NUMBER:
		high := cpu.pop()
		low := cpu.pop()
		value := low
		if high > low {
			value = low + byte(cpu.Rand.IntN(int(high-low)))
		}
		cpu.push(value)
	default:
		err = ErrSyscall(call)
	}

	return
}
