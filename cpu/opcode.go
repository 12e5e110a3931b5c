package cpu

import (
	"fmt"
	"strings"
)

// Opcode is a single byte instruction code.
type Opcode uint8

const (
	OP_NOP = Opcode(iota)

	// Stack
	OP_PUSH
	OP_PUSHN
	OP_PUSHN2
	OP_POP
	OP_POPN
	OP_POPN2
	OP_SWAP
	OP_DUP
	OP_PUSH_REG
	OP_POP_REG

	// 8-bit arithmetic
	OP_ADD
	OP_ADDC
	OP_SUBC
	OP_SUB
	OP_SUB2
	OP_MUL
	OP_MULC
	OP_DIV
	OP_DIV2
	OP_DIV216
	OP_MOD
	OP_INC
	OP_DEC

	// 8-bit bitwise and logical
	OP_AND
	OP_OR
	OP_LAND
	OP_LOR
	OP_FLIP
	OP_NOT
	OP_XOR
	OP_LSH
	OP_RSH

	// 8-bit comparison
	OP_EQ
	OP_NE
	OP_LESS
	OP_LESS_OR_EQ
	OP_GREATER
	OP_GREATER_OR_EQ
	OP_ZERO
	OP_NZERO

	// Control flow
	OP_JMP
	OP_JMP2
	OP_JF
	OP_JF2
	OP_JT
	OP_JT2
	OP_CASE
	OP_ELSE

	// Calls
	OP_CALL
	OP_RET
	OP_CALL2

	// Global memory
	OP_LOAD_GLOBAL
	OP_STORE_GLOBAL
	OP_LOAD_GLOBAL16
	OP_STORE_GLOBAL16

	// Frame relative memory
	OP_LOAD
	OP_LOAD_LOCAL
	OP_LOAD_ARG
	OP_LOAD_LOCAL16
	OP_LOAD_ARG16
	OP_STORE
	OP_STORE_LOCAL
	OP_STORE_ARG
	OP_STORE_LOCAL16
	OP_STORE_ARG16

	// System
	OP_INTERRUPT_HANDLER
	OP_SYSCALL
	OP_SYSCALL2
	OP_DEBUGGER

	// 16-bit
	OP_PUSH_NEXT_SP
	OP_PUSH16
	OP_ADD16
	OP_ADD16C
	OP_SUB16C
	OP_MOD16
	OP_SUB16
	OP_SUB216
	OP_MUL16
	OP_MUL16C
	OP_DIV16
	OP_INC16
	OP_DEC16
	OP_EXTEND
	OP_DOWNCAST
	OP_LESS16
	OP_LESS_OR_EQ16
	OP_GREATER16
	OP_GREATER_OR_EQ16
	OP_ZERO16
	OP_NZERO16
	OP_EQ16
	OP_NE16
	OP_DUP16
	OP_SWAP16

	// Persistent store
	OP_LOAD_NVRAM
	OP_STORE_NVRAM

	// Position independent code
	OP_PUSH16_REL
	OP_JMP_REL
	OP_JF_REL
	OP_JT_REL
	OP_CASE_REL
	OP_ELSE_REL
	OP_CALL_REL

	OP_PUSH_STACK_START
	OP_ROLL3
	OP_NEG
	OP_STORE_GLOBAL2
	OP_STORE_GLOBAL216

	OP_HALT

	// 16-bit bitwise
	OP_AND16
	OP_OR16
	OP_XOR16
	OP_FLIP16
	OP_LSH16
	OP_RSH16
	OP_JT16
	OP_JF16

	opcodeCount
)

// CodeClass is the semantic class of an opcode.
type CodeClass int

const (
	CLASS_STACK      = CodeClass(0) // stack
	CLASS_ARITHMETIC = CodeClass(1) // arithmetic
	CLASS_COMPARE    = CodeClass(2) // compare
	CLASS_BITWISE    = CodeClass(3) // bitwise
	CLASS_CONTROL    = CodeClass(4) // control
	CLASS_MEMORY     = CodeClass(5) // memory
	CLASS_CALL       = CodeClass(6) // call
	CLASS_SYSTEM     = CodeClass(7) // system
	CLASS_MACHINE    = CodeClass(8) // machine
)

var classNames = [...]string{
	"stack", "arithmetic", "compare", "bitwise", "control",
	"memory", "call", "system", "machine",
}

func (class CodeClass) String() string {
	if class >= 0 && int(class) < len(classNames) {
		return classNames[class]
	}
	return fmt.Sprintf("CodeClass(%d)", int(class))
}

// CodeOperand is the layout of the operand bytes following an opcode.
// Multi-byte values are little-endian.
type CodeOperand int

const (
	ARG_NONE        = CodeOperand(0) // no operand
	ARG_BYTE        = CodeOperand(1) // 8-bit literal
	ARG_WORD        = CodeOperand(2) // 16-bit literal
	ARG_ADDR        = CodeOperand(3) // 16-bit absolute address
	ARG_OFFSET      = CodeOperand(4) // 16-bit signed offset from the opcode
	ARG_BYTE_ADDR   = CodeOperand(5) // 8-bit literal, 16-bit absolute address
	ARG_BYTE_OFFSET = CodeOperand(6) // 8-bit literal, 16-bit signed offset
	ARG_INT_ADDR    = CodeOperand(7) // interrupt code, 16-bit handler address
	ARG_SYSCALL     = CodeOperand(8) // syscall code
)

// Bytes returns the number of operand bytes for the layout.
func (arg CodeOperand) Bytes() int {
	switch arg {
	case ARG_BYTE, ARG_SYSCALL:
		return 1
	case ARG_WORD, ARG_ADDR, ARG_OFFSET:
		return 2
	case ARG_BYTE_ADDR, ARG_BYTE_OFFSET, ARG_INT_ADDR:
		return 3
	}
	return 0
}

type opcodeInfo struct {
	name    string
	operand CodeOperand
	class   CodeClass
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OP_NOP: {"NOP", ARG_NONE, CLASS_MACHINE},

	OP_PUSH:     {"PUSH", ARG_BYTE, CLASS_STACK},
	OP_PUSHN:    {"PUSHN", ARG_BYTE, CLASS_STACK},
	OP_PUSHN2:   {"PUSHN2", ARG_NONE, CLASS_STACK},
	OP_POP:      {"POP", ARG_NONE, CLASS_STACK},
	OP_POPN:     {"POPN", ARG_BYTE, CLASS_STACK},
	OP_POPN2:    {"POPN2", ARG_NONE, CLASS_STACK},
	OP_SWAP:     {"SWAP", ARG_NONE, CLASS_STACK},
	OP_DUP:      {"DUP", ARG_NONE, CLASS_STACK},
	OP_PUSH_REG: {"PUSH_REG", ARG_BYTE, CLASS_STACK},
	OP_POP_REG:  {"POP_REG", ARG_BYTE, CLASS_STACK},

	OP_ADD:    {"ADD", ARG_NONE, CLASS_ARITHMETIC},
	OP_ADDC:   {"ADDC", ARG_BYTE, CLASS_ARITHMETIC},
	OP_SUBC:   {"SUBC", ARG_BYTE, CLASS_ARITHMETIC},
	OP_SUB:    {"SUB", ARG_NONE, CLASS_ARITHMETIC},
	OP_SUB2:   {"SUB2", ARG_NONE, CLASS_ARITHMETIC},
	OP_MUL:    {"MUL", ARG_NONE, CLASS_ARITHMETIC},
	OP_MULC:   {"MULC", ARG_BYTE, CLASS_ARITHMETIC},
	OP_DIV:    {"DIV", ARG_NONE, CLASS_ARITHMETIC},
	OP_DIV2:   {"DIV2", ARG_NONE, CLASS_ARITHMETIC},
	OP_DIV216: {"DIV216", ARG_NONE, CLASS_ARITHMETIC},
	OP_MOD:    {"MOD", ARG_NONE, CLASS_ARITHMETIC},
	OP_INC:    {"INC", ARG_NONE, CLASS_ARITHMETIC},
	OP_DEC:    {"DEC", ARG_NONE, CLASS_ARITHMETIC},

	OP_AND:  {"AND", ARG_NONE, CLASS_BITWISE},
	OP_OR:   {"OR", ARG_NONE, CLASS_BITWISE},
	OP_LAND: {"LAND", ARG_NONE, CLASS_BITWISE},
	OP_LOR:  {"LOR", ARG_NONE, CLASS_BITWISE},
	OP_FLIP: {"FLIP", ARG_NONE, CLASS_BITWISE},
	OP_NOT:  {"NOT", ARG_NONE, CLASS_BITWISE},
	OP_XOR:  {"XOR", ARG_NONE, CLASS_BITWISE},
	OP_LSH:  {"LSH", ARG_NONE, CLASS_BITWISE},
	OP_RSH:  {"RSH", ARG_NONE, CLASS_BITWISE},

	OP_EQ:            {"EQ", ARG_NONE, CLASS_COMPARE},
	OP_NE:            {"NE", ARG_NONE, CLASS_COMPARE},
	OP_LESS:          {"LESS", ARG_NONE, CLASS_COMPARE},
	OP_LESS_OR_EQ:    {"LESS_OR_EQ", ARG_NONE, CLASS_COMPARE},
	OP_GREATER:       {"GREATER", ARG_NONE, CLASS_COMPARE},
	OP_GREATER_OR_EQ: {"GREATER_OR_EQ", ARG_NONE, CLASS_COMPARE},
	OP_ZERO:          {"ZERO", ARG_NONE, CLASS_COMPARE},
	OP_NZERO:         {"NZERO", ARG_NONE, CLASS_COMPARE},

	OP_JMP:  {"JMP", ARG_ADDR, CLASS_CONTROL},
	OP_JMP2: {"JMP2", ARG_NONE, CLASS_CONTROL},
	OP_JF:   {"JF", ARG_ADDR, CLASS_CONTROL},
	OP_JF2:  {"JF2", ARG_NONE, CLASS_CONTROL},
	OP_JT:   {"JT", ARG_ADDR, CLASS_CONTROL},
	OP_JT2:  {"JT2", ARG_NONE, CLASS_CONTROL},
	OP_CASE: {"CASE", ARG_BYTE_ADDR, CLASS_CONTROL},
	OP_ELSE: {"ELSE", ARG_ADDR, CLASS_CONTROL},

	OP_CALL:  {"CALL", ARG_ADDR, CLASS_CALL},
	OP_RET:   {"RET", ARG_NONE, CLASS_CALL},
	OP_CALL2: {"CALL2", ARG_NONE, CLASS_CALL},

	OP_LOAD_GLOBAL:    {"LOAD_GLOBAL", ARG_NONE, CLASS_MEMORY},
	OP_STORE_GLOBAL:   {"STORE_GLOBAL", ARG_NONE, CLASS_MEMORY},
	OP_LOAD_GLOBAL16:  {"LOAD_GLOBAL16", ARG_NONE, CLASS_MEMORY},
	OP_STORE_GLOBAL16: {"STORE_GLOBAL16", ARG_NONE, CLASS_MEMORY},

	OP_LOAD:          {"LOAD", ARG_BYTE, CLASS_MEMORY},
	OP_LOAD_LOCAL:    {"LOAD_LOCAL", ARG_BYTE, CLASS_MEMORY},
	OP_LOAD_ARG:      {"LOAD_ARG", ARG_BYTE, CLASS_MEMORY},
	OP_LOAD_LOCAL16:  {"LOAD_LOCAL16", ARG_BYTE, CLASS_MEMORY},
	OP_LOAD_ARG16:    {"LOAD_ARG16", ARG_BYTE, CLASS_MEMORY},
	OP_STORE:         {"STORE", ARG_BYTE, CLASS_MEMORY},
	OP_STORE_LOCAL:   {"STORE_LOCAL", ARG_BYTE, CLASS_MEMORY},
	OP_STORE_ARG:     {"STORE_ARG", ARG_BYTE, CLASS_MEMORY},
	OP_STORE_LOCAL16: {"STORE_LOCAL16", ARG_BYTE, CLASS_MEMORY},
	OP_STORE_ARG16:   {"STORE_ARG16", ARG_BYTE, CLASS_MEMORY},

	OP_INTERRUPT_HANDLER: {"INTERRUPT_HANDLER", ARG_INT_ADDR, CLASS_SYSTEM},
	OP_SYSCALL:           {"SYSCALL", ARG_SYSCALL, CLASS_SYSTEM},
	OP_SYSCALL2:          {"SYSCALL2", ARG_NONE, CLASS_SYSTEM},
	OP_DEBUGGER:          {"DEBUGGER", ARG_NONE, CLASS_MACHINE},

	OP_PUSH_NEXT_SP:    {"PUSH_NEXT_SP", ARG_NONE, CLASS_STACK},
	OP_PUSH16:          {"PUSH16", ARG_WORD, CLASS_STACK},
	OP_ADD16:           {"ADD16", ARG_NONE, CLASS_ARITHMETIC},
	OP_ADD16C:          {"ADD16C", ARG_WORD, CLASS_ARITHMETIC},
	OP_SUB16C:          {"SUB16C", ARG_WORD, CLASS_ARITHMETIC},
	OP_MOD16:           {"MOD16", ARG_NONE, CLASS_ARITHMETIC},
	OP_SUB16:           {"SUB16", ARG_NONE, CLASS_ARITHMETIC},
	OP_SUB216:          {"SUB216", ARG_NONE, CLASS_ARITHMETIC},
	OP_MUL16:           {"MUL16", ARG_NONE, CLASS_ARITHMETIC},
	OP_MUL16C:          {"MUL16C", ARG_WORD, CLASS_ARITHMETIC},
	OP_DIV16:           {"DIV16", ARG_NONE, CLASS_ARITHMETIC},
	OP_INC16:           {"INC16", ARG_NONE, CLASS_ARITHMETIC},
	OP_DEC16:           {"DEC16", ARG_NONE, CLASS_ARITHMETIC},
	OP_EXTEND:          {"EXTEND", ARG_NONE, CLASS_ARITHMETIC},
	OP_DOWNCAST:        {"DOWNCAST", ARG_NONE, CLASS_ARITHMETIC},
	OP_LESS16:          {"LESS16", ARG_NONE, CLASS_COMPARE},
	OP_LESS_OR_EQ16:    {"LESS_OR_EQ16", ARG_NONE, CLASS_COMPARE},
	OP_GREATER16:       {"GREATER16", ARG_NONE, CLASS_COMPARE},
	OP_GREATER_OR_EQ16: {"GREATER_OR_EQ16", ARG_NONE, CLASS_COMPARE},
	OP_ZERO16:          {"ZERO16", ARG_NONE, CLASS_COMPARE},
	OP_NZERO16:         {"NZERO16", ARG_NONE, CLASS_COMPARE},
	OP_EQ16:            {"EQ16", ARG_NONE, CLASS_COMPARE},
	OP_NE16:            {"NE16", ARG_NONE, CLASS_COMPARE},
	OP_DUP16:           {"DUP16", ARG_NONE, CLASS_STACK},
	OP_SWAP16:          {"SWAP16", ARG_NONE, CLASS_STACK},

	OP_LOAD_NVRAM:  {"LOAD_NVRAM", ARG_NONE, CLASS_SYSTEM},
	OP_STORE_NVRAM: {"STORE_NVRAM", ARG_NONE, CLASS_SYSTEM},

	OP_PUSH16_REL: {"PUSH16_REL", ARG_OFFSET, CLASS_STACK},
	OP_JMP_REL:    {"JMP_REL", ARG_OFFSET, CLASS_CONTROL},
	OP_JF_REL:     {"JF_REL", ARG_OFFSET, CLASS_CONTROL},
	OP_JT_REL:     {"JT_REL", ARG_OFFSET, CLASS_CONTROL},
	OP_CASE_REL:   {"CASE_REL", ARG_BYTE_OFFSET, CLASS_CONTROL},
	OP_ELSE_REL:   {"ELSE_REL", ARG_OFFSET, CLASS_CONTROL},
	OP_CALL_REL:   {"CALL_REL", ARG_OFFSET, CLASS_CALL},

	OP_PUSH_STACK_START: {"PUSH_STACK_START", ARG_NONE, CLASS_STACK},
	OP_ROLL3:            {"ROLL3", ARG_NONE, CLASS_STACK},
	OP_NEG:              {"NEG", ARG_NONE, CLASS_ARITHMETIC},
	OP_STORE_GLOBAL2:    {"STORE_GLOBAL2", ARG_NONE, CLASS_MEMORY},
	OP_STORE_GLOBAL216:  {"STORE_GLOBAL216", ARG_NONE, CLASS_MEMORY},

	OP_HALT: {"HALT", ARG_NONE, CLASS_MACHINE},

	OP_AND16:  {"AND16", ARG_NONE, CLASS_BITWISE},
	OP_OR16:   {"OR16", ARG_NONE, CLASS_BITWISE},
	OP_XOR16:  {"XOR16", ARG_NONE, CLASS_BITWISE},
	OP_FLIP16: {"FLIP16", ARG_NONE, CLASS_BITWISE},
	OP_LSH16:  {"LSH16", ARG_NONE, CLASS_BITWISE},
	OP_RSH16:  {"RSH16", ARG_NONE, CLASS_BITWISE},
	OP_JT16:   {"JT16", ARG_ADDR, CLASS_CONTROL},
	OP_JF16:   {"JF16", ARG_ADDR, CLASS_CONTROL},
}

// opcodeMap maps upper case mnemonics to opcodes.
var opcodeMap = func() map[string]Opcode {
	mapping := make(map[string]Opcode, len(opcodeTable))
	for n, info := range opcodeTable {
		mapping[info.name] = Opcode(n)
	}
	return mapping
}()

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if op.Valid() {
		return opcodeTable[op].name
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Operand returns the operand layout of the opcode.
func (op Opcode) Operand() CodeOperand {
	if op.Valid() {
		return opcodeTable[op].operand
	}
	return ARG_NONE
}

// OperandBytes returns the number of bytes following the opcode.
func (op Opcode) OperandBytes() int {
	return op.Operand().Bytes()
}

// Class returns the semantic class of the opcode.
func (op Opcode) Class() CodeClass {
	if op.Valid() {
		return opcodeTable[op].class
	}
	return CLASS_MACHINE
}

// LookupOpcode finds an opcode by its mnemonic, ignoring case.
func LookupOpcode(name string) (op Opcode, ok bool) {
	op, ok = opcodeMap[strings.ToUpper(name)]
	return
}

// InterruptCode identifies a runtime fault that can be routed to a
// guest interrupt handler.
type InterruptCode uint8

const (
	INT_NO_ERROR         = InterruptCode(0) // NoError
	INT_DIVISION_BY_ZERO = InterruptCode(1) // DivisionByZeroError
	INT_PARSE_ERROR      = InterruptCode(2) // ParseError
	interruptCount       = 3
)

var interruptNames = [interruptCount]string{
	"NoError",
	"DivisionByZeroError",
	"ParseError",
}

func (code InterruptCode) String() string {
	if int(code) < len(interruptNames) {
		return interruptNames[code]
	}
	return fmt.Sprintf("InterruptCode(%d)", int(code))
}

// LookupInterrupt finds an interrupt code by name, ignoring case.
func LookupInterrupt(name string) (code InterruptCode, ok bool) {
	for n, known := range interruptNames {
		if strings.EqualFold(known, name) {
			return InterruptCode(n), true
		}
	}
	return
}

// Syscall is a host standard library call number.
type Syscall uint8

const (
	STD_PRINT_INT           = Syscall(0)  // PrintInt
	STD_PRINT_INT16         = Syscall(1)  // PrintInt16
	STD_PRINT_CHAR          = Syscall(2)  // PrintChar
	STD_PRINT_CHAR_POP      = Syscall(3)  // PrintCharPop
	STD_PRINT_STRING        = Syscall(4)  // PrintString
	STD_PRINT_NEW_LINE      = Syscall(5)  // PrintNewLine
	STD_READ_STRING         = Syscall(6)  // ReadString
	STD_READ_KEY            = Syscall(7)  // ReadKey
	STD_SET_CURSOR_POSITION = Syscall(8)  // SetConsoleCursorPosition
	STD_SHOW_CURSOR         = Syscall(9)  // ShowConsoleCursor
	STD_SET_COLORS          = Syscall(10) // SetConsoleColors
	STD_CONSOLE_CLEAR       = Syscall(11) // ConsoleClear
	STD_STRING_TO_INT       = Syscall(12) // StringToInt
	STD_INT_TO_STRING       = Syscall(13) // IntToString
	STD_MEM_CPY             = Syscall(14) // MemCpy
	STD_MEM_SET             = Syscall(15) // MemSet
	STD_MEM_SWAP            = Syscall(16) // MemSwap
	STD_MEM_CMP             = Syscall(17) // MemCmp
	STD_STRLEN              = Syscall(18) // Strlen
	STD_SLEEP               = Syscall(19) // Sleep
	STD_GET_RANDOM_NUMBER   = Syscall(20) // GetRandomNumber
	syscallCount            = 21
)

var syscallNames = [syscallCount]string{
	"PrintInt",
	"PrintInt16",
	"PrintChar",
	"PrintCharPop",
	"PrintString",
	"PrintNewLine",
	"ReadString",
	"ReadKey",
	"SetConsoleCursorPosition",
	"ShowConsoleCursor",
	"SetConsoleColors",
	"ConsoleClear",
	"StringToInt",
	"IntToString",
	"MemCpy",
	"MemSet",
	"MemSwap",
	"MemCmp",
	"Strlen",
	"Sleep",
	"GetRandomNumber",
}

func (call Syscall) String() string {
	if int(call) < len(syscallNames) {
		return syscallNames[call]
	}
	return fmt.Sprintf("Syscall(%d)", int(call))
}

// LookupSyscall finds a syscall by name, ignoring case.
func LookupSyscall(name string) (call Syscall, ok bool) {
	for n, known := range syscallNames {
		if strings.EqualFold(known, name) {
			return Syscall(n), true
		}
	}
	return
}
