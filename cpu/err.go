package cpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avmlang/avm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrMemoryBounds       = errors.New(f("memory access out of bounds"))
	ErrMemorySize         = errors.New(f("memory size invalid"))
	ErrProgramSize        = errors.New(f("program too large for memory"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInterruptUnhandled = errors.New(f("interrupt unhandled"))
	ErrNvram              = errors.New(f("nvram access"))
	ErrNotLoaded          = errors.New(f("no program loaded"))

	// Assembler errors
	ErrConstSyntax      = errors.New(f("CONST syntax"))
	ErrConstMissing     = errors.New(f("constant missing"))
	ErrLabelDuplicate   = errors.New(f("label duplicated"))
	ErrLabelInvalid     = errors.New(f("label invalid"))
	ErrOpcodeInvalid    = errors.New(f("opcode invalid"))
	ErrInterruptInvalid = errors.New(f("interrupt invalid"))
	ErrSyscallInvalid   = errors.New(f("syscall invalid"))
	ErrProgramTooLarge  = errors.New(f("program exceeds address space"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrConstUnknown string

func (ec ErrConstUnknown) Error() string {
	return f("constant %v unknown", string(ec))
}

func (ec ErrConstUnknown) Unwrap() error {
	return ErrConstMissing
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number in range", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrOpcode is raised when the engine fetches a byte that is not an
// instruction.
type ErrOpcode Opcode

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", uint8(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyscall is raised for an unknown standard library call number.
type ErrSyscall Syscall

func (es ErrSyscall) Error() string {
	return f("bad syscall %d", uint8(es))
}

// ErrInterrupt is a recoverable fault. When a handler is installed for
// the code, execution is redirected to it.
type ErrInterrupt InterruptCode

func (ei ErrInterrupt) Error() string {
	return f("interrupt %v", InterruptCode(ei).String())
}

// ErrFatal terminates execution. It carries the state of the machine
// at the time of the failure.
type ErrFatal struct {
	Ip        uint16   // Address of the failing instruction.
	Op        Opcode   // Failing opcode.
	Backtrace []uint16 // Return addresses of the active call frames.
	Err       error
}

func (err ErrFatal) Error() string {
	var trace []string
	for _, addr := range err.Backtrace {
		trace = append(trace, fmt.Sprintf("%d", addr))
	}
	return f("fatal at %d (%v) %v [%v]", err.Ip, err.Op, err.Err, strings.Join(trace, " "))
}

func (err ErrFatal) Unwrap() error {
	return err.Err
}
