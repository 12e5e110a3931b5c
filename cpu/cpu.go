package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/avmlang/avm/io"
)

// Console is the terminal the standard library talks to.
type Console io.Console

// Storage is the persistent byte store behind LOAD_NVRAM and STORE_NVRAM.
type Storage interface {
	LoadByte(address uint16) (value byte, err error)
	StoreByte(address uint16, value byte) (err error)
	Close() error
}

// Register indexes, as used by PUSH_REG and POP_REG.
const (
	REG_IP = 0 // Instruction pointer
	REG_SP = 1 // Stack pointer
	REG_FP = 2 // Frame pointer
)

const (
	MEMORY_MAX     = 65536 // Largest addressable memory.
	MEMORY_DEFAULT = 65535 // Default memory size.
	ADDRESS_SIZE   = 2     // Size of an address in bytes.
	FRAME_SIZE     = 4     // Return address and saved frame pointer.
)

var _cpu_defines = map[string]string{
	"REG_IP": fmt.Sprintf("%d", REG_IP),
	"REG_SP": fmt.Sprintf("%d", REG_SP),
	"REG_FP": fmt.Sprintf("%d", REG_FP),
}

// Cpu is the execution engine for an AVM program image.
//
// The program is loaded at address 0, and the stack starts immediately
// after it, growing upwards. All addresses are 16 bits and wrap.
type Cpu struct {
	Verbose    bool             // Set to enable verbose logging.
	RandomFill bool             // Fill memory after the program with random bytes.
	Console    Console          // Console for the standard library.
	Nvram      Storage          // Persistent store.
	Rand       *rand.Rand       // Random source for memory fill and GetRandomNumber.
	Sleep      func(time.Duration)
	Breakpoint func(cpu *Cpu) // Called by DEBUGGER, if set.

	Memory   []byte                   // Main memory.
	Register [3]uint16                // IP, SP and FP.
	Handler  map[InterruptCode]uint16 // Installed interrupt handlers.

	stackStart uint16
	maxSp      int
	xic        uint64
	next       uint16
	loaded     bool
}

// NewCpu creates a CPU attached to the process standard input and output.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Console: &io.Tape{Input: os.Stdin, Output: os.Stdout},
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Load resets the machine and places a program image at address 0.
// A memorySize of 0 selects MEMORY_DEFAULT. If nvramPath is not empty,
// the persistent store is the file at that path, otherwise there is none.
func (cpu *Cpu) Load(program []byte, memorySize int, nvramPath string) (err error) {
	if memorySize == 0 {
		memorySize = MEMORY_DEFAULT
	}
	if memorySize < 0 || memorySize > MEMORY_MAX {
		err = ErrMemorySize
		return
	}
	if len(program)+FRAME_SIZE-1 > memorySize {
		err = ErrProgramSize
		return
	}

	err = cpu.Close()
	if err != nil {
		return
	}

	if cpu.Rand == nil {
		cpu.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if cpu.Sleep == nil {
		cpu.Sleep = time.Sleep
	}
	if cpu.Console == nil {
		cpu.Console = &io.Tape{}
	}
	cpu.Nvram = nil
	if len(nvramPath) != 0 {
		cpu.Nvram = &io.Nvram{Path: nvramPath}
	}

	cpu.Memory = make([]byte, memorySize)
	copy(cpu.Memory, program)
	if cpu.RandomFill {
		for n := len(program); n < memorySize; n++ {
			cpu.Memory[n] = byte(cpu.Rand.Uint32())
		}
	}

	cpu.stackStart = uint16(len(program))
	cpu.Register = [3]uint16{0, cpu.stackStart, cpu.stackStart}
	cpu.maxSp = len(program)
	cpu.xic = 0
	cpu.Handler = make(map[InterruptCode]uint16)
	cpu.loaded = true

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes, memory %d", len(program), memorySize)
	}

	return
}

// Close releases the persistent store.
func (cpu *Cpu) Close() (err error) {
	if cpu.Nvram != nil {
		err = cpu.Nvram.Close()
	}

	return
}

// Ip returns the current instruction pointer.
func (cpu *Cpu) Ip() uint16 {
	return cpu.Register[REG_IP]
}

// StackStart returns the address of the bottom of the stack.
func (cpu *Cpu) StackStart() uint16 {
	return cpu.stackStart
}

// MaxStackPointer returns the highest stack pointer reached.
func (cpu *Cpu) MaxStackPointer() int {
	return cpu.maxSp
}

// ExecutedCount returns the executed instruction counter. Stack
// transfers and interrupt dispatch are counted as well.
func (cpu *Cpu) ExecutedCount() uint64 {
	return cpu.xic
}

// StackFrameRange returns the bounds of the active frame, FP to SP.
func (cpu *Cpu) StackFrameRange() (start, end uint16) {
	return cpu.Register[REG_FP], cpu.Register[REG_SP]
}

// StackFrameContents returns a copy of the bytes of the active frame.
func (cpu *Cpu) StackFrameContents() (data []byte) {
	start, end := cpu.StackFrameRange()
	if start > end || int(end) > len(cpu.Memory) {
		return
	}

	data = slices.Clone(cpu.Memory[start:end])
	return
}

// Backtrace returns the return addresses of the active call frames,
// innermost first.
func (cpu *Cpu) Backtrace() (trace []uint16) {
	fp := int(cpu.Register[REG_FP])
	for fp > int(cpu.stackStart) && fp >= FRAME_SIZE && fp <= len(cpu.Memory) {
		ret := uint16(cpu.Memory[fp-4]) | uint16(cpu.Memory[fp-3])<<8
		prev := int(cpu.Memory[fp-2]) | int(cpu.Memory[fp-1])<<8
		trace = append(trace, ret)
		if prev >= fp {
			break
		}
		fp = prev
	}

	return
}

// ReadMemory reads a single byte of memory.
func (cpu *Cpu) ReadMemory(address uint16) (value byte, err error) {
	if int(address) >= len(cpu.Memory) {
		err = ErrMemoryBounds
		return
	}

	value = cpu.Memory[address]
	return
}

// ReadMemoryRange reads count bytes of memory, starting at address.
func (cpu *Cpu) ReadMemoryRange(address uint16, count int) (data []byte, err error) {
	if count < 0 || int(address)+count > len(cpu.Memory) {
		err = ErrMemoryBounds
		return
	}

	data = slices.Clone(cpu.Memory[int(address) : int(address)+count])
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"ip", "sp", "fp", "stack", "xic"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%04x", cpu.Register[REG_IP])
		case "sp":
			strval = fmt.Sprintf("%04x", cpu.Register[REG_SP])
		case "fp":
			strval = fmt.Sprintf("%04x", cpu.Register[REG_FP])
		case "stack":
			strval = fmt.Sprintf("%04x-%04x", cpu.stackStart, cpu.maxSp)
		case "xic":
			strval = fmt.Sprintf("%d", cpu.xic)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// fatal stops the machine, closing the persistent store.
func (cpu *Cpu) fatal(ip uint16, op Opcode, err error) error {
	cerr := cpu.Close()
	if cerr != nil {
		err = errors.Join(err, cerr)
	}

	if cpu.Verbose {
		log.Printf("cpu: fatal at %04x: %v", ip, err)
	}

	return &ErrFatal{
		Ip:        ip,
		Op:        op,
		Backtrace: cpu.Backtrace(),
		Err:       err,
	}
}

// Step executes a single instruction. It returns the executed opcode;
// OP_HALT indicates the machine has stopped. Faults with an installed
// interrupt handler are dispatched to it, all other failures are
// returned as *ErrFatal.
func (cpu *Cpu) Step() (op Opcode, err error) {
	if !cpu.loaded {
		err = ErrNotLoaded
		return
	}

	ip := cpu.Register[REG_IP]

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = cpu.fatal(ip, op, fmt.Errorf("%w: %v", ErrMemoryBounds, r))
		op = OP_HALT
	}()

	op = Opcode(cpu.Memory[ip])
	cpu.xic++

	if cpu.Verbose {
		text, _ := Decode(cpu.Memory, int(ip))
		log.Printf("%04x: %v", ip, text)
	}

	if !op.Valid() {
		err = cpu.fatal(ip, op, ErrOpcode(op))
		op = OP_HALT
		return
	}

	cpu.next = ip + 1 + uint16(op.OperandBytes())

	err = execute[op](cpu)

	var fault ErrInterrupt
	if errors.As(err, &fault) {
		handler, ok := cpu.Handler[InterruptCode(fault)]
		if !ok {
			err = cpu.fatal(ip, op, errors.Join(ErrInterruptUnhandled, err))
			op = OP_HALT
			return
		}
		if cpu.Verbose {
			log.Printf("cpu: %v -> %04x", InterruptCode(fault), handler)
		}
		cpu.xic++
		cpu.call(handler)
		err = nil
	} else if err != nil {
		err = cpu.fatal(ip, op, err)
		op = OP_HALT
		return
	}

	cpu.Register[REG_IP] = cpu.next

	if op == OP_HALT {
		err = cpu.Close()
	}

	return
}

// Run executes until HALT or a fatal error.
func (cpu *Cpu) Run() (err error) {
	for {
		var op Opcode
		op, err = cpu.Step()
		if err != nil || op == OP_HALT {
			return
		}
	}
}
