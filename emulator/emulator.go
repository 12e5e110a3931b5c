package emulator

import (
	"cmp"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/avmlang/avm/cpu"
	"github.com/avmlang/avm/internal"
)

const (
	NVRAM_SIZE = 65536 // Addressable bytes of persistent store.
)

// Emulator state. CPU + program listing + configuration.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Config   Config       // Machine configuration.
}

// ProfileEntry is the accumulated cost of one opcode.
type ProfileEntry struct {
	Op    cpu.Opcode
	Count uint64 // Times executed.
	Cost  uint64 // Executed counter delta, stack transfers included.
}

// NewEmulator creates a new emulator.
func NewEmulator(cfg Config) (emu *Emulator) {
	emu = &Emulator{
		Verbose: cfg.Verbose,
		Cpu:     cpu.NewCpu(),
		Config:  cfg,
	}

	emu.Cpu.Breakpoint = emu.breakpoint

	return
}

func (emu *Emulator) memorySize() int {
	if emu.Config.MemorySize == 0 {
		return cpu.MEMORY_DEFAULT
	}
	return emu.Config.MemorySize
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"MEMORY_TOP": fmt.Sprintf("%v", emu.memorySize()-1),
		"NVRAM_TOP":  fmt.Sprintf("%v", NVRAM_SIZE-1),
	}

	return internal.IterSeq2Concat(maps.All(defines),
		emu.Cpu.Defines(),
		maps.All(emu.Config.Defines),
	)
}

// Compile assembles source text as the current program.
func (emu *Emulator) Compile(r io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(r)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Load reads a raw program image as the current program. An empty
// image is not a program.
func (emu *Emulator) Load(r io.Reader) (err error) {
	prog, err := cpu.ReadBinary(r)
	if err != nil {
		return
	}
	if len(prog.Code) == 0 {
		err = ErrProgramFormat
		return
	}

	emu.Program = prog
	return
}

// Close the emulator
func (emu *Emulator) Close() (err error) {
	err = emu.Cpu.Close()

	return
}

// Reset loads the current program into a fresh machine.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		err = ErrNoProgram
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.RandomFill = emu.Config.RandomFill
	if emu.Config.Seed != 0 {
		emu.Cpu.Rand = rand.New(rand.NewPCG(emu.Config.Seed, emu.Config.Seed))
	}

	err = emu.Cpu.Load(emu.Program.Code, emu.Config.MemorySize, emu.Config.Nvram)

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Ip())
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

func (emu *Emulator) step() (op cpu.Opcode, err error) {
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	emu.Cpu.Verbose = emu.Verbose
	op, err = emu.Cpu.Step()

	return
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	op, err := emu.step()
	done = op == cpu.OP_HALT || err != nil

	return
}

// Run the program until it halts.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
	}

	return
}

// Profile runs the program until it halts, and returns the cost of each
// executed opcode, most expensive first.
func (emu *Emulator) Profile() (profile []ProfileEntry, err error) {
	entries := map[cpu.Opcode]*ProfileEntry{}

	for {
		before := emu.Cpu.ExecutedCount()
		var op cpu.Opcode
		op, err = emu.step()

		entry, ok := entries[op]
		if !ok {
			entry = &ProfileEntry{Op: op}
			entries[op] = entry
		}
		entry.Count++
		entry.Cost += emu.Cpu.ExecutedCount() - before

		if err != nil || op == cpu.OP_HALT {
			break
		}
	}

	for _, entry := range entries {
		profile = append(profile, *entry)
	}

	slices.SortFunc(profile, func(a, b ProfileEntry) int {
		if c := cmp.Compare(b.Cost, a.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.Op, b.Op)
	})

	return
}

func (emu *Emulator) breakpoint(c *cpu.Cpu) {
	if !emu.Verbose {
		return
	}

	log.Printf("debugger: line %d\n%v", emu.LineNo(), c)
}
