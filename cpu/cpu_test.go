package cpu

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/avmlang/avm/io"
	"github.com/stretchr/testify/assert"
)

// newTestCpu creates a CPU with a captured console and a fixed seed.
func newTestCpu(input string) (cpu *Cpu, out *bytes.Buffer) {
	out = &bytes.Buffer{}
	cpu = &Cpu{
		Console: &io.Tape{Input: bytes.NewBufferString(input), Output: out},
		Rand:    rand.New(rand.NewPCG(1, 2)),
		Sleep:   func(time.Duration) {},
	}
	return
}

// runSource assembles and runs source, returning the machine.
func runSource(t *testing.T, source string) (cpu *Cpu, err error) {
	code, err := Compile(source)
	if err != nil {
		t.Fatal(err)
	}

	cpu, _ = newTestCpu("")
	err = cpu.Load(code, 0, "")
	if err != nil {
		t.Fatal(err)
	}

	err = cpu.Run()
	return
}

func TestCpuAdd(t *testing.T) {
	assert := assert.New(t)

	cpu, err := runSource(t, "PUSH 2\nPUSH 3\nADD\nHALT")
	assert.NoError(err)
	assert.Equal([]byte{5}, cpu.StackFrameContents())
	assert.Equal(uint16(5), cpu.Ip())
	assert.Equal(uint16(7), cpu.StackStart())
	assert.Equal(7+2, cpu.MaxStackPointer())

	// Two pushes, two pops and a push, plus four fetches.
	assert.Equal(uint64(9), cpu.ExecutedCount())
}

func TestCpuJumpSkips(t *testing.T) {
	assert := assert.New(t)

	cpu, err := runSource(t, "JMP @skip\nPUSH 99\n:skip\nHALT")
	assert.NoError(err)
	assert.Empty(cpu.StackFrameContents())
}

func TestCpuDivideByZero(t *testing.T) {
	assert := assert.New(t)

	cpu, err := runSource(t, "PUSH 5\nPUSH 0\nDIV\nHALT")
	assert.ErrorIs(err, ErrInterruptUnhandled)

	var fault ErrInterrupt
	assert.True(errors.As(err, &fault))
	assert.Equal(INT_DIVISION_BY_ZERO, InterruptCode(fault))

	var fatal *ErrFatal
	if assert.True(errors.As(err, &fatal)) {
		assert.Equal(uint16(4), fatal.Ip)
		assert.Equal(OP_DIV, fatal.Op)
		assert.Empty(fatal.Backtrace)
	}

	assert.Empty(cpu.StackFrameContents())
}

func TestCpuCallArguments(t *testing.T) {
	assert := assert.New(t)

	source := `
PUSH 3
PUSH 4
CALL @add
POP
HALT
:add
LOAD_ARG 1
LOAD_ARG 2
ADD
STORE_ARG 2
RET
`
	cpu, err := runSource(t, source)
	assert.NoError(err)
	assert.Equal([]byte{7}, cpu.StackFrameContents())

	start, end := cpu.StackFrameRange()
	assert.Equal(cpu.StackStart(), start)
	assert.Equal(cpu.StackStart()+1, end)
}

func TestCpuCallRoundTrip(t *testing.T) {
	assert := assert.New(t)

	source := `
PUSH 1
CALL @f
HALT
:f
PUSHN 3
PUSH 9
RET
`
	code, err := Compile(source)
	assert.NoError(err)

	cpu, _ := newTestCpu("")
	assert.NoError(cpu.Load(code, 0, ""))

	// PUSH 1
	op, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(OP_PUSH, op)
	sp, fp := cpu.Register[REG_SP], cpu.Register[REG_FP]

	// CALL, PUSHN, PUSH, RET
	for range 4 {
		_, err = cpu.Step()
		assert.NoError(err)
	}

	assert.Equal(sp, cpu.Register[REG_SP])
	assert.Equal(fp, cpu.Register[REG_FP])
	assert.Equal(uint16(5), cpu.Ip())

	op, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(OP_HALT, op)
}

func TestCpuBacktrace(t *testing.T) {
	assert := assert.New(t)

	source := `
CALL @a
HALT
:a
CALL @b
RET
:b
DEBUGGER
RET
`
	code, err := Compile(source)
	assert.NoError(err)

	cpu, _ := newTestCpu("")
	var trace []uint16
	var frame []byte
	cpu.Breakpoint = func(cpu *Cpu) {
		trace = cpu.Backtrace()
		frame = cpu.StackFrameContents()
	}
	assert.NoError(cpu.Load(code, 0, ""))
	assert.NoError(cpu.Run())

	assert.Equal([]uint16{4, 0}, trace)
	assert.Empty(frame)
	assert.Equal(cpu.StackStart(), cpu.Register[REG_SP])
	assert.Equal(cpu.StackStart(), cpu.Register[REG_FP])
}

func TestCpuInterruptHandler(t *testing.T) {
	assert := assert.New(t)

	source := `
INTERRUPT_HANDLER INT.DivisionByZeroError @handler
PUSH 5
PUSH 0
DIV
PUSH 42
HALT
:handler
PUSH 33
SYSCALL STD.PrintCharPop
RET
`
	code, err := Compile(source)
	assert.NoError(err)

	cpu, out := newTestCpu("")
	assert.NoError(cpu.Load(code, 0, ""))
	assert.NoError(cpu.Run())
	assert.Equal("!", out.String())
	assert.Equal([]byte{42}, cpu.StackFrameContents())
}

func TestCpuInterruptSyscall(t *testing.T) {
	assert := assert.New(t)

	// The handler returns to the instruction after the faulting SYSCALL.
	source := `
INTERRUPT_HANDLER INT.ParseError @handler
PUSH16 @text
SYSCALL STD.StringToInt
PUSH 1
HALT
:handler
RET
:text "x1"
`
	cpu, err := runSource(t, source)
	assert.NoError(err)
	assert.Equal([]byte{1}, cpu.StackFrameContents())
}

func TestCpuInterruptUninstall(t *testing.T) {
	assert := assert.New(t)

	source := `
INTERRUPT_HANDLER INT.DivisionByZeroError @handler
INTERRUPT_HANDLER INT.DivisionByZeroError #0
PUSH 1
PUSH 0
MOD
HALT
:handler
RET
`
	_, err := runSource(t, source)
	var fault ErrInterrupt
	assert.True(errors.As(err, &fault))
	assert.Equal(INT_DIVISION_BY_ZERO, InterruptCode(fault))
}

func TestCpuWrap(t *testing.T) {
	assert := assert.New(t)

	cpu, err := runSource(t, "PUSH 250\nPUSH 10\nADD")
	assert.NoError(err)
	assert.Equal([]byte{4}, cpu.StackFrameContents())

	cpu, err = runSource(t, "PUSH16 #65530\nPUSH16 #10\nADD16")
	assert.NoError(err)
	assert.Equal([]byte{4, 0}, cpu.StackFrameContents())
}

func TestCpuBackwardLabel(t *testing.T) {
	assert := assert.New(t)

	source := `
PUSH 3
:loop
DEC
DUP
JT @loop
`
	code, err := Compile(source)
	assert.NoError(err)
	assert.Equal([]byte{
		byte(OP_PUSH), 3,
		byte(OP_DEC),
		byte(OP_DUP),
		byte(OP_JT), 2, 0,
		byte(OP_HALT),
	}, code)

	cpu, err := runSource(t, source)
	assert.NoError(err)
	assert.Equal([]byte{0}, cpu.StackFrameContents())
}

func TestCpuOpcodes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		source   string
		expected []byte
	}){
		{"sub", "PUSH 10 PUSH 3 SUB", []byte{249}},
		{"sub2", "PUSH 10 PUSH 3 SUB2", []byte{7}},
		{"subc", "PUSH 10 SUBC 3", []byte{7}},
		{"addc", "PUSH 10 ADDC 3", []byte{13}},
		{"mul", "PUSH 16 PUSH 17 MUL", []byte{16}},
		{"mulc", "PUSH 3 MULC 5", []byte{15}},
		{"div", "PUSH 10 PUSH 3 DIV", []byte{3}},
		{"div2", "PUSH 3 PUSH 10 DIV2", []byte{3}},
		{"mod", "PUSH 10 PUSH 3 MOD", []byte{1}},
		{"inc", "PUSH 255 INC", []byte{0}},
		{"dec", "PUSH 0 DEC", []byte{255}},
		{"neg", "PUSH 5 NEG", []byte{251}},
		{"and", "PUSH 12 PUSH 10 AND", []byte{8}},
		{"or", "PUSH 12 PUSH 10 OR", []byte{14}},
		{"xor", "PUSH 12 PUSH 10 XOR", []byte{6}},
		{"flip", "PUSH 15 FLIP", []byte{240}},
		{"land", "PUSH 2 PUSH 0 LAND", []byte{0}},
		{"lor", "PUSH 2 PUSH 0 LOR", []byte{1}},
		{"not", "PUSH 0 NOT", []byte{1}},
		{"lsh", "PUSH 1 PUSH 4 LSH", []byte{16}},
		{"rsh", "PUSH 128 PUSH 3 RSH", []byte{16}},
		{"eq", "PUSH 4 PUSH 4 EQ", []byte{1}},
		{"ne", "PUSH 4 PUSH 4 NE", []byte{0}},
		{"less", "PUSH 2 PUSH 1 LESS", []byte{1}},
		{"less-or-eq", "PUSH 1 PUSH 1 LESS_OR_EQ", []byte{1}},
		{"greater", "PUSH 2 PUSH 1 GREATER", []byte{0}},
		{"greater-or-eq", "PUSH 1 PUSH 2 GREATER_OR_EQ", []byte{1}},
		{"zero", "PUSH 5 ZERO", []byte{0}},
		{"nzero", "PUSH 5 NZERO", []byte{1}},
		{"swap", "PUSH 1 PUSH 2 SWAP", []byte{2, 1}},
		{"dup", "PUSH 7 DUP", []byte{7, 7}},
		{"pop", "PUSH 1 PUSH 2 POP", []byte{1}},
		{"popn", "PUSH 1 PUSH 2 PUSH 3 POPN 2", []byte{1}},
		{"popn2", "PUSH 1 PUSH 2 PUSH 2 POPN2", []byte{}},
		{"pushn", "PUSHN 2", []byte{0, 0}},
		{"pushn2", "PUSH 3 PUSHN2", []byte{3, 0, 0}},
		{"roll3", "PUSH 1 PUSH 2 PUSH 3 ROLL3", []byte{3, 1, 2}},
		{"push16", "PUSH16 #513", []byte{1, 2}},
		{"dup16", "PUSH16 #513 DUP16", []byte{1, 2, 1, 2}},
		{"swap16", "PUSH16 #1 PUSH16 #2 SWAP16", []byte{2, 0, 1, 0}},
		{"add16c", "PUSH16 #1000 ADD16C #24", []byte{0x00, 0x04}},
		{"sub16c", "PUSH16 #0 SUB16C #1", []byte{0xff, 0xff}},
		{"sub16", "PUSH16 #10 PUSH16 #3 SUB16", []byte{0xf9, 0xff}},
		{"sub216", "PUSH16 #10 PUSH16 #3 SUB216", []byte{7, 0}},
		{"mul16", "PUSH16 #300 PUSH16 #3 MUL16", []byte{0x84, 0x03}},
		{"mul16c", "PUSH16 #300 MUL16C #3", []byte{0x84, 0x03}},
		{"div16", "PUSH16 #1000 PUSH16 #10 DIV16", []byte{100, 0}},
		{"div216", "PUSH16 #10 PUSH16 #1000 DIV216", []byte{100, 0}},
		{"mod16", "PUSH16 #1000 PUSH16 #7 MOD16", []byte{6, 0}},
		{"inc16", "PUSH16 #255 INC16", []byte{0, 1}},
		{"dec16", "PUSH16 #256 DEC16", []byte{255, 0}},
		{"extend", "PUSH 200 EXTEND", []byte{200, 0}},
		{"downcast", "PUSH16 #300 DOWNCAST", []byte{255}},
		{"downcast-small", "PUSH16 #30 DOWNCAST", []byte{30}},
		{"less16", "PUSH16 #1 PUSH16 #2 LESS16", []byte{0}},
		{"less-or-eq16", "PUSH16 #2 PUSH16 #1 LESS_OR_EQ16", []byte{1}},
		{"greater16", "PUSH16 #1 PUSH16 #2 GREATER16", []byte{1}},
		{"greater-or-eq16", "PUSH16 #1 PUSH16 #2 GREATER_OR_EQ16", []byte{1}},
		{"eq16", "PUSH16 #300 PUSH16 #300 EQ16", []byte{1}},
		{"ne16", "PUSH16 #300 PUSH16 #44 NE16", []byte{1}},
		{"zero16", "PUSH16 #256 ZERO16", []byte{0}},
		{"nzero16", "PUSH16 #256 NZERO16", []byte{1}},
		{"and16", "PUSH16 #4080 PUSH16 #255 AND16", []byte{0xf0, 0x00}},
		{"or16", "PUSH16 #3840 PUSH16 #15 OR16", []byte{0x0f, 0x0f}},
		{"xor16", "PUSH16 #65535 PUSH16 #255 XOR16", []byte{0x00, 0xff}},
		{"flip16", "PUSH16 #255 FLIP16", []byte{0x00, 0xff}},
		{"lsh16", "PUSH16 #1 PUSH16 #9 LSH16", []byte{0x00, 0x02}},
		{"rsh16", "PUSH16 #512 PUSH16 #9 RSH16", []byte{1, 0}},
		{"push16-rel", "NOP PUSH16_REL #10", []byte{11, 0}},
		{"jmp-rel", "JMP_REL #5 PUSH 9 NOP", []byte{}},
		{"jf-rel", "PUSH 0 JF_REL #6 PUSH 9 NOP", []byte{}},
		{"jt-rel", "PUSH 0 JT_REL #6 PUSH 9", []byte{9}},
		{"else-rel", "PUSH 1 ELSE_REL #5 PUSH 9", []byte{}},
		{"jt16", "PUSH16 #256 JT16 @yes PUSH 1 HALT :yes PUSH 2", []byte{2}},
		{"jf16", "PUSH16 #256 JF16 @yes PUSH 1 HALT :yes PUSH 2", []byte{1}},
		{"jf", "PUSH 0 JF @yes PUSH 1 HALT :yes PUSH 2", []byte{2}},
		{"jt2", "PUSH 1 PUSH16 @yes JT2 PUSH 1 HALT :yes PUSH 2", []byte{2}},
		{"jf2", "PUSH 1 PUSH16 @yes JF2 PUSH 1 HALT :yes PUSH 2", []byte{1}},
		{"jmp2", "PUSH16 @yes JMP2 PUSH 1 HALT :yes PUSH 2", []byte{2}},
		{"case", "PUSH 2 CASE 1 @one CASE 2 @two :one PUSH 11 HALT :two PUSH 22", []byte{22}},
		{"case-rel-miss", "PUSH 3 CASE_REL 2 #5 NOP", []byte{3}},
		{"case-miss", "PUSH 3 CASE 1 @one ELSE @other :one PUSH 11 HALT :other PUSH 22", []byte{22}},
		{"case-rel", "PUSH 2 CASE_REL 2 #5 NOP PUSH 22", []byte{22}},
		{"call2", "PUSH16 @f CALL2 PUSH 5 HALT :f RET", []byte{5}},
		{"call-rel", "CALL_REL #4 HALT :f PUSH 1 RET", []byte{}},
		{"pop-reg-ip", "PUSH16 @end POP_REG 0 PUSH 9 :end", []byte{}},
		{"push-reg-fp", "PUSH_REG 2 PUSH_STACK_START EQ16", []byte{1}},
		{"pop-reg-sp", "PUSH 1 PUSH 2 PUSH_STACK_START POP_REG 1 PUSH 3", []byte{3}},
		{"push-next-sp", "PUSH_NEXT_SP PUSH_REG 1 EQ16", []byte{1}},
		{"global", "PUSH 42 PUSH16 @cell STORE_GLOBAL PUSH16 @cell LOAD_GLOBAL HALT :cell 0", []byte{42}},
		{"global2", "PUSH16 @cell PUSH 42 STORE_GLOBAL2 PUSH16 @cell LOAD_GLOBAL HALT :cell 0", []byte{42}},
		{"global16", "PUSH16 #513 PUSH16 @cell STORE_GLOBAL16 PUSH16 @cell LOAD_GLOBAL16 HALT :cell #0", []byte{1, 2}},
		{"global216", "PUSH16 @cell PUSH16 #513 STORE_GLOBAL216 PUSH16 @cell LOAD_GLOBAL16 HALT :cell #0", []byte{1, 2}},
		{"local", "PUSH 5 PUSH 6 LOAD_LOCAL 0", []byte{5, 6, 5}},
		{"store-local", "PUSH 5 PUSH 6 PUSH 9 STORE_LOCAL 0", []byte{9, 6}},
		{"local16", "PUSH16 #513 LOAD_LOCAL16 0", []byte{1, 2, 1, 2}},
		{"store-local16", "PUSH16 #0 PUSH16 #513 STORE_LOCAL16 0", []byte{1, 2}},
		{"arg16", "PUSH16 #0 PUSH16 #513 CALL @f HALT :f LOAD_ARG16 2 STORE_ARG16 4 RET", []byte{1, 2, 1, 2}},
		{"store-arg16", "PUSH16 #0 CALL @f HALT :f PUSH16 #772 STORE_ARG16 2 RET", []byte{4, 3}},
		{"load", "PUSH16 #0 CALL @f HALT :f LOAD 4 STORE_ARG 2 RET", []byte{3, 0}},
		{"store", "PUSH 0 CALL @f HALT :f PUSH 5 STORE 5 RET", []byte{5}},
		{"nop", "NOP NOP", []byte{}},
	}

	for _, entry := range table {
		cpu, err := runSource(t, entry.source)
		assert.NoError(err, entry.name)
		assert.Equal(entry.expected, cpu.StackFrameContents(), entry.name)
	}
}

func TestCpuNvram(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "test.nvram")

	store, err := Compile("PUSH 7\nPUSH16 #100\nSTORE_NVRAM\nHALT")
	assert.NoError(err)

	cpu, _ := newTestCpu("")
	assert.NoError(cpu.Load(store, 0, path))
	assert.NoError(cpu.Run())

	// HALT released the store.
	nv, ok := cpu.Nvram.(*io.Nvram)
	assert.True(ok)
	assert.False(nv.IsOpen())

	load, err := Compile("PUSH16 #100\nLOAD_NVRAM\nHALT")
	assert.NoError(err)

	again, _ := newTestCpu("")
	assert.NoError(again.Load(load, 0, path))
	assert.NoError(again.Run())
	assert.Equal([]byte{7}, again.StackFrameContents())
}

func TestCpuNvramFault(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source string
		memory int
		err    error
	}){
		{"divide", "PUSH 1\nPUSH 0\nDIV", 0, ErrInterruptUnhandled},
		{"bounds", "PUSH16 #60000\nLOAD_GLOBAL", 64, ErrMemoryBounds},
	}

	for _, entry := range table {
		path := filepath.Join(t.TempDir(), "fault.nvram")

		code, err := Compile("PUSH 7\nPUSH16 #100\nSTORE_NVRAM\n" + entry.source)
		assert.NoError(err, entry.name)

		cpu, _ := newTestCpu("")
		assert.NoError(cpu.Load(code, entry.memory, path), entry.name)

		nv, ok := cpu.Nvram.(*io.Nvram)
		assert.True(ok, entry.name)

		for range 3 {
			_, err = cpu.Step()
			assert.NoError(err, entry.name)
		}
		assert.True(nv.IsOpen(), entry.name)

		err = cpu.Run()
		assert.ErrorIs(err, entry.err, entry.name)
		assert.False(nv.IsOpen(), entry.name)

		// The store written before the fault survives it.
		load, err := Compile("PUSH16 #100\nLOAD_NVRAM")
		assert.NoError(err, entry.name)

		again, _ := newTestCpu("")
		assert.NoError(again.Load(load, 0, path), entry.name)
		assert.NoError(again.Run(), entry.name)
		assert.Equal([]byte{7}, again.StackFrameContents(), entry.name)
	}
}

func TestCpuNvramReload(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "reload.nvram")

	code, err := Compile("PUSH16 #1\nLOAD_NVRAM")
	assert.NoError(err)

	cpu, _ := newTestCpu("")
	assert.NoError(cpu.Load(code, 0, path))
	assert.NoError(cpu.Run())

	// A load without a store path drops the earlier store.
	assert.NoError(cpu.Load(code, 0, ""))
	assert.Nil(cpu.Nvram)
	assert.ErrorIs(cpu.Run(), ErrNvram)
}

func TestCpuNvramMissing(t *testing.T) {
	assert := assert.New(t)

	_, err := runSource(t, "PUSH16 #1\nLOAD_NVRAM")
	assert.ErrorIs(err, ErrNvram)
}

func TestCpuFatal(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu("")
	assert.NoError(cpu.Load([]byte{byte(OP_NOP), 250}, 0, ""))
	err := cpu.Run()
	assert.ErrorIs(err, ErrOpcode(0))

	var fatal *ErrFatal
	if assert.True(errors.As(err, &fatal)) {
		assert.Equal(uint16(1), fatal.Ip)
		assert.Equal(Opcode(250), fatal.Op)
	}

	_, err = runSource(t, "SYSCALL 99")
	assert.ErrorIs(err, ErrSyscall(99))

	_, err = runSource(t, "PUSH_REG 3")
	assert.ErrorIs(err, ErrRegisterInvalid)
}

func TestCpuMemoryBounds(t *testing.T) {
	assert := assert.New(t)

	code, err := Compile("PUSH16 #60000\nLOAD_GLOBAL")
	assert.NoError(err)

	cpu, _ := newTestCpu("")
	assert.NoError(cpu.Load(code, 64, ""))

	op, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(OP_PUSH16, op)

	op, err = cpu.Step()
	assert.ErrorIs(err, ErrMemoryBounds)
	assert.Equal(OP_HALT, op)

	// Running off the end of a small memory is fatal too.
	cpu, _ = newTestCpu("")
	assert.NoError(cpu.Load([]byte{byte(OP_NOP)}, 4, ""))
	err = cpu.Run()
	assert.ErrorIs(err, ErrMemoryBounds)
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu("")

	_, err := cpu.Step()
	assert.ErrorIs(err, ErrNotLoaded)

	assert.ErrorIs(cpu.Load(make([]byte, 10), 12, ""), ErrProgramSize)
	assert.ErrorIs(cpu.Load(nil, MEMORY_MAX+1, ""), ErrMemorySize)
	assert.ErrorIs(cpu.Load(nil, -1, ""), ErrMemorySize)

	assert.NoError(cpu.Load(make([]byte, 10), 13, ""))
	assert.Equal(13, len(cpu.Memory))

	assert.NoError(cpu.Load([]byte{1, 2, 3}, 0, ""))
	assert.Equal(MEMORY_DEFAULT, len(cpu.Memory))
	assert.Equal(uint16(3), cpu.StackStart())
	assert.Equal([3]uint16{0, 3, 3}, cpu.Register)

	data, err := cpu.ReadMemoryRange(0, 4)
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3, 0}, data)

	value, err := cpu.ReadMemory(2)
	assert.NoError(err)
	assert.Equal(byte(3), value)

	_, err = cpu.ReadMemoryRange(MEMORY_DEFAULT-1, 2)
	assert.ErrorIs(err, ErrMemoryBounds)
	_, err = cpu.ReadMemory(MEMORY_DEFAULT)
	assert.ErrorIs(err, ErrMemoryBounds)
}

func TestCpuRandomFill(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu("")
	cpu.RandomFill = true
	assert.NoError(cpu.Load([]byte{1, 2}, 1024, ""))

	data, err := cpu.ReadMemoryRange(0, 2)
	assert.NoError(err)
	assert.Equal([]byte{1, 2}, data)

	data, err = cpu.ReadMemoryRange(2, 1022)
	assert.NoError(err)
	assert.NotEqual(make([]byte, 1022), data)
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu("")
	assert.NoError(cpu.Load([]byte{byte(OP_HALT)}, 0, ""))

	assert.Equal(""+
		"   ip: 0000\n"+
		"   sp: 0001\n"+
		"   fp: 0001\n"+
		"stack: 0001-0001\n"+
		"  xic: 0\n", cpu.String())

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}
	assert.Equal("1", defines["REG_SP"])
}
