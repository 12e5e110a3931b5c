package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avmlang/avm/cpu"
	"github.com/avmlang/avm/io"
)

func newTestEmulator(cfg Config) (emu *Emulator, out *bytes.Buffer) {
	cfg.Nvram = ""
	cfg.Seed = 1
	emu = NewEmulator(cfg)
	out = &bytes.Buffer{}
	emu.Cpu.Console = &io.Tape{Output: out}
	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(DefaultConfig())

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Nil(emu.Program)
	assert.Equal(0, emu.LineNo())
	assert.ErrorIs(emu.Reset(), ErrNoProgram)
}

func TestEmulatorTick(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"PUSH 2",
		"PUSH 3",
		"ADD",
		"SYSCALL STD.PrintInt",
	}

	emu, out := newTestEmulator(DefaultConfig())
	assert.NoError(emu.Compile(strings.NewReader(strings.Join(program, "\n"))))
	assert.NoError(emu.Reset())

	for n, here := range program {
		assert.Equal(n+1, emu.LineNo(), here)
		done, err := emu.Tick()
		assert.NoError(err, here)
		assert.False(done, here)
	}

	// The terminating HALT has no source line.
	assert.Equal(0, emu.LineNo())
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	assert.Equal("5", out.String())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(DefaultConfig())
	assert.NoError(emu.Compile(strings.NewReader("PUSH 1\nPUSH 0\n\nDIV\nPUSH 7")))
	assert.NoError(emu.Reset())

	err := emu.Run()
	assert.ErrorIs(err, cpu.ErrInterruptUnhandled)
	assert.ErrorIs(err, cpu.ErrInterrupt(cpu.INT_DIVISION_BY_ZERO))

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(4, runtime.LineNo)
		assert.True(strings.HasPrefix(runtime.Error(), "line 4 "))
	}

	var fatal *cpu.ErrFatal
	if assert.True(errors.As(err, &fatal)) {
		assert.Equal(uint16(4), fatal.Ip)
		assert.Equal(cpu.OP_DIV, fatal.Op)
	}
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.MemorySize = 1024
	cfg.Defines = map[string]string{"ANSWER": "42"}

	emu, _ := newTestEmulator(cfg)

	defines := map[string]string{}
	for name, value := range emu.Defines() {
		defines[name] = value
	}
	assert.Equal("1023", defines["MEMORY_TOP"])
	assert.Equal("65535", defines["NVRAM_TOP"])
	assert.Equal("1", defines["REG_SP"])
	assert.Equal("42", defines["ANSWER"])

	assert.NoError(emu.Compile(strings.NewReader("PUSH16 CONST16.MEMORY_TOP\nPUSH CONST.ANSWER")))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())
	assert.Equal([]byte{0xff, 0x03, 42}, emu.StackFrameContents())
	assert.Equal(1024, len(emu.Memory))
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	code, err := cpu.Compile("PUSH 9\nSYSCALL STD.PrintInt")
	assert.NoError(err)

	emu, out := newTestEmulator(DefaultConfig())
	assert.NoError(emu.Load(bytes.NewReader(code)))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())
	assert.Equal("9", out.String())

	// No source lines for a raw image.
	assert.Equal(0, emu.LineNo())

	assert.ErrorIs(emu.Load(bytes.NewReader(nil)), ErrProgramFormat)
}

func TestEmulatorSeed(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.MemorySize = 256

	var images [][]byte
	for range 2 {
		emu, _ := newTestEmulator(cfg)
		assert.NoError(emu.Compile(strings.NewReader("NOP")))
		assert.NoError(emu.Reset())
		images = append(images, emu.Memory)
	}

	assert.Equal(images[0], images[1])
}

func TestEmulatorProfile(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(DefaultConfig())
	assert.NoError(emu.Compile(strings.NewReader("PUSH 1\nPUSH 2\nADD\nPOP\nDEBUGGER")))
	assert.NoError(emu.Reset())

	profile, err := emu.Profile()
	assert.NoError(err)

	expected := []ProfileEntry{
		{Op: cpu.OP_PUSH, Count: 2, Cost: 4},
		{Op: cpu.OP_ADD, Count: 1, Cost: 4},
		{Op: cpu.OP_POP, Count: 1, Cost: 2},
		{Op: cpu.OP_DEBUGGER, Count: 1, Cost: 1},
		{Op: cpu.OP_HALT, Count: 1, Cost: 1},
	}
	assert.Equal(expected, profile)
}
