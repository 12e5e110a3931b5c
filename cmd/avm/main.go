package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/avmlang/avm/cpu"
	"github.com/avmlang/avm/emulator"
	"github.com/avmlang/avm/io"
)

func main() {
	var config string
	var output string
	var listing string
	var disasm bool
	var nvram string
	var memory int
	var profile bool
	var verbose bool

	flag.StringVar(&config, "config", "", ".toml machine configuration")
	flag.StringVar(&output, "o", "", "Write compiled binary, do not execute")
	flag.StringVar(&listing, "l", "", "Write source listing, do not execute")
	flag.BoolVar(&disasm, "d", false, "Disassemble to stdout, do not execute")
	flag.StringVar(&nvram, "n", "", "NVRAM file to use")
	flag.IntVar(&memory, "m", 0, "Memory size in bytes")
	flag.BoolVar(&profile, "p", false, "Print opcode profile on exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one program file, got %v", os.Args[0], flag.Args())
	}
	path := flag.Arg(0)

	cfg := emulator.DefaultConfig()
	if len(config) != 0 {
		var err error
		cfg, err = emulator.LoadConfig(config)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	if memory != 0 {
		cfg.MemorySize = memory
	}
	if len(nvram) != 0 {
		cfg.Nvram = nvram
	}
	cfg.Verbose = cfg.Verbose || verbose

	emu := emulator.NewEmulator(cfg)

	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".asm") {
		err = emu.Compile(inf)
	} else {
		err = emu.Load(inf)
	}
	inf.Close()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	if len(output) != 0 || len(listing) != 0 || disasm {
		err = save(emu.Program, output, listing, disasm)
		if err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	term := io.NewTerminal(os.Stdin, os.Stdout)
	emu.Cpu.Console = term

	err = run(emu, profile)
	term.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr)
		log.Printf("%v: %v", path, err)
		for _, line := range backtrace(emu.Program, err) {
			log.Print(line)
		}
		os.Exit(1)
	}
}

func save(prog *cpu.Program, output, listing string, disasm bool) (err error) {
	if len(output) != 0 {
		var ouf *os.File
		ouf, err = os.Create(output)
		if err != nil {
			return
		}
		err = errors.Join(prog.WriteBinary(ouf), ouf.Close())
		if err != nil {
			return
		}
	}

	if len(listing) != 0 {
		var ouf *os.File
		ouf, err = os.Create(listing)
		if err != nil {
			return
		}
		err = errors.Join(prog.WriteListing(ouf), ouf.Close())
		if err != nil {
			return
		}
	}

	if disasm {
		err = cpu.Disassemble(prog.Code, os.Stdout)
	}

	return
}

func run(emu *emulator.Emulator, profile bool) (err error) {
	err = emu.Reset()
	if err != nil {
		return
	}
	defer emu.Close()

	if !profile {
		err = emu.Run()
		return
	}

	entries, err := emu.Profile()
	fmt.Fprintf(os.Stderr, "%-20s %10s %10s\n", "opcode", "count", "cost")
	for _, entry := range entries {
		fmt.Fprintf(os.Stderr, "%-20v %10d %10d\n", entry.Op, entry.Count, entry.Cost)
	}

	return
}

// backtrace describes the call chain of a fatal error, innermost first.
func backtrace(prog *cpu.Program, err error) (lines []string) {
	var fatal *cpu.ErrFatal
	if !errors.As(err, &fatal) {
		return
	}

	for _, addr := range fatal.Backtrace {
		// Saved addresses sit 2 bytes before the last byte of the
		// calling or interrupted instruction.
		dbg := prog.Debug(addr + 2)
		if dbg.Line != nil {
			lines = append(lines, fmt.Sprintf("  from %5d: line %d: %v", addr, dbg.LineNo, strings.TrimSpace(dbg.Text)))
		} else {
			lines = append(lines, fmt.Sprintf("  from %5d", addr))
		}
	}

	return
}
