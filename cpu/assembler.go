package cpu

import (
	"bufio"
	"errors"
	"io"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler is a two pass assembler for the AVM instruction set.
//
// Each source line is a sequence of space separated tokens, each of
// which emits zero or more bytes. Label references are back-patched
// once the whole source has been read.
type Assembler struct {
	Verbose bool              // If set, verbosely logs the assembler actions.
	Label   map[string]int    // Map of labels to addresses.
	Const   map[string]uint8  // Map of CONST definitions.
	Const16 map[string]uint16 // Map of CONST16 definitions.

	predefine map[string]string // Predefines
	code      []byte
	lines     []Line
	patch     []reference
}

// reference is a label use awaiting its address.
type reference struct {
	address int
	label   string
	line    int
}

// Predefine defines a constant before parsing. Values that fit in a byte
// are available both as CONST and CONST16.
func (asm *Assembler) Predefine(name string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// reset prepares the assembler for a new parse.
func (asm *Assembler) reset() (err error) {
	asm.Label = make(map[string]int, 16)
	asm.Const = make(map[string]uint8)
	asm.Const16 = make(map[string]uint16)
	asm.code = asm.code[:0]
	asm.lines = nil
	asm.patch = nil

	for _, name := range slices.Sorted(maps.Keys(asm.predefine)) {
		value := asm.predefine[name]
		var v64 int64
		v64, err = strconv.ParseInt(value, 0, 32)
		if err != nil || v64 < 0 || v64 > 0xffff {
			err = ErrParseNumber(value)
			return
		}
		if v64 <= 0xff {
			asm.Const[name] = uint8(v64)
		}
		asm.Const16[name] = uint16(v64)
	}

	return
}

// Parse assembles an input stream into a Program. The program is always
// terminated by a HALT.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, 4*MEMORY_MAX)

	var text string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
		}
	}()

	err = asm.reset()
	if err != nil {
		return
	}

	for scanner.Scan() {
		text = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line := Line{LineNo: lineno, Address: len(asm.code), Text: text}
		err = asm.parseLine(text)
		line.Size = len(asm.code) - line.Address
		asm.lines = append(asm.lines, line)
		if err != nil {
			return
		}

		if len(asm.code) > MEMORY_MAX {
			err = ErrProgramTooLarge
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of label references.
	for _, ref := range asm.patch {
		addr, ok := asm.Label[ref.label]
		if !ok {
			lineno = asm.lines[ref.line].LineNo
			text = asm.lines[ref.line].Text
			err = ErrLabelMissing(ref.label)
			return
		}
		asm.code[ref.address+0] = byte(addr >> 0)
		asm.code[ref.address+1] = byte(addr >> 8)
	}

	asm.code = append(asm.code, byte(OP_HALT))
	if len(asm.code) > MEMORY_MAX {
		err = ErrProgramTooLarge
		return
	}

	prog = &Program{
		Code:  slices.Clone(asm.code),
		Lines: slices.Clone(asm.lines),
	}

	return
}

// Compile assembles source text into a program image.
func Compile(text string) (code []byte, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(text))
	if err != nil {
		return
	}

	code = prog.Code
	return
}

// stripComment removes '//' and ';' comments outside of strings.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		case '/':
			if !quoted && strings.HasPrefix(text[n:], "//") {
				return text[:n]
			}
		}
	}
	return text
}

type token struct {
	text   string
	quoted bool
}

// tokenize splits a line at double quotes. Unquoted parts are split on
// whitespace, and quoted parts are kept whole.
func tokenize(line string) (tokens []token) {
	for n, part := range strings.Split(line, `"`) {
		if n%2 == 1 {
			tokens = append(tokens, token{text: part, quoted: true})
			continue
		}
		for _, word := range strings.Fields(part) {
			tokens = append(tokens, token{text: word})
		}
	}
	return
}

// parseLine emits the code for a single source line.
func (asm *Assembler) parseLine(text string) (err error) {
	line := strings.TrimSpace(stripComment(text))
	if len(line) == 0 {
		return
	}

	words := strings.Fields(line)
	switch words[0] {
	case "CONST", "CONST16":
		err = asm.parseConst(words)
		return
	}

	for _, tok := range tokenize(line) {
		err = asm.parseToken(tok)
		if err != nil {
			return
		}
	}

	return
}

// parseConst handles 'CONST NAME value' and 'CONST16 NAME value'.
func (asm *Assembler) parseConst(words []string) (err error) {
	if len(words) < 3 {
		err = ErrConstSyntax
		return
	}

	name := words[1]
	expr := strings.Join(words[2:], " ")
	isExpr := strings.HasPrefix(expr, "$(") && strings.HasSuffix(expr, ")")
	if len(words) != 3 && !isExpr {
		err = ErrConstSyntax
		return
	}

	var value int64
	if isExpr {
		value, err = asm.parenEval(expr[2 : len(expr)-1])
	} else {
		value, err = strconv.ParseInt(expr, 10, 32)
		if err != nil {
			err = ErrParseNumber(expr)
		}
	}
	if err != nil {
		return
	}

	if words[0] == "CONST" {
		if value < -0x80 || value > 0xff {
			err = ErrParseNumber(expr)
			return
		}
		asm.Const[name] = uint8(value)
	} else {
		if value < 0 || value > 0xffff {
			err = ErrParseNumber(expr)
			return
		}
		asm.Const16[name] = uint16(value)
	}

	if asm.Verbose {
		log.Printf("%v %v = %v", words[0], name, value)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, v := range asm.Const {
		pred[key] = starlark.MakeInt(int(v))
	}
	for key, v := range asm.Const16 {
		pred[key] = starlark.MakeInt(int(v))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var stringEscape = strings.NewReplacer(
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\0`, "\x00",
	`\\`, `\`,
)

func (asm *Assembler) emit(data ...byte) {
	asm.code = append(asm.code, data...)
}

func (asm *Assembler) emit16(value uint16) {
	asm.emit(byte(value>>0), byte(value>>8))
}

// emitString emits string literal bytes, NUL terminated unless the
// literal starts with '!'.
func (asm *Assembler) emitString(text string) {
	text = stringEscape.Replace(text)
	terminate := true
	if strings.HasPrefix(text, "!") {
		text = text[1:]
		terminate = false
	}
	asm.emit([]byte(text)...)
	if terminate {
		asm.emit(0)
	}
}

// parseToken emits the code for a single token.
func (asm *Assembler) parseToken(tok token) (err error) {
	if tok.quoted {
		asm.emitString(tok.text)
		return
	}

	word := tok.text
	upper := strings.ToUpper(word)

	switch {
	case strings.HasPrefix(word, ":"):
		label := word[1:]
		if len(label) == 0 {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = len(asm.code)
	case strings.HasPrefix(word, "@"):
		label := word[1:]
		if len(label) == 0 {
			err = ErrLabelInvalid
			return
		}
		asm.patch = append(asm.patch, reference{
			address: len(asm.code),
			label:   label,
			line:    len(asm.lines),
		})
		asm.emit16(0)
	case strings.HasPrefix(upper, "INT."):
		code, ok := LookupInterrupt(word[4:])
		if !ok {
			err = ErrInterruptInvalid
			return
		}
		asm.emit(byte(code))
	case strings.HasPrefix(upper, "STD."):
		call, ok := LookupSyscall(word[4:])
		if !ok {
			err = ErrSyscallInvalid
			return
		}
		asm.emit(byte(call))
	case strings.HasPrefix(upper, "CONST16."):
		name := word[8:]
		value, ok := asm.Const16[name]
		if !ok {
			err = ErrConstUnknown(name)
			return
		}
		asm.emit16(value)
	case strings.HasPrefix(upper, "CONST."):
		name := word[6:]
		value, ok := asm.Const[name]
		if !ok {
			err = ErrConstUnknown(name)
			return
		}
		asm.emit(value)
	case strings.HasPrefix(word, "#"):
		var value uint64
		value, err = strconv.ParseUint(word[1:], 10, 16)
		if err != nil {
			err = ErrParseNumber(word)
			return
		}
		asm.emit16(uint16(value))
	default:
		value, perr := strconv.ParseInt(word, 10, 64)
		if perr == nil || errors.Is(perr, strconv.ErrRange) {
			if perr != nil || value < -0x80 || value > 0xff {
				err = ErrParseNumber(word)
				return
			}
			asm.emit(byte(value))
			return
		}
		op, ok := LookupOpcode(word)
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		asm.emit(byte(op))
	}

	return
}
