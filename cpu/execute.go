package cpu

import (
	"errors"
	"log"
)

// opFunc executes a decoded opcode. Operands are read relative to the
// current IP; control transfers assign cpu.next.
type opFunc func(cpu *Cpu) error

var errDivideByZero = ErrInterrupt(INT_DIVISION_BY_ZERO)

// binary pops the top (a) and next (b) bytes, and pushes the result.
func binary(fn func(a, b byte) byte) opFunc {
	return func(cpu *Cpu) error {
		a := cpu.pop()
		b := cpu.pop()
		cpu.push(fn(a, b))
		return nil
	}
}

// binary16 pops the top (a) and next (b) words, and pushes the result.
func binary16(fn func(a, b uint16) uint16) opFunc {
	return func(cpu *Cpu) error {
		a := cpu.pop16()
		b := cpu.pop16()
		cpu.push16(fn(a, b))
		return nil
	}
}

// compare16 pops the top (a) and next (b) words, and pushes a flag.
func compare16(fn func(a, b uint16) bool) opFunc {
	return func(cpu *Cpu) error {
		a := cpu.pop16()
		b := cpu.pop16()
		cpu.push(flag(fn(a, b)))
		return nil
	}
}

// branch jumps to target when the popped condition matches want.
func branch(cpu *Cpu, target uint16, want bool) {
	if (cpu.pop() != 0) == want {
		cpu.next = target
	}
}

func branch16(cpu *Cpu, target uint16, want bool) {
	if (cpu.pop16() != 0) == want {
		cpu.next = target
	}
}

func (cpu *Cpu) nvramLoad(address uint16) (value byte, err error) {
	if cpu.Nvram == nil {
		err = ErrNvram
		return
	}
	value, err = cpu.Nvram.LoadByte(address)
	if err != nil {
		err = errors.Join(ErrNvram, err)
	}
	return
}

func (cpu *Cpu) nvramStore(address uint16, value byte) (err error) {
	if cpu.Nvram == nil {
		err = ErrNvram
		return
	}
	err = cpu.Nvram.StoreByte(address, value)
	if err != nil {
		err = errors.Join(ErrNvram, err)
	}
	return
}

var execute = [opcodeCount]opFunc{
	OP_NOP: func(cpu *Cpu) error { return nil },

	// Stack
	OP_PUSH: func(cpu *Cpu) error {
		cpu.push(cpu.arg8(1))
		return nil
	},
	OP_PUSHN: func(cpu *Cpu) error {
		cpu.Register[REG_SP] += uint16(cpu.arg8(1))
		cpu.track(cpu.Register[REG_SP])
		return nil
	},
	OP_PUSHN2: func(cpu *Cpu) error {
		n := cpu.pop()
		cpu.Register[REG_SP] += uint16(n)
		cpu.track(cpu.Register[REG_SP])
		return nil
	},
	OP_POP: func(cpu *Cpu) error {
		cpu.pop()
		return nil
	},
	OP_POPN: func(cpu *Cpu) error {
		cpu.Register[REG_SP] -= uint16(cpu.arg8(1))
		return nil
	},
	OP_POPN2: func(cpu *Cpu) error {
		n := cpu.pop()
		cpu.Register[REG_SP] -= uint16(n)
		return nil
	},
	OP_SWAP: func(cpu *Cpu) error {
		a, b := cpu.top(), cpu.top()-1
		cpu.Memory[a], cpu.Memory[b] = cpu.Memory[b], cpu.Memory[a]
		return nil
	},
	OP_DUP: func(cpu *Cpu) error {
		cpu.push(cpu.Memory[cpu.top()])
		return nil
	},
	OP_PUSH_REG: func(cpu *Cpu) error {
		reg := int(cpu.arg8(1))
		if reg >= len(cpu.Register) {
			return ErrRegisterInvalid
		}
		cpu.push16(cpu.Register[reg])
		return nil
	},
	OP_POP_REG: func(cpu *Cpu) error {
		reg := int(cpu.arg8(1))
		if reg >= len(cpu.Register) {
			return ErrRegisterInvalid
		}
		value := cpu.pop16()
		if reg == REG_IP {
			cpu.next = value
		} else {
			cpu.Register[reg] = value
		}
		return nil
	},

	// 8-bit arithmetic
	OP_ADD: binary(func(a, b byte) byte { return a + b }),
	OP_ADDC: func(cpu *Cpu) error {
		cpu.push(cpu.pop() + cpu.arg8(1))
		return nil
	},
	OP_SUBC: func(cpu *Cpu) error {
		cpu.push(cpu.pop() - cpu.arg8(1))
		return nil
	},
	OP_SUB:  binary(func(a, b byte) byte { return a - b }),
	OP_SUB2: binary(func(a, b byte) byte { return b - a }),
	OP_MUL:  binary(func(a, b byte) byte { return a * b }),
	OP_MULC: func(cpu *Cpu) error {
		cpu.push(cpu.pop() * cpu.arg8(1))
		return nil
	},
	OP_DIV: func(cpu *Cpu) error {
		a := cpu.pop()
		b := cpu.pop()
		if a == 0 {
			return errDivideByZero
		}
		cpu.push(b / a)
		return nil
	},
	OP_DIV2: func(cpu *Cpu) error {
		a := cpu.pop()
		b := cpu.pop()
		if b == 0 {
			return errDivideByZero
		}
		cpu.push(a / b)
		return nil
	},
	OP_DIV216: func(cpu *Cpu) error {
		a := cpu.pop16()
		b := cpu.pop16()
		if b == 0 {
			return errDivideByZero
		}
		cpu.push16(a / b)
		return nil
	},
	OP_MOD: func(cpu *Cpu) error {
		a := cpu.pop()
		b := cpu.pop()
		if a == 0 {
			return errDivideByZero
		}
		cpu.push(b % a)
		return nil
	},
	OP_INC: func(cpu *Cpu) error {
		cpu.Memory[cpu.top()]++
		return nil
	},
	OP_DEC: func(cpu *Cpu) error {
		cpu.Memory[cpu.top()]--
		return nil
	},

	// 8-bit bitwise and logical
	OP_AND:  binary(func(a, b byte) byte { return a & b }),
	OP_OR:   binary(func(a, b byte) byte { return a | b }),
	OP_LAND: binary(func(a, b byte) byte { return flag(a != 0 && b != 0) }),
	OP_LOR:  binary(func(a, b byte) byte { return flag(a != 0 || b != 0) }),
	OP_FLIP: func(cpu *Cpu) error {
		cpu.push(^cpu.pop())
		return nil
	},
	OP_NOT: func(cpu *Cpu) error {
		top := cpu.top()
		cpu.Memory[top] = flag(cpu.Memory[top] == 0)
		return nil
	},
	OP_XOR: binary(func(a, b byte) byte { return a ^ b }),
	OP_LSH: binary(func(a, b byte) byte { return b << a }),
	OP_RSH: binary(func(a, b byte) byte { return b >> a }),

	// 8-bit comparison
	OP_EQ:            binary(func(a, b byte) byte { return flag(a == b) }),
	OP_NE:            binary(func(a, b byte) byte { return flag(a != b) }),
	OP_LESS:          binary(func(a, b byte) byte { return flag(a < b) }),
	OP_LESS_OR_EQ:    binary(func(a, b byte) byte { return flag(a <= b) }),
	OP_GREATER:       binary(func(a, b byte) byte { return flag(a > b) }),
	OP_GREATER_OR_EQ: binary(func(a, b byte) byte { return flag(a >= b) }),
	OP_ZERO: func(cpu *Cpu) error {
		top := cpu.top()
		cpu.Memory[top] = flag(cpu.Memory[top] == 0)
		return nil
	},
	OP_NZERO: func(cpu *Cpu) error {
		top := cpu.top()
		cpu.Memory[top] = flag(cpu.Memory[top] != 0)
		return nil
	},

	// Control flow
	OP_JMP: func(cpu *Cpu) error {
		cpu.next = cpu.arg16(1)
		return nil
	},
	OP_JMP2: func(cpu *Cpu) error {
		cpu.next = cpu.pop16()
		return nil
	},
	OP_JF: func(cpu *Cpu) error {
		branch(cpu, cpu.arg16(1), false)
		return nil
	},
	OP_JF2: func(cpu *Cpu) error {
		target := cpu.pop16()
		branch(cpu, target, false)
		return nil
	},
	OP_JT: func(cpu *Cpu) error {
		branch(cpu, cpu.arg16(1), true)
		return nil
	},
	OP_JT2: func(cpu *Cpu) error {
		target := cpu.pop16()
		branch(cpu, target, true)
		return nil
	},
	OP_CASE: func(cpu *Cpu) error {
		if cpu.Memory[cpu.top()] == cpu.arg8(1) {
			cpu.pop()
			cpu.next = cpu.arg16(2)
		}
		return nil
	},
	OP_ELSE: func(cpu *Cpu) error {
		cpu.pop()
		cpu.next = cpu.arg16(1)
		return nil
	},

	// Calls
	OP_CALL: func(cpu *Cpu) error {
		cpu.call(cpu.arg16(1))
		return nil
	},
	OP_RET: func(cpu *Cpu) error {
		cpu.ret()
		return nil
	},
	OP_CALL2: func(cpu *Cpu) error {
		cpu.call(cpu.pop16())
		return nil
	},

	// Global memory
	OP_LOAD_GLOBAL: func(cpu *Cpu) error {
		cpu.push(cpu.Memory[cpu.pop16()])
		return nil
	},
	OP_STORE_GLOBAL: func(cpu *Cpu) error {
		address := cpu.pop16()
		cpu.Memory[address] = cpu.pop()
		return nil
	},
	OP_LOAD_GLOBAL16: func(cpu *Cpu) error {
		cpu.push16(cpu.read16(cpu.pop16()))
		return nil
	},
	OP_STORE_GLOBAL16: func(cpu *Cpu) error {
		address := cpu.pop16()
		cpu.write16(address, cpu.pop16())
		return nil
	},

	// Frame relative memory
	OP_LOAD: func(cpu *Cpu) error {
		cpu.push(cpu.Memory[cpu.below(cpu.arg8(1))])
		return nil
	},
	OP_LOAD_LOCAL: func(cpu *Cpu) error {
		cpu.push(cpu.Memory[cpu.local(cpu.arg8(1))])
		return nil
	},
	OP_LOAD_ARG: func(cpu *Cpu) error {
		cpu.push(cpu.Memory[cpu.argument(cpu.arg8(1))])
		return nil
	},
	OP_LOAD_LOCAL16: func(cpu *Cpu) error {
		cpu.push16(cpu.read16(cpu.local(cpu.arg8(1))))
		return nil
	},
	OP_LOAD_ARG16: func(cpu *Cpu) error {
		cpu.push16(cpu.read16(cpu.argument(cpu.arg8(1))))
		return nil
	},
	OP_STORE: func(cpu *Cpu) error {
		address := cpu.below(cpu.arg8(1))
		cpu.Memory[address] = cpu.pop()
		return nil
	},
	OP_STORE_LOCAL: func(cpu *Cpu) error {
		address := cpu.local(cpu.arg8(1))
		cpu.Memory[address] = cpu.pop()
		return nil
	},
	OP_STORE_ARG: func(cpu *Cpu) error {
		address := cpu.argument(cpu.arg8(1))
		cpu.Memory[address] = cpu.pop()
		return nil
	},
	OP_STORE_LOCAL16: func(cpu *Cpu) error {
		address := cpu.local(cpu.arg8(1))
		cpu.write16(address, cpu.pop16())
		return nil
	},
	OP_STORE_ARG16: func(cpu *Cpu) error {
		address := cpu.argument(cpu.arg8(1))
		cpu.write16(address, cpu.pop16())
		return nil
	},

	// System
	OP_INTERRUPT_HANDLER: func(cpu *Cpu) error {
		code := InterruptCode(cpu.arg8(1))
		handler := cpu.arg16(2)
		if handler == 0 {
			delete(cpu.Handler, code)
		} else {
			cpu.Handler[code] = handler
		}
		return nil
	},
	OP_SYSCALL: func(cpu *Cpu) error {
		return cpu.stdlib(Syscall(cpu.arg8(1)))
	},
	OP_SYSCALL2: func(cpu *Cpu) error {
		return cpu.stdlib(Syscall(cpu.pop()))
	},
	OP_DEBUGGER: func(cpu *Cpu) error {
		if cpu.Verbose {
			log.Printf("cpu: breakpoint\n%v", cpu)
		}
		if cpu.Breakpoint != nil {
			cpu.Breakpoint(cpu)
		}
		return nil
	},

	// 16-bit
	OP_PUSH_NEXT_SP: func(cpu *Cpu) error {
		cpu.push16(cpu.Register[REG_SP] + ADDRESS_SIZE)
		return nil
	},
	OP_PUSH16: func(cpu *Cpu) error {
		cpu.push16(cpu.arg16(1))
		return nil
	},
	OP_ADD16: binary16(func(a, b uint16) uint16 { return a + b }),
	OP_ADD16C: func(cpu *Cpu) error {
		cpu.push16(cpu.pop16() + cpu.arg16(1))
		return nil
	},
	OP_SUB16C: func(cpu *Cpu) error {
		cpu.push16(cpu.pop16() - cpu.arg16(1))
		return nil
	},
	OP_MOD16: func(cpu *Cpu) error {
		a := cpu.pop16()
		b := cpu.pop16()
		if a == 0 {
			return errDivideByZero
		}
		cpu.push16(b % a)
		return nil
	},
	OP_SUB16:  binary16(func(a, b uint16) uint16 { return a - b }),
	OP_SUB216: binary16(func(a, b uint16) uint16 { return b - a }),
	OP_MUL16:  binary16(func(a, b uint16) uint16 { return a * b }),
	OP_MUL16C: func(cpu *Cpu) error {
		cpu.push16(cpu.pop16() * cpu.arg16(1))
		return nil
	},
	OP_DIV16: func(cpu *Cpu) error {
		a := cpu.pop16()
		b := cpu.pop16()
		if a == 0 {
			return errDivideByZero
		}
		cpu.push16(b / a)
		return nil
	},
	OP_INC16: func(cpu *Cpu) error {
		top := cpu.top16()
		cpu.write16(top, cpu.read16(top)+1)
		return nil
	},
	OP_DEC16: func(cpu *Cpu) error {
		top := cpu.top16()
		cpu.write16(top, cpu.read16(top)-1)
		return nil
	},
	OP_EXTEND: func(cpu *Cpu) error {
		cpu.push16(uint16(cpu.pop()))
		return nil
	},
	OP_DOWNCAST: func(cpu *Cpu) error {
		value := cpu.pop16()
		cpu.push(byte(min(value, 0xff)))
		return nil
	},
	OP_LESS16:          compare16(func(a, b uint16) bool { return a < b }),
	OP_LESS_OR_EQ16:    compare16(func(a, b uint16) bool { return a <= b }),
	OP_GREATER16:       compare16(func(a, b uint16) bool { return a > b }),
	OP_GREATER_OR_EQ16: compare16(func(a, b uint16) bool { return a >= b }),
	OP_ZERO16: func(cpu *Cpu) error {
		cpu.push(flag(cpu.pop16() == 0))
		return nil
	},
	OP_NZERO16: func(cpu *Cpu) error {
		cpu.push(flag(cpu.pop16() != 0))
		return nil
	},
	OP_EQ16: compare16(func(a, b uint16) bool { return a == b }),
	OP_NE16: compare16(func(a, b uint16) bool { return a != b }),
	OP_DUP16: func(cpu *Cpu) error {
		cpu.push16(cpu.read16(cpu.top16()))
		return nil
	},
	OP_SWAP16: func(cpu *Cpu) error {
		a := cpu.pop16()
		b := cpu.pop16()
		cpu.push16(a)
		cpu.push16(b)
		return nil
	},

	// Persistent store
	OP_LOAD_NVRAM: func(cpu *Cpu) error {
		value, err := cpu.nvramLoad(cpu.pop16())
		if err != nil {
			return err
		}
		cpu.push(value)
		return nil
	},
	OP_STORE_NVRAM: func(cpu *Cpu) error {
		address := cpu.pop16()
		return cpu.nvramStore(address, cpu.pop())
	},

	// Position independent code
	OP_PUSH16_REL: func(cpu *Cpu) error {
		cpu.push16(cpu.relative(1))
		return nil
	},
	OP_JMP_REL: func(cpu *Cpu) error {
		cpu.next = cpu.relative(1)
		return nil
	},
	OP_JF_REL: func(cpu *Cpu) error {
		branch(cpu, cpu.relative(1), false)
		return nil
	},
	OP_JT_REL: func(cpu *Cpu) error {
		branch(cpu, cpu.relative(1), true)
		return nil
	},
	OP_CASE_REL: func(cpu *Cpu) error {
		if cpu.Memory[cpu.top()] == cpu.arg8(1) {
			cpu.pop()
			cpu.next = cpu.relative(2)
		}
		return nil
	},
	OP_ELSE_REL: func(cpu *Cpu) error {
		cpu.pop()
		cpu.next = cpu.relative(1)
		return nil
	},
	OP_CALL_REL: func(cpu *Cpu) error {
		cpu.call(cpu.relative(1))
		return nil
	},

	OP_PUSH_STACK_START: func(cpu *Cpu) error {
		cpu.push16(cpu.stackStart)
		return nil
	},
	OP_ROLL3: func(cpu *Cpu) error {
		a := cpu.pop()
		b := cpu.pop()
		c := cpu.pop()
		cpu.push(a)
		cpu.push(c)
		cpu.push(b)
		return nil
	},
	OP_NEG: func(cpu *Cpu) error {
		cpu.push(-cpu.pop())
		return nil
	},
	OP_STORE_GLOBAL2: func(cpu *Cpu) error {
		value := cpu.pop()
		cpu.Memory[cpu.pop16()] = value
		return nil
	},
	OP_STORE_GLOBAL216: func(cpu *Cpu) error {
		value := cpu.pop16()
		cpu.write16(cpu.pop16(), value)
		return nil
	},

	OP_HALT: func(cpu *Cpu) error {
		cpu.next = cpu.Register[REG_IP]
		return nil
	},

	// 16-bit bitwise
	OP_AND16: binary16(func(a, b uint16) uint16 { return a & b }),
	OP_OR16:  binary16(func(a, b uint16) uint16 { return a | b }),
	OP_XOR16: binary16(func(a, b uint16) uint16 { return a ^ b }),
	OP_FLIP16: func(cpu *Cpu) error {
		cpu.push16(^cpu.pop16())
		return nil
	},
	OP_LSH16: binary16(func(a, b uint16) uint16 { return b << a }),
	OP_RSH16: binary16(func(a, b uint16) uint16 { return b >> a }),
	OP_JT16: func(cpu *Cpu) error {
		branch16(cpu, cpu.arg16(1), true)
		return nil
	},
	OP_JF16: func(cpu *Cpu) error {
		branch16(cpu, cpu.arg16(1), false)
		return nil
	},
}
