package cpu

// Memory and stack primitives. Out of range accesses panic, and are
// converted to ErrMemoryBounds by Step.

func flag(cond bool) byte {
	if cond {
		return 1
	}
	return 0
}

func (cpu *Cpu) read16(address uint16) uint16 {
	return uint16(cpu.Memory[address]) | uint16(cpu.Memory[address+1])<<8
}

func (cpu *Cpu) write16(address uint16, value uint16) {
	cpu.Memory[address+0] = byte(value >> 0)
	cpu.Memory[address+1] = byte(value >> 8)
}

// arg8 fetches the operand byte at offset n from the current opcode.
func (cpu *Cpu) arg8(n int) byte {
	return cpu.Memory[cpu.Register[REG_IP]+uint16(n)]
}

// arg16 fetches the operand word at offset n from the current opcode.
func (cpu *Cpu) arg16(n int) uint16 {
	return cpu.read16(cpu.Register[REG_IP] + uint16(n))
}

// relative returns the address at the signed operand offset n from the
// current opcode.
func (cpu *Cpu) relative(n int) uint16 {
	return cpu.Register[REG_IP] + cpu.arg16(n)
}

func (cpu *Cpu) track(sp uint16) {
	if int(sp) > cpu.maxSp {
		cpu.maxSp = int(sp)
	}
}

func (cpu *Cpu) push(value byte) {
	sp := cpu.Register[REG_SP]
	cpu.Memory[sp] = value
	cpu.Register[REG_SP] = sp + 1
	cpu.xic++
	cpu.track(sp + 1)
}

func (cpu *Cpu) pop() (value byte) {
	sp := cpu.Register[REG_SP] - 1
	value = cpu.Memory[sp]
	cpu.Register[REG_SP] = sp
	cpu.xic++
	return
}

func (cpu *Cpu) push16(value uint16) {
	sp := cpu.Register[REG_SP]
	cpu.write16(sp, value)
	cpu.Register[REG_SP] = sp + ADDRESS_SIZE
	cpu.xic++
	cpu.track(sp + ADDRESS_SIZE)
}

func (cpu *Cpu) pop16() (value uint16) {
	sp := cpu.Register[REG_SP] - ADDRESS_SIZE
	value = cpu.read16(sp)
	cpu.Register[REG_SP] = sp
	cpu.xic++
	return
}

// top returns the address of the top byte of the stack.
func (cpu *Cpu) top() uint16 {
	return cpu.Register[REG_SP] - 1
}

// top16 returns the address of the top word of the stack.
func (cpu *Cpu) top16() uint16 {
	return cpu.Register[REG_SP] - ADDRESS_SIZE
}

// local returns the address of frame byte n above the frame pointer.
func (cpu *Cpu) local(n byte) uint16 {
	return cpu.Register[REG_FP] + uint16(n)
}

// below returns the address of frame byte n below the frame pointer.
func (cpu *Cpu) below(n byte) uint16 {
	return cpu.Register[REG_FP] - uint16(n)
}

// argument returns the address of argument n. Argument 1 is the last
// byte pushed by the caller before the call.
func (cpu *Cpu) argument(n byte) uint16 {
	return cpu.Register[REG_FP] - uint16(n) - FRAME_SIZE
}

// call enters a subroutine. The saved return address is that of the
// last three bytes before the next instruction, as RET resumes three
// bytes after it.
func (cpu *Cpu) call(target uint16) {
	cpu.push16(cpu.next - 3)
	cpu.push16(cpu.Register[REG_FP])
	cpu.Register[REG_FP] = cpu.Register[REG_SP]
	cpu.next = target
}

func (cpu *Cpu) ret() {
	cpu.Register[REG_SP] = cpu.Register[REG_FP]
	cpu.Register[REG_FP] = cpu.pop16()
	cpu.next = cpu.pop16() + 3
}
