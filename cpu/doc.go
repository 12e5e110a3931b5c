// Package cpu implements the execution engine and assembler for the AVM
// stack machine.
//
// The machine has a single byte addressed memory of up to 64KiB holding
// both the program and the stack, and three 16-bit registers: the
// instruction pointer (IP), the stack pointer (SP) and the frame pointer
// (FP). Opcodes are one byte, followed by zero to three operand bytes.
// Recoverable faults are routed to guest interrupt handlers, and a small
// standard library of host calls provides console, string and memory
// services.
//
// The assembler reads a line oriented, token based assembly language with
// labels, label references, named constants, string literals and
// compile-time $(...) expressions.
package cpu
