// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package program defines the bytecode emitted by the compiler and consumed
// by the virtual machine, in both its plaintext and ciphertext forms.
package program

import "fmt"

// Op identifies the kind of a bytecode instruction. Instruction is a tagged
// struct rather than an interface hierarchy: the set of ops is closed and
// the VM dispatches on a plain switch, not on dynamic method calls.
type Op uint8

const (
	// OpChar matches a single literal byte.
	OpChar Op = iota
	// OpMatch is an anchor: the end of the pattern, or an explicit end
	// anchor ($).
	OpMatch
	// OpStart is the begin-of-input anchor (^).
	OpStart
	// OpRepetition matches zero or more occurrences of a single byte.
	OpRepetition
	// OpOptionalChar matches zero or one occurrence of a single byte, used
	// for bounded repetitions and `?`.
	OpOptionalChar
	// OpIntervalChar matches a byte against one or more inclusive ranges,
	// optionally repeatable and/or optional.
	OpIntervalChar
	// OpBranch is an alternation point: try the next instruction, and on
	// failure fall back to Target.
	OpBranch
	// OpJump is an unconditional jump to Target.
	OpJump
)

// String renders the op's name for diagnostics and test failure messages.
func (op Op) String() string {
	switch op {
	case OpChar:
		return "Char"
	case OpMatch:
		return "Match"
	case OpStart:
		return "Start"
	case OpRepetition:
		return "Repetition"
	case OpOptionalChar:
		return "OptionalChar"
	case OpIntervalChar:
		return "IntervalChar"
	case OpBranch:
		return "Branch"
	case OpJump:
		return "Jump"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Range is an inclusive byte range, the plaintext operand of OpIntervalChar.
type Range struct {
	Start byte
	End   byte
}

// Action carries the control-flow bookkeeping shared by every instruction:
// Next is the pc to advance to on success (always the instruction's own
// index + 1; see the design notes on why no separate bias is needed), and
// Offset is how far the string counter advances on a successful match (+1
// for byte-consuming ops, 0 for control ops).
type Action struct {
	Next   int
	Offset int
}

// Instruction is one plaintext bytecode op. Only the fields relevant to Op
// are populated; the rest are left at their zero value.
type Instruction struct {
	Op Op

	// Char is the operand of OpChar, OpRepetition and OpOptionalChar.
	Char byte

	// Ranges is the operand of OpIntervalChar: one or more inclusive byte
	// ranges, any one of which may match.
	Ranges []Range
	// CanRepeat marks an IntervalChar as zero-or-more (from `[...]+`/`*`).
	CanRepeat bool
	// IsOptional marks an IntervalChar as zero-or-one (from `[...]?` or one
	// of the max-min trailing copies of a bounded repetition `[...]{m,n}`).
	IsOptional bool

	// Target is the operand of OpBranch and OpJump: the pc to fall back to
	// or jump to.
	Target int

	Action Action
}

// Program is a sequence of plaintext instructions, the direct output of the
// compiler and the input to both the cipher program builder and
// vm.RunPlain.
type Program []Instruction
