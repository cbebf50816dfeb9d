// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package vm interprets a program.CipherProgram against a sequence of
// encrypted input bytes: a backtracking NFA simulator that keeps program
// counter and string counter in plaintext and only ever inspects ciphertext
// contents through the Oracle, one gate result at a time.
package vm

import (
	"fmt"

	"github.com/luxfi/fherex/limb"
	"github.com/luxfi/fherex/oracle"
	"github.com/luxfi/fherex/program"
)

// frame is one saved backtrack point: a (pc, sc) pair pushed by Branch and
// restored when a later match fails with an empty fallthrough path.
type frame struct {
	pc int
	sc int
}

// VM holds the mutable state of one match in progress: program counter,
// string counter, backtrack stack and the exact-match latch set by a Start
// anchor. It is reusable across inputs via Reset, so a compiled and
// encrypted program can be re-run against a fresh input without rebuilding
// the VM.
type VM struct {
	prog program.CipherProgram
	sk   *limb.ServerKey

	pc         int
	sc         int
	stack      []frame
	exactMatch bool
}

// New creates a VM ready to run prog, comparing ciphertexts homomorphically
// via sk.
func New(prog program.CipherProgram, sk *limb.ServerKey) *VM {
	return &VM{prog: prog, sk: sk}
}

// Reset restores the VM to its initial state: pc and sc at zero, an empty
// backtrack stack, and the exact-match latch cleared.
func (m *VM) Reset() {
	m.pc = 0
	m.sc = 0
	m.stack = nil
	m.exactMatch = false
}

// Run interprets the VM's program against input, consulting oracle to
// reduce every homomorphic comparison to a plaintext boolean, and reports
// whether the program accepts. It does not reset state on entry: callers
// that want a fresh match must call Reset first (a just-constructed VM is
// already at its initial state).
func (m *VM) Run(input []limb.Cipher, o oracle.Oracle) (bool, error) {
	for m.pc < len(m.prog) {
		inst := m.prog[m.pc]

		switch inst.Op {
		case program.OpChar:
			// A plain Char instruction is never repeatable or optional: past
			// the end of input there is nothing left to consume, and no
			// backtrack stack entry can change that, so the whole match is
			// rejected outright rather than routed through stepConsume.
			if m.sc >= len(input) {
				return false, nil
			}
			eq, err := m.compareEqual(input, inst.Char, o)
			if err != nil {
				return false, err
			}
			accept, done, err := m.stepConsume(eq, inst)
			if err != nil {
				return false, err
			}
			if done {
				return accept, nil
			}

		case program.OpRepetition:
			eq, err := m.compareEqual(input, inst.Char, o)
			if err != nil {
				return false, err
			}
			if eq {
				m.sc += inst.Action.Offset
			} else {
				m.pc++
			}

		case program.OpOptionalChar:
			eq, err := m.compareEqual(input, inst.Char, o)
			if err != nil {
				return false, err
			}
			if eq {
				m.sc += inst.Action.Offset
			}
			m.pc++

		case program.OpIntervalChar:
			// Same reasoning as OpChar above, but only when this interval is
			// a plain (non-repeatable, non-optional) atom: a repeatable or
			// optional interval running out of input is a legitimate
			// zero-occurrences case, handled below via stepConsume.
			if m.sc >= len(input) && !inst.CanRepeat && !inst.IsOptional {
				return false, nil
			}
			matched, err := m.compareInRange(input, inst.Ranges, o)
			if err != nil {
				return false, err
			}
			accept, done, err := m.stepConsume(matched, inst)
			if err != nil {
				return false, err
			}
			if done {
				return accept, nil
			}

		case program.OpStart:
			m.pc++
			m.exactMatch = true

		case program.OpMatch:
			return m.sc == len(input), nil

		case program.OpBranch:
			m.stack = append(m.stack, frame{pc: inst.Target, sc: m.sc})
			m.pc++

		case program.OpJump:
			m.pc = inst.Target

		default:
			return false, fmt.Errorf("vm: unknown op %s at pc %d", inst.Op, m.pc)
		}
	}

	// Fell off the end of the program without being rejected: the loose
	// prefix/infix-match case for an unanchored pattern.
	return true, nil
}

// compareEqual bounds-checks sc against input, then asks the oracle to
// reduce ServerKey.Equal(input[sc], ct). Past the end of input there is
// nothing to compare: this is treated as "not equal" rather than an error.
// Callers for repeatable/optional instructions rely on exactly this
// "not equal" reading to mean "stop repeating" / "the optional atom
// doesn't match"; callers for plain instructions bounds-check separately
// and never reach this path once input is exhausted.
func (m *VM) compareEqual(input []limb.Cipher, ct limb.Cipher, o oracle.Oracle) (bool, error) {
	if m.sc >= len(input) {
		return false, nil
	}
	ciphertext, err := m.sk.Equal(input[m.sc], ct)
	if err != nil {
		return false, fmt.Errorf("vm: homomorphic equal at sc %d: %w", m.sc, err)
	}
	ok, err := o.Reduce(ciphertext)
	if err != nil {
		return false, fmt.Errorf("vm: oracle reduce at sc %d: %w", m.sc, err)
	}
	return ok, nil
}

// compareInRange scans ranges in order, calling the oracle on
// ServerKey.InRange for each and stopping at the first true.
func (m *VM) compareInRange(input []limb.Cipher, ranges []limb.CipherRange, o oracle.Oracle) (bool, error) {
	if m.sc >= len(input) {
		return false, nil
	}
	for i, r := range ranges {
		ciphertext, err := m.sk.InRange(input[m.sc], r)
		if err != nil {
			return false, fmt.Errorf("vm: homomorphic in_range %d at sc %d: %w", i, m.sc, err)
		}
		ok, err := o.Reduce(ciphertext)
		if err != nil {
			return false, fmt.Errorf("vm: oracle reduce range %d at sc %d: %w", i, m.sc, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// stepConsume applies the match/repeat/optional dispatch table for Char and
// IntervalChar, parameterized over whether the instruction is marked
// repeatable and/or optional. It reports (accept, done, err): done is true
// when Run should return immediately with accept (only the reject path
// from an exhausted backtrack returns done=true before pc reaches the end
// of the program; the ordinary advance/skip/loop cases return done=false
// and let the main loop continue).
func (m *VM) stepConsume(matched bool, inst program.CipherInstruction) (accept bool, done bool, err error) {
	canRepeat, isOptional := inst.CanRepeat, inst.IsOptional

	switch {
	case matched && !canRepeat && !isOptional:
		// Exact single match: advance past it.
		m.sc += inst.Action.Offset
		m.pc++
		return false, false, nil

	case matched && canRepeat && !isOptional:
		// Tail half of `+`/`*`: consume and retry the same instruction.
		m.sc += inst.Action.Offset
		return false, false, nil

	case matched && !canRepeat && isOptional:
		// Optional atom that happened to match: consume and advance.
		m.sc += inst.Action.Offset
		m.pc++
		return false, false, nil

	case matched && canRepeat && isOptional:
		// Unreached by the compiler (no atom is emitted both repeatable
		// and optional at once), but consume-and-loop is the only
		// semantically consistent reading if it ever occurs.
		m.sc += inst.Action.Offset
		return false, false, nil

	case !matched && (canRepeat || isOptional):
		// Zero occurrences is acceptable: skip the instruction.
		m.pc++
		return false, false, nil

	default:
		// !matched, exact atom: fail and backtrack.
		rejected, err := m.failAndBacktrack()
		if err != nil {
			return false, false, err
		}
		if rejected {
			return false, true, nil
		}
		return false, false, nil
	}
}

// failAndBacktrack implements the recovery rule on a failed match: pop a
// saved alternative if one exists, otherwise step back one instruction and
// resume from there with that instruction's action applied, unless the
// exact-match latch is set or the previous instruction was a Jump, in
// which case the match is rejected outright.
func (m *VM) failAndBacktrack() (rejected bool, err error) {
	if len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		m.pc, m.sc = top.pc, top.sc
		return false, nil
	}

	// At pc 0 instruction 0 stands in as its own predecessor: sc advances by
	// its offset and the program restarts one input position later, which is
	// how an unanchored pattern matches an infix of the input.
	prevIdx := m.pc - 1
	if prevIdx < 0 {
		prevIdx = 0
	}
	prev := m.prog[prevIdx]
	if m.exactMatch || prev.Op == program.OpJump {
		return true, nil
	}

	m.sc += prev.Action.Offset
	m.pc = prevIdx
	return false, nil
}
