// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package vm

import (
	"fmt"

	"github.com/luxfi/fherex/program"
)

// RunPlain interprets p against input directly, with no ciphertexts and no
// oracle: Equal and InRange are plain byte comparisons. It runs the exact
// same backtracking algorithm as VM.Run, instruction-for-instruction, which
// lets callers check a pattern's behavior against plaintext input without
// paying for key generation and homomorphic evaluation, and gives the test
// suite a reference to check the cipher VM's output against.
func RunPlain(p program.Program, input []byte) (bool, error) {
	pv := &plainVM{prog: p}
	return pv.run(input)
}

type plainVM struct {
	prog program.Program

	pc         int
	sc         int
	stack      []frame
	exactMatch bool
}

func (m *plainVM) run(input []byte) (bool, error) {
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
			eq := m.equal(input, inst.Char)
			accept, done, err := m.stepConsume(eq, inst)
			if err != nil {
				return false, err
			}
			if done {
				return accept, nil
			}

		case program.OpRepetition:
			if m.equal(input, inst.Char) {
				m.sc += inst.Action.Offset
			} else {
				m.pc++
			}

		case program.OpOptionalChar:
			if m.equal(input, inst.Char) {
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
			matched := m.inRanges(input, inst.Ranges)
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

	return true, nil
}

func (m *plainVM) equal(input []byte, c byte) bool {
	if m.sc >= len(input) {
		return false
	}
	return input[m.sc] == c
}

func (m *plainVM) inRanges(input []byte, ranges []program.Range) bool {
	if m.sc >= len(input) {
		return false
	}
	b := input[m.sc]
	for _, r := range ranges {
		if b >= r.Start && b <= r.End {
			return true
		}
	}
	return false
}

// stepConsume mirrors VM.stepConsume exactly, over program.Instruction
// instead of program.CipherInstruction.
func (m *plainVM) stepConsume(matched bool, inst program.Instruction) (accept bool, done bool, err error) {
	canRepeat, isOptional := inst.CanRepeat, inst.IsOptional

	switch {
	case matched && !canRepeat && !isOptional:
		m.sc += inst.Action.Offset
		m.pc++
		return false, false, nil

	case matched && canRepeat && !isOptional:
		m.sc += inst.Action.Offset
		return false, false, nil

	case matched && !canRepeat && isOptional:
		m.sc += inst.Action.Offset
		m.pc++
		return false, false, nil

	case matched && canRepeat && isOptional:
		m.sc += inst.Action.Offset
		return false, false, nil

	case !matched && (canRepeat || isOptional):
		m.pc++
		return false, false, nil

	default:
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

// failAndBacktrack mirrors VM.failAndBacktrack exactly.
func (m *plainVM) failAndBacktrack() (rejected bool, err error) {
	if len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		m.pc, m.sc = top.pc, top.sc
		return false, nil
	}

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
