// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"

	"github.com/luxfi/fherex/limb"
)

// CipherInstruction mirrors Instruction field-for-field, with every byte
// operand replaced by a limb.Cipher and every Range replaced by a
// limb.CipherRange. Action, Target, CanRepeat and IsOptional are carried
// over unchanged: only the literal byte operands are encrypted.
type CipherInstruction struct {
	Op Op

	Char limb.Cipher

	Ranges     []limb.CipherRange
	CanRepeat  bool
	IsOptional bool

	Target int

	Action Action
}

// CipherProgram is the encrypted counterpart of Program, the input to
// vm.VM.Run.
type CipherProgram []CipherInstruction

// BuildCipherProgram walks p and produces the matching CipherProgram,
// encrypting every byte operand with enc and leaving every control-flow
// field (Op, Target, Action, CanRepeat, IsOptional) bit-exact.
func BuildCipherProgram(enc *limb.Encryptor, p Program) (CipherProgram, error) {
	out := make(CipherProgram, len(p))
	for i, inst := range p {
		cinst, err := buildCipherInstruction(enc, inst)
		if err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, inst.Op, err)
		}
		out[i] = cinst
	}
	return out, nil
}

func buildCipherInstruction(enc *limb.Encryptor, inst Instruction) (CipherInstruction, error) {
	out := CipherInstruction{
		Op:         inst.Op,
		CanRepeat:  inst.CanRepeat,
		IsOptional: inst.IsOptional,
		Target:     inst.Target,
		Action:     inst.Action,
	}

	switch inst.Op {
	case OpChar, OpRepetition, OpOptionalChar:
		out.Char = enc.Encrypt(inst.Char)
	case OpIntervalChar:
		ranges := make([]limb.CipherRange, len(inst.Ranges))
		for i, r := range inst.Ranges {
			ranges[i] = limb.CipherRange{
				Start: enc.Encrypt(r.Start),
				End:   enc.Encrypt(r.End),
			}
		}
		out.Ranges = ranges
	case OpMatch, OpStart, OpBranch, OpJump:
		// no byte operand to encrypt
	default:
		return CipherInstruction{}, fmt.Errorf("unknown op %s", inst.Op)
	}

	return out, nil
}
