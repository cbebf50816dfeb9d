// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fherex/fhe"
	"github.com/luxfi/fherex/limb"
)

type cipherTestContext struct {
	enc *limb.Encryptor
	dec *limb.Decryptor
}

func newCipherTestContext(t *testing.T) *cipherTestContext {
	t.Helper()
	params, err := fhe.NewParametersFromLiteral(fhe.PN10QP27)
	require.NoError(t, err)

	kg := fhe.NewKeyGenerator(params)
	sk := kg.GenSecretKey()

	fheEnc := fhe.NewEncryptor(params, sk)
	fheDec := fhe.NewDecryptor(params, sk)

	limbEnc, err := limb.NewEncryptor(fheEnc, limb.Width4)
	require.NoError(t, err)

	return &cipherTestContext{
		enc: limbEnc,
		dec: limb.NewDecryptor(fheDec),
	}
}

func TestBuildCipherProgramPreservesControlFlow(t *testing.T) {
	tc := newCipherTestContext(t)
	p := buildSimpleProgram()

	cp, err := BuildCipherProgram(tc.enc, p)
	require.NoError(t, err)
	require.Len(t, cp, len(p))

	for i, inst := range p {
		require.Equal(t, inst.Op, cp[i].Op, "op preserved at %d", i)
		require.Equal(t, inst.Action, cp[i].Action, "action preserved at %d", i)
		require.Equal(t, inst.Target, cp[i].Target, "target preserved at %d", i)
		require.Equal(t, inst.CanRepeat, cp[i].CanRepeat, "can-repeat preserved at %d", i)
		require.Equal(t, inst.IsOptional, cp[i].IsOptional, "is-optional preserved at %d", i)
	}

	require.Equal(t, byte('a'), tc.dec.Decrypt(cp[0].Char))
	require.Equal(t, byte('b'), tc.dec.Decrypt(cp[1].Char))
}

func TestBuildCipherProgramIntervalRanges(t *testing.T) {
	tc := newCipherTestContext(t)
	p := Program{
		{
			Op:     OpIntervalChar,
			Ranges: []Range{{Start: 'a', End: 'z'}},
			Action: Action{Next: 1, Offset: 1},
		},
	}

	cp, err := BuildCipherProgram(tc.enc, p)
	require.NoError(t, err)
	require.Len(t, cp[0].Ranges, 1)
	require.Equal(t, byte('a'), tc.dec.Decrypt(cp[0].Ranges[0].Start))
	require.Equal(t, byte('z'), tc.dec.Decrypt(cp[0].Ranges[0].End))
}

func TestBuildCipherProgramControlOpsHaveNoOperand(t *testing.T) {
	tc := newCipherTestContext(t)
	p := Program{
		{Op: OpStart, Action: Action{Next: 1, Offset: 0}},
		{Op: OpBranch, Target: 3, Action: Action{Next: 2, Offset: 0}},
		{Op: OpJump, Target: 0, Action: Action{Next: 3, Offset: 0}},
		{Op: OpMatch, Action: Action{Next: 4, Offset: 0}},
	}

	cp, err := BuildCipherProgram(tc.enc, p)
	require.NoError(t, err)
	require.Len(t, cp, 4)
	require.Equal(t, 3, cp[1].Target)
	require.Equal(t, 0, cp[2].Target)
	for i, ci := range cp {
		require.Empty(t, ci.Char.Limbs, "no char operand at %d", i)
		require.Empty(t, ci.Ranges, "no range operand at %d", i)
	}
}
