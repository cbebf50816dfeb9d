// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package fherex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fherex/fhe"
	"github.com/luxfi/fherex/limb"
	"github.com/luxfi/fherex/oracle"
)

// TestEndToEndFacade exercises Compile, EncryptProgram, EncryptInput and Run
// together through this package's facade, the same way a caller outside
// this module would.
func TestEndToEndFacade(t *testing.T) {
	params, err := fhe.NewParametersFromLiteral(fhe.PN10QP27)
	require.NoError(t, err)

	kg := fhe.NewKeyGenerator(params)
	sk := kg.GenSecretKey()
	bsk := kg.GenBootstrapKey(sk)

	fheEnc := fhe.NewEncryptor(params, sk)
	fheDec := fhe.NewDecryptor(params, sk)
	eval := fhe.NewEvaluator(params, bsk)

	limbEnc, err := limb.NewEncryptor(fheEnc, limb.Width4)
	require.NoError(t, err)
	limbSK := limb.NewServerKey(eval)
	o := oracle.NewClientKeyOracle(fheDec)

	p, err := Compile("^ab+c$")
	require.NoError(t, err)

	cp, err := EncryptProgram(limbEnc, p)
	require.NoError(t, err)

	accept, err := Run(cp, limbSK, EncryptInput(limbEnc, []byte("abbbc")), o)
	require.NoError(t, err)
	require.True(t, accept)

	reject, err := Run(cp, limbSK, EncryptInput(limbEnc, []byte("ac")), o)
	require.NoError(t, err)
	require.False(t, reject)
}

func TestCompileSurfacesCompileError(t *testing.T) {
	_, err := Compile(`\b`)
	require.Error(t, err)
}
