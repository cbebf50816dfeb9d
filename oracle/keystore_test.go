// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fherex/fhe"
)

func TestSealOpenSecretKeyRoundtrip(t *testing.T) {
	params, err := fhe.NewParametersFromLiteral(fhe.PN10QP27)
	require.NoError(t, err)
	kg := fhe.NewKeyGenerator(params)
	sk := kg.GenSecretKey()

	sealed, err := SealSecretKey("correct horse battery staple", sk)
	require.NoError(t, err)
	require.NotEmpty(t, sealed)

	opened, err := OpenSecretKey("correct horse battery staple", sealed)
	require.NoError(t, err)

	// The recovered key must behave identically to the original: encrypt
	// under one, decrypt under the other.
	enc := fhe.NewEncryptor(params, sk)
	dec := fhe.NewDecryptor(params, opened)
	require.True(t, dec.Decrypt(enc.Encrypt(true)))
	require.False(t, dec.Decrypt(enc.Encrypt(false)))
}

func TestOpenSecretKeyWrongPassphrase(t *testing.T) {
	params, err := fhe.NewParametersFromLiteral(fhe.PN10QP27)
	require.NoError(t, err)
	kg := fhe.NewKeyGenerator(params)
	sk := kg.GenSecretKey()

	sealed, err := SealSecretKey("the real passphrase", sk)
	require.NoError(t, err)

	_, err = OpenSecretKey("a wrong passphrase", sealed)
	require.Error(t, err)
}

func TestOpenSecretKeyTruncatedInput(t *testing.T) {
	_, err := OpenSecretKey("anything", []byte{1, 2, 3})
	require.Error(t, err)
}
