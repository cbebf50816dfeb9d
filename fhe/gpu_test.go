//go:build cgo
// +build cgo

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// This file tests the package built with CGO enabled

package fhe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCGOMode verifies FHE works with CGO enabled
func TestCGOMode(t *testing.T) {
	t.Log("Running in CGO mode (CGO_ENABLED=1)")

	tc := newTestContext(t)

	t.Run("BooleanEncryptDecrypt", func(t *testing.T) {
		testBooleanEncryptDecrypt(t, tc)
	})

	t.Run("BooleanGates", func(t *testing.T) {
		testBooleanGates(t, tc)
	})

	t.Run("BooleanMUX", func(t *testing.T) {
		// MUX test is CGO-specific (additional gate)
		enc := NewEncryptor(tc.params, tc.sk)
		dec := NewDecryptor(tc.params, tc.sk)
		eval := NewEvaluator(tc.params, tc.bsk)

		sel := enc.Encrypt(true)
		ctTrue := enc.Encrypt(true)
		ctFalse := enc.Encrypt(false)
		result, err := eval.MUX(sel, ctTrue, ctFalse)
		require.NoError(t, err)
		require.True(t, dec.Decrypt(result), "MUX(true, true, false)")
	})
}

// TestCGOSerialization tests serialization with CGO enabled
func TestCGOSerialization(t *testing.T) {
	tc := newTestContext(t)

	t.Run("SecretKey", func(t *testing.T) {
		testKeySerialization(t, tc)
	})

	t.Run("BootstrapKey", func(t *testing.T) {
		t.Skip("TODO(fherex#2): BootstrapKey gob interface deserialization bug")
		data, err := tc.bsk.MarshalBinary()
		require.NoError(t, err)

		restored := new(BootstrapKey)
		err = restored.UnmarshalBinary(data)
		require.NoError(t, err)

		enc := NewEncryptor(tc.params, tc.sk)
		dec := NewDecryptor(tc.params, tc.sk)
		eval := NewEvaluator(tc.params, restored)

		ct1 := enc.Encrypt(true)
		ct2 := enc.Encrypt(true)
		result, err := eval.AND(ct1, ct2)
		require.NoError(t, err)
		require.True(t, dec.Decrypt(result))
	})
}

func BenchmarkCGOOperations(b *testing.B) {
	params, _ := NewParametersFromLiteral(PN10QP27)
	kg := NewKeyGenerator(params)
	sk := kg.GenSecretKey()
	bsk := kg.GenBootstrapKey(sk)
	enc := NewEncryptor(params, sk)
	eval := NewEvaluator(params, bsk)

	ctA := enc.Encrypt(true)
	ctB := enc.Encrypt(false)

	b.Run("CGO_AND", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			eval.AND(ctA, ctB)
		}
	})

	b.Run("CGO_XOR", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			eval.XOR(ctA, ctB)
		}
	})
}
