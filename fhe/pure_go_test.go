//go:build !cgo
// +build !cgo

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// This file tests pure Go mode (CGO_ENABLED=0)

package fhe

import (
	"testing"
)

// TestPureGoMode verifies FHE works without CGO
func TestPureGoMode(t *testing.T) {
	t.Log("Running in Pure Go mode (CGO_ENABLED=0)")

	tc := newTestContext(t)

	t.Run("BooleanEncryptDecrypt", func(t *testing.T) {
		testBooleanEncryptDecrypt(t, tc)
	})

	t.Run("BooleanGates", func(t *testing.T) {
		testBooleanGates(t, tc)
	})
}

// TestPureGoSerialization tests serialization in pure Go mode
func TestPureGoSerialization(t *testing.T) {
	tc := newTestContext(t)
	testKeySerialization(t, tc)
}

func BenchmarkPureGoOperations(b *testing.B) {
	params, _ := NewParametersFromLiteral(PN10QP27)
	kg := NewKeyGenerator(params)
	sk := kg.GenSecretKey()
	bsk := kg.GenBootstrapKey(sk)
	enc := NewEncryptor(params, sk)
	eval := NewEvaluator(params, bsk)

	ctA := enc.Encrypt(true)
	ctB := enc.Encrypt(false)

	b.Run("PureGo_AND", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			eval.AND(ctA, ctB)
		}
	})

	b.Run("PureGo_XOR", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			eval.XOR(ctA, ctB)
		}
	})
}
