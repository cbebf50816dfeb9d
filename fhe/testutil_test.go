// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package fhe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testContext holds common test fixtures for FHE tests.
type testContext struct {
	params Parameters
	kg     *KeyGenerator
	sk     *SecretKey
	bsk    *BootstrapKey
}

// newTestContext creates a test context with standard parameters.
func newTestContext(t testing.TB) *testContext {
	t.Helper()
	params, err := NewParametersFromLiteral(PN10QP27)
	require.NoError(t, err, "create parameters")

	kg := NewKeyGenerator(params)
	sk := kg.GenSecretKey()
	bsk := kg.GenBootstrapKey(sk)

	return &testContext{
		params: params,
		kg:     kg,
		sk:     sk,
		bsk:    bsk,
	}
}

// testBooleanEncryptDecrypt tests boolean encrypt/decrypt roundtrip.
func testBooleanEncryptDecrypt(t *testing.T, tc *testContext) {
	t.Helper()
	enc := NewEncryptor(tc.params, tc.sk)
	dec := NewDecryptor(tc.params, tc.sk)

	ct := enc.Encrypt(true)
	require.True(t, dec.Decrypt(ct), "encrypt/decrypt true")

	ct = enc.Encrypt(false)
	require.False(t, dec.Decrypt(ct), "encrypt/decrypt false")
}

// testBooleanGates tests boolean gate operations.
func testBooleanGates(t *testing.T, tc *testContext) {
	t.Helper()
	enc := NewEncryptor(tc.params, tc.sk)
	dec := NewDecryptor(tc.params, tc.sk)
	eval := NewEvaluator(tc.params, tc.bsk)

	ct1 := enc.Encrypt(true)
	ct2 := enc.Encrypt(false)

	// AND
	result, err := eval.AND(ct1, ct2)
	require.NoError(t, err)
	require.False(t, dec.Decrypt(result), "AND(true, false)")

	// OR
	result, err = eval.OR(ct1, ct2)
	require.NoError(t, err)
	require.True(t, dec.Decrypt(result), "OR(true, false)")

	// XOR
	result, err = eval.XOR(ct1, ct2)
	require.NoError(t, err)
	require.True(t, dec.Decrypt(result), "XOR(true, false)")
}

// testKeySerialization tests key serialization roundtrip.
func testKeySerialization(t *testing.T, tc *testContext) {
	t.Helper()
	data, err := tc.sk.MarshalBinary()
	require.NoError(t, err, "marshal secret key")

	restored := new(SecretKey)
	err = restored.UnmarshalBinary(data)
	require.NoError(t, err, "unmarshal secret key")

	// Verify restored key works
	enc := NewEncryptor(tc.params, restored)
	dec := NewDecryptor(tc.params, restored)
	ct := enc.Encrypt(true)
	require.True(t, dec.Decrypt(ct), "restored key works")
}
