// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package fhe

import (
	"fmt"

	"github.com/luxfi/lattice/v6/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v6/core/rlwe"
	"github.com/luxfi/lattice/v6/ring"
)

// SecretKey holds the secret key material for both rings an evaluator
// switches between: the blind-rotation ring and the LWE-dimension ring.
type SecretKey struct {
	skBR  *rlwe.SecretKey
	skLWE *rlwe.SecretKey
}

// MarshalBinary serializes the secret key.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	br, err := sk.skBR.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal blind-rotation secret key: %w", err)
	}
	lwe, err := sk.skLWE.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal LWE-dimension secret key: %w", err)
	}

	out := make([]byte, 0, 8+len(br)+len(lwe))
	out = appendUint64(out, uint64(len(br)))
	out = append(out, br...)
	out = appendUint64(out, uint64(len(lwe)))
	out = append(out, lwe...)
	return out, nil
}

// UnmarshalBinary deserializes a secret key.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	brLen, data, err := readUint64Prefixed(data)
	if err != nil {
		return fmt.Errorf("read blind-rotation secret key length: %w", err)
	}
	if uint64(len(data)) < brLen {
		return fmt.Errorf("truncated blind-rotation secret key")
	}
	sk.skBR = new(rlwe.SecretKey)
	if err := sk.skBR.UnmarshalBinary(data[:brLen]); err != nil {
		return fmt.Errorf("unmarshal blind-rotation secret key: %w", err)
	}
	data = data[brLen:]

	lweLen, data, err := readUint64Prefixed(data)
	if err != nil {
		return fmt.Errorf("read LWE-dimension secret key length: %w", err)
	}
	if uint64(len(data)) < lweLen {
		return fmt.Errorf("truncated LWE-dimension secret key")
	}
	sk.skLWE = new(rlwe.SecretKey)
	if err := sk.skLWE.UnmarshalBinary(data[:lweLen]); err != nil {
		return fmt.Errorf("unmarshal LWE-dimension secret key: %w", err)
	}
	return nil
}

func appendUint64(b []byte, v uint64) []byte {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return append(b, buf[:]...)
}

func readUint64Prefixed(data []byte) (uint64, []byte, error) {
	if len(data) < 8 {
		return 0, nil, fmt.Errorf("short buffer")
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(data[i]) << (8 * i)
	}
	return v, data[8:], nil
}

// BootstrapKey holds the public material needed to homomorphically
// evaluate boolean gates without the secret key: the blind-rotation
// evaluation key (RGSW encryptions of the LWE secret bits under the
// blind-rotation ring), the key-switching key from the blind-rotation
// ring back down to the LWE-dimension ring, and one test polynomial
// per gate.
type BootstrapKey struct {
	BRK *blindrot.EvaluationKey
	KSK *rlwe.EvaluationKey

	TestPolyAND      *ring.Poly
	TestPolyOR       *ring.Poly
	TestPolyXOR      *ring.Poly
	TestPolyNAND     *ring.Poly
	TestPolyNOR      *ring.Poly
	TestPolyXNOR     *ring.Poly
	TestPolyMAJORITY *ring.Poly
	TestPolyID       *ring.Poly
}

// KeyGenerator produces secret keys and bootstrap keys for a fixed set
// of parameters.
type KeyGenerator struct {
	params Parameters
}

// NewKeyGenerator creates a key generator for params.
func NewKeyGenerator(params Parameters) *KeyGenerator {
	return &KeyGenerator{params: params}
}

// GenSecretKey draws a fresh secret key for both rings.
func (kg *KeyGenerator) GenSecretKey() *SecretKey {
	skBR := rlwe.NewKeyGenerator(kg.params.paramsBR).GenSecretKeyNew()
	skLWE := rlwe.NewKeyGenerator(kg.params.paramsLWE).GenSecretKeyNew()
	return &SecretKey{skBR: skBR, skLWE: skLWE}
}

// GenBootstrapKey builds the public bootstrap key for sk: the blind-rotation
// evaluation key, the key-switching key, and the gate test polynomials.
func (kg *KeyGenerator) GenBootstrapKey(sk *SecretKey) *BootstrapKey {
	brk := blindrot.GenEvaluationKeyNew(
		kg.params.paramsBR, sk.skBR,
		kg.params.paramsLWE, sk.skLWE,
		rlwe.EvaluationKeyParameters{},
	)

	ksk := rlwe.NewKeyGenerator(kg.params.paramsBR).GenEvaluationKeyNew(sk.skBR, sk.skLWE)

	ringQBR := kg.params.paramsBR.RingQ()
	qBR := kg.params.QBR()

	return &BootstrapKey{
		BRK:              brk,
		KSK:              ksk,
		TestPolyAND:      gateTestPoly(ringQBR, qBR, func(phase int32, n int32) bool { return phase > n/4 }),
		TestPolyOR:       gateTestPoly(ringQBR, qBR, func(phase int32, n int32) bool { return phase > -n/4 }),
		TestPolyXOR:      gateTestPoly(ringQBR, qBR, func(phase int32, n int32) bool { return phase > -n/4 && phase <= n/4 }),
		TestPolyNAND:     gateTestPoly(ringQBR, qBR, func(phase int32, n int32) bool { return phase <= n/4 }),
		TestPolyNOR:      gateTestPoly(ringQBR, qBR, func(phase int32, n int32) bool { return phase <= -n/4 }),
		TestPolyXNOR:     gateTestPoly(ringQBR, qBR, func(phase int32, n int32) bool { return !(phase > -n/4 && phase <= n/4) }),
		TestPolyMAJORITY: gateTestPoly(ringQBR, qBR, func(phase int32, _ int32) bool { return phase > 0 }),
		TestPolyID:       gateTestPoly(ringQBR, qBR, func(phase int32, _ int32) bool { return phase > 0 }),
	}
}

// gateTestPoly builds a step-function test polynomial over ringQ: for each
// coefficient index i, the signed phase is (i if i < N/2 else i - N), and the
// coefficient is set to +mu when predicate(phase, N) holds, or -mu (mod q)
// otherwise. mu = q/8 matches the message encoding used throughout the
// evaluator (addCiphertexts, addConstant, bootstrap).
func gateTestPoly(ringQ *ring.Ring, q uint64, predicate func(phase, n int32) bool) *ring.Poly {
	n := ringQ.N()
	mu := q / 8

	poly := ringQ.NewPoly()
	for i := 0; i < n; i++ {
		var phase int32
		if i < n/2 {
			phase = int32(i)
		} else {
			phase = int32(i) - int32(n)
		}

		if predicate(phase, int32(n)) {
			poly.Coeffs[0][i] = mu
		} else {
			poly.Coeffs[0][i] = q - mu
		}
	}
	return &poly
}
