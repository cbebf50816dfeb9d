// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package fhe

import (
	"fmt"

	"github.com/luxfi/lattice/v6/core/rlwe"
)

// ParametersLiteral describes the two RLWE rings a TFHE instance runs over:
// the blind-rotation ring (BR, large N, used during bootstrapping) and the
// LWE-dimension ring (LWE, small n, used to hold fresh ciphertexts between
// gates). Both are represented as degree-1 RLWE rings so the same rlwe
// package serves both roles.
type ParametersLiteral struct {
	// LogNBR is log2 of the blind-rotation ring degree.
	LogNBR int
	// LogQBR is the bit-size of the blind-rotation ring modulus.
	LogQBR int
	// LogNLWE is log2 of the LWE-dimension ring degree.
	LogNLWE int
	// LogQLWE is the bit-size of the LWE-dimension ring modulus.
	LogQLWE int
}

// PN10QP27 is the default parameter set: N=2^10 for blind rotation with a
// 27-bit modulus, and a matching reduced ring for LWE-dimension ciphertexts.
// Named after the blind-rotation ring degree and modulus bit-size, matching
// the convention used by the rest of the TFHE literature for named presets.
var PN10QP27 = ParametersLiteral{
	LogNBR:  10,
	LogQBR:  27,
	LogNLWE: 9,
	LogQLWE: 21,
}

// Parameters holds the two concrete RLWE parameter sets an Evaluator,
// KeyGenerator, Encryptor and Decryptor all share.
type Parameters struct {
	paramsBR  rlwe.Parameters
	paramsLWE rlwe.Parameters
	qBR       uint64
	qLWE      uint64
}

// NewParametersFromLiteral derives concrete ring parameters from a literal.
func NewParametersFromLiteral(lit ParametersLiteral) (Parameters, error) {
	paramsBR, err := rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN: lit.LogNBR,
		LogQ: []int{lit.LogQBR},
	})
	if err != nil {
		return Parameters{}, fmt.Errorf("create blind-rotation ring parameters: %w", err)
	}

	paramsLWE, err := rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN: lit.LogNLWE,
		LogQ: []int{lit.LogQLWE},
	})
	if err != nil {
		return Parameters{}, fmt.Errorf("create LWE-dimension ring parameters: %w", err)
	}

	return Parameters{
		paramsBR:  paramsBR,
		paramsLWE: paramsLWE,
		qBR:       paramsBR.RingQ().Modulus[0],
		qLWE:      paramsLWE.RingQ().Modulus[0],
	}, nil
}

// QBR returns the blind-rotation ring modulus.
func (p Parameters) QBR() uint64 { return p.qBR }

// QLWE returns the LWE-dimension ring modulus.
func (p Parameters) QLWE() uint64 { return p.qLWE }
