// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package fhe

import (
	"github.com/luxfi/lattice/v6/core/rlwe"
)

// Encryptor encrypts single-bit booleans under the LWE-dimension ring.
// A fresh ciphertext carries a signed message encoded as +q/8 (true) or
// -q/8 (false), the same scale the gate test polynomials decode.
type Encryptor struct {
	params Parameters
	enc    *rlwe.Encryptor
}

// NewEncryptor creates an Encryptor bound to sk.
func NewEncryptor(params Parameters, sk *SecretKey) *Encryptor {
	return &Encryptor{
		params: params,
		enc:    rlwe.NewEncryptor(params.paramsLWE, sk.skLWE),
	}
}

// Encrypt encrypts a single boolean value.
func (e *Encryptor) Encrypt(value bool) *Ciphertext {
	ringQ := e.params.paramsLWE.RingQ()
	q := e.params.QLWE()
	mu := q / 8

	pt := rlwe.NewPlaintext(e.params.paramsLWE, e.params.paramsLWE.MaxLevel())
	if value {
		pt.Value.Coeffs[0][0] = mu
	} else {
		pt.Value.Coeffs[0][0] = q - mu
	}
	ringQ.NTT(pt.Value, pt.Value)
	pt.IsNTT = true

	ct := rlwe.NewCiphertext(e.params.paramsLWE, 1, e.params.paramsLWE.MaxLevel())
	e.enc.Encrypt(pt, ct)

	return &Ciphertext{ct}
}

// Decryptor decrypts single-bit booleans encrypted under the LWE-dimension
// ring's matching secret key.
type Decryptor struct {
	params Parameters
	dec    *rlwe.Decryptor
}

// NewDecryptor creates a Decryptor bound to sk.
func NewDecryptor(params Parameters, sk *SecretKey) *Decryptor {
	return &Decryptor{
		params: params,
		dec:    rlwe.NewDecryptor(params.paramsLWE, sk.skLWE),
	}
}

// Decrypt recovers the plaintext boolean carried by ct.
func (d *Decryptor) Decrypt(ct *Ciphertext) bool {
	ringQ := d.params.paramsLWE.RingQ().AtLevel(ct.Level())

	pt := rlwe.NewPlaintext(d.params.paramsLWE, ct.Level())
	d.dec.Decrypt(ct.Ciphertext, pt)

	if pt.IsNTT {
		ringQ.INTT(pt.Value, pt.Value)
	}

	q := d.params.QLWE()
	coeff := pt.Value.Coeffs[0][0]
	// Round to the nearer of the two message points, +q/8 (true) or -q/8=q-q/8 (false).
	return coeff < q/2
}
