// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package limb implements the limb-decomposed byte ciphertext encoding: an
// 8-bit byte split into a fixed number of equal-width limbs, each limb
// represented as a vector of single-bit boolean ciphertexts rather than a
// single small-modulus ciphertext, since the only gate primitive available
// is fhe.Evaluator's single-bit boolean gates.
package limb

import (
	"fmt"

	"github.com/luxfi/fherex/fhe"
)

// Width describes how a byte is split into limbs: Limbs limbs of
// BitsPerLimb bits each, most-significant limb first.
type Width struct {
	Limbs       int
	BitsPerLimb int
}

// Width2 splits a byte into four 2-bit limbs, mirroring the Rust crate's
// EncodedCipher2bits.
var Width2 = Width{Limbs: 4, BitsPerLimb: 2}

// Width4 splits a byte into two 4-bit limbs, mirroring the Rust crate's
// EncodedCipher4bits.
var Width4 = Width{Limbs: 2, BitsPerLimb: 4}

func (w Width) validate() error {
	if w.Limbs <= 0 || w.BitsPerLimb <= 0 {
		return fmt.Errorf("limb width must have positive limbs and bits-per-limb")
	}
	if w.Limbs*w.BitsPerLimb != 8 {
		return fmt.Errorf("limb width %d limbs x %d bits must total 8 bits, got %d", w.Limbs, w.BitsPerLimb, w.Limbs*w.BitsPerLimb)
	}
	return nil
}

// Cipher is an encrypted byte: Limbs limbs, most-significant first; within
// each limb, bits are ordered most-significant first.
type Cipher struct {
	Width Width
	Limbs [][]*fhe.Ciphertext
}

// CipherRange is an encrypted inclusive byte range, used by IntervalChar
// instructions.
type CipherRange struct {
	Start Cipher
	End   Cipher
}

// Encryptor encrypts plaintext bytes into limb-decomposed ciphertexts.
type Encryptor struct {
	enc   *fhe.Encryptor
	width Width
}

// NewEncryptor creates an Encryptor that splits bytes according to width.
func NewEncryptor(enc *fhe.Encryptor, width Width) (*Encryptor, error) {
	if err := width.validate(); err != nil {
		return nil, err
	}
	return &Encryptor{enc: enc, width: width}, nil
}

// Encrypt splits b into limbs and encrypts every bit of every limb.
func (e *Encryptor) Encrypt(b byte) Cipher {
	limbs := make([][]*fhe.Ciphertext, e.width.Limbs)
	for i, limbVal := range splitLimbs(b, e.width) {
		bits := make([]*fhe.Ciphertext, e.width.BitsPerLimb)
		for j := 0; j < e.width.BitsPerLimb; j++ {
			shift := e.width.BitsPerLimb - 1 - j
			bit := (limbVal>>uint(shift))&1 == 1
			bits[j] = e.enc.Encrypt(bit)
		}
		limbs[i] = bits
	}
	return Cipher{Width: e.width, Limbs: limbs}
}

// Decryptor recovers plaintext bytes from limb-decomposed ciphertexts.
type Decryptor struct {
	dec *fhe.Decryptor
}

// NewDecryptor creates a Decryptor.
func NewDecryptor(dec *fhe.Decryptor) *Decryptor {
	return &Decryptor{dec: dec}
}

// Decrypt recomposes the plaintext byte carried by ct.
func (d *Decryptor) Decrypt(ct Cipher) byte {
	limbVals := make([]int, len(ct.Limbs))
	for i, bits := range ct.Limbs {
		var v int
		for _, bit := range bits {
			v <<= 1
			if d.dec.Decrypt(bit) {
				v |= 1
			}
		}
		limbVals[i] = v
	}
	return joinLimbs(limbVals, ct.Width)
}

// splitLimbs decomposes b into width.Limbs big-endian limb values.
func splitLimbs(b byte, width Width) []int {
	limbs := make([]int, width.Limbs)
	for i := 0; i < width.Limbs; i++ {
		shift := uint(8 - (i+1)*width.BitsPerLimb)
		mask := byte(1<<uint(width.BitsPerLimb)) - 1
		limbs[i] = int((b >> shift) & mask)
	}
	return limbs
}

// joinLimbs recomposes a byte from width.Limbs big-endian limb values.
func joinLimbs(limbVals []int, width Width) byte {
	var b int
	for _, v := range limbVals {
		b = (b << uint(width.BitsPerLimb)) | v
	}
	return byte(b)
}
