// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package fherex evaluates a regular expression against an input string
// encrypted end-to-end under fully-homomorphic encryption: the matcher
// never sees plaintext, only the FHE back-end's ciphertexts and the
// decision oracle's boolean reductions of them.
//
// The package exposes a small set of flat, single-purpose entry points —
// Compile, EncryptProgram, EncryptInput, Run — as a facade over compiler,
// program, limb, vm and oracle, so a caller outside this module never has
// to wire those packages together by hand.
package fherex

import (
	"github.com/luxfi/fherex/compiler"
	"github.com/luxfi/fherex/limb"
	"github.com/luxfi/fherex/oracle"
	"github.com/luxfi/fherex/program"
	"github.com/luxfi/fherex/vm"
)

// Compile parses pattern and lowers it to a plaintext bytecode program.
// Pattern syntax is a byte-oriented subset of Perl-compatible regular
// expressions; see compiler.CompileError for the ways compilation can
// fail.
func Compile(pattern string) (program.Program, error) {
	return compiler.Compile(pattern)
}

// EncryptProgram encrypts every literal byte operand of p (char literals
// and interval-range endpoints) under enc, producing the cipher program a
// VM can run.
func EncryptProgram(enc *limb.Encryptor, p program.Program) (program.CipherProgram, error) {
	return program.BuildCipherProgram(enc, p)
}

// EncryptInput encrypts every byte of input under enc, in order, producing
// the ciphertext vector a VM matches a cipher program against.
func EncryptInput(enc *limb.Encryptor, input []byte) []limb.Cipher {
	out := make([]limb.Cipher, len(input))
	for i, b := range input {
		out[i] = enc.Encrypt(b)
	}
	return out
}

// Run interprets cp against encryptedInput, using sk for homomorphic
// character/range comparisons and o to reduce each comparison result to a
// plaintext boolean. It constructs a fresh VM for this one match; callers
// running the same cp against many inputs should build a vm.VM directly
// and call Reset between runs instead of calling Run repeatedly.
func Run(cp program.CipherProgram, sk *limb.ServerKey, encryptedInput []limb.Cipher, o oracle.Oracle) (bool, error) {
	return vm.New(cp, sk).Run(encryptedInput, o)
}
