// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package limb

import (
	"fmt"

	"github.com/luxfi/fherex/fhe"
)

// ServerKey evaluates homomorphic comparisons over limb-decomposed
// ciphertexts. It holds no secret key material; every operation is a
// boolean-gate circuit over the Evaluator's bootstrap key alone.
type ServerKey struct {
	eval *fhe.Evaluator
}

// NewServerKey wraps a boolean gate evaluator for limb-level comparisons.
func NewServerKey(eval *fhe.Evaluator) *ServerKey {
	return &ServerKey{eval: eval}
}

// Equal returns a ciphertext that decrypts to true iff a and b encode the
// same byte: the product (AND-reduce) of per-limb equality.
func (sk *ServerKey) Equal(a, b Cipher) (*fhe.Ciphertext, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}

	var result *fhe.Ciphertext
	for i := range a.Limbs {
		limbEq, err := bitsEqual(sk.eval, a.Limbs[i], b.Limbs[i])
		if err != nil {
			return nil, fmt.Errorf("limb %d equality: %w", i, err)
		}
		if result == nil {
			result = limbEq
			continue
		}
		result, err = sk.eval.AND(result, limbEq)
		if err != nil {
			return nil, fmt.Errorf("fold limb %d equality: %w", i, err)
		}
	}
	return result, nil
}

// GreaterOrEqual computes a most-significant-limb-first recursive fold:
// gt_i OR (eq_i AND (gt_{i+1} OR (eq_{i+1} AND (... OR ge_last)))), using
// each limb's own strict > and == against the next limb up. Every
// intermediate value here is already a single boolean ciphertext rather
// than a small-integer sum, so the OR at each fold step already bounds the
// combination to {0,1} with no separate clamping step needed.
func (sk *ServerKey) GreaterOrEqual(a, b Cipher) (*fhe.Ciphertext, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}

	gts := make([]*fhe.Ciphertext, len(a.Limbs))
	eqs := make([]*fhe.Ciphertext, len(a.Limbs))
	for i := range a.Limbs {
		gt, eq, err := bitsCompare(sk.eval, a.Limbs[i], b.Limbs[i], false)
		if err != nil {
			return nil, fmt.Errorf("limb %d comparison: %w", i, err)
		}
		gts[i] = gt
		eqs[i] = eq
	}

	gt, eq, err := foldCompare(sk.eval, gts, eqs)
	if err != nil {
		return nil, fmt.Errorf("fold greater-or-equal: %w", err)
	}
	return sk.eval.OR(gt, eq)
}

// LessOrEqual is the mirror image of GreaterOrEqual with the strict
// comparison direction reversed.
func (sk *ServerKey) LessOrEqual(a, b Cipher) (*fhe.Ciphertext, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}

	lts := make([]*fhe.Ciphertext, len(a.Limbs))
	eqs := make([]*fhe.Ciphertext, len(a.Limbs))
	for i := range a.Limbs {
		lt, eq, err := bitsCompare(sk.eval, a.Limbs[i], b.Limbs[i], true)
		if err != nil {
			return nil, fmt.Errorf("limb %d comparison: %w", i, err)
		}
		lts[i] = lt
		eqs[i] = eq
	}

	lt, eq, err := foldCompare(sk.eval, lts, eqs)
	if err != nil {
		return nil, fmt.Errorf("fold less-or-equal: %w", err)
	}
	return sk.eval.OR(lt, eq)
}

// InRange tests whether x falls within the inclusive range r, computed as
// LessOrEqual(x, r.End) AND GreaterOrEqual(x, r.Start).
func (sk *ServerKey) InRange(x Cipher, r CipherRange) (*fhe.Ciphertext, error) {
	le, err := sk.LessOrEqual(x, r.End)
	if err != nil {
		return nil, fmt.Errorf("in_range upper bound: %w", err)
	}
	ge, err := sk.GreaterOrEqual(x, r.Start)
	if err != nil {
		return nil, fmt.Errorf("in_range lower bound: %w", err)
	}
	return sk.eval.AND(le, ge)
}

func sameShape(a, b Cipher) error {
	if a.Width != b.Width {
		return fmt.Errorf("mismatched limb widths: %+v vs %+v", a.Width, b.Width)
	}
	return nil
}

// bitsEqual folds XNOR+AND across a bit vector: true iff every bit matches.
func bitsEqual(eval *fhe.Evaluator, a, b []*fhe.Ciphertext) (*fhe.Ciphertext, error) {
	var result *fhe.Ciphertext
	for i := range a {
		bitEq, err := eval.XNOR(a[i], b[i])
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = bitEq
			continue
		}
		result, err = eval.AND(result, bitEq)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// bitsCompare folds a strict comparison (greater-than, or less-than when
// lessThan is set) and an equality test across a bit vector, most
// significant bit first. It returns (strict, equal) so the caller can
// either combine them (OR) into a non-strict comparison at this level, or
// feed them as one unit into an outer fold across limbs.
func bitsCompare(eval *fhe.Evaluator, a, b []*fhe.Ciphertext, lessThan bool) (*fhe.Ciphertext, *fhe.Ciphertext, error) {
	n := len(a)
	strict := make([]*fhe.Ciphertext, n)
	eq := make([]*fhe.Ciphertext, n)
	for i := 0; i < n; i++ {
		x, y := a[i], b[i]
		if lessThan {
			x, y = b[i], a[i]
		}
		s, err := eval.ANDYN(x, y) // x AND NOT y
		if err != nil {
			return nil, nil, err
		}
		e, err := eval.XNOR(a[i], b[i])
		if err != nil {
			return nil, nil, err
		}
		strict[i] = s
		eq[i] = e
	}
	return foldCompare(eval, strict, eq)
}

// foldCompare implements the MSB-down recursive fold shared by bit-level
// and limb-level comparisons: strict[i] OR (eq[i] AND fold(i+1..)), with
// the least-significant position (the "base") contributing only its own
// strict/eq pair with nothing further to combine.
func foldCompare(eval *fhe.Evaluator, strict, eq []*fhe.Ciphertext) (*fhe.Ciphertext, *fhe.Ciphertext, error) {
	n := len(strict)
	if n == 0 {
		return nil, nil, fmt.Errorf("empty comparison fold")
	}

	resultStrict := strict[n-1]
	resultEq := eq[n-1]
	for i := n - 2; i >= 0; i-- {
		eqAndRest, err := eval.AND(eq[i], resultStrict)
		if err != nil {
			return nil, nil, err
		}
		newStrict, err := eval.OR(strict[i], eqAndRest)
		if err != nil {
			return nil, nil, err
		}
		newEq, err := eval.AND(eq[i], resultEq)
		if err != nil {
			return nil, nil, err
		}
		resultStrict, resultEq = newStrict, newEq
	}
	return resultStrict, resultEq, nil
}
