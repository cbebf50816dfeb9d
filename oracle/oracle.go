// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package oracle supplies the VM's decision oracle: the single capability
// that reduces a ciphertext-valued boolean to a plaintext boolean. The VM
// treats every call as its unit of cost and makes no assumption about how
// the reduction happens; this package provides the canonical deployment (a
// party holding the client key, decrypting) plus at-rest storage for that
// key.
package oracle

import (
	"fmt"

	"github.com/luxfi/fherex/fhe"
)

// Oracle reduces a single ciphertext to a plaintext boolean. It is the only
// place plaintext VM control flow depends on ciphertext contents.
type Oracle interface {
	Reduce(ct *fhe.Ciphertext) (bool, error)
}

// ClientKeyOracle is the canonical deployment: a party holding the client's
// secret key, decrypting each comparison result as the VM asks for it.
type ClientKeyOracle struct {
	dec *fhe.Decryptor
}

// NewClientKeyOracle wraps dec as an Oracle.
func NewClientKeyOracle(dec *fhe.Decryptor) *ClientKeyOracle {
	return &ClientKeyOracle{dec: dec}
}

// Reduce decrypts ct. Decryption under this scheme cannot fail, but the
// method still returns an error to satisfy Oracle and to leave room for
// deployments (e.g. a programmable-bootstrap circuit) where reduction is
// fallible.
func (o *ClientKeyOracle) Reduce(ct *fhe.Ciphertext) (bool, error) {
	if ct == nil {
		return false, fmt.Errorf("oracle: nil ciphertext")
	}
	return o.dec.Decrypt(ct), nil
}
