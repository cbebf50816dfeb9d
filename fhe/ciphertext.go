// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package fhe

import (
	"github.com/luxfi/lattice/v6/core/rlwe"
)

// Ciphertext wraps a single-bit boolean LWE ciphertext, encoded as a
// degree-1 RLWE ciphertext over the LWE-dimension ring. CopyNew,
// MarshalBinary, UnmarshalBinary, Level and IsNTT are promoted from the
// embedded *rlwe.Ciphertext.
type Ciphertext struct {
	*rlwe.Ciphertext
}
