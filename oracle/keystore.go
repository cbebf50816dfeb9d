// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oracle

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/luxfi/fherex/fhe"
)

// Passphrase-protected at-rest storage for a serialized *fhe.SecretKey:
// scrypt key derivation feeding a nacl/secretbox sealed box, with a
// salt/nonce/length-prefixed-ciphertext wire layout. This is storage, not
// transport: a reference oracle still needs its key to come from somewhere
// to be runnable and testable outside a single process.
const (
	saltLen = 8

	// The 2009-recommended scrypt defaults with one extra power of two on N.
	scryptN = 32768
	scryptR = 8
	scryptP = 1

	keyLen            = 32
	secretboxNonceLen = 24
)

func deriveKey(passphrase string, salt []byte) ([keyLen]byte, error) {
	derived, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return [keyLen]byte{}, fmt.Errorf("derive key from passphrase: %w", err)
	}
	var key [keyLen]byte
	copy(key[:], derived)
	return key, nil
}

// SealSecretKey serializes sk and seals it under a key derived from
// passphrase, returning the sealed bytes: salt || nonce || length-prefixed
// ciphertext.
func SealSecretKey(passphrase string, sk *fhe.SecretKey) ([]byte, error) {
	plaintext, err := sk.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal secret key: %w", err)
	}

	var salt [saltLen]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt[:])
	if err != nil {
		return nil, err
	}

	var nonce [secretboxNonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nil, plaintext, &nonce, &key)

	var buf bytes.Buffer
	buf.Write(salt[:])
	buf.Write(nonce[:])
	if err := binary.Write(&buf, binary.BigEndian, int64(len(sealed))); err != nil {
		return nil, fmt.Errorf("write sealed-box length: %w", err)
	}
	buf.Write(sealed)

	return buf.Bytes(), nil
}

// OpenSecretKey reverses SealSecretKey: it derives the same key from
// passphrase and salt, opens the sealed box, and unmarshals the resulting
// bytes as an *fhe.SecretKey. A wrong passphrase and a corrupted/tampered
// input are indistinguishable by design: secretbox.Open simply fails to
// authenticate in both cases.
func OpenSecretKey(passphrase string, sealed []byte) (*fhe.SecretKey, error) {
	r := bytes.NewReader(sealed)

	var salt [saltLen]byte
	if _, err := io.ReadFull(r, salt[:]); err != nil {
		return nil, fmt.Errorf("read salt (input likely truncated): %w", err)
	}

	var nonce [secretboxNonceLen]byte
	if _, err := io.ReadFull(r, nonce[:]); err != nil {
		return nil, fmt.Errorf("read nonce (input likely truncated): %w", err)
	}

	var boxLen int64
	if err := binary.Read(r, binary.BigEndian, &boxLen); err != nil {
		return nil, fmt.Errorf("read sealed-box length (input likely truncated): %w", err)
	}
	if boxLen < 0 || boxLen > int64(len(sealed)) {
		return nil, errors.New("oracle: truncated or corrupt key store")
	}

	box := make([]byte, boxLen)
	if _, err := io.ReadFull(r, box); err != nil {
		return nil, errors.New("oracle: truncated or corrupt key store (sealed box)")
	}

	key, err := deriveKey(passphrase, salt[:])
	if err != nil {
		return nil, err
	}

	plaintext, ok := secretbox.Open(nil, box, &nonce, &key)
	if !ok {
		return nil, errors.New("oracle: corrupt key store, tampered data, or wrong passphrase")
	}

	sk := new(fhe.SecretKey)
	if err := sk.UnmarshalBinary(plaintext); err != nil {
		return nil, fmt.Errorf("unmarshal secret key: %w", err)
	}
	return sk, nil
}
