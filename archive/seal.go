// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package archive

import (
	"crypto/rand"
	"io"

	"github.com/juju/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// scrypt cost parameters.
var (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

type key [keySize]byte

func deriveKey(secret string, salt []byte) (*key, error) {
	raw, err := scrypt.Key([]byte(secret), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, errors.Annotate(err, "deriving archive key")
	}
	var k key
	copy(k[:], raw)
	return &k, nil
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Trace(err)
	}
	return salt, nil
}

// seal encrypts plain with k, prefixing the random nonce.
func seal(k *key, plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Trace(err)
	}
	arr := (*[keySize]byte)(k)
	return secretbox.Seal(nonce[:], plain, &nonce, arr), nil
}

// open reverses seal.
func open(k *key, sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, errors.NotValidf("sealed entry of %d bytes", len(sealed))
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	arr := (*[keySize]byte)(k)
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, arr)
	if !ok {
		return nil, errors.Unauthorizedf("wrong archive secret")
	}
	return plain, nil
}
