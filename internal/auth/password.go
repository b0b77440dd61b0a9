// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth implements the account-security core: argon2id credential
// hashing, the failed-login lockout state machine, session identifiers,
// signed bearer tokens, role gates and registration policy.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
// It signals corrupt data, never a wrong password.
var ErrMalformedHash = errors.New("malformed password hash")

// Params holds the argon2id cost parameters.
type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams returns the OWASP recommended second choice (m=19456, t=2, p=1).
// It fits on 256MB VMs.
func DefaultParams() Params {
	return Params{
		Time:    2,
		Memory:  19 * 1024,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// Validate checks that the parameters are usable for argon2id.
func (p Params) Validate() error {
	switch {
	case p.Time < 1:
		return errors.New("argon2 time cost must be at least 1")
	case p.Threads < 1:
		return errors.New("argon2 parallelism must be at least 1")
	case p.Memory < 8*uint32(p.Threads):
		return fmt.Errorf("argon2 memory must be at least %d KiB", 8*uint32(p.Threads))
	case p.KeyLen < 16:
		return errors.New("argon2 key length must be at least 16 bytes")
	case p.SaltLen < 8:
		return errors.New("argon2 salt length must be at least 8 bytes")
	}
	return nil
}

// Hasher hashes and verifies passwords with a fixed set of parameters.
// It is safe for concurrent use.
type Hasher struct {
	params Params
	// dummyHash is verified for unknown accounts so their response time
	// matches a wrong password.
	dummyHash string
}

// NewHasher creates a Hasher with the given parameters.
func NewHasher(p Params) (*Hasher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := &Hasher{params: p}
	dummy, err := h.Hash("lingocms-unknown-account")
	if err != nil {
		return nil, err
	}
	h.dummyHash = dummy
	return h, nil
}

// Params returns the parameters used for new hashes.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash creates an Argon2id hash of the password with a fresh random salt.
// Returns encoded hash in format: $argon2id$v=19$m=19456,t=2,p=1$salt$hash
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify checks a password against an encoded hash in constant time.
// A mismatch is (false, nil); a corrupt hash returns ErrMalformedHash.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	decoded, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(password), decoded.salt, decoded.params.Time, decoded.params.Memory,
		decoded.params.Threads, uint32(len(decoded.key)))
	return subtle.ConstantTimeCompare(key, decoded.key) == 1, nil
}

// VerifyDummy performs a full verification against a throwaway hash built
// with the current parameters and discards the result.
func (h *Hasher) VerifyDummy(password string) {
	_, _ = h.Verify(password, h.dummyHash)
}

// NeedsRehash reports whether the encoded hash was produced with weaker
// parameters than the current ones. Unparseable hashes always need a rehash.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	decoded, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}

	p := decoded.params
	return p.Memory < h.params.Memory ||
		p.Time < h.params.Time ||
		p.Threads < h.params.Threads ||
		p.KeyLen < h.params.KeyLen ||
		p.SaltLen < h.params.SaltLen
}

type decodedHash struct {
	params Params
	salt   []byte
	key    []byte
}

func decodeHash(encodedHash string) (*decodedHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: unexpected segment count", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("%w: unsupported hash type %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: parsing version: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrMalformedHash, version)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, fmt.Errorf("%w: parsing parameters: %v", ErrMalformedHash, err)
	}
	if p.Time < 1 || p.Threads < 1 || p.Memory < 8*uint32(p.Threads) {
		return nil, fmt.Errorf("%w: invalid parameters", ErrMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: decoding salt", ErrMalformedHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, fmt.Errorf("%w: decoding key", ErrMalformedHash)
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return &decodedHash{params: p, salt: salt, key: key}, nil
}
