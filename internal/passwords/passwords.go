// Package passwords hashes and verifies account passwords.
//
// New hashes use either PBKDF2-HMAC-SHA256 in the werkzeug encoding
// "pbkdf2:sha256:<iterations>$<salt>$<hex digest>" or bcrypt. Verification
// dispatches on the stored hash, so accounts created under either scheme keep
// working when PASSWORD_SCHEME changes.
package passwords

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemePBKDF2 = "pbkdf2"
	SchemeBcrypt = "bcrypt"

	// DefaultIterations matches current werkzeug defaults.
	DefaultIterations = 600000
	// SaltLength is the number of salt characters in PBKDF2 hashes.
	SaltLength = 8

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyLength = sha256.Size
)

// ErrUnknownScheme is returned for a scheme other than pbkdf2 or bcrypt.
var ErrUnknownScheme = errors.New("unknown password scheme")

// Hasher produces and checks password hashes.
type Hasher struct {
	scheme     string
	iterations int
}

// NewHasher returns a Hasher for scheme. Non-positive iterations fall back to
// DefaultIterations.
func NewHasher(scheme string, iterations int) (*Hasher, error) {
	switch scheme {
	case SchemePBKDF2, SchemeBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{scheme: scheme, iterations: iterations}, nil
}

// Hash returns the encoded hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.scheme == SchemeBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(b), nil
	}

	salt, err := randomSalt(SaltLength)
	if err != nil {
		return "", err
	}
	digest := pbkdf2Hex(password, salt, h.iterations)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.iterations, salt, digest), nil
}

// Verify reports whether password matches the encoded hash.
func (h *Hasher) Verify(encoded, password string) bool {
	if strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$") || strings.HasPrefix(encoded, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	}

	method, salt, digest, ok := splitPBKDF2(encoded)
	if !ok {
		return false
	}
	iterations, ok := parseMethod(method)
	if !ok {
		return false
	}
	want := pbkdf2Hex(password, salt, iterations)
	return subtle.ConstantTimeCompare([]byte(want), []byte(digest)) == 1
}

func splitPBKDF2(encoded string) (method, salt, digest string, ok bool) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// parseMethod accepts "pbkdf2:sha256:<iterations>".
func parseMethod(method string) (int, bool) {
	fields := strings.Split(method, ":")
	if len(fields) != 3 || fields[0] != "pbkdf2" || fields[1] != "sha256" {
		return 0, false
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func pbkdf2Hex(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

func randomSalt(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(saltChars)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		b.WriteByte(saltChars[idx.Int64()])
	}
	return b.String(), nil
}
