package passwords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_PBKDF2RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(SchemePBKDF2, 1000)
	require.NoError(t, err)

	encoded, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", encoded)
	assert.True(t, strings.HasPrefix(encoded, "pbkdf2:sha256:1000$"))

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], SaltLength)
	assert.Len(t, parts[2], 64)

	assert.True(t, h.Verify(encoded, "correct horse"))
	for _, wrong := range []string{"", "correct horse ", "Correct horse", "battery staple"} {
		assert.False(t, h.Verify(encoded, wrong), "verified %q", wrong)
	}
}

func TestHasher_SaltsDiffer(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(SchemePBKDF2, 1000)
	require.NoError(t, err)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_VerifiesWerkzeugHash(t *testing.T) {
	t.Parallel()

	// Known PBKDF2-HMAC-SHA256 vector: "password", salt "salt", 1 iteration.
	encoded := "pbkdf2:sha256:1$salt$120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b"

	h, err := NewHasher(SchemePBKDF2, 1000)
	require.NoError(t, err)
	assert.True(t, h.Verify(encoded, "password"))
	assert.False(t, h.Verify(encoded, "passw0rd"))
}

func TestHasher_BcryptRoundTripAndCrossVerify(t *testing.T) {
	t.Parallel()

	bc, err := NewHasher(SchemeBcrypt, 0)
	require.NoError(t, err)
	encoded, err := bc.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$2"))

	pb, err := NewHasher(SchemePBKDF2, 1000)
	require.NoError(t, err)
	assert.True(t, pb.Verify(encoded, "s3cret"), "pbkdf2 hasher must still verify bcrypt hashes")
	assert.False(t, pb.Verify(encoded, "nope"))
}

func TestHasher_RejectsMalformed(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(SchemePBKDF2, 1000)
	require.NoError(t, err)
	for _, encoded := range []string{
		"",
		"plaintext",
		"pbkdf2:sha256$salt$abc",
		"pbkdf2:sha1:1000$salt$abc",
		"pbkdf2:sha256:zero$salt$abc",
		"pbkdf2:sha256:-5$salt$abc",
		"scrypt:32768:8:1$salt$abc",
	} {
		assert.False(t, h.Verify(encoded, "password"), "accepted %q", encoded)
	}
}

func TestNewHasher(t *testing.T) {
	t.Parallel()

	_, err := NewHasher("md5", 1)
	assert.ErrorIs(t, err, ErrUnknownScheme)

	h, err := NewHasher(SchemePBKDF2, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultIterations, h.iterations)
}
