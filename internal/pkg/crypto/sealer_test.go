package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)
	require.True(t, s.Configured())

	sealed, err := s.Seal([]byte(`{"Authorization":"Bearer abc"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "Bearer")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"Authorization":"Bearer abc"}`, string(plain))
}

func TestSealer_TamperedCiphertext(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = s.Open(sealed)
	assert.Error(t, err)

	_, err = s.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestSealer_Unconfigured(t *testing.T) {
	s, err := NewSealer("")
	require.NoError(t, err)
	assert.False(t, s.Configured())

	sealed, err := s.Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(sealed))
}

func TestNewSealer_RejectsShortKey(t *testing.T) {
	_, err := NewSealer(strings.Repeat("a", 10))
	assert.Error(t, err)
}
