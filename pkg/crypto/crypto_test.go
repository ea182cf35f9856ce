package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "0123456789abcdef0123456789abcdef" // 32 bytes
	testIV  = "0123456789abcdef"                 // 16 bytes
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testKey, testIV)
	require.NoError(t, err)
	return codec
}

func TestNewCodec_KeyValidation(t *testing.T) {
	_, err := NewCodec("short", testIV)
	assert.Error(t, err)

	_, err = NewCodec(testKey, "short-iv")
	assert.Error(t, err)

	_, err = NewCodec(testKey, testIV)
	assert.NoError(t, err)

	// 16-byte keys are accepted too
	_, err = NewCodec("0123456789abcdef", testIV)
	assert.NoError(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	phones := []string{
		"13800138000",
		"13000000000",
		"19999999999",
		"15512345678",
		"18687654321",
	}
	for _, phone := range phones {
		encrypted, err := codec.Encrypt(phone)
		require.NoError(t, err)
		assert.NotEqual(t, phone, encrypted)

		decrypted, err := codec.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, phone, decrypted)
	}
}

func TestCodec_Deterministic(t *testing.T) {
	// The receiver-quota lookup matches on ciphertext equality, which only
	// works because the IV is fixed.
	codec := newTestCodec(t)

	a, err := codec.Encrypt("13800138000")
	require.NoError(t, err)
	b, err := codec.Encrypt("13800138000")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := codec.Encrypt("13800138001")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCodec_DecryptRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Decrypt("!!!not base64!!!")
	assert.Error(t, err)

	// valid base64 but truncated ciphertext
	_, err = codec.Decrypt("YWJj")
	assert.Error(t, err)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "138****8000", MaskPhone("13800138000"))
	assert.Equal(t, "155****5678", MaskPhone("15512345678"))
	// non-11-digit strings pass through untouched
	assert.Equal(t, "12345", MaskPhone("12345"))
	assert.Equal(t, "", MaskPhone(""))
}
