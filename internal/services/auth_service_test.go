package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdentityProvider hands out canned sessions keyed by login code.
type fakeIdentityProvider struct {
	sessions map[string]*SessionInfo
	phones   map[string]*PhoneInfo
	err      error
}

func (f *fakeIdentityProvider) ExchangeCode(code string) (*SessionInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[code]
	if !ok {
		return nil, apperrors.IdentityProvider("code exchange rejected", errors.New("invalid code"))
	}
	return s, nil
}

func (f *fakeIdentityProvider) GetPhoneNumber(code string) (*PhoneInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.phones[code]
	if !ok {
		return nil, apperrors.IdentityProvider("phone code rejected", errors.New("invalid code"))
	}
	return p, nil
}

// encryptCarrierBundle builds the base64 session key, iv and ciphertext triple
// the provider channel delivers for a given phone number.
func encryptCarrierBundle(t *testing.T, phone string) (encryptedData, iv, sessionKey string) {
	t.Helper()
	key := []byte("0123456789abcdef")
	ivBytes := []byte("fedcba9876543210")

	plain, err := json.Marshal(map[string]any{
		"phoneNumber":     phone,
		"purePhoneNumber": phone,
		"countryCode":     86,
	})
	require.NoError(t, err)

	pad := aes.BlockSize - len(plain)%aes.BlockSize
	plain = append(plain, bytes.Repeat([]byte{byte(pad)}, pad)...)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, ivBytes).CryptBlocks(out, plain)

	return base64.StdEncoding.EncodeToString(out),
		base64.StdEncoding.EncodeToString(ivBytes),
		base64.StdEncoding.EncodeToString(key)
}

type authFixture struct {
	provider *fakeIdentityProvider
	users    *UserService
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := newTestConfig()
	codec := newTestCodec(t, cfg)
	st := store.New(newTestDB(t))
	users := NewUserService(st, codec)
	provider := &fakeIdentityProvider{
		sessions: map[string]*SessionInfo{},
		phones:   map[string]*PhoneInfo{},
	}
	return &authFixture{
		provider: provider,
		users:    users,
		svc:      NewAuthService(provider, users, cfg),
	}
}

func TestAuth_Login(t *testing.T) {
	f := newAuthFixture(t)
	data, iv, sessionKey := encryptCarrierBundle(t, "13800138000")
	f.provider.sessions["code-1"] = &SessionInfo{OpenID: "open-1", SessionKey: sessionKey}

	result, err := f.svc.Login("code-1", data, iv, "  小明\x00 ")
	require.NoError(t, err)
	assert.Equal(t, "open-1", result.OpenID)
	assert.Equal(t, "138****8000", result.MaskedPhone)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// the stored phone is recoverable only through the codec
	masked, err := f.users.MaskedPhone("open-1")
	require.NoError(t, err)
	assert.Equal(t, "138****8000", masked)

	// nickname is stored stripped of padding and control bytes
	user, err := f.users.store.FindUser("open-1")
	require.NoError(t, err)
	assert.Equal(t, "小明", user.NickName)

	claims, err := f.svc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "open-1", claims.OpenID)
}

func TestAuth_LoginBadCode(t *testing.T) {
	f := newAuthFixture(t)
	data, iv, _ := encryptCarrierBundle(t, "13800138000")

	_, err := f.svc.Login("nope", data, iv, "")
	assert.Equal(t, apperrors.CodeIdentityProvider, apperrors.CodeOf(err))
}

func TestAuth_LoginCorruptPayload(t *testing.T) {
	f := newAuthFixture(t)
	_, iv, sessionKey := encryptCarrierBundle(t, "13800138000")
	f.provider.sessions["code-1"] = &SessionInfo{OpenID: "open-1", SessionKey: sessionKey}

	_, err := f.svc.Login("code-1", "!!!not-base64!!!", iv, "")
	assert.Equal(t, apperrors.CodeIdentityProvider, apperrors.CodeOf(err))
}

func TestAuth_LoginBadPhoneInPayload(t *testing.T) {
	f := newAuthFixture(t)
	data, iv, sessionKey := encryptCarrierBundle(t, "20000000000")
	f.provider.sessions["code-1"] = &SessionInfo{OpenID: "open-1", SessionKey: sessionKey}

	_, err := f.svc.Login("code-1", data, iv, "")
	assert.Equal(t, apperrors.CodeInvalidPhone, apperrors.CodeOf(err))
}

func TestAuth_CapturePhoneDirect(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.phones["pcode-1"] = &PhoneInfo{PhoneNumber: "13912345678"}

	phone, err := f.svc.CapturePhone("pcode-1", "open-2")
	require.NoError(t, err)
	assert.Equal(t, "13912345678", phone)

	masked, err := f.users.MaskedPhone("open-2")
	require.NoError(t, err)
	assert.Equal(t, "139****5678", masked)
}

func TestAuth_CapturePhoneEncryptedFallback(t *testing.T) {
	f := newAuthFixture(t)
	data, iv, sessionKey := encryptCarrierBundle(t, "13912345678")
	f.provider.phones["pcode-2"] = &PhoneInfo{
		EncryptedData: data,
		IV:            iv,
		SessionKey:    sessionKey,
	}

	phone, err := f.svc.CapturePhone("pcode-2", "open-3")
	require.NoError(t, err)
	assert.Equal(t, "13912345678", phone)
}

func TestAuth_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	data, iv, sessionKey := encryptCarrierBundle(t, "13800138000")
	f.provider.sessions["code-1"] = &SessionInfo{OpenID: "open-1", SessionKey: sessionKey}

	result, err := f.svc.Login("code-1", data, iv, "")
	require.NoError(t, err)

	access, err := f.svc.Refresh(result.RefreshToken)
	require.NoError(t, err)
	claims, err := f.svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "open-1", claims.OpenID)

	// an access token is not accepted as a refresh token
	_, err = f.svc.Refresh(result.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefresh)

	// and vice versa
	_, err = f.svc.ValidateAccessToken(result.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestAuth_ValidateGarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
