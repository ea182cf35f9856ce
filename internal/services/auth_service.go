package services

import (
	"log"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/pkg/apperrors"
	"github.com/beslove/backend/pkg/crypto"
	jwtpkg "github.com/beslove/backend/pkg/jwt"
	"github.com/beslove/backend/pkg/validation"
)

type AuthService struct {
	provider IdentityProvider
	users    *UserService
	cfg      *config.Config
}

func NewAuthService(provider IdentityProvider, users *UserService, cfg *config.Config) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		cfg:      cfg,
	}
}

type LoginResult struct {
	OpenID       string `json:"openid"`
	MaskedPhone  string `json:"phone"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login runs the provider login flow: code exchange, carrier-payload decode
// with the per-call session key, phone validation, then user upsert with the
// phone re-encrypted under the static key.
func (s *AuthService) Login(code, encryptedData, iv, nickName string) (*LoginResult, error) {
	session, err := s.provider.ExchangeCode(code)
	if err != nil {
		return nil, err
	}

	phone, err := crypto.DecodeCarrierPayload(encryptedData, iv, session.SessionKey)
	if err != nil {
		return nil, apperrors.IdentityProvider("phone payload decode failed", err)
	}

	if !validation.ValidatePhone(phone) {
		return nil, apperrors.ErrInvalidPhone
	}

	user, err := s.users.UpsertVerifiedPhone(session.OpenID, phone, validation.SanitizeString(nickName))
	if err != nil {
		return nil, err
	}

	accessToken, err := jwtpkg.GenerateToken(user.OpenID, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "token generation failed", err)
	}
	refreshToken, err := jwtpkg.GenerateToken(user.OpenID, jwtpkg.RefreshToken, s.cfg.JWTSecret, s.cfg.JWTRefreshTokenDuration)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "token generation failed", err)
	}

	log.Printf("login ok, openid=%s phone=%s", user.OpenID, crypto.MaskPhone(phone))

	return &LoginResult{
		OpenID:       user.OpenID,
		MaskedPhone:  crypto.MaskPhone(phone),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ExchangeCode exposes the raw code exchange for the client bootstrap.
func (s *AuthService) ExchangeCode(code string) (*SessionInfo, error) {
	return s.provider.ExchangeCode(code)
}

// CapturePhone runs the provider phone-capture flow and stores the result.
// This is the single operation that returns a full, unmasked phone number.
func (s *AuthService) CapturePhone(code, openID string) (string, error) {
	info, err := s.provider.GetPhoneNumber(code)
	if err != nil {
		return "", err
	}

	phone := info.PhoneNumber
	if phone == "" {
		phone, err = crypto.DecodeCarrierPayload(info.EncryptedData, info.IV, info.SessionKey)
		if err != nil {
			return "", apperrors.IdentityProvider("phone payload decode failed", err)
		}
	}

	if !validation.ValidatePhone(phone) {
		return "", apperrors.ErrInvalidPhone
	}

	if _, err := s.users.UpsertVerifiedPhone(openID, phone, ""); err != nil {
		return "", err
	}
	return phone, nil
}

// Refresh validates a refresh token and issues a fresh access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := jwtpkg.ValidateToken(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims.TokenType != jwtpkg.RefreshToken {
		return "", apperrors.ErrInvalidRefresh
	}
	return jwtpkg.GenerateToken(claims.OpenID, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
}

// ValidateAccessToken validates a bearer token for the auth middleware.
func (s *AuthService) ValidateAccessToken(token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if claims.TokenType != jwtpkg.AccessToken {
		return nil, apperrors.ErrUnauthenticated
	}
	return claims, nil
}
