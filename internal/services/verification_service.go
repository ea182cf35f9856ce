package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/internal/models"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/apperrors"
	"github.com/beslove/backend/pkg/crypto"
	"github.com/beslove/backend/pkg/validation"
)

// VerificationService issues and consumes one-shot SMS verification codes.
type VerificationService struct {
	store *store.Store
	codec *crypto.Codec
	sms   SMSSender
	cfg   *config.Config
}

func NewVerificationService(st *store.Store, codec *crypto.Codec, sms SMSSender, cfg *config.Config) *VerificationService {
	return &VerificationService{
		store: st,
		codec: codec,
		sms:   sms,
		cfg:   cfg,
	}
}

// SendCode generates a 6-digit code, stores it against the encrypted phone
// and delivers it through the gateway.
func (s *VerificationService) SendCode(phone string) error {
	if !validation.ValidatePhone(phone) {
		return apperrors.ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "code generation failed", err)
	}

	encrypted, err := s.codec.Encrypt(phone)
	if err != nil {
		return apperrors.Storage(err)
	}

	now := time.Now().UTC()
	v := &models.SmsVerification{
		PhoneNumber: encrypted,
		Code:        code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.VerificationCodeTTL),
	}
	if err := s.store.CreateVerification(v); err != nil {
		return apperrors.Storage(err)
	}

	if _, err := s.sms.Send(phone, fmt.Sprintf("您的验证码是 %s，%d分钟内有效。", code, int(s.cfg.VerificationCodeTTL.Minutes()))); err != nil {
		log.Printf("verification code delivery failed for %s: %v", crypto.MaskPhone(phone), err)
		return apperrors.ErrDeliveryFailed
	}
	return nil
}

// VerifyCode consumes the latest outstanding code for the phone. A code is
// valid iff unused and unexpired; consumption is permanent.
func (s *VerificationService) VerifyCode(phone, code string) error {
	if !validation.ValidatePhone(phone) {
		return apperrors.ErrInvalidPhone
	}

	encrypted, err := s.codec.Encrypt(phone)
	if err != nil {
		return apperrors.Storage(err)
	}

	v, err := s.store.LatestVerification(encrypted)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrInvalidCode
		}
		return apperrors.Storage(err)
	}

	if !v.IsValid(time.Now().UTC()) || v.Code != code {
		return apperrors.ErrInvalidCode
	}

	if err := s.store.ConsumeVerification(v.ID); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
