package services

import (
	"errors"

	"github.com/beslove/backend/internal/models"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/apperrors"
	"github.com/beslove/backend/pkg/crypto"
)

type UserService struct {
	store *store.Store
	codec *crypto.Codec
}

func NewUserService(st *store.Store, codec *crypto.Codec) *UserService {
	return &UserService{store: st, codec: codec}
}

// UpsertVerifiedPhone creates the user on first phone capture, or replaces
// the stored ciphertext on re-verification. The phone arrives in plaintext
// from the identity flow and is encrypted before it touches the store.
func (s *UserService) UpsertVerifiedPhone(openID, phone, nickName string) (*models.User, error) {
	encrypted, err := s.codec.Encrypt(phone)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	user, err := s.store.FindUser(openID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Storage(err)
		}
		user = &models.User{
			OpenID:      openID,
			PhoneNumber: encrypted,
			NickName:    nickName,
		}
		if err := s.store.CreateUser(user); err != nil {
			return nil, apperrors.Storage(err)
		}
		return user, nil
	}

	if err := s.store.UpdateUserPhone(openID, encrypted); err != nil {
		return nil, apperrors.Storage(err)
	}
	user.PhoneNumber = encrypted
	return user, nil
}

// MaskedPhone returns the user's phone in masked form; all outward-facing
// phone responses go through this except the explicit reveal.
func (s *UserService) MaskedPhone(openID string) (string, error) {
	phone, err := s.phone(openID)
	if err != nil {
		return "", err
	}
	return crypto.MaskPhone(phone), nil
}

func (s *UserService) phone(openID string) (string, error) {
	user, err := s.store.FindUser(openID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.Storage(err)
	}
	phone, err := s.codec.Decrypt(user.PhoneNumber)
	if err != nil {
		return "", apperrors.Storage(err)
	}
	return phone, nil
}
