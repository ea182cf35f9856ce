package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/beslove/backend/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// Store is the single owner of persisted state: registered users, blessing
// messages and verification codes. Every method is one atomic gorm call; the
// pipeline composes them but never spans a transaction across delivery.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindUser(openID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("open_id = ?", openID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

// UpdateUserPhone replaces (not appends) the encrypted phone on
// re-verification.
func (s *Store) UpdateUserPhone(openID, encryptedPhone string) error {
	res := s.db.Model(&models.User{}).Where("open_id = ?", openID).
		Update("phone_number", encryptedPhone)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMessage persists a blessing draft. Status defaults to pending and
// SentAt anchors the rolling rate-limit windows.
func (s *Store) CreateMessage(msg *models.BlessingMessage) error {
	if msg.Status == "" {
		msg.Status = models.StatusPending
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	return s.db.Create(msg).Error
}

// SetMessageStatus moves a pending message to a terminal status. The guard on
// the current status makes the transition idempotent and one-way: a message
// already sent or failed is left untouched.
func (s *Store) SetMessageStatus(id uint, status string) error {
	if status != models.StatusSent && status != models.StatusFailed {
		return fmt.Errorf("status %q is not a terminal message status", status)
	}
	res := s.db.Model(&models.BlessingMessage{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message %d is not pending", id)
	}
	return nil
}

// CountSenderWindow counts messages the sender created since the window
// start. Soft-deleted rows still count: deleting a blessing hides it from
// history but does not refund quota.
func (s *Store) CountSenderWindow(senderOpenID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.BlessingMessage{}).
		Where("sender_open_id = ? AND sent_at >= ?", senderOpenID, since).
		Count(&count).Error
	return count, err
}

// CountReceiverWindow matches on the encrypted receiver phone. The cipher is
// deterministic, so equality on ciphertext is equality on plaintext.
func (s *Store) CountReceiverWindow(encryptedPhone string, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.BlessingMessage{}).
		Where("receiver_phone = ? AND sent_at >= ?", encryptedPhone, since).
		Count(&count).Error
	return count, err
}

func (s *Store) ListSenderMessages(senderOpenID string) ([]models.BlessingMessage, error) {
	var msgs []models.BlessingMessage
	err := s.db.Where("sender_open_id = ? AND is_deleted = ?", senderOpenID, false).
		Order("sent_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// MarkMessageDeleted soft-deletes a message, sender-scoped so one user
// cannot delete another's history.
func (s *Store) MarkMessageDeleted(id uint, senderOpenID string) error {
	res := s.db.Model(&models.BlessingMessage{}).
		Where("id = ? AND sender_open_id = ? AND is_deleted = ?", id, senderOpenID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateVerification(v *models.SmsVerification) error {
	return s.db.Create(v).Error
}

// LatestVerification returns the most recent unconsumed code for the phone.
func (s *Store) LatestVerification(encryptedPhone string) (*models.SmsVerification, error) {
	var v models.SmsVerification
	err := s.db.Where("phone_number = ? AND used = ?", encryptedPhone, false).
		Order("created_at DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ConsumeVerification marks a code used. Consuming an already-used code is
// an error, never a silent second success.
func (s *Store) ConsumeVerification(id uint) error {
	res := s.db.Model(&models.SmsVerification{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("verification code already consumed")
	}
	return nil
}
