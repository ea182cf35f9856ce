package models

import (
	"time"

	"gorm.io/gorm"
)

// SmsVerification is a one-shot phone verification code. A code is valid iff
// it is unused and not yet expired; consuming it sets Used permanently.
type SmsVerification struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	PhoneNumber string    `gorm:"size:200;not null;index"` // ciphertext
	Code        string    `gorm:"size:10;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	Used        bool      `gorm:"not null;default:false"`
}

func (SmsVerification) TableName() string {
	return "sms_verifications"
}

// DefaultCodeTTL is the expiry applied when the caller sets none.
const DefaultCodeTTL = 10 * time.Minute

func (v *SmsVerification) BeforeCreate(tx *gorm.DB) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.ExpiresAt.IsZero() {
		v.ExpiresAt = v.CreatedAt.Add(DefaultCodeTTL)
	}
	return nil
}

// IsValid reports whether the code can still be consumed at the given time.
func (v *SmsVerification) IsValid(now time.Time) bool {
	return !v.Used && now.Before(v.ExpiresAt)
}
