package models

import (
	"time"
)

// Blessing message lifecycle. A message is created pending and moves exactly
// once to sent or failed; terminal states never transition further.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type BlessingMessage struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderOpenID  string    `gorm:"size:100;not null;index" json:"sender_openid"`
	ReceiverPhone string    `gorm:"size:200;not null;index" json:"-"` // ciphertext
	Content       string    `gorm:"size:100;not null" json:"content"`
	SentAt        time.Time `gorm:"not null;index" json:"sent_at"`
	Status        string    `gorm:"size:20;not null;default:pending" json:"status"`
	IsDeleted     bool      `gorm:"not null;default:false" json:"-"`

	Sender User `gorm:"foreignKey:SenderOpenID;references:OpenID" json:"-"`
}

func (BlessingMessage) TableName() string {
	return "blessing_messages"
}
