package models

import (
	"time"
)

// User is keyed by the opaque identity the provider hands out at login.
// PhoneNumber holds the AES-CBC ciphertext of the verified phone; the
// plaintext never touches the database.
type User struct {
	OpenID      string    `gorm:"primaryKey;size:100" json:"openid"`
	PhoneNumber string    `gorm:"size:200;not null" json:"-"`
	NickName    string    `gorm:"size:50" json:"nick_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
