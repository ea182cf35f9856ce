package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/internal/models"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/crypto"
	"github.com/beslove/backend/pkg/sensitive"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.BlessingMessage{}, &models.SmsVerification{}))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Env:                     "test",
		JWTSecret:               "test-secret",
		JWTAccessTokenDuration:  time.Hour,
		JWTRefreshTokenDuration: 24 * time.Hour,
		SMSProvider:             "console",
		SMSTemplate:             "【BesLove】{content}",
		SMSTimeout:              time.Second,
		AESKey:                  "0123456789abcdef0123456789abcdef",
		AESIV:                   "0123456789abcdef",
		SenderDailyLimit:        3,
		ReceiverDailyLimit:      2,
		SensitiveWords:          []string{"微信", "赌博", "fuck"},
		VerificationCodeTTL:     10 * time.Minute,
	}
}

func newTestCodec(t *testing.T, cfg *config.Config) *crypto.Codec {
	t.Helper()
	codec, err := crypto.NewCodec(cfg.AESKey, cfg.AESIV)
	require.NoError(t, err)
	return codec
}

// fakeSMS records outbound messages and can be told to fail.
type fakeSMS struct {
	err  error
	sent []sentSMS
}

type sentSMS struct {
	phone   string
	content string
}

func (f *fakeSMS) Send(phone, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentSMS{phone: phone, content: content})
	return fmt.Sprintf("ref-%d", len(f.sent)), nil
}

var errGatewayDown = errors.New("gateway unreachable")

type blessingFixture struct {
	db    *gorm.DB
	store *store.Store
	cfg   *config.Config
	codec *crypto.Codec
	sms   *fakeSMS
	svc   *BlessingService
	users *UserService
}

func newBlessingFixture(t *testing.T) *blessingFixture {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	codec := newTestCodec(t, cfg)
	st := store.New(db)
	sms := &fakeSMS{}
	risk := NewRiskService(st, cfg)
	filter := sensitive.NewFilter(cfg.SensitiveWords)

	return &blessingFixture{
		db:    db,
		store: st,
		cfg:   cfg,
		codec: codec,
		sms:   sms,
		svc:   NewBlessingService(st, cfg, codec, filter, risk, sms),
		users: NewUserService(st, codec),
	}
}

func (f *blessingFixture) registerUser(t *testing.T, openID, phone string) {
	t.Helper()
	_, err := f.users.UpsertVerifiedPhone(openID, phone, "")
	require.NoError(t, err)
}

// backdate shifts a message's sent_at, to move it in or out of the rolling
// window.
func (f *blessingFixture) backdate(t *testing.T, id uint, age time.Duration) {
	t.Helper()
	err := f.db.Model(&models.BlessingMessage{}).Where("id = ?", id).
		Update("sent_at", time.Now().UTC().Add(-age)).Error
	require.NoError(t, err)
}
