package services

import (
	"testing"
	"time"

	"github.com/beslove/backend/internal/models"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type verificationFixture struct {
	db  *gorm.DB
	sms *fakeSMS
	svc *VerificationService
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	codec := newTestCodec(t, cfg)
	sms := &fakeSMS{}
	return &verificationFixture{
		db:  db,
		sms: sms,
		svc: NewVerificationService(store.New(db), codec, sms, cfg),
	}
}

func (f *verificationFixture) lastCode(t *testing.T) string {
	t.Helper()
	var v models.SmsVerification
	require.NoError(t, f.db.Order("created_at DESC").First(&v).Error)
	return v.Code
}

func TestVerification_SendAndVerify(t *testing.T) {
	f := newVerificationFixture(t)

	require.NoError(t, f.svc.SendCode("13800138000"))
	require.Len(t, f.sms.sent, 1)
	assert.Equal(t, "13800138000", f.sms.sent[0].phone)
	assert.Contains(t, f.sms.sent[0].content, "验证码")

	code := f.lastCode(t)
	require.Len(t, code, 6)

	assert.NoError(t, f.svc.VerifyCode("13800138000", code))

	// consumption is permanent
	err := f.svc.VerifyCode("13800138000", code)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestVerification_WrongCode(t *testing.T) {
	f := newVerificationFixture(t)

	require.NoError(t, f.svc.SendCode("13800138000"))

	err := f.svc.VerifyCode("13800138000", "not-it")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestVerification_Expired(t *testing.T) {
	f := newVerificationFixture(t)

	require.NoError(t, f.svc.SendCode("13800138000"))
	code := f.lastCode(t)

	// age the code past its ttl
	err := f.db.Model(&models.SmsVerification{}).
		Where("code = ?", code).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error
	require.NoError(t, err)

	verr := f.svc.VerifyCode("13800138000", code)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(verr))
}

func TestVerification_InvalidPhone(t *testing.T) {
	f := newVerificationFixture(t)

	err := f.svc.SendCode("12345")
	assert.Equal(t, apperrors.CodeInvalidPhone, apperrors.CodeOf(err))
	assert.Empty(t, f.sms.sent)

	err = f.svc.VerifyCode("12345", "123456")
	assert.Equal(t, apperrors.CodeInvalidPhone, apperrors.CodeOf(err))
}

func TestVerification_DeliveryFailure(t *testing.T) {
	f := newVerificationFixture(t)
	f.sms.err = errGatewayDown

	err := f.svc.SendCode("13800138000")
	assert.Equal(t, apperrors.CodeDeliveryFailed, apperrors.CodeOf(err))
}
