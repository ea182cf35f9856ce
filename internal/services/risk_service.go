package services

import (
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/apperrors"
)

// RiskService enforces the rolling 24-hour send and receive quotas. It holds
// no counter state of its own: every check is recomputed from the message log
// relative to the current instant, so nothing can drift.
type RiskService struct {
	store *store.Store
	cfg   *config.Config
}

func NewRiskService(st *store.Store, cfg *config.Config) *RiskService {
	return &RiskService{store: st, cfg: cfg}
}

func windowStart() time.Time {
	return time.Now().UTC().Add(-24 * time.Hour)
}

// SenderCountLast24h counts messages the sender created in the rolling window.
func (s *RiskService) SenderCountLast24h(senderOpenID string) (int64, error) {
	return s.store.CountSenderWindow(senderOpenID, windowStart())
}

// ReceiverCountLast24h counts messages addressed to the encrypted phone in
// the rolling window.
func (s *RiskService) ReceiverCountLast24h(encryptedPhone string) (int64, error) {
	return s.store.CountReceiverWindow(encryptedPhone, windowStart())
}

func (s *RiskService) CheckSender(senderOpenID string) error {
	count, err := s.SenderCountLast24h(senderOpenID)
	if err != nil {
		return apperrors.Storage(err)
	}
	if count >= int64(s.cfg.SenderDailyLimit) {
		return apperrors.ErrSenderQuotaExceeded
	}
	return nil
}

func (s *RiskService) CheckReceiver(encryptedPhone string) error {
	count, err := s.ReceiverCountLast24h(encryptedPhone)
	if err != nil {
		return apperrors.Storage(err)
	}
	if count >= int64(s.cfg.ReceiverDailyLimit) {
		return apperrors.ErrReceiverQuotaExceeded
	}
	return nil
}
