package services

import (
	"errors"
	"log"
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/internal/models"
	"github.com/beslove/backend/internal/store"
	"github.com/beslove/backend/pkg/apperrors"
	"github.com/beslove/backend/pkg/crypto"
	"github.com/beslove/backend/pkg/sensitive"
	"github.com/beslove/backend/pkg/validation"
)

type BlessingService struct {
	store  *store.Store
	cfg    *config.Config
	codec  *crypto.Codec
	filter *sensitive.Filter
	risk   *RiskService
	sms    SMSSender
}

func NewBlessingService(st *store.Store, cfg *config.Config, codec *crypto.Codec, filter *sensitive.Filter, risk *RiskService, sms SMSSender) *BlessingService {
	return &BlessingService{
		store:  st,
		cfg:    cfg,
		codec:  codec,
		filter: filter,
		risk:   risk,
		sms:    sms,
	}
}

type SendResult struct {
	MessageID      uint   `json:"message_id"`
	ReceiverMasked string `json:"receiver_phone"`
}

// Send runs the blessing pipeline: every gate short-circuits on first
// failure, the message is persisted as pending before the carrier is called,
// and delivery outcome moves it exactly once to sent or failed. A delivery
// failure is reported to the caller but the message stays on record as
// evidence of the attempt.
func (s *BlessingService) Send(senderOpenID, receiverPhone, content string) (*SendResult, error) {
	// 1. resolve sender
	sender, err := s.store.FindUser(senderOpenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, apperrors.Storage(err)
	}

	// 2. receiver phone format
	if !validation.ValidatePhone(receiverPhone) {
		return nil, apperrors.ErrInvalidPhone
	}

	// 3. no self-send
	senderPhone, err := s.codec.Decrypt(sender.PhoneNumber)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if receiverPhone == senderPhone {
		return nil, apperrors.ErrSelfSendDenied
	}

	// 4. content shape, after stripping padding and control bytes
	content = validation.SanitizeString(content)
	if !validation.ValidateBlessingContent(content) {
		return nil, apperrors.ErrInvalidContent
	}

	// 5. disallowed terms; redacted copy goes to the audit log only
	if s.filter.Contains(content) {
		log.Printf("blessing rejected for disallowed content, sender=%s content=%q",
			senderOpenID, s.filter.Redact(content))
		return nil, apperrors.ErrDisallowedContent
	}

	// 6-7. quotas, checked before persistence so denied attempts never
	// pollute the counted history
	if err := s.risk.CheckSender(senderOpenID); err != nil {
		return nil, err
	}
	encryptedReceiver, err := s.codec.Encrypt(receiverPhone)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if err := s.risk.CheckReceiver(encryptedReceiver); err != nil {
		return nil, err
	}

	// 8. durability point: once this commits the blessing exists even if
	// delivery dies
	msg := &models.BlessingMessage{
		SenderOpenID:  senderOpenID,
		ReceiverPhone: encryptedReceiver,
		Content:       content,
		SentAt:        time.Now().UTC(),
		Status:        models.StatusPending,
	}
	if err := s.store.CreateMessage(msg); err != nil {
		return nil, apperrors.Storage(err)
	}

	// 9. delivery; the gateway bounds the call with its own timeout
	ref, err := s.sms.Send(receiverPhone, content)
	if err != nil {
		if serr := s.store.SetMessageStatus(msg.ID, models.StatusFailed); serr != nil {
			log.Printf("failed to mark message %d failed: %v", msg.ID, serr)
		}
		log.Printf("blessing %d delivery failed: %v", msg.ID, err)
		return nil, apperrors.ErrDeliveryFailed
	}

	if err := s.store.SetMessageStatus(msg.ID, models.StatusSent); err != nil {
		// Message went out; a stuck pending row is reconciled out of band.
		log.Printf("failed to mark message %d sent (ref %s): %v", msg.ID, ref, err)
	}

	return &SendResult{
		MessageID:      msg.ID,
		ReceiverMasked: crypto.MaskPhone(receiverPhone),
	}, nil
}

type BlessingView struct {
	ID             uint      `json:"id"`
	ReceiverMasked string    `json:"receiver_phone"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
	Status         string    `json:"status"`
}

// History lists the sender's own non-deleted blessings, newest first, with
// the receiver phone masked.
func (s *BlessingService) History(senderOpenID string) ([]BlessingView, error) {
	msgs, err := s.store.ListSenderMessages(senderOpenID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	views := make([]BlessingView, 0, len(msgs))
	for _, m := range msgs {
		masked := "***"
		if phone, err := s.codec.Decrypt(m.ReceiverPhone); err == nil {
			masked = crypto.MaskPhone(phone)
		}
		views = append(views, BlessingView{
			ID:             m.ID,
			ReceiverMasked: masked,
			Content:        m.Content,
			SentAt:         m.SentAt,
			Status:         m.Status,
		})
	}
	return views, nil
}

// Delete soft-deletes one of the sender's own blessings. The pipeline never
// sets this flag itself, and deletion does not refund quota.
func (s *BlessingService) Delete(senderOpenID string, id uint) error {
	if err := s.store.MarkMessageDeleted(id, senderOpenID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return apperrors.Storage(err)
	}
	return nil
}

type BlessingTemplate struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

var blessingTemplates = []BlessingTemplate{
	{ID: 1, Type: "love", Title: "爱情表白", Content: "今天特别想告诉你：与你相遇是我生命中最美好的事情，你的笑容照亮了我的每一天。"},
	{ID: 2, Type: "apology", Title: "道歉信", Content: "我知道我错了，让你伤心难过。请你原谅我的冲动和自私，对不起。"},
	{ID: 3, Type: "birthday", Title: "生日祝福", Content: "祝你生日快乐！愿你的每一天都充满阳光和快乐，所有的梦想都能实现。"},
	{ID: 4, Type: "thanks", Title: "感谢有你", Content: "谢谢你一直以来的陪伴和支持。有你这样的朋友，我感到无比幸运！"},
	{ID: 5, Type: "friendship", Title: "友情祝福", Content: "我们的友谊就像美酒一样，越陈越香。愿我们的友谊天长地久！"},
	{ID: 6, Type: "encouragement", Title: "鼓励支持", Content: "请相信自己的能力。你是最棒的，一定能够克服困难，实现目标。"},
}

func (s *BlessingService) Templates() []BlessingTemplate {
	return blessingTemplates
}
