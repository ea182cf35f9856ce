package services

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/pkg/crypto"
	"github.com/google/uuid"
)

// SMSSender is the outbound delivery gateway consumed by the pipeline. Send
// returns a carrier message reference on success; any error, non-success
// carrier code or timeout counts uniformly as delivery failure.
type SMSSender interface {
	Send(phone, content string) (string, error)
}

type SMSService struct {
	cfg      *config.Config
	client   *http.Client
	endpoint string
}

type aliyunResponse struct {
	RequestID string `json:"RequestId"`
	Code      string `json:"Code"`
	Message   string `json:"Message"`
	BizID     string `json:"BizId"`
}

func NewSMSService(cfg *config.Config) *SMSService {
	return &SMSService{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.SMSTimeout},
		endpoint: "https://dysmsapi.aliyuncs.com/",
	}
}

func (s *SMSService) Send(phone, content string) (string, error) {
	switch strings.ToLower(s.cfg.SMSProvider) {
	case "console":
		return s.sendToConsole(phone, content)
	default:
		return s.sendViaAliyun(phone, content)
	}
}

// console provider renders the delivery template and logs it instead of
// calling the carrier. Used in development when no Aliyun credentials exist.
func (s *SMSService) sendToConsole(phone, content string) (string, error) {
	body := strings.ReplaceAll(s.cfg.SMSTemplate, "{content}", content)
	log.Printf("SMS (console) to %s: %d chars", crypto.MaskPhone(phone), len(body))
	return uuid.NewString(), nil
}

// Aliyun dysmsapi SendSms (version 2017-05-25). The carrier holds the signed
// template; we pass the blessing text through the single template slot.
func (s *SMSService) sendViaAliyun(phone, content string) (string, error) {
	if s.cfg.AliyunAccessKeyID == "" || s.cfg.AliyunAccessKeySecret == "" {
		return "", fmt.Errorf("aliyun sms credentials missing")
	}

	templateParam, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return "", err
	}

	params := map[string]string{
		"AccessKeyId":      s.cfg.AliyunAccessKeyID,
		"Action":           "SendSms",
		"Format":           "JSON",
		"OutId":            uuid.NewString(),
		"PhoneNumbers":     phone,
		"RegionId":         s.cfg.AliyunRegionID,
		"SignName":         s.cfg.AliyunSMSSignName,
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureNonce":   uuid.NewString(),
		"SignatureVersion": "1.0",
		"TemplateCode":     s.cfg.AliyunSMSTemplateCode,
		"TemplateParam":    string(templateParam),
		"Timestamp":        time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		"Version":          "2017-05-25",
	}
	params["Signature"] = signAliyunRequest("POST", params, s.cfg.AliyunAccessKeySecret)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequest("POST", s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result aliyunResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("sms response parse failed: %w", err)
	}

	if result.Code != "OK" {
		log.Printf("SMS send failed for %s: code=%s message=%s request_id=%s",
			crypto.MaskPhone(phone), result.Code, result.Message, result.RequestID)
		return "", fmt.Errorf("sms send failed: %s (%s)", result.Code, result.Message)
	}

	log.Printf("SMS sent to %s, biz_id=%s", crypto.MaskPhone(phone), result.BizID)
	return result.BizID, nil
}

// signAliyunRequest implements the Aliyun RPC API signature: parameters are
// percent-encoded, sorted, joined, wrapped into the string-to-sign and
// HMAC-SHA1'd with the secret plus a trailing ampersand.
func signAliyunRequest(method string, params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params[k]))
	}
	canonical := strings.Join(pairs, "&")
	stringToSign := method + "&" + percentEncode("/") + "&" + percentEncode(canonical)

	mac := hmac.New(sha1.New, []byte(secret+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func percentEncode(s string) string {
	encoded := url.QueryEscape(s)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	encoded = strings.ReplaceAll(encoded, "*", "%2A")
	encoded = strings.ReplaceAll(encoded, "%7E", "~")
	return encoded
}
