package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/beslove/backend/internal/config"
	"github.com/beslove/backend/pkg/apperrors"
)

// IdentityProvider is the external login collaborator. ExchangeCode trades a
// login code for the caller's opaque identity plus the short-lived session
// secret; GetPhoneNumber runs the provider-side phone-capture flow.
type IdentityProvider interface {
	ExchangeCode(code string) (*SessionInfo, error)
	GetPhoneNumber(code string) (*PhoneInfo, error)
}

type SessionInfo struct {
	OpenID     string
	SessionKey string
}

// PhoneInfo carries either the plaintext phone (newer provider API) or the
// encrypted bundle that still needs the carrier-payload decode.
type PhoneInfo struct {
	PhoneNumber   string
	EncryptedData string
	IV            string
	SessionKey    string
}

type WechatService struct {
	cfg    *config.Config
	client *http.Client
}

func NewWechatService(cfg *config.Config) *WechatService {
	return &WechatService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type wxSessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

func (s *WechatService) ExchangeCode(code string) (*SessionInfo, error) {
	q := url.Values{}
	q.Set("appid", s.cfg.WXAppID)
	q.Set("secret", s.cfg.WXAppSecret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")

	resp, err := s.client.Get("https://api.weixin.qq.com/sns/jscode2session?" + q.Encode())
	if err != nil {
		return nil, apperrors.IdentityProvider("login code exchange failed", err)
	}
	defer resp.Body.Close()

	var result wxSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.IdentityProvider("login code exchange failed", err)
	}
	if result.ErrCode != 0 {
		return nil, apperrors.IdentityProvider("login code exchange failed",
			fmt.Errorf("wx error %d: %s", result.ErrCode, result.ErrMsg))
	}
	if result.OpenID == "" {
		return nil, apperrors.IdentityProvider("login code exchange failed",
			fmt.Errorf("response carried no openid"))
	}

	return &SessionInfo{OpenID: result.OpenID, SessionKey: result.SessionKey}, nil
}

type wxTokenResponse struct {
	AccessToken string `json:"access_token"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

type wxPhoneResponse struct {
	ErrCode   int    `json:"errcode"`
	ErrMsg    string `json:"errmsg"`
	PhoneInfo struct {
		PhoneNumber     string `json:"phoneNumber"`
		PurePhoneNumber string `json:"purePhoneNumber"`
		EncryptedData   string `json:"encryptedData"`
		IV              string `json:"iv"`
		SessionKey      string `json:"session_key"`
	} `json:"phone_info"`
}

func (s *WechatService) GetPhoneNumber(code string) (*PhoneInfo, error) {
	token, err := s.accessToken()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(
		"https://api.weixin.qq.com/wxa/business/getuserphonenumber?access_token="+url.QueryEscape(token),
		"application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.IdentityProvider("phone capture failed", err)
	}
	defer resp.Body.Close()

	var result wxPhoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.IdentityProvider("phone capture failed", err)
	}
	if result.ErrCode != 0 {
		return nil, apperrors.IdentityProvider("phone capture failed",
			fmt.Errorf("wx error %d: %s", result.ErrCode, result.ErrMsg))
	}

	info := &PhoneInfo{
		PhoneNumber:   result.PhoneInfo.PhoneNumber,
		EncryptedData: result.PhoneInfo.EncryptedData,
		IV:            result.PhoneInfo.IV,
		SessionKey:    result.PhoneInfo.SessionKey,
	}
	if info.PhoneNumber == "" && info.EncryptedData == "" {
		return nil, apperrors.IdentityProvider("phone capture failed",
			fmt.Errorf("response carried no phone data"))
	}
	return info, nil
}

func (s *WechatService) accessToken() (string, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credential")
	q.Set("appid", s.cfg.WXAppID)
	q.Set("secret", s.cfg.WXAppSecret)

	resp, err := s.client.Get("https://api.weixin.qq.com/cgi-bin/token?" + q.Encode())
	if err != nil {
		return "", apperrors.IdentityProvider("access token fetch failed", err)
	}
	defer resp.Body.Close()

	var result wxTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.IdentityProvider("access token fetch failed", err)
	}
	if result.ErrCode != 0 || result.AccessToken == "" {
		return "", apperrors.IdentityProvider("access token fetch failed",
			fmt.Errorf("wx error %d: %s", result.ErrCode, result.ErrMsg))
	}
	return result.AccessToken, nil
}
