package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DecodeStage identifies which step of the carrier-payload decode failed, so
// callers can tell transport corruption from protocol mismatch.
type DecodeStage string

const (
	StageDecodeBase64 DecodeStage = "decode-base64"
	StageDecrypt      DecodeStage = "decrypt"
	StageUnpad        DecodeStage = "unpad"
	StageUTF8Decode   DecodeStage = "utf8-decode"
	StageParse        DecodeStage = "parse"
	StageMissingField DecodeStage = "missing-field"
)

type DecodeError struct {
	Stage DecodeStage
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("carrier payload decode failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("carrier payload decode failed at %s", e.Stage)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type carrierPayload struct {
	PhoneNumber     string `json:"phoneNumber"`
	PurePhoneNumber string `json:"purePhoneNumber"`
	CountryCode     any    `json:"countryCode"`
}

// DecodeCarrierPayload decrypts the phone-number bundle delivered by the
// identity-provider channel. Unlike Codec, the key here is the short-lived
// session key handed out per login; key, iv and payload all arrive base64
// encoded.
func DecodeCarrierPayload(encryptedData, iv, sessionKey string) (string, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(sessionKey)
	if err != nil {
		return "", &DecodeError{Stage: StageDecodeBase64, Err: err}
	}
	ivBytes, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", &DecodeError{Stage: StageDecodeBase64, Err: err}
	}
	data, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return "", &DecodeError{Stage: StageDecodeBase64, Err: err}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return "", &DecodeError{Stage: StageDecrypt, Err: err}
	}
	if len(ivBytes) != aes.BlockSize {
		return "", &DecodeError{Stage: StageDecrypt, Err: fmt.Errorf("iv is %d bytes, want %d", len(ivBytes), aes.BlockSize)}
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", &DecodeError{Stage: StageDecrypt, Err: errors.New("ciphertext is not a multiple of the block size")}
	}
	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, ivBytes).CryptBlocks(plain, data)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", &DecodeError{Stage: StageUnpad, Err: err}
	}

	if !utf8.Valid(unpadded) {
		return "", &DecodeError{Stage: StageUTF8Decode, Err: errors.New("decrypted payload is not valid utf-8")}
	}

	var payload carrierPayload
	if err := json.Unmarshal(unpadded, &payload); err != nil {
		return "", &DecodeError{Stage: StageParse, Err: err}
	}

	if payload.PhoneNumber == "" {
		return "", &DecodeError{Stage: StageMissingField, Err: errors.New("payload has no phoneNumber field")}
	}
	return payload.PhoneNumber, nil
}
