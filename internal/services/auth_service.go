package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
)

// Credentials is the static key pair a visitor submits on the landing page.
type Credentials struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
}

// AuthService seals credentials into an opaque cookie value and back.
type AuthService struct {
	encryptionKey []byte
}

// NewAuthService creates an auth service using key when it is 32 bytes long.
// Any other key is replaced by a random one, so sessions do not survive a
// restart.
func NewAuthService(key string) *AuthService {
	if len(key) != 32 {
		newKey := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, newKey); err != nil {
			panic("failed to generate random key")
		}
		return &AuthService{encryptionKey: newKey}
	}
	return &AuthService{encryptionKey: []byte(key)}
}

// EncryptCredentials serializes and encrypts credentials into a string (for the cookie)
func (s *AuthService) EncryptCredentials(creds Credentials) (string, error) {
	data, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	gcm, err := s.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, data, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// DecryptCredentials decodes the cookie value back into Credentials
func (s *AuthService) DecryptCredentials(encrypted string) (*Credentials, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, err
	}

	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("malformed ciphertext")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

func (s *AuthService) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
