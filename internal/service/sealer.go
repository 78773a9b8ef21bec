package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrUnsealed = errors.New("sealed value is invalid")

// EmailSealer encrypts the address carried in password reset links.
type EmailSealer struct {
	key [32]byte
}

func NewEmailSealer(secret string) *EmailSealer {
	return &EmailSealer{key: sha256.Sum256([]byte(secret))}
}

// Seal returns a URL-safe token for value.
func (s *EmailSealer) Seal(value string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *EmailSealer) Open(sealed string) (string, error) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < 24+secretbox.Overhead {
		return "", ErrUnsealed
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealed
	}
	return string(plain), nil
}
