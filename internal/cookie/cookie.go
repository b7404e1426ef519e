// Package cookie writes AES-GCM encrypted cookies and one-shot flash
// messages carried in them.
package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrDecrypt  = errors.New("cookie: decryption failed")
)

const flashPrefix = "flash_"

type Manager struct {
	secret   []byte
	path     string
	secure   bool
	sameSite http.SameSite
}

type Option func(*Manager)

func New(opts ...Option) *Manager {
	m := &Manager{path: "/", sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the encryption secret. Secrets shorter than 32 bytes are
// ignored and encrypted operations then fail with ErrNoSecret.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrNotFound
	}
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", ErrDecrypt
	}
	plaintext, err := m.decrypt(data)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	ciphertext, err := m.encrypt([]byte(value))
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

// SetFlash stores value until the next Flash call for key.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data), 0)
}

// Flash decodes the flash stored under key into dest and deletes it.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	raw, err := m.GetEncrypted(r, name)
	if err != nil {
		if errors.Is(err, ErrDecrypt) {
			m.Delete(w, name)
		}
		return err
	}
	m.Delete(w, name)
	return json.Unmarshal([]byte(raw), dest)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

func (m *Manager) aead() (cipher.AEAD, error) {
	key := sha256.Sum256(m.secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *Manager) encrypt(plaintext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (m *Manager) decrypt(ciphertext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:aead.NonceSize()]
	return aead.Open(nil, nonce, ciphertext[aead.NonceSize():], nil)
}
