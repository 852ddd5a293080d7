// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package flash carries one notification across a redirect in a signed cookie.
package flash

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"github.com/gorilla/securecookie"
)

// maxAge keeps an unread flash for one minute.
const maxAge = 60

// Message is the payload of a flash cookie.
type Message struct {
	Text     string            `json:"text"`
	Severity recovery.Severity `json:"severity"`
}

// Manager encodes and decodes flash cookies.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	secure bool
}

// NewManager creates a Manager from cfg. An empty hash key is replaced by a
// random one, which invalidates pending flashes on restart.
func NewManager(cfg *config.FlashConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("no flash hash key configured, generating a random one")
		hashKey = make([]byte, 32)
		if _, err := rand.Read(hashKey); err != nil {
			return nil, fmt.Errorf("generating flash hash key: %w", err)
		}
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(maxAge)
	codec.SetSerializer(securecookie.JSONEncoder{})

	name := cfg.CookieName
	if name == "" {
		name = "_flash"
	}

	return &Manager{codec: codec, name: name, secure: secure}, nil
}

func decodeKey(value, kind string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid flash %s key: %w", kind, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid flash %s key: must be 32 bytes, got %d", kind, len(key))
	}
	return key, nil
}

// Cookie returns a cookie carrying msg.
func (m *Manager) Cookie(msg Message) (*http.Cookie, error) {
	if msg.Text == "" {
		return nil, errors.New("flash message is empty")
	}
	value, err := m.codec.Encode(m.name, msg)
	if err != nil {
		return nil, fmt.Errorf("encoding flash: %w", err)
	}
	return m.cookie(value, maxAge), nil
}

// Read decodes the flash of r. Missing, expired and tampered cookies yield false.
func (m *Manager) Read(r *http.Request) (Message, bool) {
	c, err := r.Cookie(m.name)
	if err != nil {
		return Message{}, false
	}
	var msg Message
	if err := m.codec.Decode(m.name, c.Value, &msg); err != nil {
		slog.Debug("discarding invalid flash cookie", "error", err)
		return Message{}, false
	}
	if msg.Text == "" {
		return Message{}, false
	}
	return msg, true
}

// Clear returns a cookie that deletes the flash.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

// Pop reads the flash of r and schedules its deletion on w.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	msg, ok := m.Read(r)
	if _, err := r.Cookie(m.name); err == nil {
		http.SetCookie(w, m.Clear())
	}
	return msg, ok
}

func (m *Manager) cookie(value string, age int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
