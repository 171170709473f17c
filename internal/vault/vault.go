// Package vault keeps the user's Gemini API key for the lifetime of their session.
//
// The key is stored obfuscated, not encrypted (see Obfuscate). It never leaves the session
// store and disappears with the session.
package vault

import (
	"context"
	"errors"
	"strings"

	"github.com/alexedwards/scs/v2"
)

// StorageKey is the session slot holding the obfuscated credential.
const StorageKey = "gemini-api-key-encrypted"

// CredentialPrefix is the prefix every Google API key starts with.
const CredentialPrefix = "AIza"

var (
	ErrEmptyCredential     = errors.New("API key is required")
	ErrMalformedCredential = errors.New("not a valid Google API key")
)

// Slot is a single-valued key/value store scoped to one session.
type Slot interface {
	GetString(key string) string
	Put(key string, value string)
	Remove(key string)
}

// Vault stores one credential in a Slot.
type Vault struct {
	slot Slot
}

func New(slot Slot) *Vault {
	return &Vault{slot: slot}
}

// ValidateCredential checks user input before it is saved and returns the trimmed key.
func ValidateCredential(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", ErrEmptyCredential
	}
	if !strings.HasPrefix(key, CredentialPrefix) {
		return "", ErrMalformedCredential
	}
	return key, nil
}

// Save obfuscates and stores the credential.
func (v *Vault) Save(credential string) {
	v.slot.Put(StorageKey, Obfuscate(credential))
}

// Get returns the stored credential. A missing or unreadable value is reported as absent.
func (v *Vault) Get() (string, bool) {
	stored := v.slot.GetString(StorageKey)
	if stored == "" {
		return "", false
	}
	plain, err := Reveal(stored)
	if err != nil || plain == "" {
		return "", false
	}
	return plain, true
}

// Has reports whether a usable credential is stored.
func (v *Vault) Has() bool {
	_, ok := v.Get()
	return ok
}

// Clear forgets the credential.
func (v *Vault) Clear() {
	v.slot.Remove(StorageKey)
}

// SessionSlot adapts an scs session to Slot for the duration of one request.
type SessionSlot struct {
	sm  *scs.SessionManager
	ctx context.Context
}

func NewSessionSlot(sm *scs.SessionManager, ctx context.Context) SessionSlot {
	return SessionSlot{sm: sm, ctx: ctx}
}

func (s SessionSlot) GetString(key string) string {
	return s.sm.GetString(s.ctx, key)
}

func (s SessionSlot) Put(key string, value string) {
	s.sm.Put(s.ctx, key, value)
}

func (s SessionSlot) Remove(key string) {
	s.sm.Remove(s.ctx, key)
}
