// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/zalando/go-keyring"
)

const KeyringService = "notifyctl"

// TokenStore keeps one bearer token per context name.
type TokenStore struct {
	Service string
}

func NewTokenStore() TokenStore {
	return TokenStore{Service: KeyringService}
}

func (s TokenStore) service() string {
	if s.Service == "" {
		return KeyringService
	}
	return s.Service
}

func (s TokenStore) Save(contextName, token string) error {
	token = strings.TrimSpace(token)
	if contextName == "" {
		return errors.New("context name is required")
	}
	if token == "" {
		return errors.New("token is empty")
	}
	if err := keyring.Set(s.service(), contextName, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Load returns false when no token is stored for contextName.
func (s TokenStore) Load(contextName string) (string, bool, error) {
	token, err := keyring.Get(s.service(), contextName)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return token, true, nil
}

// Delete is a no-op when nothing is stored.
func (s TokenStore) Delete(contextName string) error {
	err := keyring.Delete(s.service(), contextName)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// TokenInfo holds the unverified claims notifyctl shows to the user.
type TokenInfo struct {
	Subject string    `json:"subject" yaml:"subject"`
	Email   string    `json:"email,omitempty" yaml:"email,omitempty"`
	Expiry  time.Time `json:"expiry,omitempty" yaml:"expiry,omitempty"`
}

// Expired reports whether the token carried an exp claim before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.Expiry.IsZero() && now.After(i.Expiry)
}

// InspectToken decodes claims without verifying the signature. The server
// performs verification.
func InspectToken(token string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := (&jwt.Parser{}).ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("token is not a JWT: %w", err)
	}
	var info TokenInfo
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		info.Subject = username
	} else if sub, ok := claims["sub"].(string); ok {
		info.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.Expiry = time.Unix(int64(exp), 0)
	}
	return info, nil
}
