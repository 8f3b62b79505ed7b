// Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package mint issues credentials locally by signing short-lived JWTs.
package mint

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/logger"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// DefaultTTL is the lifetime of a minted token when none is configured
const DefaultTTL = time.Hour

// Config holds the claims shared by every token a Minter signs
type Config struct {
	Issuer   string
	Audience string
	TTL      time.Duration
	// KeyID is set as the kid header when non-empty
	KeyID string
}

// Minter signs a JWT whose subject is the registration id
type Minter struct {
	config Config
	method jwt.SigningMethod
	key    any
	now    func() time.Time
}

// NewRSAMinter creates a minter signing with RS256
func NewRSAMinter(cfg Config, key *rsa.PrivateKey) (*Minter, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: rsa key is nil", utils.ErrInvalidSigningKey)
	}
	return newMinter(cfg, jwt.SigningMethodRS256, key), nil
}

// NewHMACMinter creates a minter signing with HS256
func NewHMACMinter(cfg Config, secret []byte) (*Minter, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("%w: hmac secret must be at least 32 bytes, got %d", utils.ErrInvalidSigningKey, len(secret))
	}
	return newMinter(cfg, jwt.SigningMethodHS256, secret), nil
}

func newMinter(cfg Config, method jwt.SigningMethod, key any) *Minter {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Minter{
		config: cfg,
		method: method,
		key:    key,
		now:    time.Now,
	}
}

// Fetch signs a new token for the registration
func (m *Minter) Fetch(ctx context.Context, registrationID string) (*models.Credential, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.config.TTL)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.config.Issuer,
		Subject:   registrationID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(m.method, claims)
	if m.config.KeyID != "" {
		token.Header["kid"] = m.config.KeyID
	}
	signed, err := token.SignedString(m.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.GetLogger(ctx).Debug("mint: token signed",
		"subject", registrationID,
		"expiresAt", expiresAt.Format(time.RFC3339))

	return &models.Credential{
		Value:     signed,
		TokenType: models.TokenTypeBearer,
		IssuedAt:  &now,
		ExpiresAt: &expiresAt,
	}, nil
}

// LoadRSAPrivateKey reads a PEM encoded RSA key in PKCS#1 or PKCS#8 form
func LoadRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	privateKeyPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	return ParseRSAPrivateKey(privateKeyPEM)
}

// ParseRSAPrivateKey decodes a PEM encoded RSA key in PKCS#1 or PKCS#8 form
func ParseRSAPrivateKey(privateKeyPEM []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("%w: failed to decode private key PEM", utils.ErrInvalidSigningKey)
	}

	// Try PKCS#1 format first
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse private key: %w", utils.ErrInvalidSigningKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not RSA", utils.ErrInvalidSigningKey)
	}
	return key, nil
}
