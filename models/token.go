// Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
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

package models

import "time"

// TokenTypeBearer is the only token type issued by the fetchers in this service
const TokenTypeBearer = "Bearer"

// Credential is a short-lived bearer credential obtained for a registration
type Credential struct {
	// Value is the opaque bearer string
	Value string `json:"value"`
	// TokenType is the scheme used when attaching the credential (usually "Bearer")
	TokenType string `json:"token_type,omitempty"`
	// IssuedAt is when the credential was issued, nil if unknown
	IssuedAt *time.Time `json:"issued_at,omitempty"`
	// ExpiresAt is when the credential stops being valid, nil if it never expires
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// Scopes granted with the credential, if reported by the issuer
	Scopes []string `json:"scopes,omitempty"`
}

// IsLive reports whether the credential can still be used at the given instant.
// A credential without an expiry never stops being live.
func (c *Credential) IsLive(now time.Time) bool {
	if c == nil {
		return false
	}
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.After(now)
}

// Lifetime returns the span between issue and expiry, and false if either is unknown
func (c *Credential) Lifetime() (time.Duration, bool) {
	if c == nil || c.IssuedAt == nil || c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(*c.IssuedAt), true
}

// Type returns the token type, defaulting to Bearer
func (c *Credential) Type() string {
	if c == nil || c.TokenType == "" {
		return TokenTypeBearer
	}
	return c.TokenType
}

// NewCredential builds a credential issued now that expires after ttl.
// A non-positive ttl yields a non-expiring credential.
func NewCredential(value string, issuedAt time.Time, ttl time.Duration) *Credential {
	cred := &Credential{
		Value:     value,
		TokenType: TokenTypeBearer,
		IssuedAt:  &issuedAt,
	}
	if ttl > 0 {
		expiresAt := issuedAt.Add(ttl)
		cred.ExpiresAt = &expiresAt
	}
	return cred
}

// RenewalEntry is a point-in-time view of the renewal state kept for one registration
type RenewalEntry struct {
	RegistrationID string
	Credential     *Credential
	Interval       time.Duration
	UpdatedAt      time.Time
}
