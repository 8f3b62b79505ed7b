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

package idp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/clients/requests"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/logger"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// ClientConfig holds the OAuth2 client used for one registration
type ClientConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string `json:"-"`
	Scopes       []string
	Audience     string
}

// ClientCredentialsFetcher obtains access tokens with the OAuth2 client credentials grant.
// Each registration id maps to its own client.
type ClientCredentialsFetcher struct {
	httpClient requests.HttpClient
	now        func() time.Time

	mu      sync.RWMutex
	clients map[string]ClientConfig // registrationID -> client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	Scope       string `json:"scope,omitempty"`
}

// NewClientCredentialsFetcher creates a fetcher for the given clients
func NewClientCredentialsFetcher(httpClient requests.HttpClient, clients map[string]ClientConfig) *ClientCredentialsFetcher {
	if httpClient == nil {
		httpClient = requests.NewRetryableHTTPClient(&http.Client{Timeout: 15 * time.Second})
	}
	f := &ClientCredentialsFetcher{
		httpClient: httpClient,
		now:        time.Now,
		clients:    make(map[string]ClientConfig, len(clients)),
	}
	for id, c := range clients {
		f.clients[id] = c
	}
	return f
}

// AddClient binds a client to a registration id
func (f *ClientCredentialsFetcher) AddClient(registrationID string, cfg ClientConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[registrationID] = cfg
}

// Fetch requests a new access token for the registration
func (f *ClientCredentialsFetcher) Fetch(ctx context.Context, registrationID string) (*models.Credential, error) {
	f.mu.RLock()
	cfg, ok := f.clients[registrationID]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrRegistrationNotFound, registrationID)
	}

	log := logger.GetLogger(ctx)
	log.Debug("idp: fetching access token", "tokenUrl", cfg.TokenURL, "clientId", cfg.ClientID)

	issuedAt := f.now()
	tokenResp, err := f.fetchToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cred := credentialFromResponse(tokenResp, issuedAt)
	log.Info("idp: fetched new access token",
		"clientId", cfg.ClientID,
		"expires_at", expiresAtString(cred))
	return cred, nil
}

// fetchToken fetches a new token from the token endpoint using client credentials
func (f *ClientCredentialsFetcher) fetchToken(ctx context.Context, cfg ClientConfig) (*tokenResponse, error) {
	req := &requests.HttpRequest{
		Name:   "idp.fetchToken",
		URL:    cfg.TokenURL,
		Method: http.MethodPost,
	}
	req.SetFormData(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret,
		"scope":         strings.Join(cfg.Scopes, " "),
		"audience":      cfg.Audience,
	})

	var tokenResp tokenResponse
	if err := requests.SendRequest(ctx, f.httpClient, req).ScanResponse(&tokenResp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("idp.fetchToken: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, utils.ErrEmptyAccessToken
	}
	if tokenResp.ExpiresIn < 0 {
		return nil, fmt.Errorf("invalid expires_in value: %d (must not be negative)", tokenResp.ExpiresIn)
	}
	return &tokenResp, nil
}

// credentialFromResponse derives issue and expiry time from expires_in, falling back to the
// iat/exp claims when the access token is a JWT. Without either the credential never expires.
func credentialFromResponse(resp *tokenResponse, issuedAt time.Time) *models.Credential {
	cred := &models.Credential{
		Value:     resp.AccessToken,
		TokenType: normalizeTokenType(resp.TokenType),
		IssuedAt:  &issuedAt,
	}
	if resp.Scope != "" {
		cred.Scopes = strings.Fields(resp.Scope)
	}

	if resp.ExpiresIn > 0 {
		expiresAt := issuedAt.Add(time.Duration(resp.ExpiresIn) * time.Second)
		cred.ExpiresAt = &expiresAt
		return cred
	}

	if iat, exp, ok := jwtValidity(resp.AccessToken); ok {
		if iat != nil {
			cred.IssuedAt = iat
		}
		cred.ExpiresAt = exp
	}
	return cred
}

// jwtValidity reads iat and exp from an unverified JWT. The signature is not checked:
// the token came straight from the issuer and is only inspected for scheduling.
func jwtValidity(token string) (*time.Time, *time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, nil, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, nil, false
	}
	expiresAt := exp.Time
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, &expiresAt, true
	}
	issuedAt := iat.Time
	return &issuedAt, &expiresAt, true
}

func normalizeTokenType(tokenType string) string {
	if tokenType == "" || strings.EqualFold(tokenType, models.TokenTypeBearer) {
		return models.TokenTypeBearer
	}
	return tokenType
}

func expiresAtString(cred *models.Credential) string {
	if cred.ExpiresAt == nil {
		return "never"
	}
	return cred.ExpiresAt.Format(time.RFC3339)
}
