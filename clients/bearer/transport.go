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

// Package bearer attaches renewed credentials to outbound HTTP calls.
package bearer

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/logger"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/services"
)

// Compile-time checks
var (
	_ http.RoundTripper  = (*Transport)(nil)
	_ oauth2.TokenSource = (*tokenSource)(nil)
)

// Transport sets the Authorization header of every request from the credential
// cached for RegistrationID. A 401 response invalidates the cached credential so
// the next request fetches a fresh one.
type Transport struct {
	Renewer        services.CredentialRenewer
	RegistrationID string
	Fetcher        services.Fetcher
	// Base is used to send the request; http.DefaultTransport when nil
	Base http.RoundTripper
}

// NewClient returns an HTTP client that authenticates as registrationID
func NewClient(renewer services.CredentialRenewer, registrationID string, fetcher services.Fetcher, base http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: &Transport{
			Renewer:        renewer,
			RegistrationID: registrationID,
			Fetcher:        fetcher,
			Base:           base,
		},
	}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	cred, err := t.Renewer.Register(req.Context(), t.RegistrationID, t.Fetcher)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("bearer: no credential for %s: %w", t.RegistrationID, err)
	}

	authReq := req.Clone(req.Context())
	TokenFromCredential(cred).SetAuthHeader(authReq)

	resp, err := t.base().RoundTrip(authReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		logger.GetLogger(req.Context()).Warn("bearer: credential rejected, invalidating",
			"registrationId", t.RegistrationID, "url", req.URL.String())
		t.Renewer.Invalidate(t.RegistrationID)
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

type tokenSource struct {
	ctx            context.Context
	renewer        services.CredentialRenewer
	registrationID string
	fetcher        services.Fetcher
}

// TokenSource exposes the credential of a registration as an oauth2.TokenSource
func TokenSource(ctx context.Context, renewer services.CredentialRenewer, registrationID string, fetcher services.Fetcher) oauth2.TokenSource {
	return &tokenSource{
		ctx:            ctx,
		renewer:        renewer,
		registrationID: registrationID,
		fetcher:        fetcher,
	}
}

// Token implements oauth2.TokenSource
func (s *tokenSource) Token() (*oauth2.Token, error) {
	cred, err := s.renewer.Register(s.ctx, s.registrationID, s.fetcher)
	if err != nil {
		return nil, err
	}
	return TokenFromCredential(cred), nil
}

// TokenFromCredential converts a credential into an oauth2 token. A credential
// without expiry maps to a token with a zero Expiry, which oauth2 treats as never expiring.
func TokenFromCredential(cred *models.Credential) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken: cred.Value,
		TokenType:   cred.Type(),
	}
	if cred.ExpiresAt != nil {
		token.Expiry = *cred.ExpiresAt
	}
	return token
}

// AuthProvider hands out the token of one registration to API clients
type AuthProvider struct {
	renewer        services.CredentialRenewer
	registrationID string
	fetcher        services.Fetcher
}

// NewAuthProvider creates an AuthProvider for registrationID
func NewAuthProvider(renewer services.CredentialRenewer, registrationID string, fetcher services.Fetcher) *AuthProvider {
	return &AuthProvider{
		renewer:        renewer,
		registrationID: registrationID,
		fetcher:        fetcher,
	}
}

// GetToken returns a valid access token, fetching one if none is cached
func (p *AuthProvider) GetToken(ctx context.Context) (string, error) {
	cred, err := p.renewer.Register(ctx, p.registrationID, p.fetcher)
	if err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}
	return cred.Value, nil
}

// InvalidateToken forces a fetch on the next GetToken call.
// Use this when a request fails with 401 Unauthorized.
func (p *AuthProvider) InvalidateToken() {
	p.renewer.Invalidate(p.registrationID)
}
