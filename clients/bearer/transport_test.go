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

package bearer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/services"
)

// mockRenewer is a test mock for the CredentialRenewer interface
type mockRenewer struct {
	services.CredentialRenewer

	mu               sync.Mutex
	registerFunc     func(ctx context.Context, registrationID string, fetcher services.Fetcher) (*models.Credential, error)
	registerCalls    []string
	invalidatedCalls []string
}

func (m *mockRenewer) Register(ctx context.Context, registrationID string, fetcher services.Fetcher) (*models.Credential, error) {
	m.mu.Lock()
	m.registerCalls = append(m.registerCalls, registrationID)
	m.mu.Unlock()
	return m.registerFunc(ctx, registrationID, fetcher)
}

func (m *mockRenewer) Invalidate(registrationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidatedCalls = append(m.invalidatedCalls, registrationID)
}

func staticRenewer(value string) *mockRenewer {
	return &mockRenewer{
		registerFunc: func(ctx context.Context, registrationID string, fetcher services.Fetcher) (*models.Credential, error) {
			return &models.Credential{Value: value}, nil
		},
	}
}

func TestTransport_SetsAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	renewer := staticRenewer("token-1")
	client := NewClient(renewer, "svc", nil, server.Client().Transport)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
	assert.Equal(t, []string{"svc"}, renewer.registerCalls)
	assert.Empty(t, renewer.invalidatedCalls)
}

func TestTransport_UnauthorizedInvalidatesCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	renewer := staticRenewer("revoked")
	client := NewClient(renewer, "svc", nil, server.Client().Transport)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, []string{"svc"}, renewer.invalidatedCalls)
}

func TestTransport_NoCredential(t *testing.T) {
	renewer := &mockRenewer{
		registerFunc: func(ctx context.Context, registrationID string, fetcher services.Fetcher) (*models.Credential, error) {
			return nil, errors.New("idp down")
		},
	}
	client := NewClient(renewer, "svc", nil, nil)

	_, err := client.Get("http://127.0.0.1:1")
	assert.ErrorContains(t, err, "idp down")
}

func TestTokenSource(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	renewer := &mockRenewer{
		registerFunc: func(ctx context.Context, registrationID string, fetcher services.Fetcher) (*models.Credential, error) {
			return &models.Credential{Value: "abc", ExpiresAt: &expires}, nil
		},
	}

	token, err := TokenSource(context.Background(), renewer, "svc", nil).Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
	assert.Equal(t, models.TokenTypeBearer, token.TokenType)
	assert.Equal(t, expires, token.Expiry)
	assert.True(t, token.Valid())
}

func TestTokenFromCredential_NoExpiry(t *testing.T) {
	token := TokenFromCredential(&models.Credential{Value: "abc", TokenType: "DPoP"})
	assert.True(t, token.Expiry.IsZero())
	assert.Equal(t, "DPoP", token.Type())
	assert.True(t, token.Valid())
}

func TestAuthProvider(t *testing.T) {
	renewer := staticRenewer("abc")
	p := NewAuthProvider(renewer, "svc", nil)

	token, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	p.InvalidateToken()
	assert.Equal(t, []string{"svc"}, renewer.invalidatedCalls)
}
