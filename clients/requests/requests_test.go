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

package requests

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RequestRetryConfig {
	return RequestRetryConfig{
		RetryWaitMin:     time.Millisecond,
		RetryWaitMax:     5 * time.Millisecond,
		RetryAttemptsMax: 3,
		AttemptTimeout:   time.Second,
	}
}

func TestSendRequest_ScansJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.URL.Query().Get("q"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_, hasEmpty := r.PostForm["empty"]
		assert.False(t, hasEmpty)

		w.Header().Set("X-Trace", "abc")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name":"ok"}`)
	}))
	defer server.Close()

	req := &HttpRequest{Name: "test", URL: server.URL, Method: http.MethodPost, Query: map[string]string{"q": "v"}}
	req.SetFormData(map[string]string{"grant_type": "client_credentials", "empty": ""})

	var body struct {
		Name string `json:"name"`
	}
	result := SendRequest(context.Background(), server.Client(), req)
	require.NoError(t, result.ScanResponse(&body, http.StatusOK))
	assert.Equal(t, "ok", body.Name)
	assert.Equal(t, http.StatusOK, result.StatusCode())
	assert.Equal(t, "abc", result.GetHeader("X-Trace"))
}

func TestSendRequest_UnexpectedStatusReturnsHttpError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
	}))
	defer server.Close()

	var body map[string]any
	err := SendRequest(context.Background(), server.Client(), &HttpRequest{URL: server.URL}).ScanResponse(&body, http.StatusOK)

	var httpErr *HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "invalid_client")
}

func TestSendRequest_RequiresPointer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	var body map[string]any
	err := SendRequest(context.Background(), server.Client(), &HttpRequest{URL: server.URL}).ScanResponse(body, http.StatusOK)
	assert.Error(t, err)
}

func TestSendRequest_TransportError(t *testing.T) {
	result := SendRequest(context.Background(), http.DefaultClient, &HttpRequest{URL: "http://127.0.0.1:1"})
	var body map[string]any
	assert.Error(t, result.ScanResponse(&body, http.StatusOK))
	assert.Equal(t, 0, result.StatusCode())
	assert.Empty(t, result.GetHeader("X-Trace"))
}

func TestRetryableHTTPClient_RetriesTransientStatus(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "grant_type=client_credentials", string(body))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	client := NewRetryableHTTPClient(server.Client(), fastRetryConfig())
	req := &HttpRequest{URL: server.URL, Method: http.MethodPost}
	req.SetFormData(map[string]string{"grant_type": "client_credentials"})

	var body map[string]any
	require.NoError(t, SendRequest(context.Background(), client, req).ScanResponse(&body, http.StatusOK))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetryableHTTPClient_DoesNotRetryPostOnServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewRetryableHTTPClient(server.Client(), fastRetryConfig())
	result := SendRequest(context.Background(), client, &HttpRequest{URL: server.URL, Method: http.MethodPost})

	assert.Equal(t, http.StatusInternalServerError, result.StatusCode())
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRetryableHTTPClient_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewRetryableHTTPClient(server.Client(), fastRetryConfig())
	result := SendRequest(context.Background(), client, &HttpRequest{URL: server.URL})

	assert.Equal(t, http.StatusBadGateway, result.StatusCode())
	assert.Equal(t, int32(4), attempts.Load())
}

func TestRetryableHTTPClient_NegativeAttemptsDisableRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := fastRetryConfig()
	cfg.RetryAttemptsMax = -1
	client := NewRetryableHTTPClient(server.Client(), cfg)
	SendRequest(context.Background(), client, &HttpRequest{URL: server.URL})

	assert.Equal(t, int32(1), attempts.Load())
}

func TestIsTransientStatus(t *testing.T) {
	assert.True(t, isTransientStatus(http.MethodGet, http.StatusInternalServerError))
	assert.False(t, isTransientStatus(http.MethodPost, http.StatusInternalServerError))
	assert.True(t, isTransientStatus(http.MethodPost, http.StatusTooManyRequests))
	assert.False(t, isTransientStatus(http.MethodGet, http.StatusNotFound))
}

func TestEqualJitterBackoff_StaysWithinBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 0; attempt < 8; attempt++ {
		base := min * time.Duration(1<<uint(attempt))
		if base > max {
			base = max
		}
		wait := equalJitterBackoff(min, max, attempt, nil)
		assert.GreaterOrEqual(t, wait, base/2)
		assert.LessOrEqual(t, wait, base)
	}
}
