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

package requests

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HttpRequest describes an outbound request
type HttpRequest struct {
	// Name identifies the request in logs
	Name    string
	URL     string
	Method  string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
}

// SetHeader sets a request header
func (r *HttpRequest) SetHeader(key, value string) *HttpRequest {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetFormData encodes data as an application/x-www-form-urlencoded body
func (r *HttpRequest) SetFormData(data map[string]string) *HttpRequest {
	form := url.Values{}
	for k, v := range data {
		if v == "" {
			continue
		}
		form.Set(k, v)
	}
	r.Body = []byte(form.Encode())
	return r.SetHeader("Content-Type", "application/x-www-form-urlencoded")
}

// SetBasicAuth sets an Authorization header with basic credentials
func (r *HttpRequest) SetBasicAuth(username, password string) *HttpRequest {
	req := http.Request{Header: http.Header{}}
	req.SetBasicAuth(url.QueryEscape(username), url.QueryEscape(password))
	return r.SetHeader("Authorization", req.Header.Get("Authorization"))
}

func (r *HttpRequest) buildHttpRequest(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", r.URL, err)
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, v := range r.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// HttpError is returned when a response does not carry the expected status
type HttpError struct {
	StatusCode int
	Body       string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
