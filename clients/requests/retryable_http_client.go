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
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// NewRetryableHTTPClient returns an *http.Client that retries transient failures.
// Config is optional - defaults will be used if not provided.
func NewRetryableHTTPClient(base *http.Client, config ...RequestRetryConfig) *http.Client {
	var cfg RequestRetryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg = cfg.withDefaults()

	if base == nil {
		base = &http.Client{}
	}
	attemptClient := *base
	attemptClient.Timeout = cfg.AttemptTimeout

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &attemptClient
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.RetryMax = cfg.RetryAttemptsMax
	rc.Logger = slog.Default()
	rc.Backoff = equalJitterBackoff
	rc.CheckRetry = checkRetry(cfg)
	// Hand the last response back to the caller instead of a "giving up" error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return rc.StandardClient()
}

func checkRetry(cfg RequestRetryConfig) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		if resp != nil && resp.Request != nil && cfg.RetryOnStatus(resp.Request.Method, resp.StatusCode) {
			return true, nil
		}
		return false, nil
	}
}

// equalJitterBackoff returns an exponential backoff duration with jitter, capped by max.
// Uses "equal jitter": base/2 + random(0, base/2), giving a range of [base/2, base].
func equalJitterBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if wait := retryablehttp.DefaultBackoff(min, max, attemptNum, resp); wait > min {
			return wait
		}
	}
	base := min * time.Duration(1<<uint(attemptNum))
	if base > max || base <= 0 {
		base = max
	}
	halfBase := base / 2
	if halfBase <= 0 {
		return base
	}
	return halfBase + time.Duration(rand.Int64N(int64(halfBase)))
}
