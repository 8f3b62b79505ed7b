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

package config

import "time"

// Config holds all configuration for the application
type Config struct {
	ServerHost          string
	ServerPort          int
	AutoMaxProcsEnabled bool
	LogLevel            string
	// HTTP Server timeout configurations
	ReadTimeoutSeconds     int
	WriteTimeoutSeconds    int
	IdleTimeoutSeconds     int
	ShutdownTimeoutSeconds int

	// Credential renewal tunables
	Renewal RenewalConfig

	// IDP OAuth2 client credentials, registered as the default registration when set
	IDP IDPConfig

	// Retry behaviour of the HTTP client used by fetchers
	HTTPClient HTTPClientConfig

	// RegistrationsConfigPath is the YAML file declaring credential registrations (optional)
	RegistrationsConfigPath string
}

// RenewalConfig holds the cadence policy of the credential renewer
type RenewalConfig struct {
	// DefaultIntervalSeconds is used for credentials without issue or expiry time
	DefaultIntervalSeconds int64
	// FailureIntervalSeconds is used when the first fetch of a registration fails
	FailureIntervalSeconds int64
	// MinIntervalSeconds is the shortest cadence a renewal job may run at
	MinIntervalSeconds int64
	// FetchTimeoutSeconds bounds a single fetch; 0 means no timeout
	FetchTimeoutSeconds int64
}

// DefaultInterval returns DefaultIntervalSeconds as a duration
func (c RenewalConfig) DefaultInterval() time.Duration {
	return time.Duration(c.DefaultIntervalSeconds) * time.Second
}

// FailureInterval returns FailureIntervalSeconds as a duration
func (c RenewalConfig) FailureInterval() time.Duration {
	return time.Duration(c.FailureIntervalSeconds) * time.Second
}

// MinInterval returns MinIntervalSeconds as a duration
func (c RenewalConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalSeconds) * time.Second
}

// FetchTimeout returns FetchTimeoutSeconds as a duration
func (c RenewalConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

type IDPConfig struct {
	RegistrationID string
	TokenURL       string
	ClientID       string
	ClientSecret   string `json:"-"`
	Scopes         []string
}

// Enabled reports whether a default IDP registration is configured
func (c IDPConfig) Enabled() bool {
	return c.TokenURL != "" && c.ClientID != ""
}

type HTTPClientConfig struct {
	RetryAttemptsMax      int
	RetryWaitMinMillis    int64
	RetryWaitMaxMillis    int64
	AttemptTimeoutSeconds int64
}
