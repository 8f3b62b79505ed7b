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

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	config     *Config
	configOnce sync.Once
)

// GetConfig loads the configuration on first use and exits the process if it is invalid
func GetConfig() *Config {
	configOnce.Do(loadEnvs)
	return config
}

func loadEnvs() {
	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath != "" {
		err := godotenv.Load(envFilePath)
		if err != nil {
			panic(err)
		}
	}

	r := &configReader{}
	config = readConfig(r)
	r.logAndExitIfErrorsFound()

	slog.Info("configReader: configs loaded")
}

// LoadConfig reads the configuration from the environment and returns every problem found
func LoadConfig() (*Config, error) {
	r := &configReader{}
	cfg := readConfig(r)
	if err := r.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfig(r *configReader) *Config {
	cfg := &Config{}
	cfg.ServerHost = r.readOptionalString("SERVER_HOST", "")
	cfg.ServerPort = int(r.readOptionalInt64("SERVER_PORT", 9090))
	cfg.AutoMaxProcsEnabled = r.readOptionalBool("AUTO_MAX_PROCS_ENABLED", true)

	// Logging configuration
	cfg.LogLevel = r.readOptionalString("LOG_LEVEL", "INFO")

	// HTTP Server timeout configurations
	cfg.ReadTimeoutSeconds = int(r.readOptionalInt64("HTTP_READ_TIMEOUT_SECONDS", 10))
	cfg.WriteTimeoutSeconds = int(r.readOptionalInt64("HTTP_WRITE_TIMEOUT_SECONDS", 30))
	cfg.IdleTimeoutSeconds = int(r.readOptionalInt64("HTTP_IDLE_TIMEOUT_SECONDS", 60))
	cfg.ShutdownTimeoutSeconds = int(r.readOptionalInt64("SHUTDOWN_TIMEOUT_SECONDS", 30))

	cfg.Renewal = RenewalConfig{
		DefaultIntervalSeconds: r.readOptionalInt64("RENEWAL_DEFAULT_INTERVAL_SECONDS", 5*60*60),
		FailureIntervalSeconds: r.readOptionalInt64("RENEWAL_FAILURE_INTERVAL_SECONDS", 10*60),
		MinIntervalSeconds:     r.readOptionalInt64("RENEWAL_MIN_INTERVAL_SECONDS", 1),
		FetchTimeoutSeconds:    r.readOptionalInt64("RENEWAL_FETCH_TIMEOUT_SECONDS", 0),
	}

	// IDP OAuth2 client credentials for service-to-service auth
	cfg.IDP = IDPConfig{
		RegistrationID: r.readOptionalString("IDP_REGISTRATION_ID", "idp"),
		TokenURL:       r.readOptionalString("IDP_TOKEN_URL", ""),
		ClientID:       r.readOptionalString("IDP_CLIENT_ID", ""),
		ClientSecret:   r.readOptionalString("IDP_CLIENT_SECRET", ""),
		Scopes:         r.readOptionalStringList("IDP_SCOPES", ""),
	}

	cfg.HTTPClient = HTTPClientConfig{
		RetryAttemptsMax:      int(r.readOptionalInt64("HTTP_RETRY_ATTEMPTS_MAX", 3)),
		RetryWaitMinMillis:    r.readOptionalInt64("HTTP_RETRY_WAIT_MIN_MS", 1000),
		RetryWaitMaxMillis:    r.readOptionalInt64("HTTP_RETRY_WAIT_MAX_MS", 10000),
		AttemptTimeoutSeconds: r.readOptionalInt64("HTTP_ATTEMPT_TIMEOUT_SECONDS", 15),
	}

	cfg.RegistrationsConfigPath = r.readOptionalString("REGISTRATIONS_CONFIG_PATH", "")

	validateHTTPServerConfigs(cfg, r)
	validateRenewalConfigs(cfg, r)
	validateIDPConfigs(cfg, r)
	validateHTTPClientConfigs(cfg, r)
	return cfg
}

func validateHTTPServerConfigs(cfg *Config, r *configReader) {
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		r.errors = append(r.errors, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort))
	}
	if cfg.ReadTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("HTTP_READ_TIMEOUT_SECONDS must be greater than 0, got %d", cfg.ReadTimeoutSeconds))
	}
	if cfg.WriteTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS must be greater than 0, got %d", cfg.WriteTimeoutSeconds))
	}
	if cfg.IdleTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("HTTP_IDLE_TIMEOUT_SECONDS must be greater than 0, got %d", cfg.IdleTimeoutSeconds))
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0, got %d", cfg.ShutdownTimeoutSeconds))
	}
}

func validateRenewalConfigs(cfg *Config, r *configReader) {
	rc := cfg.Renewal
	if rc.MinIntervalSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("RENEWAL_MIN_INTERVAL_SECONDS must be greater than 0, got %d", rc.MinIntervalSeconds))
	}
	if rc.FailureIntervalSeconds < rc.MinIntervalSeconds {
		r.errors = append(r.errors, fmt.Errorf("RENEWAL_FAILURE_INTERVAL_SECONDS (%d) must be >= RENEWAL_MIN_INTERVAL_SECONDS (%d)",
			rc.FailureIntervalSeconds, rc.MinIntervalSeconds))
	}
	if rc.DefaultIntervalSeconds < rc.FailureIntervalSeconds {
		r.errors = append(r.errors, fmt.Errorf("RENEWAL_DEFAULT_INTERVAL_SECONDS (%d) must be >= RENEWAL_FAILURE_INTERVAL_SECONDS (%d)",
			rc.DefaultIntervalSeconds, rc.FailureIntervalSeconds))
	}
	if rc.FetchTimeoutSeconds < 0 {
		r.errors = append(r.errors, fmt.Errorf("RENEWAL_FETCH_TIMEOUT_SECONDS must not be negative, got %d", rc.FetchTimeoutSeconds))
	}
}

func validateIDPConfigs(cfg *Config, r *configReader) {
	if (cfg.IDP.TokenURL == "") != (cfg.IDP.ClientID == "") {
		r.errors = append(r.errors, fmt.Errorf("IDP_TOKEN_URL and IDP_CLIENT_ID must be set together"))
	}
	if cfg.IDP.Enabled() && cfg.IDP.RegistrationID == "" {
		r.errors = append(r.errors, fmt.Errorf("IDP_REGISTRATION_ID must be non-empty"))
	}
}

func validateHTTPClientConfigs(cfg *Config, r *configReader) {
	hc := cfg.HTTPClient
	if hc.RetryAttemptsMax < 0 {
		r.errors = append(r.errors, fmt.Errorf("HTTP_RETRY_ATTEMPTS_MAX must not be negative, got %d", hc.RetryAttemptsMax))
	}
	if hc.RetryWaitMinMillis <= 0 || hc.RetryWaitMaxMillis < hc.RetryWaitMinMillis {
		r.errors = append(r.errors, fmt.Errorf("HTTP_RETRY_WAIT_MIN_MS (%d) must be > 0 and <= HTTP_RETRY_WAIT_MAX_MS (%d)",
			hc.RetryWaitMinMillis, hc.RetryWaitMaxMillis))
	}
	if hc.AttemptTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("HTTP_ATTEMPT_TIMEOUT_SECONDS must be greater than 0, got %d", hc.AttemptTimeoutSeconds))
	}
}
