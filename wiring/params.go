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

package wiring

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/clients/fetchers"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/clients/idp"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/clients/requests"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/config"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/controllers"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/metrics"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/services"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// AppParams contains all wired application dependencies
type AppParams struct {
	Logger *slog.Logger

	// Controllers
	RenewalController controllers.RenewalController

	// Services
	Renewer  services.CredentialRenewer
	Fetchers services.FetcherRegistry

	// Metrics
	Registry *prometheus.Registry
	Metrics  *metrics.RenewalMetrics
}

func ProvideConfigFromPtr(config *config.Config) config.Config {
	return *config
}

// ProvideLogger provides the configured slog.Logger instance
func ProvideLogger() *slog.Logger {
	return slog.Default()
}

// ProvideRenewerConfig maps the renewal settings onto the renewer's cadence policy
func ProvideRenewerConfig(cfg config.Config) services.RenewerConfig {
	return services.RenewerConfig{
		Policy: services.IntervalPolicy{
			DefaultInterval: cfg.Renewal.DefaultInterval(),
			FailureInterval: cfg.Renewal.FailureInterval(),
			MinInterval:     cfg.Renewal.MinInterval(),
			Resolution:      services.DefaultIntervalResolution,
		},
		FetchTimeout: cfg.Renewal.FetchTimeout(),
	}
}

// ProvideHTTPClient creates the retrying HTTP client used by remote fetchers
func ProvideHTTPClient(cfg config.Config) *http.Client {
	hc := cfg.HTTPClient
	attempts := hc.RetryAttemptsMax
	if attempts == 0 {
		// Zero retries must not fall back to the client default
		attempts = -1
	}
	return requests.NewRetryableHTTPClient(&http.Client{}, requests.RequestRetryConfig{
		RetryWaitMin:     time.Duration(hc.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax:     time.Duration(hc.RetryWaitMaxMillis) * time.Millisecond,
		RetryAttemptsMax: attempts,
		AttemptTimeout:   time.Duration(hc.AttemptTimeoutSeconds) * time.Second,
	})
}

func ProvideClientCredentialsFetcher(httpClient *http.Client) *idp.ClientCredentialsFetcher {
	return idp.NewClientCredentialsFetcher(httpClient, nil)
}

// ProvideRegistrations collects the declared registrations: the IDP client from the
// environment, if configured, followed by the entries of the registrations file
func ProvideRegistrations(cfg config.Config) ([]models.Registration, error) {
	var regs []models.Registration
	if cfg.IDP.Enabled() {
		regs = append(regs, models.Registration{
			ID:           cfg.IDP.RegistrationID,
			Type:         models.RegistrationTypeClientCredentials,
			TokenURL:     cfg.IDP.TokenURL,
			ClientID:     cfg.IDP.ClientID,
			ClientSecret: cfg.IDP.ClientSecret,
			Scopes:       cfg.IDP.Scopes,
		})
	}
	if cfg.RegistrationsConfigPath == "" {
		return regs, nil
	}

	fromFile, err := config.LoadRegistrations(cfg.RegistrationsConfigPath)
	if err != nil {
		return nil, err
	}
	for _, reg := range fromFile {
		if cfg.IDP.Enabled() && reg.ID == cfg.IDP.RegistrationID {
			return nil, fmt.Errorf("%w: %s is declared by IDP_REGISTRATION_ID and %s",
				utils.ErrDuplicateRegistration, reg.ID, cfg.RegistrationsConfigPath)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func ProvideFetcherRegistry(regs []models.Registration, idpFetcher *idp.ClientCredentialsFetcher) (services.FetcherRegistry, error) {
	return fetchers.NewFetchers(regs, idpFetcher)
}

// ProvideMetricsRegistry creates the registry served at /metrics
func ProvideMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func ProvideRenewalMetrics(registry *prometheus.Registry) *metrics.RenewalMetrics {
	return metrics.NewRenewalMetrics(registry)
}
