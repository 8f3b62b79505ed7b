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

// Package fetchers builds credential fetchers from declared registrations.
package fetchers

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/clients/idp"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/clients/mint"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/services"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// NewFetcher creates the fetcher for a registration based on its type.
// Client credentials registrations are added to idpFetcher, which serves them all.
func NewFetcher(reg models.Registration, idpFetcher *idp.ClientCredentialsFetcher) (services.Fetcher, error) {
	switch reg.Type {
	case models.RegistrationTypeClientCredentials:
		if idpFetcher == nil {
			return nil, fmt.Errorf("no client credentials fetcher for %s", reg.ID)
		}
		idpFetcher.AddClient(reg.ID, idp.ClientConfig{
			TokenURL:     reg.TokenURL,
			ClientID:     reg.ClientID,
			ClientSecret: reg.ClientSecret,
			Scopes:       reg.Scopes,
			Audience:     reg.Audience,
		})
		return idpFetcher, nil
	case models.RegistrationTypeMint:
		return newMinter(reg)
	default:
		return nil, fmt.Errorf("%w: %q", utils.ErrUnsupportedRegistrationType, reg.Type)
	}
}

// NewFetchers creates a fetcher for every registration, keyed by registration id
func NewFetchers(regs []models.Registration, idpFetcher *idp.ClientCredentialsFetcher) (services.FetcherRegistry, error) {
	fetchers := make(services.FetcherRegistry, len(regs))
	var errs []error
	for _, reg := range regs {
		if _, exists := fetchers[reg.ID]; exists {
			errs = append(errs, fmt.Errorf("%w: %s", utils.ErrDuplicateRegistration, reg.ID))
			continue
		}
		f, err := NewFetcher(reg, idpFetcher)
		if err != nil {
			errs = append(errs, fmt.Errorf("registration %s: %w", reg.ID, err))
			continue
		}
		fetchers[reg.ID] = f
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return fetchers, nil
}

func newMinter(reg models.Registration) (*mint.Minter, error) {
	cfg := mint.Config{
		Issuer:   reg.Issuer,
		Audience: reg.Audience,
		KeyID:    reg.SigningKeyID,
	}
	if reg.TTL != "" {
		ttl, err := time.ParseDuration(reg.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid ttl %q: %w", reg.TTL, err)
		}
		cfg.TTL = ttl
	}

	if reg.SigningKeyPath != "" {
		key, err := mint.LoadRSAPrivateKey(reg.SigningKeyPath)
		if err != nil {
			return nil, err
		}
		return mint.NewRSAMinter(cfg, key)
	}
	secret := os.Getenv(reg.HMACSecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("%w: environment variable %s is empty", utils.ErrInvalidSigningKey, reg.HMACSecretEnv)
	}
	return mint.NewHMACMinter(cfg, []byte(secret))
}
