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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// registrationsFile is the layout of the file at REGISTRATIONS_CONFIG_PATH
type registrationsFile struct {
	Registrations []models.Registration `json:"registrations"`
}

// LoadRegistrations reads and validates the registrations file.
// Secrets referenced through *Env fields are resolved from the environment.
func LoadRegistrations(path string) ([]models.Registration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registrations file: %w", err)
	}
	return ParseRegistrations(data)
}

// ParseRegistrations parses and validates registrations from YAML or JSON
func ParseRegistrations(data []byte) ([]models.Registration, error) {
	var file registrationsFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registrations file: %w", err)
	}

	var errs []error
	seen := make(map[string]bool, len(file.Registrations))
	for i := range file.Registrations {
		reg := &file.Registrations[i]
		reg.ID = strings.TrimSpace(reg.ID)
		if reg.ClientSecret == "" && reg.ClientSecretEnv != "" {
			reg.ClientSecret = os.Getenv(reg.ClientSecretEnv)
		}
		if err := validateRegistration(reg); err != nil {
			errs = append(errs, fmt.Errorf("registrations[%d]: %w", i, err))
			continue
		}
		if seen[reg.ID] {
			errs = append(errs, fmt.Errorf("registrations[%d]: %w: %s", i, utils.ErrDuplicateRegistration, reg.ID))
			continue
		}
		seen[reg.ID] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return file.Registrations, nil
}

func validateRegistration(reg *models.Registration) error {
	if reg.ID == "" {
		return utils.ErrInvalidRegistrationID
	}
	switch reg.Type {
	case models.RegistrationTypeClientCredentials:
		if reg.TokenURL == "" || reg.ClientID == "" {
			return fmt.Errorf("%s: tokenUrl and clientId are required", reg.ID)
		}
	case models.RegistrationTypeMint:
		if reg.SigningKeyPath == "" && reg.HMACSecretEnv == "" {
			return fmt.Errorf("%s: signingKeyPath or hmacSecretEnv is required", reg.ID)
		}
		if reg.TTL != "" {
			ttl, err := time.ParseDuration(reg.TTL)
			if err != nil {
				return fmt.Errorf("%s: invalid ttl %q: %w", reg.ID, reg.TTL, err)
			}
			if ttl <= 0 {
				return fmt.Errorf("%s: ttl must be positive, got %s", reg.ID, reg.TTL)
			}
		}
	default:
		return fmt.Errorf("%w: %q for %s", utils.ErrUnsupportedRegistrationType, reg.Type, reg.ID)
	}
	return nil
}
