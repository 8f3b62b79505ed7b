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

package models

// RegistrationType selects how credentials for a registration are obtained
type RegistrationType string

const (
	// RegistrationTypeClientCredentials fetches tokens from an OAuth2 token endpoint
	RegistrationTypeClientCredentials RegistrationType = "client_credentials"
	// RegistrationTypeMint signs tokens locally
	RegistrationTypeMint RegistrationType = "mint"
)

// Registration describes one credential source as declared in the registrations file
type Registration struct {
	ID   string           `json:"id"`
	Type RegistrationType `json:"type"`

	// client_credentials
	TokenURL        string   `json:"tokenUrl,omitempty"`
	ClientID        string   `json:"clientId,omitempty"`
	ClientSecret    string   `json:"clientSecret,omitempty"`
	ClientSecretEnv string   `json:"clientSecretEnv,omitempty"`
	Scopes          []string `json:"scopes,omitempty"`
	Audience        string   `json:"audience,omitempty"`

	// mint
	Issuer         string `json:"issuer,omitempty"`
	TTL            string `json:"ttl,omitempty"`
	SigningKeyPath string `json:"signingKeyPath,omitempty"`
	SigningKeyID   string `json:"signingKeyId,omitempty"`
	HMACSecretEnv  string `json:"hmacSecretEnv,omitempty"`
}
