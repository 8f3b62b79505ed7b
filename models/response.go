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

import "time"

// RegistrationResponse describes the renewal state of a registration without its credential value
type RegistrationResponse struct {
	RegistrationID  string     `json:"registrationId"`
	Live            bool       `json:"live"`
	TokenType       string     `json:"tokenType,omitempty"`
	IssuedAt        *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	IntervalSeconds float64    `json:"intervalSeconds"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type RegistrationListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Count         int                    `json:"count"`
}

type HealthResponse struct {
	Status  string   `json:"status"`
	Live    []string `json:"live"`
	Pending []string `json:"pending"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// ToResponse converts a renewal entry to its API form, evaluating liveness at now
func (e RenewalEntry) ToResponse(now time.Time) RegistrationResponse {
	resp := RegistrationResponse{
		RegistrationID:  e.RegistrationID,
		Live:            e.Credential.IsLive(now),
		IntervalSeconds: e.Interval.Seconds(),
		UpdatedAt:       e.UpdatedAt,
	}
	if e.Credential != nil {
		resp.TokenType = e.Credential.Type()
		resp.IssuedAt = e.Credential.IssuedAt
		resp.ExpiresAt = e.Credential.ExpiresAt
	}
	return resp
}
