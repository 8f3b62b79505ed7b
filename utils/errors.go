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

package utils

import "errors"

var (
	// Credential errors
	ErrCredentialUnavailable = errors.New("credential unavailable")
	ErrEmptyAccessToken      = errors.New("empty access token in response")

	// Registration errors
	ErrRegistrationNotFound        = errors.New("registration not found")
	ErrInvalidRegistrationID       = errors.New("invalid registration id")
	ErrUnsupportedRegistrationType = errors.New("unsupported registration type")
	ErrDuplicateRegistration       = errors.New("duplicate registration")

	// Scheduler errors
	ErrSchedulerStopped = errors.New("renewal scheduler stopped")
	ErrInvalidInterval  = errors.New("invalid renewal interval")

	// Signing errors
	ErrInvalidSigningKey = errors.New("invalid signing key")
)
