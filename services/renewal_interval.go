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

package services

import (
	"time"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
)

const (
	// DefaultRenewalInterval is used for credentials that do not report both issue and expiry time
	DefaultRenewalInterval = 5 * time.Hour
	// DefaultFailureInterval is used when the very first fetch for a registration fails
	DefaultFailureInterval = 10 * time.Minute
	// DefaultMinInterval is the shortest cadence a job may be armed with
	DefaultMinInterval = time.Second
	// DefaultIntervalResolution truncates computed cadences to whole seconds
	DefaultIntervalResolution = time.Second
)

// IntervalPolicy computes the refresh cadence of a credential
type IntervalPolicy struct {
	DefaultInterval time.Duration
	FailureInterval time.Duration
	MinInterval     time.Duration
	Resolution      time.Duration
}

// DefaultIntervalPolicy returns the policy used when nothing is configured
func DefaultIntervalPolicy() IntervalPolicy {
	return IntervalPolicy{
		DefaultInterval: DefaultRenewalInterval,
		FailureInterval: DefaultFailureInterval,
		MinInterval:     DefaultMinInterval,
		Resolution:      DefaultIntervalResolution,
	}
}

// withDefaults fills zero fields from the default policy
func (p IntervalPolicy) withDefaults() IntervalPolicy {
	d := DefaultIntervalPolicy()
	if p.DefaultInterval <= 0 {
		p.DefaultInterval = d.DefaultInterval
	}
	if p.FailureInterval <= 0 {
		p.FailureInterval = d.FailureInterval
	}
	if p.MinInterval <= 0 {
		p.MinInterval = d.MinInterval
	}
	if p.Resolution <= 0 {
		p.Resolution = d.Resolution
	}
	return p
}

// Interval returns three quarters of the credential lifetime, truncated to the policy resolution.
// A nil credential yields the failure interval; a credential missing issue or expiry time yields
// the default interval.
func (p IntervalPolicy) Interval(cred *models.Credential) time.Duration {
	p = p.withDefaults()
	if cred == nil {
		return p.FailureInterval
	}
	lifetime, ok := cred.Lifetime()
	if !ok {
		return p.DefaultInterval
	}
	interval := (lifetime * 3 / 4).Truncate(p.Resolution)
	if interval < p.MinInterval {
		return p.MinInterval
	}
	return interval
}
