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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
)

func credentialWithLifetime(lifetime time.Duration) *models.Credential {
	return models.NewCredential("token", time.Now(), lifetime)
}

func TestIntervalPolicy_ThreeQuartersOfLifetime(t *testing.T) {
	p := DefaultIntervalPolicy()

	tests := []struct {
		lifetime time.Duration
		want     time.Duration
	}{
		{lifetime: 4 * time.Second, want: 3 * time.Second},
		{lifetime: 5 * time.Second, want: 3 * time.Second}, // 3.75s truncated
		{lifetime: 8 * time.Second, want: 6 * time.Second},
		{lifetime: 12 * time.Second, want: 9 * time.Second},
		{lifetime: time.Hour, want: 45 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.lifetime.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, p.Interval(credentialWithLifetime(tt.lifetime)))
		})
	}
}

func TestIntervalPolicy_NilCredentialUsesFailureInterval(t *testing.T) {
	assert.Equal(t, DefaultFailureInterval, DefaultIntervalPolicy().Interval(nil))
}

func TestIntervalPolicy_MissingTimestampsUseDefaultInterval(t *testing.T) {
	p := DefaultIntervalPolicy()
	issued := time.Now()

	assert.Equal(t, DefaultRenewalInterval, p.Interval(&models.Credential{Value: "t"}))
	assert.Equal(t, DefaultRenewalInterval, p.Interval(&models.Credential{Value: "t", IssuedAt: &issued}))
	assert.Equal(t, DefaultRenewalInterval, p.Interval(models.NewCredential("t", issued, 0)))
}

func TestIntervalPolicy_ClampsToMinInterval(t *testing.T) {
	p := DefaultIntervalPolicy()

	assert.Equal(t, time.Second, p.Interval(credentialWithLifetime(time.Second)))

	issued := time.Now()
	expired := issued.Add(-time.Minute)
	assert.Equal(t, time.Second, p.Interval(&models.Credential{Value: "t", IssuedAt: &issued, ExpiresAt: &expired}))
}

func TestIntervalPolicy_MillisecondResolution(t *testing.T) {
	p := IntervalPolicy{MinInterval: 10 * time.Millisecond, Resolution: time.Millisecond}

	assert.Equal(t, 300*time.Millisecond, p.Interval(credentialWithLifetime(400*time.Millisecond)))
	assert.Equal(t, 10*time.Millisecond, p.Interval(credentialWithLifetime(time.Millisecond)))
}

func TestIntervalPolicy_ZeroValueUsesDefaults(t *testing.T) {
	var p IntervalPolicy

	assert.Equal(t, DefaultFailureInterval, p.Interval(nil))
	assert.Equal(t, DefaultRenewalInterval, p.Interval(&models.Credential{Value: "t"}))
	assert.Equal(t, 3*time.Second, p.Interval(credentialWithLifetime(4*time.Second)))
}
