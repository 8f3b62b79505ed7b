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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *RenewalMetrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("a", TriggerRegister, true)
		m.ObserveCadence("a", time.Second, true)
		m.ForgetRegistration("a")
		m.SetActiveJobs(3)
		m.ObserveSchedulerFailure()
	})
}

func TestRenewalMetrics_Observe(t *testing.T) {
	m := NewRenewalMetrics(prometheus.NewRegistry())

	m.ObserveFetch("a", TriggerRegister, true)
	m.ObserveFetch("a", TriggerRenewal, false)
	m.ObserveFetch("a", TriggerRenewal, false)
	m.ObserveCadence("a", 3*time.Second, false)
	m.ObserveCadence("a", 6*time.Second, true)
	m.SetActiveJobs(2)
	m.ObserveSchedulerFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("a", TriggerRegister, ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("a", TriggerRenewal, ResultFailure)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.CadenceSeconds.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CadenceChangesTotal.WithLabelValues("a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveJobs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerFailuresTotal))

	m.ForgetRegistration("a")
	assert.Equal(t, 0, testutil.CollectAndCount(m.CadenceSeconds))
}

func TestNewRenewalMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewRenewalMetrics(reg)
	second := NewRenewalMetrics(reg)

	first.ObserveFetch("a", TriggerRegister, true)
	second.ObserveFetch("a", TriggerRegister, true)

	assert.Same(t, first.FetchTotal, second.FetchTotal)
	assert.Equal(t, 2.0, testutil.ToFloat64(second.FetchTotal.WithLabelValues("a", TriggerRegister, ResultSuccess)))
}
