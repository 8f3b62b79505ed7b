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

// Package metrics provides Prometheus metrics for credential renewal.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "credential_renewal"

// Result labels for metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Trigger labels for fetch metrics.
const (
	TriggerRegister = "register"
	TriggerRenewal  = "renewal"
)

// RenewalMetrics holds the collectors of one renewer instance.
// A nil *RenewalMetrics is valid and records nothing.
type RenewalMetrics struct {
	FetchTotal             *prometheus.CounterVec
	CadenceChangesTotal    *prometheus.CounterVec
	CadenceSeconds         *prometheus.GaugeVec
	ActiveJobs             prometheus.Gauge
	SchedulerFailuresTotal prometheus.Counter
}

// NewRenewalMetrics creates the collectors and registers them on reg.
// Collectors that are already registered are reused.
func NewRenewalMetrics(reg prometheus.Registerer) *RenewalMetrics {
	m := &RenewalMetrics{
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Total number of credential fetches",
			},
			[]string{"registration", "trigger", "result"},
		),
		CadenceChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cadence_changes_total",
				Help:      "Total number of renewal jobs re-armed with a different cadence",
			},
			[]string{"registration"},
		),
		CadenceSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cadence_seconds",
				Help:      "Current renewal cadence per registration",
			},
			[]string{"registration"},
		),
		ActiveJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_jobs",
				Help:      "Number of armed renewal jobs",
			},
		),
		SchedulerFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_failures_total",
				Help:      "Total number of renewal jobs that could not be armed",
			},
		),
	}
	if reg == nil {
		return m
	}

	m.FetchTotal = register(reg, m.FetchTotal)
	m.CadenceChangesTotal = register(reg, m.CadenceChangesTotal)
	m.CadenceSeconds = register(reg, m.CadenceSeconds)
	m.ActiveJobs = register(reg, m.ActiveJobs)
	m.SchedulerFailuresTotal = register(reg, m.SchedulerFailuresTotal)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// ObserveFetch records the outcome of a fetch
func (m *RenewalMetrics) ObserveFetch(registrationID, trigger string, ok bool) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	m.FetchTotal.WithLabelValues(registrationID, trigger, result).Inc()
}

// ObserveCadence records the cadence a job was armed with
func (m *RenewalMetrics) ObserveCadence(registrationID string, interval time.Duration, changed bool) {
	if m == nil {
		return
	}
	m.CadenceSeconds.WithLabelValues(registrationID).Set(interval.Seconds())
	if changed {
		m.CadenceChangesTotal.WithLabelValues(registrationID).Inc()
	}
}

// ForgetRegistration removes the per-registration series of a torn down registration
func (m *RenewalMetrics) ForgetRegistration(registrationID string) {
	if m == nil {
		return
	}
	m.CadenceSeconds.DeleteLabelValues(registrationID)
}

// SetActiveJobs records the number of armed jobs
func (m *RenewalMetrics) SetActiveJobs(n int) {
	if m == nil {
		return
	}
	m.ActiveJobs.Set(float64(n))
}

// ObserveSchedulerFailure records a job that could not be armed
func (m *RenewalMetrics) ObserveSchedulerFailure() {
	if m == nil {
		return
	}
	m.SchedulerFailuresTotal.Inc()
}
