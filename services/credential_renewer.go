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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/logger"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/metrics"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// errNoCredential is returned when a fetcher reports success without a credential
var errNoCredential = errors.New("fetcher returned no credential")

// Fetcher obtains a fresh credential for a registration
type Fetcher interface {
	Fetch(ctx context.Context, registrationID string) (*models.Credential, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, registrationID string) (*models.Credential, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, registrationID string) (*models.Credential, error) {
	return f(ctx, registrationID)
}

// CredentialRenewer caches credentials per registration and keeps them fresh in the background
type CredentialRenewer interface {
	// Register returns a live credential for the registration. The first call for an id
	// fetches synchronously and arms its renewal job; the fetcher is bound to the id from then on.
	// The returned error wraps utils.ErrCredentialUnavailable when no credential could be obtained.
	Register(ctx context.Context, registrationID string, fetcher Fetcher) (*models.Credential, error)
	// Get returns the cached credential if it is live. It never fetches.
	Get(registrationID string) (*models.Credential, bool)
	// Invalidate drops the cached credential so the next Register fetches again
	Invalidate(registrationID string)
	// Deregister retires the renewal job of the registration and forgets it
	Deregister(registrationID string) bool
	// Entries returns the renewal state of every known registration
	Entries() []models.RenewalEntry
	Start(ctx context.Context) error
	Stop() error
}

// RenewerConfig holds the tunables of the renewer
type RenewerConfig struct {
	Policy IntervalPolicy
	// FetchTimeout bounds a single fetch; zero leaves it to the fetcher
	FetchTimeout time.Duration
}

type credentialRenewer struct {
	store        *CredentialStore
	gate         *registrationGate
	scheduler    RenewalScheduler
	policy       IntervalPolicy
	fetchTimeout time.Duration
	metrics      *metrics.RenewalMetrics
	logger       *slog.Logger
}

// NewCredentialRenewer creates a renewer with its own store and gate, driven by scheduler
func NewCredentialRenewer(
	cfg RenewerConfig,
	scheduler RenewalScheduler,
	renewalMetrics *metrics.RenewalMetrics,
	logger *slog.Logger,
) CredentialRenewer {
	return &credentialRenewer{
		store:        NewCredentialStore(),
		gate:         newRegistrationGate(),
		scheduler:    scheduler,
		policy:       cfg.Policy.withDefaults(),
		fetchTimeout: cfg.FetchTimeout,
		metrics:      renewalMetrics,
		logger:       logger,
	}
}

func (r *credentialRenewer) Start(ctx context.Context) error {
	return r.scheduler.Start(ctx)
}

func (r *credentialRenewer) Stop() error {
	err := r.scheduler.Stop()
	r.metrics.SetActiveJobs(r.scheduler.ActiveJobs())
	return err
}

func (r *credentialRenewer) Get(registrationID string) (*models.Credential, bool) {
	return r.liveCredential(registrationID)
}

func (r *credentialRenewer) Register(ctx context.Context, registrationID string, fetcher Fetcher) (*models.Credential, error) {
	if strings.TrimSpace(registrationID) == "" {
		return nil, utils.ErrInvalidRegistrationID
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required for registration %s", registrationID)
	}

	if cred, ok := r.liveCredential(registrationID); ok {
		return cred, nil
	}

	cred, shared, err := r.gate.do(ctx, registrationID, func() (*models.Credential, error) {
		return r.create(ctx, registrationID, fetcher)
	})
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil, fmt.Errorf("gave up waiting for credential %s: %w", registrationID, err)
	}
	if shared {
		r.logger.Debug("Registration served by a concurrent caller", "registrationId", registrationID)
	}
	return cred, err
}

// create runs under the gate: re-checks the cache, then fetches, stores and arms the job
func (r *credentialRenewer) create(ctx context.Context, registrationID string, fetcher Fetcher) (*models.Credential, error) {
	unlock := r.gate.lock(registrationID)
	defer unlock()

	if cred, ok := r.liveCredential(registrationID); ok {
		return cred, nil
	}

	if bound, ok := r.store.Fetcher(registrationID); ok {
		fetcher = bound
	}
	previous, hasEntry := r.store.Snapshot(registrationID)
	_, hasJob := r.scheduler.Current(registrationID)

	// Callers share this flight, so one caller giving up must not fail the others
	cred, err := r.fetch(context.WithoutCancel(ctx), registrationID, fetcher, metrics.TriggerRegister)
	if err != nil {
		r.logger.Error("Failed to fetch credential, retry later", "registrationId", registrationID, "error", err)
		if hasEntry && hasJob {
			// The existing job retries on its current cadence
			return nil, fmt.Errorf("%w: %s: %w", utils.ErrCredentialUnavailable, registrationID, err)
		}
		interval := r.policy.FailureInterval
		if hasEntry && previous.Interval > 0 {
			interval = previous.Interval
		}
		r.store.Put(registrationID, previous.Credential, interval, fetcher)
		r.arm(registrationID, interval)
		return nil, fmt.Errorf("%w: %s: %w", utils.ErrCredentialUnavailable, registrationID, err)
	}

	interval := r.policy.Interval(cred)
	r.store.Put(registrationID, cred, interval, fetcher)
	r.arm(registrationID, interval)

	r.logger.Info("Credential registered",
		"registrationId", registrationID,
		"interval", interval,
		"expiresAt", formatExpiry(cred))
	return cred, nil
}

// renew is the body of the recurring job of a registration
func (r *credentialRenewer) renew(ctx context.Context, job JobInfo) {
	registrationID := job.RegistrationID
	unlock := r.gate.lock(registrationID)
	defer unlock()

	// Replaced or retired while waiting for the gate
	if !r.scheduler.IsCurrent(job) {
		r.logger.Debug("Skipping firing of retired renewal job", "registrationId", registrationID, "jobId", job.ID)
		return
	}

	fetcher, ok := r.store.Fetcher(registrationID)
	if !ok {
		r.logger.Warn("Renewal entry not found, cancelling job", "registrationId", registrationID)
		r.scheduler.Retire(registrationID)
		r.metrics.SetActiveJobs(r.scheduler.ActiveJobs())
		return
	}
	before, _ := r.store.Interval(registrationID)

	cred, err := r.fetch(ctx, registrationID, fetcher, metrics.TriggerRenewal)
	if err != nil {
		r.logger.Error("Failed to renew credential", "registrationId", registrationID, "interval", before, "error", err)
		return
	}

	after := r.policy.Interval(cred)
	if after == before {
		r.store.Put(registrationID, cred, before, fetcher)
		r.logger.Debug("Credential renewed", "registrationId", registrationID, "expiresAt", formatExpiry(cred))
		return
	}

	if _, err := r.scheduler.Arm(registrationID, after, r.renew); err != nil {
		// Keep the old cadence on record so the next firing tries again
		r.store.Put(registrationID, cred, before, fetcher)
		r.metrics.ObserveSchedulerFailure()
		r.logger.Error("Failed to re-arm renewal job", "registrationId", registrationID,
			"interval", before, "newInterval", after, "error", err)
		return
	}
	r.store.Put(registrationID, cred, after, fetcher)
	r.metrics.ObserveCadence(registrationID, after, true)
	r.logger.Info("Renewal cadence changed", "registrationId", registrationID, "from", before, "to", after)
}

func (r *credentialRenewer) arm(registrationID string, interval time.Duration) {
	_, err := r.scheduler.Arm(registrationID, interval, r.renew)
	r.metrics.SetActiveJobs(r.scheduler.ActiveJobs())
	if err != nil {
		r.metrics.ObserveSchedulerFailure()
		r.logger.Error("Failed to arm renewal job", "registrationId", registrationID, "interval", interval, "error", err)
		return
	}
	r.metrics.ObserveCadence(registrationID, interval, false)
}

func (r *credentialRenewer) fetch(ctx context.Context, registrationID string, fetcher Fetcher, trigger string) (*models.Credential, error) {
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}
	ctx = logger.WithLogger(ctx, r.logger.With("registrationId", registrationID, "trigger", trigger))

	cred, err := fetcher.Fetch(ctx, registrationID)
	if err == nil {
		switch {
		case cred == nil:
			err = errNoCredential
		case cred.Value == "":
			err = utils.ErrEmptyAccessToken
		}
	}
	r.metrics.ObserveFetch(registrationID, trigger, err == nil)
	if err != nil {
		return nil, err
	}
	return cred, nil
}

func (r *credentialRenewer) Invalidate(registrationID string) {
	if r.store.Invalidate(registrationID) {
		r.logger.Debug("Cached credential invalidated", "registrationId", registrationID)
	}
}

func (r *credentialRenewer) Deregister(registrationID string) bool {
	unlock := r.gate.lock(registrationID)
	defer unlock()

	retired := r.scheduler.Retire(registrationID)
	deleted := r.store.Delete(registrationID)
	r.metrics.SetActiveJobs(r.scheduler.ActiveJobs())
	r.metrics.ForgetRegistration(registrationID)
	if retired || deleted {
		r.logger.Info("Registration removed", "registrationId", registrationID)
	}
	return retired || deleted
}

func (r *credentialRenewer) Entries() []models.RenewalEntry {
	ids := r.store.IDs()
	entries := make([]models.RenewalEntry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := r.store.Snapshot(id); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (r *credentialRenewer) liveCredential(registrationID string) (*models.Credential, bool) {
	cred, ok := r.store.Get(registrationID)
	if !ok || !cred.IsLive(time.Now()) {
		return nil, false
	}
	return cred, true
}

func formatExpiry(cred *models.Credential) string {
	if cred == nil || cred.ExpiresAt == nil {
		return "never"
	}
	return cred.ExpiresAt.Format(time.RFC3339)
}

// FetcherRegistry maps declared registration ids to their fetchers
type FetcherRegistry map[string]Fetcher

// IDs returns the declared registration ids in sorted order
func (r FetcherRegistry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
