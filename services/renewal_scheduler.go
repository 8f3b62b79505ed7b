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
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// JobInfo identifies one armed recurring job
type JobInfo struct {
	ID             uuid.UUID
	RegistrationID string
	Interval       time.Duration
	ArmedAt        time.Time
}

// RenewalJobFunc is invoked on every firing of a job
type RenewalJobFunc func(ctx context.Context, job JobInfo)

// RenewalScheduler runs at most one recurring job per registration id
type RenewalScheduler interface {
	Start(ctx context.Context) error
	// Stop cancels every job and waits for running firings to return.
	// It must not be called from inside a job.
	Stop() error
	// Arm retires the current job of the id, if any, and arms a new one whose first
	// firing is one interval from now. On error the current job is left untouched.
	Arm(registrationID string, interval time.Duration, run RenewalJobFunc) (JobInfo, error)
	// Retire cancels the job of the id. It returns false if there was none.
	Retire(registrationID string) bool
	// IsCurrent reports whether job is still the armed job for its id
	IsCurrent(job JobInfo) bool
	Current(registrationID string) (JobInfo, bool)
	ActiveJobs() int
}

type scheduledJob struct {
	info     JobInfo
	stopCh   chan struct{}
	stopOnce sync.Once
}

func (j *scheduledJob) retire() {
	j.stopOnce.Do(func() {
		close(j.stopCh)
	})
}

type renewalScheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*scheduledJob // registrationID -> armed job
	stopped bool

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRenewalScheduler creates a scheduler that accepts jobs immediately.
// Start only ties its lifetime to a parent context.
func NewRenewalScheduler(logger *slog.Logger) RenewalScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &renewalScheduler{
		logger: logger,
		jobs:   make(map[string]*scheduledJob),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start stops the scheduler when ctx is cancelled
func (s *renewalScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return utils.ErrSchedulerStopped
	}

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info("Renewal scheduler context cancelled")
			if err := s.Stop(); err != nil {
				s.logger.Error("Failed to stop renewal scheduler", "error", err)
			}
		case <-s.ctx.Done():
		}
	}()

	s.logger.Info("Renewal scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *renewalScheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		for id, job := range s.jobs {
			job.retire()
			delete(s.jobs, id)
		}
		s.cancel()
		s.mu.Unlock()

		s.wg.Wait()
		s.logger.Info("Renewal scheduler stopped")
	})
	return nil
}

func (s *renewalScheduler) Arm(registrationID string, interval time.Duration, run RenewalJobFunc) (JobInfo, error) {
	if interval <= 0 {
		return JobInfo{}, fmt.Errorf("%w: %s", utils.ErrInvalidInterval, interval)
	}
	if run == nil {
		return JobInfo{}, fmt.Errorf("renewal job for %s is nil", registrationID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return JobInfo{}, utils.ErrSchedulerStopped
	}

	var previous time.Duration
	if existing, ok := s.jobs[registrationID]; ok {
		existing.retire()
		delete(s.jobs, registrationID)
		previous = existing.info.Interval
	}

	job := &scheduledJob{
		info: JobInfo{
			ID:             uuid.New(),
			RegistrationID: registrationID,
			Interval:       interval,
			ArmedAt:        time.Now(),
		},
		stopCh: make(chan struct{}),
	}
	s.jobs[registrationID] = job

	s.wg.Add(1)
	go s.runJob(job, run)

	if previous > 0 {
		s.logger.Info("Renewal job replaced",
			"registrationId", registrationID,
			"previousInterval", previous,
			"interval", interval)
	} else {
		s.logger.Debug("Renewal job armed",
			"registrationId", registrationID,
			"interval", interval)
	}
	return job.info, nil
}

func (s *renewalScheduler) Retire(registrationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[registrationID]
	if !ok {
		return false
	}
	job.retire()
	delete(s.jobs, registrationID)
	s.logger.Debug("Renewal job retired", "registrationId", registrationID, "jobId", job.info.ID)
	return true
}

func (s *renewalScheduler) IsCurrent(job JobInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[job.RegistrationID]
	return ok && current.info.ID == job.ID
}

func (s *renewalScheduler) Current(registrationID string) (JobInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[registrationID]
	if !ok {
		return JobInfo{}, false
	}
	return job.info, true
}

func (s *renewalScheduler) ActiveJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.jobs)
}

// runJob fires run every interval until the job is retired or the scheduler stops
func (s *renewalScheduler) runJob(job *scheduledJob, run RenewalJobFunc) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.info.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A retirement racing with the tick wins
			select {
			case <-job.stopCh:
				return
			case <-s.ctx.Done():
				return
			default:
			}
			s.fire(job, run)
		case <-job.stopCh:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

// fire runs one firing and keeps a panicking fetcher from killing the job
func (s *renewalScheduler) fire(job *scheduledJob, run RenewalJobFunc) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Renewal job panicked",
				"registrationId", job.info.RegistrationID,
				"jobId", job.info.ID,
				"panic", r)
		}
	}()
	run(s.ctx, job.info)
}
