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
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

// jobRecorder counts firings per job
type jobRecorder struct {
	mu     sync.Mutex
	firing []JobInfo
}

func (r *jobRecorder) run(ctx context.Context, job JobInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.firing = append(r.firing, job)
}

func (r *jobRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.firing)
}

func (r *jobRecorder) last() JobInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firing[len(r.firing)-1]
}

func newTestRenewalScheduler(t *testing.T) RenewalScheduler {
	t.Helper()
	s := NewRenewalScheduler(slog.Default())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRenewalScheduler_FirstFiringAfterOneInterval(t *testing.T) {
	s := newTestRenewalScheduler(t)
	rec := &jobRecorder{}

	job, err := s.Arm("a", 200*time.Millisecond, rec.run)
	require.NoError(t, err)
	assert.Equal(t, "a", job.RegistrationID)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, rec.count(), "job fired before its first interval")

	assert.Eventually(t, func() bool { return rec.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, job.ID, rec.last().ID)
}

func TestRenewalScheduler_ArmReplacesExistingJob(t *testing.T) {
	s := newTestRenewalScheduler(t)
	oldRec, newRec := &jobRecorder{}, &jobRecorder{}

	oldJob, err := s.Arm("a", 50*time.Millisecond, oldRec.run)
	require.NoError(t, err)
	newJob, err := s.Arm("a", 60*time.Millisecond, newRec.run)
	require.NoError(t, err)

	assert.NotEqual(t, oldJob.ID, newJob.ID)
	assert.False(t, s.IsCurrent(oldJob))
	assert.True(t, s.IsCurrent(newJob))
	assert.Equal(t, 1, s.ActiveJobs())

	current, ok := s.Current("a")
	require.True(t, ok)
	assert.Equal(t, 60*time.Millisecond, current.Interval)

	assert.Eventually(t, func() bool { return newRec.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, oldRec.count())
}

func TestRenewalScheduler_InvalidIntervalKeepsCurrentJob(t *testing.T) {
	s := newTestRenewalScheduler(t)
	rec := &jobRecorder{}

	job, err := s.Arm("a", time.Hour, rec.run)
	require.NoError(t, err)

	_, err = s.Arm("a", 0, rec.run)
	assert.ErrorIs(t, err, utils.ErrInvalidInterval)
	_, err = s.Arm("a", -time.Second, rec.run)
	assert.ErrorIs(t, err, utils.ErrInvalidInterval)

	assert.True(t, s.IsCurrent(job))
}

func TestRenewalScheduler_Retire(t *testing.T) {
	s := newTestRenewalScheduler(t)
	rec := &jobRecorder{}

	job, err := s.Arm("a", 30*time.Millisecond, rec.run)
	require.NoError(t, err)

	assert.True(t, s.Retire("a"))
	assert.False(t, s.Retire("a"))
	assert.False(t, s.IsCurrent(job))
	assert.Equal(t, 0, s.ActiveJobs())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestRenewalScheduler_JobsAreIndependentPerID(t *testing.T) {
	s := newTestRenewalScheduler(t)
	fast, slow := &jobRecorder{}, &jobRecorder{}

	_, err := s.Arm("fast", 30*time.Millisecond, fast.run)
	require.NoError(t, err)
	_, err = s.Arm("slow", time.Hour, slow.run)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return fast.count() >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, slow.count())
	assert.Equal(t, 2, s.ActiveJobs())
}

func TestRenewalScheduler_PanickingJobKeepsFiring(t *testing.T) {
	s := newTestRenewalScheduler(t)
	var calls atomic.Int32

	_, err := s.Arm("a", 20*time.Millisecond, func(ctx context.Context, job JobInfo) {
		calls.Add(1)
		panic("fetch exploded")
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRenewalScheduler_StopCancelsJobsAndRejectsArm(t *testing.T) {
	s := NewRenewalScheduler(slog.Default())
	rec := &jobRecorder{}

	_, err := s.Arm("a", 20*time.Millisecond, rec.run)
	require.NoError(t, err)
	require.NoError(t, s.Stop())

	assert.Equal(t, 0, s.ActiveJobs())
	fired := rec.count()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, fired, rec.count())

	_, err = s.Arm("a", time.Second, rec.run)
	assert.ErrorIs(t, err, utils.ErrSchedulerStopped)
	assert.ErrorIs(t, s.Start(context.Background()), utils.ErrSchedulerStopped)
	assert.NoError(t, s.Stop())
}

func TestRenewalScheduler_StopsWhenStartContextIsCancelled(t *testing.T) {
	s := NewRenewalScheduler(slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	_, err := s.Arm("a", time.Hour, (&jobRecorder{}).run)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		_, err := s.Arm("b", time.Hour, (&jobRecorder{}).run)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.ActiveJobs())
}
