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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
)

func TestRegistrationGate_CoalescesConcurrentCallers(t *testing.T) {
	g := newRegistrationGate()
	var calls atomic.Int32
	release := make(chan struct{})

	const callers = 10
	var started, done sync.WaitGroup
	results := make([]*models.Credential, callers)
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			cred, _, err := g.do(context.Background(), "a", func() (*models.Credential, error) {
				calls.Add(1)
				<-release
				return &models.Credential{Value: "shared"}, nil
			})
			assert.NoError(t, err)
			results[i] = cred
		}(i)
	}
	started.Wait()
	// Let every caller join the flight before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, cred := range results {
		if assert.NotNil(t, cred) {
			assert.Equal(t, "shared", cred.Value)
		}
	}
}

func TestRegistrationGate_CancelledCallerStopsWaiting(t *testing.T) {
	g := newRegistrationGate()
	release := make(chan struct{})
	var calls atomic.Int32
	flight := func() (*models.Credential, error) {
		calls.Add(1)
		<-release
		return &models.Credential{Value: "shared"}, nil
	}

	patient := make(chan *models.Credential, 1)
	go func() {
		cred, _, _ := g.do(context.Background(), "a", flight)
		patient <- cred
	}()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	cred, _, err := g.do(ctx, "a", flight)
	assert.Nil(t, cred)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The flight outlives the caller that gave up
	close(release)
	select {
	case cred := <-patient:
		if assert.NotNil(t, cred) {
			assert.Equal(t, "shared", cred.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("flight did not complete")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistrationGate_LockIsPerID(t *testing.T) {
	g := newRegistrationGate()

	unlockA := g.lock("a")
	acquired := make(chan struct{})
	go func() {
		unlockB := g.lock("b")
		defer unlockB()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock for b blocked on lock for a")
	}
	unlockA()
}

func TestRegistrationGate_LockSerialisesSameID(t *testing.T) {
	g := newRegistrationGate()

	unlock := g.lock("a")
	acquired := make(chan struct{})
	go func() {
		unlockAgain := g.lock("a")
		defer unlockAgain()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock for a acquired while held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock for a never acquired")
	}
}
