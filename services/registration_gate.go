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

	"golang.org/x/sync/singleflight"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
)

// registrationGate serialises work per registration id.
//
// Concurrent registrations for the same id are coalesced into a single flight, so
// only one caller runs the creation and the rest share its result. Independently,
// every fetch for an id (from a registration or from its renewal job) runs under
// the id's mutex, which keeps at most one fetch in flight per id.
type registrationGate struct {
	flights singleflight.Group
	locks   sync.Map // registrationID -> *sync.Mutex
}

func newRegistrationGate() *registrationGate {
	return &registrationGate{}
}

// lock acquires the per-id mutex, creating it on first use, and returns its release func.
// Mutexes are retained for the life of the gate so concurrent creators always converge.
func (g *registrationGate) lock(registrationID string) func() {
	v, _ := g.locks.LoadOrStore(registrationID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// do runs fn once for all concurrent callers asking for the same id.
// shared is true for callers that received another caller's result. A caller whose
// ctx is done stops waiting and gets ctx.Err(); the flight itself keeps running.
func (g *registrationGate) do(ctx context.Context, registrationID string, fn func() (*models.Credential, error)) (*models.Credential, bool, error) {
	ch := g.flights.DoChan(registrationID, func() (interface{}, error) {
		return fn()
	})
	select {
	case res := <-ch:
		cred, _ := res.Val.(*models.Credential)
		return cred, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
