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
	"sort"
	"sync"
	"time"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
)

// credentialStoreEntry is the renewal state of a single registration.
// Entries are replaced, never mutated in place, so readers never observe a partial update.
type credentialStoreEntry struct {
	credential *models.Credential
	interval   time.Duration
	fetcher    Fetcher
	updatedAt  time.Time
}

// CredentialStore provides thread-safe storage of the last known credential per registration id
type CredentialStore struct {
	mu      sync.RWMutex
	entries map[string]*credentialStoreEntry // registrationID -> entry
}

// NewCredentialStore creates an empty credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		entries: make(map[string]*credentialStoreEntry),
	}
}

// Get returns the last known credential for a registration.
// Liveness is not checked here.
func (s *CredentialStore) Get(registrationID string) (*models.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[registrationID]
	if !exists || entry.credential == nil {
		return nil, false
	}
	return entry.credential, true
}

// Put overwrites the credential and cadence of a registration.
// The fetcher bound by the first Put for an id is kept for the life of the entry.
func (s *CredentialStore) Put(registrationID string, credential *models.Credential, interval time.Duration, fetcher Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.entries[registrationID]; exists && existing.fetcher != nil {
		fetcher = existing.fetcher
	}
	s.entries[registrationID] = &credentialStoreEntry{
		credential: credential,
		interval:   interval,
		fetcher:    fetcher,
		updatedAt:  time.Now(),
	}
}

// Interval returns the cadence currently recorded for a registration
func (s *CredentialStore) Interval(registrationID string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[registrationID]
	if !exists {
		return 0, false
	}
	return entry.interval, true
}

// Fetcher returns the fetcher bound to a registration
func (s *CredentialStore) Fetcher(registrationID string) (Fetcher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[registrationID]
	if !exists || entry.fetcher == nil {
		return nil, false
	}
	return entry.fetcher, true
}

// Exists reports whether an entry is known for the registration, with or without a credential
func (s *CredentialStore) Exists(registrationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entries[registrationID]
	return exists
}

// Snapshot returns a copy of the renewal state of a registration
func (s *CredentialStore) Snapshot(registrationID string) (models.RenewalEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[registrationID]
	if !exists {
		return models.RenewalEntry{}, false
	}
	return models.RenewalEntry{
		RegistrationID: registrationID,
		Credential:     entry.credential,
		Interval:       entry.interval,
		UpdatedAt:      entry.updatedAt,
	}, true
}

// Invalidate drops the cached credential of a registration but keeps its cadence and fetcher
func (s *CredentialStore) Invalidate(registrationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[registrationID]
	if !exists {
		return false
	}
	s.entries[registrationID] = &credentialStoreEntry{
		interval:  entry.interval,
		fetcher:   entry.fetcher,
		updatedAt: time.Now(),
	}
	return true
}

// Delete removes a registration entirely
func (s *CredentialStore) Delete(registrationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[registrationID]; !exists {
		return false
	}
	delete(s.entries, registrationID)
	return true
}

// IDs returns the known registration ids in sorted order
func (s *CredentialStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Size returns the number of known registrations
func (s *CredentialStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
