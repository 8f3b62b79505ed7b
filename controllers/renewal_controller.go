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

package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/logger"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/models"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/services"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/utils"
)

const (
	healthStatusUp       = "UP"
	healthStatusDegraded = "DEGRADED"
)

// RenewalController defines the interface for inspecting and refreshing registrations
type RenewalController interface {
	// ListRegistrations handles GET /registrations
	ListRegistrations(w http.ResponseWriter, r *http.Request)
	// GetRegistration handles GET /registrations/{registrationId}
	GetRegistration(w http.ResponseWriter, r *http.Request)
	// RefreshRegistration handles POST /registrations/{registrationId}/refresh
	RefreshRegistration(w http.ResponseWriter, r *http.Request)
	// Health handles GET /healthz
	Health(w http.ResponseWriter, r *http.Request)
}

type renewalController struct {
	renewer  services.CredentialRenewer
	fetchers services.FetcherRegistry
	now      func() time.Time
}

// NewRenewalController creates a new RenewalController instance
func NewRenewalController(renewer services.CredentialRenewer, fetchers services.FetcherRegistry) RenewalController {
	return &renewalController{
		renewer:  renewer,
		fetchers: fetchers,
		now:      time.Now,
	}
}

func (c *renewalController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	entries := c.renewer.Entries()
	now := c.now()
	resp := models.RegistrationListResponse{
		Registrations: make([]models.RegistrationResponse, 0, len(entries)),
		Count:         len(entries),
	}
	for _, entry := range entries {
		resp.Registrations = append(resp.Registrations, entry.ToResponse(now))
	}

	log.Debug("ListRegistrations: listed registrations", "count", resp.Count)
	utils.WriteSuccessResponse(w, http.StatusOK, resp)
}

func (c *renewalController) GetRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue(utils.PathParamRegistrationID)

	entry, ok := c.findEntry(registrationID)
	if !ok {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, entry.ToResponse(c.now()))
}

func (c *renewalController) RefreshRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)
	registrationID := r.PathValue(utils.PathParamRegistrationID)

	log.Info("RefreshRegistration request received", "registrationId", registrationID)

	fetcher, ok := c.fetchers[registrationID]
	if !ok {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}

	c.renewer.Invalidate(registrationID)
	if _, err := c.renewer.Register(ctx, registrationID, fetcher); err != nil {
		log.Error("RefreshRegistration: failed to fetch credential", "registrationId", registrationID, "error", err)
		if errors.Is(err, utils.ErrInvalidRegistrationID) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Failed to fetch credential")
		return
	}

	entry, ok := c.findEntry(registrationID)
	if !ok {
		// Deregistered while refreshing
		utils.WriteErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}
	log.Info("RefreshRegistration: credential refreshed", "registrationId", registrationID)
	utils.WriteSuccessResponse(w, http.StatusOK, entry.ToResponse(c.now()))
}

func (c *renewalController) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  healthStatusUp,
		Live:    []string{},
		Pending: []string{},
	}

	known := make(map[string]bool)
	for _, entry := range c.renewer.Entries() {
		known[entry.RegistrationID] = true
		if _, live := c.renewer.Get(entry.RegistrationID); live {
			resp.Live = append(resp.Live, entry.RegistrationID)
		} else {
			resp.Pending = append(resp.Pending, entry.RegistrationID)
		}
	}
	// Declared registrations that were never fetched
	for _, id := range c.fetchers.IDs() {
		if !known[id] {
			resp.Pending = append(resp.Pending, id)
		}
	}

	status := http.StatusOK
	if len(resp.Pending) > 0 {
		resp.Status = healthStatusDegraded
		status = http.StatusServiceUnavailable
	}
	utils.WriteSuccessResponse(w, status, resp)
}

func (c *renewalController) findEntry(registrationID string) (models.RenewalEntry, bool) {
	for _, entry := range c.renewer.Entries() {
		if entry.RegistrationID == registrationID {
			return entry, true
		}
	}
	return models.RenewalEntry{}, false
}
