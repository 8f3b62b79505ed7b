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

package api

import (
	"net/http"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/controllers"
)

func registerHealthCheck(mux *http.ServeMux, ctrl controllers.RenewalController) {
	mux.HandleFunc("GET /healthz", ctrl.Health)
}

// registerRenewalRoutes registers the registration inspection routes
func registerRenewalRoutes(mux *http.ServeMux, ctrl controllers.RenewalController) {
	mux.HandleFunc("GET /registrations", ctrl.ListRegistrations)
	mux.HandleFunc("GET /registrations/{registrationId}", ctrl.GetRegistration)
	mux.HandleFunc("POST /registrations/{registrationId}/refresh", ctrl.RefreshRegistration)
}
