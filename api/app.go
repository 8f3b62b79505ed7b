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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/middleware"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/wiring"
)

// MakeHTTPHandler creates a new HTTP handler with middleware and routes
func MakeHTTPHandler(params *wiring.AppParams) http.Handler {
	mux := http.NewServeMux()

	// Health and metrics stay at root level
	registerHealthCheck(mux, params.RenewalController)
	mux.Handle("GET /metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))

	// Create a sub-mux for API v1 routes
	apiMux := http.NewServeMux()
	registerRenewalRoutes(apiMux, params.RenewalController)

	// Apply middleware in reverse order (last middleware is applied first)
	apiHandler := http.Handler(apiMux)
	apiHandler = middleware.RequestLogger()(apiHandler)
	apiHandler = middleware.AddCorrelationID()(apiHandler)
	apiHandler = middleware.RecovererOnPanic()(apiHandler)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiHandler))

	return mux
}
