// Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/api"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/config"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/logger"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/signals"
	"github.com/wso2/ai-agent-management-platform/credential-renewal-service/wiring"
)

func main() {
	cfg := config.GetConfig()

	logger.Setup(cfg.LogLevel)
	slog.Info("Logger configured", "level", logger.ParseLevel(cfg.LogLevel).String())

	if cfg.AutoMaxProcsEnabled {
		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			// Convert printf-style format string to plain message for structured logging
			slog.Info(fmt.Sprintf(format, args...))
		})); err != nil {
			slog.Error("Failed to set maxprocs", "error", err)
			os.Exit(1)
		}
	}

	dependencies, err := wiring.InitializeAppParams(cfg)
	if err != nil {
		slog.Error("failed to initialize app dependencies", "error", err)
		os.Exit(1)
	}

	// Renewal jobs live until the renewer is stopped
	renewerCtx, renewerCancel := context.WithCancel(context.Background())
	if err := dependencies.Renewer.Start(renewerCtx); err != nil {
		slog.Error("failed to start credential renewer", "error", err)
		os.Exit(1)
	}

	warmUpRegistrations(renewerCtx, dependencies)

	handler := api.MakeHTTPHandler(dependencies)
	mainServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}

	stopCh := signals.SetupSignalHandler()

	// Setup graceful shutdown
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		<-stopCh
		slog.Info("Shutdown signal received, stopping services...")
		// Stop renewal jobs first
		renewerCancel()
		if err := dependencies.Renewer.Stop(); err != nil {
			slog.Error("error stopping credential renewer", "error", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := mainServer.Shutdown(ctx); err != nil {
			slog.Error("Server forced shutdown after timeout", "error", err)
		}
	}()

	slog.Info("Credential renewal server is running", "address", mainServer.Addr)
	if err := mainServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	// Wait for graceful shutdown to complete
	wg.Wait()
	slog.Info("Server shut down successfully")
}

// warmUpRegistrations fetches the first credential of every declared registration.
// A failed fetch is not fatal: its renewal job keeps retrying.
func warmUpRegistrations(ctx context.Context, dependencies *wiring.AppParams) {
	ids := dependencies.Fetchers.IDs()
	if len(ids) == 0 {
		slog.Warn("No credential registrations declared")
		return
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(registrationID string) {
			defer wg.Done()
			if _, err := dependencies.Renewer.Register(ctx, registrationID, dependencies.Fetchers[registrationID]); err != nil {
				slog.Error("Initial credential fetch failed", "registrationId", registrationID, "error", err)
			}
		}(id)
	}
	wg.Wait()

	slog.Info("Registered credential renewals", "count", len(ids))
}
