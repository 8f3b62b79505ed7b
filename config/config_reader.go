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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// configReader reads environment variables and collects every problem it finds
type configReader struct {
	errors []error
}

func (r *configReader) readRequiredString(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		r.errors = append(r.errors, fmt.Errorf("environment variable %s is required", key))
		return ""
	}
	return value
}

func (r *configReader) readOptionalString(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	return value
}

func (r *configReader) readOptionalInt64(key string, defaultValue int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		r.errors = append(r.errors, fmt.Errorf("environment variable %s must be an integer, got %q", key, value))
		return defaultValue
	}
	return parsed
}

func (r *configReader) readOptionalBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.errors = append(r.errors, fmt.Errorf("environment variable %s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return parsed
}

// readOptionalStringList reads a comma-separated list, dropping empty items
func (r *configReader) readOptionalStringList(key string, defaultValue string) []string {
	raw := r.readOptionalString(key, defaultValue)
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (r *configReader) err() error {
	return errors.Join(r.errors...)
}

func (r *configReader) logAndExitIfErrorsFound() {
	if len(r.errors) == 0 {
		return
	}
	for _, err := range r.errors {
		slog.Error("configReader: invalid configuration", "error", err)
	}
	os.Exit(1)
}
