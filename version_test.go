// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest  string
		current string
		expect  bool
	}{
		{"v1.2.0", "v1.1.9", true},
		{"v1.10.0", "v1.9.0", true},
		{"v1.9.0", "v1.10.0", false},
		{"v1.2.0", "v1.2.0", false},
		{"v1.2.1", "v1.2", true},
		{"v1.2", "v1.2.0", false},
		{"v2.0.0-rc1", "v1.9.9", true},
		{"v1.0.0", "v1.0.1-beta", false},
	}

	for _, tt := range tests {
		t.Run(tt.latest+"_vs_"+tt.current, func(t *testing.T) {
			assert.Equal(t, tt.expect, isNewerVersion(tt.latest, tt.current))
		})
	}
}

func TestFetchLatestRelease(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v9.9.9","html_url":"https://example.com/release","name":"Latest"}`))
	}))
	defer server.Close()

	release, err := fetchLatestRelease(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "v9.9.9", release.TagName)
	assert.Equal(t, "https://example.com/release", release.HTMLURL)
	assert.True(t, strings.HasPrefix(userAgent, "matthewgall/billestimator "))
}

func TestFetchLatestReleaseFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "missing tag",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"name":"untagged"}`))
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := fetchLatestRelease(context.Background(), server.URL)
			assert.Error(t, err)
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "v1.4.2"
	assert.Equal(t, "v1.4.2", GetVersion())
	assert.Equal(t, "matthewgall/billestimator v1.4.2", GetUserAgent())
}
