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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageSaveAndLoadLatest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	storage, err := NewStorage(dir, NewDiscardLogger())
	require.NoError(t, err)
	defer storage.Close()

	latest, err := storage.LoadLatestEstimation()
	require.NoError(t, err)
	assert.Nil(t, latest)

	older := sampleEstimation()
	newer := sampleEstimation()
	newer.GeneratedAt = older.GeneratedAt.Add(time.Hour)
	newer.Bills["Flat"].Total = 999

	path, err := storage.SaveEstimation(newer)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "estimate_2024-03-01_10-00-00.json"), path)
	_, err = storage.SaveEstimation(older)
	require.NoError(t, err)

	latest, err = storage.LoadLatestEstimation()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.GeneratedAt, latest.GeneratedAt)
	assert.Equal(t, "999.00", latest.Bills["Flat"].Total.String())

	files, err := storage.ListStoredFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"estimate_2024-03-01_09-00-00.json",
		"estimate_2024-03-01_10-00-00.json",
	}, files)
}

func TestStorageCachedEstimation(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), NewDiscardLogger())
	require.NoError(t, err)
	defer storage.Close()

	_, ok := storage.LoadCachedEstimation("key")
	assert.False(t, ok)

	require.NoError(t, storage.SaveCachedEstimation("key", sampleEstimation(), time.Hour))
	cached, ok := storage.LoadCachedEstimation("key")
	require.True(t, ok)
	assert.Equal(t, sampleEstimation().Providers, cached.Providers)

	total, expired := storage.CacheStats()
	assert.Equal(t, 1, total)
	assert.Zero(t, expired)

	// the cache file never shadows a saved estimation
	latest, err := storage.LoadLatestEstimation()
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, storage.ClearCache())
	_, ok = storage.LoadCachedEstimation("key")
	assert.False(t, ok)
}

func TestStorageCorruptEstimation(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewStorage(dir, NewDiscardLogger())
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "estimate_2024-01-01_00-00-00.json"), []byte("{"), 0644))

	_, err = storage.LoadLatestEstimation()
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "decode_json", storageErr.Operation)
}
