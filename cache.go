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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const cacheFileName = "cache.json"

// CacheEntry is a cached estimation with its expiry
type CacheEntry struct {
	Estimation *Estimation `json:"estimation"`
	CachedAt   time.Time   `json:"cached_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// CacheStore is the on-disk layout of the cache file
type CacheStore struct {
	Entries map[string]*CacheEntry `json:"entries"`
}

// Cache keeps estimations keyed by a digest of their inputs in a JSON file
type Cache struct {
	filePath string
	store    *CacheStore
	mutex    sync.RWMutex
	logger   *Logger
	now      func() time.Time
}

// EstimationCacheKey digests everything an estimation depends on
func EstimationCacheKey(consumption, pricing []byte, interpolate bool, windowDays int) string {
	hash := sha256.New()
	hash.Write(consumption)
	hash.Write([]byte{0})
	hash.Write(pricing)
	hash.Write([]byte{0})
	hash.Write([]byte(strconv.FormatBool(interpolate)))
	hash.Write([]byte{0})
	hash.Write([]byte(strconv.Itoa(windowDays)))
	return hex.EncodeToString(hash.Sum(nil))
}

// NewCache opens the cache file under basePath, dropping expired entries
func NewCache(basePath string, logger *Logger) (*Cache, error) {
	cache := &Cache{
		filePath: filepath.Join(basePath, cacheFileName),
		store:    &CacheStore{Entries: make(map[string]*CacheEntry)},
		logger:   logger,
		now:      time.Now,
	}

	if err := cache.load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to load cache, starting fresh", "error", err)
			cache.store = &CacheStore{Entries: make(map[string]*CacheEntry)}
		}
	}

	if err := cache.cleanExpired(); err != nil {
		return nil, err
	}

	logger.Debug("Cache initialized", "path", cache.filePath, "entries", len(cache.store.Entries))

	return cache, nil
}

// Set stores an estimation with a TTL (time-to-live)
func (c *Cache) Set(key string, estimation *Estimation, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.store.Entries[key] = &CacheEntry{
		Estimation: estimation,
		CachedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := c.save(); err != nil {
		return err
	}

	c.logger.Debug("Cache set", "key", shortKey(key), "ttl", ttl)
	return nil
}

// Get returns the cached estimation if present and not expired
func (c *Cache) Get(key string) (*Estimation, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.store.Entries[key]
	if !exists || entry.Estimation == nil {
		c.logger.Debug("Cache miss", "key", shortKey(key))
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.logger.Debug("Cache expired", "key", shortKey(key))
		return nil, false
	}

	c.logger.Debug("Cache hit", "key", shortKey(key), "expires_in", entry.ExpiresAt.Sub(c.now()).Round(time.Second))
	return entry.Estimation, true
}

// CleanExpired removes all expired cache entries
func (c *Cache) CleanExpired() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.cleanExpired()
}

// cleanExpired removes expired entries (must be called with lock held)
func (c *Cache) cleanExpired() error {
	now := c.now()
	removed := 0

	for key, entry := range c.store.Entries {
		if now.After(entry.ExpiresAt) {
			delete(c.store.Entries, key)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Info("Cleaned expired cache entries", "count", removed)
		return c.save()
	}

	return nil
}

// Clear removes all cache entries
func (c *Cache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := len(c.store.Entries)
	c.store.Entries = make(map[string]*CacheEntry)

	if err := c.save(); err != nil {
		return err
	}

	c.logger.Info("Cleared estimate cache", "count", count)
	return nil
}

// Stats returns the number of entries and how many of them have expired
func (c *Cache) Stats() (total int, expired int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	total = len(c.store.Entries)
	for _, entry := range c.store.Entries {
		if now.After(entry.ExpiresAt) {
			expired++
		}
	}
	return total, expired
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, c.store); err != nil {
		return fmt.Errorf("failed to unmarshal cache file: %w", err)
	}
	if c.store.Entries == nil {
		c.store.Entries = make(map[string]*CacheEntry)
	}

	return nil
}

func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return &StorageError{Operation: "write_cache", Path: c.filePath, Err: err}
	}

	return nil
}

// Close drops expired entries before the process exits
func (c *Cache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cleanExpired()
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
