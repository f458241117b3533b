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
	"fmt"
	"time"
)

var (
	// ErrUnrecognizedFormat is returned when a timestamp uses neither "-" nor "/" date delimiters
	ErrUnrecognizedFormat = errors.New("unrecognized date format")

	// ErrInvalidOrdering is returned when the first import reading is older than the last one
	ErrInvalidOrdering = errors.New("readings are not ordered latest first")

	// ErrMissingConsumptionData is returned when estimating before consumption was attached
	ErrMissingConsumptionData = errors.New("consumption data not set")

	// ErrMissingProvider is returned when a provider is not in the pricing catalog
	ErrMissingProvider = errors.New("provider not found")
)

// FormatError represents a timestamp string that could not be parsed
type FormatError struct {
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unrecognized date format %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("unrecognized date format %q", e.Value)
}

func (e *FormatError) Unwrap() error {
	return ErrUnrecognizedFormat
}

// OrderingError represents readings supplied oldest first
type OrderingError struct {
	Latest time.Time
	Oldest time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("unexpected date ordering: first reading %s is before last reading %s",
		FormatTimestamp(e.Latest), FormatTimestamp(e.Oldest))
}

func (e *OrderingError) Unwrap() error {
	return ErrInvalidOrdering
}

// ValidationError represents a configuration or input validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error for %s (%s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// StorageError represents a storage operation error
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s at %s: %v", e.Operation, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DataError represents insufficient or missing data error
type DataError struct {
	DataType string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error for %s: %s", e.DataType, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}
