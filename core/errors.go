// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidSession indicates a ChatSession failed validation.
	ErrInvalidSession = errors.New("invalid chat session")

	// ErrInvalidRole indicates an unknown message role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptyContent indicates a user message with no text.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrUnknownModel indicates a model id outside the model registry.
	ErrUnknownModel = errors.New("unknown model")
)

// ErrRedirectNotApplicable is returned when a query carries no recognized
// bang. It is a normal branch, not a failure.
var ErrRedirectNotApplicable = errors.New("no bang redirect applies")

// Fetch failure kinds. A *FetchError unwraps to exactly one of these.
var (
	// ErrNetwork indicates the request could not be sent or the connection failed.
	ErrNetwork = errors.New("network failure")

	// ErrHTTPStatus indicates a non-2xx response.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrRateLimited indicates a 429 response.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse indicates a payload that did not match the endpoint schema.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrStreamInterrupted indicates a reply stream that failed mid-read.
	ErrStreamInterrupted = errors.New("stream interrupted")
)

// FetchError describes a failed call to one data source.
type FetchError struct {
	Source     string // search, autocomplete, wikipedia, ai, chat
	Kind       error  // one of the Err* kinds above
	StatusCode int    // set for ErrHTTPStatus and ErrRateLimited
	Message    string // server supplied detail, if any
	Err        error  // underlying cause, may be nil
}

// Error implements error.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Source, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFetchError builds a FetchError of the given kind.
func NewFetchError(source string, kind error, err error) *FetchError {
	return &FetchError{Source: source, Kind: kind, Err: err}
}

// IsRateLimited reports whether err is a 429 from any source.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
