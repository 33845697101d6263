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

package search

import "errors"

var (
	// ErrSearchSourceRequired is returned when no search fetcher is provided.
	ErrSearchSourceRequired = errors.New("search source required")

	// ErrEncyclopediaSourceRequired is returned when no encyclopedia fetcher is provided.
	ErrEncyclopediaSourceRequired = errors.New("encyclopedia source required")

	// ErrAutocompleteSourceRequired is returned when no autocomplete fetcher is provided.
	ErrAutocompleteSourceRequired = errors.New("autocomplete source required")

	// ErrAnswererRequired is returned when no AI answerer is provided.
	ErrAnswererRequired = errors.New("AI answerer required")

	// ErrPreferencesRequired is returned when no preferences store is provided.
	ErrPreferencesRequired = errors.New("preferences required")

	// ErrEmptyQuery is returned when a submitted query is blank.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrClosed is returned when the orchestrator has been closed.
	ErrClosed = errors.New("orchestrator closed")
)
