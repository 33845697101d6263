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

// Package search orchestrates a submitted query across its data sources.
//
// The Orchestrator resolves bang commands first and hands recognized ones to
// a Navigator without touching any source. Other queries fan out on a worker
// pool to web search, the encyclopedia (skipped when the query carries a
// bang-looking token) and the AI answer (skipped when disabled in the
// preferences). Each source settles on its own and is reported to a Monitor
// as it lands.
//
// Every submission takes a new generation from a monotonic counter. Outcomes
// from a superseded generation are discarded rather than shown.
//
// Autocomplete runs on keystrokes instead of submissions, debounced so only
// the last keystroke within the delay reaches the network.
package search
