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
	"fmt"
	"strings"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Role must be user or assistant
//   - User messages must not be empty or whitespace only
//
// Assistant messages may be empty while a reply is still streaming in.
func ValidateMessage(msg Message) error {
	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if msg.Role == RoleUser && strings.TrimSpace(msg.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}
	return nil
}

// ValidateRole validates that a Role has a known value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}

// ValidateSession validates a ChatSession loaded from storage.
//
// Validation rules:
//   - ID must be non-zero
//   - Model must be a known model
//   - Every message must be valid
//   - A session holding a user message must be locked
func ValidateSession(session *ChatSession) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}
	if session.ID == 0 {
		return fmt.Errorf("%w: zero id", ErrInvalidSession)
	}
	if _, ok := LookupModel(session.Model.ID); !ok {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSession, ErrUnknownModel, session.Model.ID)
	}
	hasUser := false
	for i, msg := range session.Messages {
		if err := ValidateMessage(msg); err != nil {
			return fmt.Errorf("%w: message %d: %w", ErrInvalidSession, i, err)
		}
		if msg.Role == RoleUser {
			hasUser = true
		}
	}
	if hasUser && !session.Locked {
		return fmt.Errorf("%w: session with user messages must be locked", ErrInvalidSession)
	}
	return nil
}
