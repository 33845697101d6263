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

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/tekir/core"
)

// sessionsVersion is written ahead of every encoded session collection.
const sessionsVersion = 1

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalSessions serializes a session collection to bytes.
func MarshalSessions(sessions []*core.ChatSession) []byte {
	size := varint.Int.Size(sessionsVersion) + varint.Int.Size(len(sessions))
	for _, s := range sessions {
		size += core.ChatSessionMUS.Size(*s)
	}
	buf := make([]byte, size)
	n := varint.Int.Marshal(sessionsVersion, buf)
	n += varint.Int.Marshal(len(sessions), buf[n:])
	for _, s := range sessions {
		n += core.ChatSessionMUS.Marshal(*s, buf[n:])
	}
	return buf
}

// UnmarshalSessions deserializes a session collection from bytes.
func UnmarshalSessions(data []byte) ([]*core.ChatSession, error) {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if version != sessionsVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	count, n1, err := varint.Int.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	// Every session takes at least one byte.
	if count < 0 || count > len(data)-n {
		return nil, ErrTruncatedData
	}
	sessions := make([]*core.ChatSession, 0, count)
	for i := 0; i < count; i++ {
		s, n1, err := core.ChatSessionMUS.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, fmt.Errorf("%w: session %d: %w", ErrSerializationFailed, i, err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

// MarshalCacheEntry serializes a cache entry to bytes.
func MarshalCacheEntry(entry core.CacheEntry) []byte {
	buf := make([]byte, core.CacheEntryMUS.Size(entry))
	core.CacheEntryMUS.Marshal(entry, buf)
	return buf
}

// UnmarshalCacheEntry deserializes a cache entry from bytes.
func UnmarshalCacheEntry(data []byte) (core.CacheEntry, error) {
	entry, _, err := core.CacheEntryMUS.Unmarshal(data)
	if err != nil {
		return core.CacheEntry{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return entry, nil
}
