package badger

import (
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Key prefixes for different data types
const (
	sessionsKey      = "tekirChats"
	activeSessionKey = "tekirActiveChat"
	sessionIDSeq     = "chatseq"
	cacheEntryPrefix = "cache"
	preferencePrefix = "pref"
)

// makeCacheKey generates the storage key for a logical cache key.
// Logical keys embed free-text queries of any length, so they are hashed.
// Format: prefix:hex(blake2b-64(key))
func makeCacheKey(key string) []byte {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(key))
	return []byte(cacheEntryPrefix + ":" + hex.EncodeToString(h.Sum(nil)))
}

// makePreferenceKey generates a key for a named preference.
func makePreferenceKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", preferencePrefix, name))
}
