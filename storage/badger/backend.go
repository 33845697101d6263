package badger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// sequenceLease is how many ids a badger sequence leases per disk write.
const sequenceLease = 100

// Backend owns one badger database. The persistent backend holds chats and
// preferences; an in-memory backend serves as a result cache scope.
type Backend struct {
	db       *badger.DB
	inMemory bool
	logger   *slog.Logger
}

// slogAdapter routes badger's printf-style logging into slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}

// Infof is demoted to debug; badger reports every compaction at info.
func (a *slogAdapter) Infof(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

// ensureDir creates path if missing and fails if it is not a directory.
func ensureDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(path, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// OpenBackend opens the badger database at filePath, creating the
// directory when needed. With inMemory set, filePath is ignored and nothing
// outlives Close.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "badger", "in_memory", inMemory)
	opts.Logger = &slogAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &Backend{db: db, inMemory: inMemory, logger: logger}, nil
}

// NewMemoryBackend opens an in-memory backend.
func NewMemoryBackend() (*Backend, error) {
	return OpenBackend("", true)
}

// Close closes the database. Closing an in-memory backend discards it.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// InMemory reports whether the backend keeps nothing on disk.
func (b *Backend) InMemory() bool {
	return b.inMemory
}

// WithTx runs fn in a transaction, read-write when isWrite is set.
// The transaction is discarded afterwards; fn commits explicitly.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns the named id sequence. Callers must Release it.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	return b.db.GetSequence([]byte(name), sequenceLease)
}

// DropPrefix deletes every key starting with prefix.
func (b *Backend) DropPrefix(prefix string) error {
	return b.db.DropPrefix([]byte(prefix))
}
