// Package storage persists counting artifacts and abstracts a work queue the
// counting service consumes. It is a prefixed key-value store over a dvote
// db.Database. The following prefixes are used:
//   - 'r/' for count results
//   - 'q/' for pending curves (queued)
//   - 'qr/' for reservations of pending curves
//
// Curves are keyed by a truncated hash of (p, A, B), so pushing the same
// curve twice is idempotent and a stored result is found again from the
// request alone.
package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/schoof/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	resultPrefix           = []byte("r/")
	curvePrefix            = []byte("q/")
	curveReservationPrefix = []byte("qr/")
)

const (
	// maxKeySize is the maximum size of the key in bytes. Artifact keys are
	// the hash of the curve parameters truncated to this length.
	maxKeySize = 12

	// reservationTimeout is the age after which a reservation is considered
	// stale and its curve offered again.
	reservationTimeout = 10 * time.Minute
)

var (
	// ErrNotFound is returned when the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrNoMoreElements is returned when the pending queue has no
	// unreserved curves left.
	ErrNoMoreElements = errors.New("no more elements in the queue")
)

// Storage wraps the database with the queue and result operations.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance over the given database.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the underlying database.
func (s *Storage) Close() {
	s.db.Close()
}

// setArtifact stores a cbor-encoded artifact under the given prefix.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	val, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, val); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// getArtifact loads and decodes an artifact, or returns ErrNotFound.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	val, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return decodeArtifact(val, out)
}

// deleteArtifact removes an artifact; missing keys are not an error.
func (s *Storage) deleteArtifact(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return wTx.Commit()
}

func (s *Storage) setReservation(prefix, key []byte) error {
	ts, err := time.Now().MarshalBinary()
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, ts); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// isReserved reports whether key holds a live reservation. Stale
// reservations (crashed workers) expire after reservationTimeout.
func (s *Storage) isReserved(prefix, key []byte) bool {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	val, err := rd.Get(key)
	if err != nil {
		return false
	}
	var ts time.Time
	if err := ts.UnmarshalBinary(val); err != nil {
		return true
	}
	return time.Since(ts) < reservationTimeout
}

// SetResult stores the outcome of a counting run, keyed by its curve.
func (s *Storage) SetResult(res *types.CountResult) ([]byte, error) {
	key := CurveKey(&res.Request)
	if err := s.setArtifact(resultPrefix, key, res); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	return key, nil
}

// Result retrieves a stored count result by curve key. It returns
// ErrNotFound if the curve has not been counted.
func (s *Storage) Result(key []byte) (*types.CountResult, error) {
	res := &types.CountResult{}
	if err := s.getArtifact(resultPrefix, key, res); err != nil {
		return nil, err
	}
	return res, nil
}