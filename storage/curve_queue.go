package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/schoof/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// PushCurve stores a new curve into the pending queue. Pushing a curve that
// is already pending overwrites it in place (same key), so the queue never
// holds duplicates.
func (s *Storage) PushCurve(req *types.CurveRequest) error {
	val, err := encodeArtifact(req)
	if err != nil {
		return fmt.Errorf("encode curve: %w", err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), curvePrefix)
	if err := wTx.Set(CurveKey(req), val); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// NextCurve returns the next non-reserved pending curve, creates a
// reservation, and returns it along with its key. The key is used to mark
// the curve as done or failed after counting. If no curves are available it
// returns ErrNoMoreElements.
func (s *Storage) NextCurve() (*types.CurveRequest, []byte, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	pr := prefixeddb.NewPrefixedReader(s.db, curvePrefix)
	var chosenKey, chosenVal []byte
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		if s.isReserved(curveReservationPrefix, k) {
			return true
		}
		chosenKey = append([]byte{}, k...)
		chosenVal = append([]byte{}, v...)
		return false
	}); err != nil {
		return nil, nil, fmt.Errorf("iterate curves: %w", err)
	}
	if chosenVal == nil {
		return nil, nil, ErrNoMoreElements
	}

	var req types.CurveRequest
	if err := decodeArtifact(chosenVal, &req); err != nil {
		return nil, nil, fmt.Errorf("decode curve: %w", err)
	}
	if err := s.setReservation(curveReservationPrefix, chosenKey); err != nil {
		return nil, nil, ErrNoMoreElements
	}
	return &req, chosenKey, nil
}

// MarkCurveDone stores the result of a counted curve and removes it from
// the pending queue together with its reservation.
func (s *Storage) MarkCurveDone(k []byte, res *types.CountResult) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if err := s.deleteArtifact(curveReservationPrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if err := s.deleteArtifact(curvePrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete pending curve: %w", err)
	}
	if _, err := s.SetResult(res); err != nil {
		return err
	}
	return nil
}

// MarkCurveFailed records a failed counting attempt: the curve leaves the
// queue and a result carrying the failure is stored in its place.
func (s *Storage) MarkCurveFailed(k []byte, cause error) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	var req types.CurveRequest
	if err := s.getArtifact(curvePrefix, k, &req); err != nil {
		return fmt.Errorf("load pending curve: %w", err)
	}
	if err := s.deleteArtifact(curveReservationPrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if err := s.deleteArtifact(curvePrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete pending curve: %w", err)
	}
	res := &types.CountResult{
		Request:     req,
		Error:       cause.Error(),
		CompletedAt: time.Now(),
	}
	if _, err := s.SetResult(res); err != nil {
		return err
	}
	return nil
}

// IsPending reports whether the curve key is still waiting in the queue.
func (s *Storage) IsPending(key []byte) bool {
	rd := prefixeddb.NewPrefixedReader(s.db, curvePrefix)
	_, err := rd.Get(key)
	return err == nil
}

// PendingCurves returns the number of curves waiting in the queue,
// reserved or not.
func (s *Storage) PendingCurves() int {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	rd := prefixeddb.NewPrefixedReader(s.db, curvePrefix)
	count := 0
	if err := rd.Iterate(nil, func(_, _ []byte) bool {
		count++
		return true
	}); err != nil {
		return 0
	}
	return count
}