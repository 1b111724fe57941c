package Locks

import (
	"sync"

	"gorm.io/gorm"
)

// RecordLock hands out exclusive, short-lived write leases keyed by client
// id. Two callers holding a lease for different clients run concurrently;
// two callers for the same client are fully serialized. sqlite has no
// SELECT ... FOR UPDATE, so exclusion lives here and the transaction only
// provides atomicity.
type RecordLock struct {
	mu    sync.Mutex
	locks map[uint]*clientLock
}

type clientLock struct {
	mu   sync.Mutex
	refs int
}

func NewRecordLock() *RecordLock {
	return &RecordLock{locks: make(map[uint]*clientLock)}
}

func (l *RecordLock) acquire(clientID uint) *clientLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl := l.locks[clientID]
	if cl == nil {
		cl = &clientLock{}
		l.locks[clientID] = cl
	}
	cl.refs++
	return cl
}

func (l *RecordLock) release(clientID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl := l.locks[clientID]
	if cl == nil {
		return
	}
	cl.refs--
	if cl.refs <= 0 {
		delete(l.locks, clientID)
	}
}

// WithLock runs fn while holding the exclusive lock for clientID. The lock
// is released on every exit path, including a panic in fn.
func (l *RecordLock) WithLock(clientID uint, fn func() error) error {
	cl := l.acquire(clientID)
	cl.mu.Lock()
	defer func() {
		cl.mu.Unlock()
		l.release(clientID)
	}()
	return fn()
}

// WithTx runs fn inside a database transaction while holding the exclusive
// lock for clientID. The transaction is rolled back and the error returned
// if fn fails; a panic rolls back and re-panics. Nothing fn wrote is
// visible to other callers until the commit.
func (l *RecordLock) WithTx(db *gorm.DB, clientID uint, fn func(tx *gorm.DB) error) error {
	return l.WithLock(clientID, func() error {
		tx := db.Begin()
		if tx.Error != nil {
			return tx.Error
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
				panic(r)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
}
