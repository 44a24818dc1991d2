package lock

import (
	"sync"

	"github.com/apex/log"
)

// IDLocker hands out one mutex per id so that work on different ids never
// contends while work on the same id is serialized.
type IDLocker struct {
	mapMutex sync.Mutex
	idMap    map[uint]*sync.Mutex
}

func NewIDLocker() *IDLocker {
	return &IDLocker{
		idMap: make(map[uint]*sync.Mutex),
	}
}

func (l *IDLocker) AcquireLock(id uint) {
	l.mapMutex.Lock()
	idMutex, ok := l.idMap[id]
	if !ok {
		idMutex = &sync.Mutex{}
		l.idMap[id] = idMutex
	}
	l.mapMutex.Unlock()

	idMutex.Lock()
}

func (l *IDLocker) ReleaseLock(id uint) {
	l.mapMutex.Lock()
	m, ok := l.idMap[id]
	l.mapMutex.Unlock()

	if !ok {
		log.Errorf("ReleaseLock called on id (%d) with no mutex", id)
		return
	}

	m.Unlock()
}

func (l *IDLocker) WithLock(id uint, f func() error) error {
	l.AcquireLock(id)
	defer l.ReleaseLock(id)
	return f()
}
