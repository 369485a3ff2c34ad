package partition

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTryLock_TimedMigrateWins matches spec.md §8 scenario 6: a short hold
// lets a timed acquisition succeed.
func TestTryLock_TimedMigrateWins(t *testing.T) {
	r := &Record{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l := r.Lock()
		time.Sleep(10 * time.Millisecond)
		l.Unlock()
	}()
	time.Sleep(2 * time.Millisecond) // let the holder grab the lock first

	l, ok := r.TryLock(100 * time.Millisecond)
	assert.True(t, ok)
	if ok {
		l.Unlock()
	}
	wg.Wait()
}

// TestTryLock_TimedMigrateTimesOut matches spec.md §8 scenario 6's
// negative case: a long hold causes the timed acquisition to fail.
func TestTryLock_TimedMigrateTimesOut(t *testing.T) {
	r := &Record{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l := r.Lock()
		time.Sleep(200 * time.Millisecond)
		l.Unlock()
	}()
	time.Sleep(2 * time.Millisecond)

	l, ok := r.TryLock(20 * time.Millisecond)
	assert.False(t, ok)
	assert.Nil(t, l)
	wg.Wait()

	// The lock must still be usable afterwards (no leak from the timeout path).
	l2, ok2 := r.TryLock(50 * time.Millisecond)
	assert.True(t, ok2)
	if ok2 {
		l2.Unlock()
	}
}
