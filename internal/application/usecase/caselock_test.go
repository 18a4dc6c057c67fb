package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseLocks_SerializesSameCase(t *testing.T) {
	locks := NewCaseLocks()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := locks.Lock("case-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestCaseLocks_ReleasesEntries(t *testing.T) {
	locks := NewCaseLocks()

	unlock := locks.Lock("case-1")
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks, "lock table should not leak entries")
}
