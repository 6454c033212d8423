package pkg

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	var km KeyedMutex

	counters := map[string]int{"a": 0, "b": 0}
	var countersMu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := km.Lock(key)
				defer unlock()

				countersMu.Lock()
				v := counters[key]
				countersMu.Unlock()
				time.Sleep(time.Microsecond)
				countersMu.Lock()
				counters[key] = v + 1
				countersMu.Unlock()
			}(key)
		}
	}
	wg.Wait()

	assert.Equal(t, 50, counters["a"])
	assert.Equal(t, 50, counters["b"])
	assert.Zero(t, km.Len())
}

func TestKeyedMutex_ReleasesUnusedKeys(t *testing.T) {
	var km KeyedMutex
	for i := 0; i < 100; i++ {
		unlock := km.Lock(fmt.Sprintf("profile-%d", i))
		unlock()
	}
	assert.Zero(t, km.Len())

	unlock := km.Lock("p1")
	waiting := make(chan struct{})
	acquired := make(chan struct{})
	go func() {
		close(waiting)
		second := km.Lock("p1")
		close(acquired)
		second()
	}()
	<-waiting
	assert.Eventually(t, func() bool {
		km.mu.Lock()
		defer km.mu.Unlock()
		return km.locks["p1"] != nil && km.locks["p1"].refs == 2
	}, time.Second, time.Millisecond)

	// the waiter still holds a reference after the first unlock
	unlock()
	<-acquired
	assert.Eventually(t, func() bool { return km.Len() == 0 }, time.Second, time.Millisecond)
}

func TestKeyedMutex_KeysAreIndependent(t *testing.T) {
	var km KeyedMutex
	unlockA := km.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock of b blocked by a")
	}
}
