package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := NewLocker()

	const n = 100
	counter := 0
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			unlock := l.Lock("sess-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, n, counter)
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocker()

	unlockA := l.Lock("a")
	defer unlockA()

	//別キーはすぐ取れる
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
}

func TestLocker_ReentryAfterUnlock(t *testing.T) {
	l := NewLocker()

	unlock := l.Lock("a")
	unlock()

	unlock = l.Lock("a")
	unlock()
}

func TestLocker_ReleasesEntriesWhenIdle(t *testing.T) {
	l := NewLocker()

	//使い終わったキーのエントリは残らない
	unlockA := l.Lock("a")
	unlockB := l.Lock("b")
	assert.Equal(t, 2, l.Len())

	unlockA()
	unlockB()
	assert.Equal(t, 0, l.Len())
}

func TestLocker_KeepsEntryWhileHeld(t *testing.T) {
	l := NewLocker()

	unlock := l.Lock("a")
	assert.Equal(t, 1, l.Len())

	//後から同じキーを待つ側がいても、全員が手放すまでは1エントリのまま
	acquired := make(chan func())
	go func() {
		acquired <- l.Lock("a")
	}()

	unlock()
	unlock2 := <-acquired
	assert.Equal(t, 1, l.Len())
	unlock2()
	assert.Equal(t, 0, l.Len())
}
