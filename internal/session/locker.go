// Package session は同一セッションのカート更新を直列化する。
// 二重クリックなどで同じセッションのリクエストが重なっても更新を失わないため。
package session

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type Locker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func NewLocker() *Locker {
	return &Locker{entries: map[string]*lockEntry{}}
}

// Lock はキーごとのロックを取り、解放関数を返す。
// エントリは参照カウントで管理し、誰も待っていなければ解放時に消す。
func (l *Locker) Lock(key string) func() {
	l.mu.Lock()
	e := l.entries[key]
	if e == nil {
		e = &lockEntry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}

// Len は保持中のエントリ数。
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
