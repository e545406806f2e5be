package generator

import "sync"

// keyedLock は購読ID単位の排他制御を提供する。
// 同一購読に対する並行生成をプロセス内で直列化する。
// プロセス間の競合は条件付きINSERT（CreateIfNoneSince）が防ぐ。
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[string]*lockEntry)}
}

// Lock はキーに対応するロックを獲得し、解放関数を返す。
// 未使用になったエントリはマップから取り除く。
func (k *keyedLock) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
