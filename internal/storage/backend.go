// Package storage provides the key-value document stores behind the
// settings store and the device-local state machines. Two namespaces exist
// at runtime: a primary (syncable) backend and a local fallback backend.
// Every backend fires change notifications after a durable write.
package storage

import "sync"

// Backend is a key-value document store. Values are JSON documents; the
// storage layer does not interpret them.
type Backend interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Documents
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error

	// Watch registers fn to run after any durable write or delete. The
	// returned function unsubscribes.
	Watch(fn func(key string)) func()

	// Name identifies the backend in logs and errors.
	Name() string
}

// notifier is the in-process change-notification hub shared by all
// backends. Callbacks run synchronously after the write is durable.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(key string)
}

func (n *notifier) subscribe(fn func(key string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(key string))
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(key string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
