package kv

import "context"

// Namespaced scopes every key of the wrapped store under a prefix,
// so one backend can hold the state of many sessions.
type Namespaced struct {
	store  Store
	prefix string
}

// NewNamespaced returns a store that maps key to prefix+key.
func NewNamespaced(store Store, prefix string) *Namespaced {
	return &Namespaced{store: store, prefix: prefix}
}

// SessionPrefix returns the key prefix used for a session.
func SessionPrefix(sessionID string) string {
	return "session:" + sessionID + ":"
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

// Delete removes the prefixed key when the wrapped store supports deletion.
func (n *Namespaced) Delete(ctx context.Context, key string) error {
	if d, ok := n.store.(Deleter); ok {
		return d.Delete(ctx, n.prefix+key)
	}
	return nil
}
