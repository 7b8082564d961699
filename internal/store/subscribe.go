package store

import "sync"

// subscribers is the observer list of a store. Listeners receive a deep
// copy of the state after every committed change.
type subscribers[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// add registers fn and returns a function that removes it.
func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.fns = append(s.fns, listener[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *subscribers[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.fns {
		if l.id == id {
			s.fns = append(s.fns[:i], s.fns[i+1:]...)
			return
		}
	}
}

// publish calls every listener registered at the time of the call.
func (s *subscribers[T]) publish(v T) {
	s.mu.Lock()
	fns := make([]listener[T], len(s.fns))
	copy(fns, s.fns)
	s.mu.Unlock()

	for _, l := range fns {
		l.fn(v)
	}
}
