// Package emitter provides a synchronous publish/subscribe component keyed by
// a closed set of event kinds.
//
// An Emitter is embedded by composition in types that act as event sources:
//
//	type Source struct {
//	    events emitter.Emitter[Kind, *Source]
//	}
//
//	off := src.events.On(KindChanged, func(s *Source) { ... })
//	defer off()
//
// The zero value is ready to use. Emitters are not safe for concurrent use;
// they belong to a single event loop.
package emitter

import "slices"

// Emitter dispatches values of type T to listeners registered per kind K.
type Emitter[K comparable, T any] struct {
	listeners map[K][]*listener[T]
	nextID    int
}

type listener[T any] struct {
	id      int
	fn      func(T)
	once    bool
	removed bool
}

// On registers fn for kind and returns a function that removes it.
// A nil fn registers nothing.
func (e *Emitter[K, T]) On(kind K, fn func(T)) func() {
	return e.add(kind, fn, false)
}

// Once registers fn for the next emission of kind only.
func (e *Emitter[K, T]) Once(kind K, fn func(T)) func() {
	return e.add(kind, fn, true)
}

func (e *Emitter[K, T]) add(kind K, fn func(T), once bool) func() {
	if fn == nil {
		return func() {}
	}
	if e.listeners == nil {
		e.listeners = make(map[K][]*listener[T])
	}
	l := &listener[T]{id: e.nextID, fn: fn, once: once}
	e.nextID++
	e.listeners[kind] = append(e.listeners[kind], l)
	return func() {
		e.remove(kind, l)
	}
}

func (e *Emitter[K, T]) remove(kind K, l *listener[T]) {
	if l.removed {
		return
	}
	l.removed = true
	list := e.listeners[kind]
	for i, existing := range list {
		if existing == l {
			list = slices.Delete(list, i, i+1)
			break
		}
	}
	if len(list) == 0 {
		delete(e.listeners, kind)
		return
	}
	e.listeners[kind] = list
}

// Emit calls every listener registered for kind, in registration order, and
// returns how many were called.
//
// The listener set is captured before the first call. Listeners added during
// dispatch wait for the next emission; listeners removed during dispatch
// are skipped.
func (e *Emitter[K, T]) Emit(kind K, value T) int {
	snapshot := slices.Clone(e.listeners[kind])
	called := 0
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		if l.once {
			e.remove(kind, l)
		}
		l.fn(value)
		called++
	}
	return called
}

// RemoveAllListeners removes the listeners of the given kinds, or of every
// kind when none are given.
func (e *Emitter[K, T]) RemoveAllListeners(kinds ...K) {
	if len(kinds) == 0 {
		for _, list := range e.listeners {
			for _, l := range list {
				l.removed = true
			}
		}
		e.listeners = nil
		return
	}
	for _, kind := range kinds {
		for _, l := range e.listeners[kind] {
			l.removed = true
		}
		delete(e.listeners, kind)
	}
}

// ListenerCount returns the number of listeners registered for kind.
func (e *Emitter[K, T]) ListenerCount(kind K) int {
	return len(e.listeners[kind])
}
