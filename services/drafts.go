package services

import (
	"sync"
	"time"
)

// draftEntry черновик с собственной блокировкой
type draftEntry[T any] struct {
	mu        sync.Mutex
	value     T
	touchedAt time.Time
}

// draftRegistry хранит черновики редактора и заполнения в памяти процесса
type draftRegistry[T any] struct {
	mu      sync.Mutex
	entries map[string]*draftEntry[T]
}

func newDraftRegistry[T any]() *draftRegistry[T] {
	return &draftRegistry[T]{entries: make(map[string]*draftEntry[T])}
}

func (r *draftRegistry[T]) put(id string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &draftEntry[T]{value: value, touchedAt: time.Now()}
}

func (r *draftRegistry[T]) get(id string) (*draftEntry[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if ok {
		e.mu.Lock()
		e.touchedAt = time.Now()
		e.mu.Unlock()
	}
	return e, ok
}

func (r *draftRegistry[T]) remove(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.entries, id)
	return e.value, true
}

func (r *draftRegistry[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// expired удаляет черновики, не изменявшиеся дольше ttl, и возвращает их
func (r *draftRegistry[T]) expired(ttl time.Duration, now time.Time) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for id, e := range r.entries {
		e.mu.Lock()
		stale := now.Sub(e.touchedAt) > ttl
		e.mu.Unlock()
		if stale {
			out = append(out, e.value)
			delete(r.entries, id)
		}
	}
	return out
}

// with выполняет fn под блокировкой черновика
func (e *draftEntry[T]) with(fn func(T) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchedAt = time.Now()
	return fn(e.value)
}
