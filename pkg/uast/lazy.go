package uast

import "sync"

// lazy is a compute-once cell. The first get runs compute and stores the
// result; later calls return the stored value, even if the source changed.
type lazy[T any] struct {
	once sync.Once
	v    T
}

func (l *lazy[T]) get(compute func() T) T {
	l.once.Do(func() { l.v = compute() })
	return l.v
}
