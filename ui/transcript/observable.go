package transcript

// Observable is a value with change subscriptions. Subscribers are notified
// synchronously, in subscription order, and only when the value actually
// changes.
type Observable[T comparable] struct {
	value T
	subs  []subscriber[T]
	next  int
}

type subscriber[T comparable] struct {
	id int
	fn func(T)
}

// NewObservable returns an Observable holding v.
func NewObservable[T comparable](v T) *Observable[T] {
	return &Observable[T]{value: v}
}

// Get returns the current value.
func (o *Observable[T]) Get() T { return o.value }

// Set stores v and notifies subscribers if it differs from the current value.
// It reports whether a change happened.
func (o *Observable[T]) Set(v T) bool {
	if v == o.value {
		return false
	}
	o.value = v
	// Copy so subscribers may unsubscribe while being notified.
	subs := append([]subscriber[T](nil), o.subs...)
	for _, s := range subs {
		s.fn(v)
	}
	return true
}

// Subscribe registers fn and returns a function that removes it.
func (o *Observable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.next++
	id := o.next
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}
