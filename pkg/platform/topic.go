package platform

// Topic is a minimal publish/subscribe point for one kind of event.
// It is not safe for concurrent use, publishers and subscribers
// share the session loop.
type Topic[E any] struct {
	subs []*Subscription
	fns  map[*Subscription]func(E)
}

// Subscription is the handle that detaches a listener.
type Subscription struct {
	off func()
}

// Unsubscribe detaches the listener. Repeated calls do nothing.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.off == nil {
		return
	}
	off := s.off
	s.off = nil
	off()
}

// Active tells if the listener still receives events.
func (s *Subscription) Active() bool { return s != nil && s.off != nil }

func (t *Topic[E]) Subscribe(fn func(E)) *Subscription {
	if t.fns == nil {
		t.fns = make(map[*Subscription]func(E))
	}
	s := &Subscription{}
	s.off = func() {
		delete(t.fns, s)
		for i, x := range t.subs {
			if x == s {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				break
			}
		}
	}
	t.subs = append(t.subs, s)
	t.fns[s] = fn
	return s
}

// Publish delivers e to every listener in subscription order.
// A listener removed by an earlier one in the same round won't see e.
func (t *Topic[E]) Publish(e E) {
	for _, s := range t.subs {
		if fn, ok := t.fns[s]; ok {
			fn(e)
		}
	}
}

// Len returns the number of attached listeners.
func (t *Topic[E]) Len() int { return len(t.fns) }
