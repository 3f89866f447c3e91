package notify

import (
	"runtime/debug"
	"sync"
)

// Event is the value delivered to a Handler.
type Event struct {
	Kind    Kind
	Source  any
	Payload any
}

// Handler reacts to a published Event. A non-nil return stops delivery to
// any remaining handlers and is propagated to the publisher.
type Handler func(Event) error

// Bus is a synchronous, in-process publish/subscribe dispatcher over a
// fixed set of Kinds. All delivery happens on the publishing goroutine.
type Bus struct {
	mu      sync.RWMutex
	reg     *registry
	closed  bool
	nextID  uint64
	onPanic func(Kind, any, []byte)
}

// Option configures a Bus at construction.
type Option func(*Bus)

// WithPanicHook installs a callback invoked (in addition to the handler
// call returning a PanicError) whenever a subscribed Handler panics. It is
// intended for logging; it must not panic itself.
func WithPanicHook(fn func(kind Kind, value any, stack []byte)) Option {
	return func(b *Bus) { b.onPanic = fn }
}

// NewBus creates an empty Bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{reg: newRegistry()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h to be invoked for every Event of the given Kind
// published after Subscribe returns. The returned Subscription can be
// used to Cancel, Pause or Resume delivery.
func (b *Bus) Subscribe(kind Kind, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := newSubscription(busSubscriptionID(b.nextID), kind, b)
	b.reg.add(kind, sub, h)
	return sub
}

func busSubscriptionID(n uint64) string {
	const hex = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	buf := make([]byte, 0, 16)
	for n > 0 {
		buf = append([]byte{hex[n&0xf]}, buf...)
		n >>= 4
	}
	return string(buf)
}

func (b *Bus) remove(kind Kind, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.remove(kind, id)
}

// Publish delivers e to every active subscriber of e.Kind, in
// subscription order, on the calling goroutine. It stops at and returns
// the first handler error (or recovered panic, wrapped as a PanicError).
func (b *Bus) Publish(e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	entries := b.reg.snapshot(e.Kind)
	b.mu.RUnlock()

	for _, ent := range entries {
		if !ent.sub.isActive() {
			continue
		}
		if err := b.invoke(ent, e); err != nil {
			return err
		}
	}
	return nil
}

// invoke calls handler, converting a panic into a PanicError rather than
// letting it propagate to the publisher's goroutine.
func (b *Bus) invoke(ent *entry, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if b.onPanic != nil {
				b.onPanic(e.Kind, r, stack)
			}
			err = &PanicError{Kind: e.Kind, Value: r, Stack: stack}
		}
	}()
	if herr := ent.handler(e); herr != nil {
		return &HandlerError{Kind: e.Kind, Err: herr}
	}
	return nil
}

// Close marks the bus closed; subsequent Publish calls return
// ErrBusClosed. Close does not cancel existing subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
