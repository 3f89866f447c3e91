// Package notify is a small synchronous publish/subscribe bus used to
// deliver History, Cell and Sequence notifications to observers.
//
// Unlike a general-purpose event bus, notify works over a fixed, closed
// set of Kinds (see kinds.go) rather than a hierarchical topic namespace:
// a history engine only ever emits command-lifecycle and adapter
// structural events, so there is no need for wildcard topic matching.
//
// # Subscribing
//
//	bus := notify.NewBus()
//	sub := bus.Subscribe(notify.CommandExecuted, func(e notify.Event) error {
//	    log.Printf("command executed: %v", e.Payload)
//	    return nil
//	})
//	defer sub.Cancel()
//
// # Publishing
//
// Publish invokes every active handler subscribed to the event's Kind, in
// subscription order, on the calling goroutine. The first handler error
// (including a recovered panic, converted to an error) stops delivery and
// is returned to the publisher, which is expected to treat it as an
// ObserverFailure and restore whatever state it mutated before notifying.
package notify
