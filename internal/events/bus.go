// Package events implements the in-process publish/subscribe bus
// described in §4.6: synchronous, in-order delivery to subscribers,
// with filter combinators layered on top of a plain Subscribe.
package events

import (
	"strings"
	"sync"
)

// Record is the structured payload delivered to subscribers.
type Record struct {
	EventName  string
	BucketName string
	ObjectKey  string
	ObjectSize int64
	ObjectETag string
}

// Handler receives published records. A handler that panics is
// recovered so one misbehaving subscriber can't affect the others or
// the publisher.
type Handler func(Record)

// Subscription is a cancellation handle returned by Subscribe.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe detaches the handler; it is safe to call more than
// once and safe to call concurrently with Publish.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subscribers, s.id)
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is the publish/subscribe multiplexer. Zero value is not usable;
// construct with New.
type Bus struct {
	mu          sync.Mutex
	nextID      uint64
	order       []uint64
	subscribers map[uint64]subscriber
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[uint64]subscriber)}
}

// Subscribe registers handler to receive every published record, in
// subscription order relative to other subscribers.
func (b *Bus) Subscribe(handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers[id] = subscriber{id: id, handler: handler}
	b.order = append(b.order, id)
	return &Subscription{bus: b, id: id}
}

// OnEventName subscribes handler only for records whose EventName is
// one of names.
func (b *Bus) OnEventName(handler Handler, names ...string) *Subscription {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return b.Subscribe(func(r Record) {
		if _, ok := set[r.EventName]; ok {
			handler(r)
		}
	})
}

// OnKeyPrefix subscribes handler only for records in bucket whose
// ObjectKey has the given prefix.
func (b *Bus) OnKeyPrefix(bucket, prefix string, handler Handler) *Subscription {
	return b.Subscribe(func(r Record) {
		if r.BucketName == bucket && strings.HasPrefix(r.ObjectKey, prefix) {
			handler(r)
		}
	})
}

// Publish delivers r synchronously to every current subscriber, in
// subscription order. It never back-pressures the caller and never
// lets one subscriber's panic prevent delivery to the rest.
func (b *Bus) Publish(r Record) {
	b.mu.Lock()
	order := make([]uint64, len(b.order))
	copy(order, b.order)
	handlers := make([]Handler, 0, len(order))
	live := order[:0]
	for _, id := range order {
		if sub, ok := b.subscribers[id]; ok {
			handlers = append(handlers, sub.handler)
			live = append(live, id)
		}
	}
	b.order = live
	b.mu.Unlock()

	for _, h := range handlers {
		deliver(h, r)
	}
}

// PublishEvent builds a Record from its parts and publishes it;
// satisfies the narrow EventPublisher interface internal/store
// depends on without either package importing the other's types.
func (b *Bus) PublishEvent(eventName, bucket, key string, size int64, etag string) {
	b.Publish(Record{
		EventName:  eventName,
		BucketName: bucket,
		ObjectKey:  key,
		ObjectSize: size,
		ObjectETag: etag,
	})
}

func deliver(h Handler, r Record) {
	defer func() { recover() }()
	h(r)
}

// Close detaches every current subscriber.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[uint64]subscriber)
	b.order = nil
}
