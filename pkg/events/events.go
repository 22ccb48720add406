// Package events provides the progress/completion pub-sub used by the
// engine to report what a long-running operation is doing without
// coupling it to any one presentation (CLI stdout today, something else
// later).
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what stage of an engine operation an Event reports.
type EventType string

const (
	EventFileProcessed   EventType = "file.processed"
	EventSnapshotStarted EventType = "snapshot.started"
	EventSnapshotDone    EventType = "snapshot.completed"
	EventSnapshotFailed  EventType = "snapshot.failed"
	EventRestoreStarted  EventType = "restore.started"
	EventRestoreDone     EventType = "restore.completed"
	EventRestoreFailed   EventType = "restore.failed"
	EventRestoreNoFiles  EventType = "restore.no_files_for_snapshot"
	EventPruneStarted    EventType = "prune.started"
	EventPruneDone       EventType = "prune.completed"
	EventPruneFailed     EventType = "prune.failed"
	EventVerifyStarted   EventType = "verify.started"
	EventVerifyDone      EventType = "verify.completed"
)

// Event is one progress or outcome notification emitted by the engine.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Message   string
	Metadata  map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan *Event

// Broker manages event subscriptions and distribution.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers.
func (b *Broker) Publish(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Sink is the narrow publishing surface the engine depends on, so tests
// can substitute a fake without pulling in the whole Broker.
type Sink interface {
	Publish(event *Event)
}
