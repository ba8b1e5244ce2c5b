package outbox

import (
	"log/slog"
	"sync"
)

const (
	// SyncTag is the background-sync registration used for queued chat messages.
	SyncTag = "sync-new-messages"

	// MessageSyncMessages is broadcast to subscribers when SyncTag fires.
	MessageSyncMessages = "SYNC_MESSAGES"
)

// Broadcast is delivered to every subscriber when a sync fires.
type Broadcast struct {
	Type string
	Tag  string
}

// Syncer keeps registered sync tags and fires them when the client is online.
// Firing a tag broadcasts to all subscribers; each subscriber drains on its own.
type Syncer struct {
	online func() bool

	mu      sync.Mutex
	pending map[string]struct{}
	subs    map[int]chan Broadcast
	nextID  int
}

// NewSyncer creates a syncer. online reports current connectivity.
func NewSyncer(online func() bool) *Syncer {
	return &Syncer{
		online:  online,
		pending: make(map[string]struct{}),
		subs:    make(map[int]chan Broadcast),
	}
}

// Register records tag and fires it immediately if online. Registering a tag
// that is already pending is a no-op until it fires.
func (s *Syncer) Register(tag string) {
	s.mu.Lock()
	s.pending[tag] = struct{}{}
	s.mu.Unlock()

	slog.Debug("Sync registered", "tag", tag)

	if s.online() {
		s.Fire(tag)
	}
}

// Fire delivers a pending tag to every subscriber. It returns false, leaving the
// tag pending, when the tag was not registered or nobody is subscribed.
func (s *Syncer) Fire(tag string) bool {
	s.mu.Lock()
	if _, ok := s.pending[tag]; !ok {
		s.mu.Unlock()
		return false
	}
	if len(s.subs) == 0 {
		// Nobody to deliver to yet; keep the registration for the next subscriber.
		s.mu.Unlock()
		return false
	}
	delete(s.pending, tag)
	subs := make([]chan Broadcast, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	msg := Broadcast{Type: MessageSyncMessages, Tag: tag}
	for _, ch := range subs {
		// A subscriber with a broadcast already waiting will drain everything anyway.
		select {
		case ch <- msg:
		default:
		}
	}

	slog.Info("Sync fired", "tag", tag, "subscribers", len(subs))
	return true
}

// FirePending fires every pending tag if online and returns how many fired.
func (s *Syncer) FirePending() int {
	if !s.online() {
		return 0
	}

	s.mu.Lock()
	tags := make([]string, 0, len(s.pending))
	for tag := range s.pending {
		tags = append(tags, tag)
	}
	s.mu.Unlock()

	fired := 0
	for _, tag := range tags {
		if s.Fire(tag) {
			fired++
		}
	}
	return fired
}

// Pending reports whether tag is registered and not yet fired.
func (s *Syncer) Pending(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[tag]
	return ok
}

// Subscribe returns a channel of broadcasts and a function to unsubscribe.
func (s *Syncer) Subscribe() (<-chan Broadcast, func()) {
	ch := make(chan Broadcast, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
