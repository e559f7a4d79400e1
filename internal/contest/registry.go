package contest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DefaultSinkCapacity is the number of messages buffered per contest before routing applies backpressure.
const DefaultSinkCapacity = 8

// Sink is the routing handle of one running contest. Messages delivered into it are consumed in
// delivery order by the owning session.
type Sink struct {
	ID        string
	ChannelID ChannelID
	Since     time.Time

	messages chan Message
	mu       sync.RWMutex // held for reading while delivering, for writing while closing
	closed   bool
}

func newSink(channelID ChannelID, capacity int, now time.Time) *Sink {
	return &Sink{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Since:     now,
		messages:  make(chan Message, capacity),
	}
}

// deliver blocks while the buffer is full. It reports false once the sink is closed.
func (s *Sink) deliver(ctx context.Context, msg Message) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.messages <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// close waits for in-flight deliveries, so the consumer must keep draining until it observes the close.
func (s *Sink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.messages)
}

// Active describes a running contest for status endpoints.
type Active struct {
	ID        string    `json:"id"`
	ChannelID ChannelID `json:"channel_id"`
	Since     time.Time `json:"since"`
}

// Registry maps channels to the sink of their running contest. Presence of an entry is the only
// source of truth for "channel is in contest".
type Registry struct {
	mu       sync.RWMutex
	sinks    map[ChannelID]*Sink
	capacity int
	now      func() time.Time
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	return &Registry{
		sinks:    make(map[ChannelID]*Sink),
		capacity: capacity,
		now:      time.Now,
	}
}

// TryStart claims channelID for a new contest. It fails with ErrAlreadyRunning, without touching
// the registry, when the channel already has one.
func (r *Registry) TryStart(channelID ChannelID) (*Sink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sinks[channelID]; ok {
		return nil, ErrAlreadyRunning
	}
	sink := newSink(channelID, r.capacity, r.now())
	r.sinks[channelID] = sink
	return sink, nil
}

// RouteIfActive hands msg to the contest running in its channel and reports whether it did.
func (r *Registry) RouteIfActive(ctx context.Context, msg Message) bool {
	r.mu.RLock()
	sink, ok := r.sinks[msg.ChannelID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return sink.deliver(ctx, msg)
}

// Finish removes the contest of channelID and closes its sink. No-op when the channel is idle.
func (r *Registry) Finish(channelID ChannelID) {
	r.mu.Lock()
	sink, ok := r.sinks[channelID]
	if ok {
		delete(r.sinks, channelID)
	}
	r.mu.Unlock()
	if ok {
		sink.close()
	}
}

// release is Finish restricted to sink, so a late call never removes a successor's entry.
func (r *Registry) release(sink *Sink) {
	r.mu.Lock()
	if r.sinks[sink.ChannelID] == sink {
		delete(r.sinks, sink.ChannelID)
	}
	r.mu.Unlock()
	sink.close()
}

// IsActive reports whether channelID has a running contest.
func (r *Registry) IsActive(channelID ChannelID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sinks[channelID]
	return ok
}

// Active returns the running contests, oldest first.
func (r *Registry) Active() []Active {
	r.mu.RLock()
	active := lo.MapToSlice(r.sinks, func(channelID ChannelID, sink *Sink) Active {
		return Active{ID: sink.ID, ChannelID: channelID, Since: sink.Since}
	})
	r.mu.RUnlock()
	sort.Slice(active, func(i, j int) bool {
		if active[i].Since.Equal(active[j].Since) {
			return active[i].ChannelID < active[j].ChannelID
		}
		return active[i].Since.Before(active[j].Since)
	})
	return active
}
