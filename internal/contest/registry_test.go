package contest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistry_TryStart_OneWinner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)

	// Given an idle channel
	req.False(registry.IsActive("c1"))

	// When a contest is started
	sink, err := registry.TryStart("c1")

	// Then the channel is in contest
	req.NoError(err)
	req.NotNil(sink)
	req.True(registry.IsActive("c1"))

	// And a second start fails without replacing the entry
	again, err := registry.TryStart("c1")
	req.ErrorIs(err, ErrAlreadyRunning)
	req.Nil(again)
	req.Len(registry.Active(), 1)
	req.Equal(sink.ID, registry.Active()[0].ID)

	// And other channels are independent
	_, err = registry.TryStart("c2")
	req.NoError(err)
	req.Len(registry.Active(), 2)
}

func TestRegistry_TryStart_Concurrent(t *testing.T) {
	registry := NewRegistry(4)
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := registry.TryStart("c1"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestRegistry_RouteIfActive(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	ctx := context.Background()

	// Given an idle channel, nothing is routed
	req.False(registry.RouteIfActive(ctx, Message{ChannelID: "c1", Content: "hi"}))

	// When a contest runs
	sink, err := registry.TryStart("c1")
	req.NoError(err)

	// Then messages are routed in order
	req.True(registry.RouteIfActive(ctx, Message{ID: "1", ChannelID: "c1"}))
	req.True(registry.RouteIfActive(ctx, Message{ID: "2", ChannelID: "c1"}))
	req.False(registry.RouteIfActive(ctx, Message{ID: "3", ChannelID: "c2"}))
	req.Equal("1", (<-sink.messages).ID)
	req.Equal("2", (<-sink.messages).ID)
}

func TestRegistry_Finish(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	ctx := context.Background()
	sink, err := registry.TryStart("c1")
	req.NoError(err)
	req.True(registry.RouteIfActive(ctx, Message{ID: "buffered", ChannelID: "c1"}))

	// When the contest finishes
	registry.Finish("c1")

	// Then the channel is idle and routing stops
	req.False(registry.IsActive("c1"))
	req.False(registry.RouteIfActive(ctx, Message{ChannelID: "c1"}))

	// And buffered messages are still readable before the close
	msg, ok := <-sink.messages
	req.True(ok)
	req.Equal("buffered", msg.ID)
	_, ok = <-sink.messages
	req.False(ok)

	// And finishing again is a no-op
	registry.Finish("c1")
	registry.Finish("never-started")

	// And the channel can host a new contest
	_, err = registry.TryStart("c1")
	req.NoError(err)
}

func TestRegistry_ReleaseKeepsSuccessor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(1)
	first, err := registry.TryStart("c1")
	req.NoError(err)
	registry.release(first)

	second, err := registry.TryStart("c1")
	req.NoError(err)

	// a late release of the first contest leaves the second alone
	registry.release(first)
	req.True(registry.IsActive("c1"))
	req.Equal(second.ID, registry.Active()[0].ID)
}

func TestRegistry_BackpressureAndCancel(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(1)
	_, err := registry.TryStart("c1")
	req.NoError(err)

	// fill the buffer
	req.True(registry.RouteIfActive(context.Background(), Message{ChannelID: "c1"}))

	// a full buffer blocks until the caller gives up
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req.False(registry.RouteIfActive(ctx, Message{ChannelID: "c1"}))
}

func TestRegistry_FinishWhileSenderBlocked(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(1)
	sink, err := registry.TryStart("c1")
	req.NoError(err)
	req.True(registry.RouteIfActive(context.Background(), Message{ID: "1", ChannelID: "c1"}))

	// a sender blocks on the full buffer
	delivered := make(chan bool, 1)
	go func() {
		delivered <- registry.RouteIfActive(context.Background(), Message{ID: "2", ChannelID: "c1"})
	}()

	// the consumer keeps draining while the contest finishes
	var got []string
	drained := make(chan struct{})
	go func() {
		for msg := range sink.messages {
			got = append(got, msg.ID)
		}
		close(drained)
	}()
	go registry.Finish("c1")

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		req.Fail("sink was never closed")
	}
	ok := <-delivered
	if ok {
		req.Equal([]string{"1", "2"}, got)
	} else {
		req.Equal([]string{"1"}, got)
	}
}
