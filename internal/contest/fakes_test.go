package contest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type gatewayCall struct {
	op      string
	channel ChannelID
	ref     MessageRef
	content Content
}

type fakeGateway struct {
	mu        sync.Mutex
	calls     []gatewayCall
	nextID    int
	sendErr   func(Content) error
	pinErr    error
	unpinErr  error
	deleteErr error
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID ChannelID, content Content) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		if err := g.sendErr(content); err != nil {
			return MessageRef{}, err
		}
	}
	g.nextID++
	ref := MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", g.nextID)}
	g.calls = append(g.calls, gatewayCall{op: "send", channel: channelID, ref: ref, content: content})
	return ref, nil
}

func (g *fakeGateway) Pin(_ context.Context, ref MessageRef) error {
	return g.record("pin", ref, g.pinErr)
}

func (g *fakeGateway) Unpin(_ context.Context, ref MessageRef) error {
	return g.record("unpin", ref, g.unpinErr)
}

func (g *fakeGateway) Delete(_ context.Context, ref MessageRef) error {
	return g.record("delete", ref, g.deleteErr)
}

func (g *fakeGateway) record(op string, ref MessageRef, err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{op: op, channel: ref.ChannelID, ref: ref})
	return err
}

func (g *fakeGateway) Calls() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gatewayCall(nil), g.calls...)
}

func (g *fakeGateway) Ops() []string {
	var ops []string
	for _, c := range g.Calls() {
		ops = append(ops, c.op)
	}
	return ops
}

func (g *fakeGateway) Sent(title string) []gatewayCall {
	var sent []gatewayCall
	for _, c := range g.Calls() {
		if c.op == "send" && c.content.Title == title {
			sent = append(sent, c)
		}
	}
	return sent
}

// fakeTimers hands out timers that only fire when the test says so.
type fakeTimers struct {
	mu        sync.Mutex
	requested []time.Duration
	chans     []chan time.Time
	fired     int
}

func (f *fakeTimers) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	f.requested = append(f.requested, d)
	f.chans = append(f.chans, ch)
	return ch
}

func (f *fakeTimers) Requested() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.requested...)
}

func (f *fakeTimers) FireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ; f.fired < len(f.chans); f.fired++ {
		f.chans[f.fired] <- time.Now()
	}
}

func (f *fakeTimers) WaitRequested(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(f.Requested()) >= n
	}, 2*time.Second, 2*time.Millisecond)
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []Info
	counted  int
	finished []Result
	lost     []ChannelID
}

func (o *recordingObserver) ContestStarted(info Info) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, info)
}

func (o *recordingObserver) MessageCounted(Info, Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counted++
}

func (o *recordingObserver) ContestFinished(_ Info, result Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, result)
}

func (o *recordingObserver) StartRaceLost(channelID ChannelID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lost = append(o.lost, channelID)
}

func (o *recordingObserver) Finished() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Result(nil), o.finished...)
}

func (o *recordingObserver) Started() []Info {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Info(nil), o.started...)
}

type panickingObserver struct {
	NopObserver
}

func (panickingObserver) MessageCounted(Info, Message) {
	panic("observer exploded")
}

// crashingObserver panics on every counted message and on every finish report.
type crashingObserver struct {
	NopObserver
}

func (crashingObserver) MessageCounted(Info, Message) {
	panic("observer exploded")
}

func (crashingObserver) ContestFinished(Info, Result) {
	panic("observer exploded again")
}

func msg(channel ChannelID, author UserID, content string) Message {
	return Message{ChannelID: channel, AuthorID: author, Author: string(author), Content: content}
}
