package contest

import (
	"context"
	"sync"
	"time"

	"github.com/erilali/spamcontest/internal/logger"
)

// Action is what the orchestrator did with a message.
type Action int

const (
	ActionIgnored  Action = iota // no contest running and no trigger
	ActionRouted                 // counted by the running contest
	ActionStarted                // started a new contest
	ActionRaceLost               // triggered, but another message claimed the channel first
)

func (a Action) String() string {
	switch a {
	case ActionRouted:
		return "routed"
	case ActionStarted:
		return "started"
	case ActionRaceLost:
		return "race_lost"
	default:
		return "ignored"
	}
}

// Options tune an Orchestrator. Zero values fall back to real time and no observers.
type Options struct {
	Observer Observer
	Logger   *logger.Logger
	After    func(time.Duration) <-chan time.Time
	Now      func() time.Time
}

// Orchestrator decides for each inbound message whether it feeds a running contest or starts one.
type Orchestrator struct {
	ctx      context.Context
	registry *Registry
	gateway  Gateway
	observer Observer
	log      *logger.Logger
	after    func(time.Duration) <-chan time.Time
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewOrchestrator builds an orchestrator whose sessions live until ctx is cancelled.
func NewOrchestrator(ctx context.Context, registry *Registry, gateway Gateway, opts Options) *Orchestrator {
	o := &Orchestrator{
		ctx:      ctx,
		registry: registry,
		gateway:  gateway,
		observer: opts.Observer,
		log:      opts.Logger,
		after:    opts.After,
		now:      opts.Now,
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.log == nil {
		o.log = logger.NewLogger("contest")
	}
	if o.after == nil {
		o.after = time.After
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// HandleMessage routes msg into the contest of its channel or, if the channel is idle and msg
// contains the trigger, starts a contest. ctx bounds the wait when the contest buffer is full.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg Message) Action {
	if o.registry.RouteIfActive(ctx, msg) {
		return ActionRouted
	}
	if !IsTrigger(msg.Content) {
		return ActionIgnored
	}

	duration := ParseDuration(msg.Content)
	sink, err := o.registry.TryStart(msg.ChannelID)
	if err != nil {
		o.log.Debugf("Contest in channel %s already claimed, ignoring trigger from %s", msg.ChannelID, msg.Author)
		o.observer.StartRaceLost(msg.ChannelID)
		return ActionRaceLost
	}

	now := o.now()
	info := Info{
		ID:        sink.ID,
		ChannelID: msg.ChannelID,
		Duration:  duration,
		Pinned:    ShouldPin(duration),
		StartedAt: now,
		EndsAt:    now.Add(duration),
	}
	o.log.Infof("User %s started a %d second contest in channel %s", msg.Author, int(duration/time.Second), msg.ChannelID)

	session := newSession(info, sink, o.registry, o.gateway, o.observer,
		o.log.WithFields(map[string]interface{}{
			"contest_id": info.ID,
			"channel_id": string(info.ChannelID),
		}), o.after)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		result := session.Run(o.ctx)
		o.log.Debugf("Contest in channel %s has ended (%s) with %d participant(s)",
			info.ChannelID, result.Outcome, result.Participants)
	}()
	return ActionStarted
}

// Wait blocks until every started session has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
