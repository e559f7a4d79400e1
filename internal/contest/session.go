package contest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/erilali/spamcontest/internal/logger"
)

// State is the lifecycle stage of a session.
type State int32

const (
	StateStarting   State = iota // announcement being posted
	StateCollecting              // timer running, messages tallied
	StateFinishing               // timer fired, draining buffered messages
	StateClosed                  // entry released, final message handled
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateCollecting:
		return "collecting"
	case StateFinishing:
		return "finishing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Session runs one contest from announcement to results. Its counter is only touched by the
// goroutine executing Run.
type Session struct {
	info     Info
	sink     *Sink
	registry *Registry
	gateway  Gateway
	observer Observer
	log      *logger.Logger
	after    func(time.Duration) <-chan time.Time

	counter         *Counter
	started         bool // ContestStarted emitted; Run goroutine only
	reported        bool // ContestFinished emitted; Run goroutine only
	state           atomic.Int32
	finishRequested atomic.Bool
	abandoned       atomic.Bool
	done            chan struct{}
}

func newSession(info Info, sink *Sink, registry *Registry, gateway Gateway, observer Observer,
	log *logger.Logger, after func(time.Duration) <-chan time.Time) *Session {
	return &Session{
		info:     info,
		sink:     sink,
		registry: registry,
		gateway:  gateway,
		observer: observer,
		log:      log,
		after:    after,
		counter:  NewCounter(),
		done:     make(chan struct{}),
	}
}

func (s *Session) Info() Info { return s.info }

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(state State) { s.state.Store(int32(state)) }

// Run posts the announcement, collects messages until the timer fires and posts the results.
// Cancelling ctx abandons the contest without posting anything further.
func (s *Session) Run(ctx context.Context) (result Result) {
	defer close(s.done)
	defer s.recoverPanic(&result)

	announcement, err := s.gateway.SendMessage(ctx, s.info.ChannelID, Announcement(s.info.EndsAt))
	if err != nil {
		s.log.WithError(err).Error("Failed to send contest announcement, contest aborted")
		s.abort()
		return Result{Outcome: OutcomeFailed}
	}
	if s.info.Pinned {
		if err := s.gateway.Pin(ctx, announcement); err != nil {
			s.log.WithError(err).Warn("Failed to pin contest announcement")
		}
	}

	s.setState(StateCollecting)
	timer := s.after(s.info.Duration)
	s.started = true
	s.observer.ContestStarted(s.info)
	go s.finishOn(ctx, timer)

	for msg := range s.sink.messages {
		s.log.Debugf("Counting message %s (from %s in channel %s)", msg.ID, msg.Author, msg.ChannelID)
		s.counter.Record(msg.AuthorID, msg.Characters())
		s.observer.MessageCounted(s.info, msg)
	}

	if !s.finishRequested.Load() {
		s.log.WithError(ErrSinkClosed).Error("Contest message pipe closed before the timer fired")
		s.registry.release(s.sink)
		s.setState(StateClosed)
		result = Result{Outcome: OutcomeFailed, Participants: s.counter.Len()}
		s.reportFinished(result)
		return result
	}

	if s.abandoned.Load() {
		s.log.Infof("Contest in channel %s abandoned with %d participant(s)", s.info.ChannelID, s.counter.Len())
		s.setState(StateClosed)
		result = Result{Outcome: OutcomeAbandoned, Participants: s.counter.Len()}
		s.reportFinished(result)
		return result
	}

	result = s.close(ctx, announcement)
	s.setState(StateClosed)
	s.reportFinished(result)
	return result
}

// finishOn releases the registry entry once the timer fires, which closes the sink and ends the
// collecting loop after the buffered messages were counted.
func (s *Session) finishOn(ctx context.Context, timer <-chan time.Time) {
	select {
	case <-timer:
	case <-ctx.Done():
		s.abandoned.Store(true)
	case <-s.done:
		return
	}
	s.setState(StateFinishing)
	s.finishRequested.Store(true)
	s.registry.release(s.sink)
}

// reportFinished emits ContestFinished at most once per session.
func (s *Session) reportFinished(result Result) {
	if !s.started || s.reported {
		return
	}
	s.reported = true
	s.observer.ContestFinished(s.info, result)
}

func (s *Session) close(ctx context.Context, announcement MessageRef) Result {
	if s.counter.Len() == 0 {
		if err := s.gateway.Delete(ctx, announcement); err != nil {
			s.log.WithError(err).Error("Failed to delete announcement of empty contest")
		}
		return Result{Outcome: OutcomeFizzled}
	}

	if s.info.Pinned {
		if err := s.gateway.Unpin(ctx, announcement); err != nil {
			s.log.WithError(err).Warn("Failed to unpin contest announcement")
		}
	}
	if _, err := s.gateway.SendMessage(ctx, s.info.ChannelID, Results(s.counter)); err != nil {
		s.log.WithError(err).Error("Failed to send contest results")
	}
	return Result{
		Outcome:      OutcomeResults,
		Participants: s.counter.Len(),
		ByMessages:   s.counter.Standings(ByMessages),
		ByCharacters: s.counter.Standings(ByCharacters),
	}
}

// abort gives the channel back without a contest. Buffered messages are dropped.
func (s *Session) abort() {
	s.finishRequested.Store(true)
	go s.discardMessages()
	s.registry.release(s.sink)
	s.setState(StateClosed)
}

func (s *Session) discardMessages() {
	for range s.sink.messages {
	}
}

func (s *Session) recoverPanic(result *Result) {
	r := recover()
	if r == nil {
		return
	}
	s.log.WithError(ErrSessionPanic).WithField("panic", fmt.Sprint(r)).Error("Contest session crashed")
	s.finishRequested.Store(true)
	go s.discardMessages()
	s.registry.release(s.sink)
	s.setState(StateClosed)
	*result = Result{Outcome: OutcomeFailed, Participants: s.counter.Len()}

	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", fmt.Sprint(r)).Error("Observer crashed while reporting a failed contest")
		}
	}()
	s.reportFinished(*result)
}
