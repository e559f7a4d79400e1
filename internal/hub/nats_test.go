package hub

import (
	"testing"
	"time"

	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/logger"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func runJetStream(t *testing.T) (*nats.Conn, nats.JetStreamContext) {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	srv := natsserver.RunServer(&opts)
	t.Cleanup(srv.Shutdown)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	js, err := nc.JetStream()
	require.NoError(t, err)
	require.NoError(t, EnsureStreams(js, time.Hour, logger.Nop()))
	return nc, js
}

func TestEnsureStreams_Idempotent(t *testing.T) {
	req := require.New(t)
	_, js := runJetStream(t)

	// second call updates instead of failing
	req.NoError(EnsureStreams(js, 2*time.Hour, logger.Nop()))
	info, err := js.StreamInfo(StreamResults)
	req.NoError(err)
	req.Equal(2*time.Hour, info.Config.MaxAge)
	req.Equal([]string{"contests.results.*"}, info.Config.Subjects)
}

func TestHub_JournalsContest(t *testing.T) {
	req := require.New(t)
	nc, js := runJetStream(t)
	h := NewHub(nc, js, logger.Nop(), nil)

	info := contest.Info{ID: "4f1c", ChannelID: "c1", Duration: 20 * time.Second}
	h.ContestStarted(info)
	for i := 0; i < 3; i++ {
		h.MessageCounted(info, contest.Message{ID: "m", ChannelID: "c1", AuthorID: "a", Content: "hello"})
	}
	select {
	case <-js.PublishAsyncComplete():
	case <-time.After(2 * time.Second):
		req.Fail("async publishes not acknowledged")
	}
	h.ContestFinished(info, contest.Result{
		Outcome:      contest.OutcomeResults,
		Participants: 1,
		ByMessages:   []contest.Standing{{Rank: 1, Author: "a", Count: contest.SpamCount{Messages: 3, Characters: 15}}},
		ByCharacters: []contest.Standing{{Rank: 1, Author: "a", Count: contest.SpamCount{Messages: 3, Characters: 15}}},
	})

	contests, err := js.StreamInfo(StreamContests)
	req.NoError(err)
	req.EqualValues(2, contests.State.Msgs)
	messages, err := js.StreamInfo(StreamMessages)
	req.NoError(err)
	req.EqualValues(3, messages.State.Msgs)

	record, err := FetchResult(js, "4f1c")
	req.NoError(err)
	req.Equal("results", record.Outcome)
	req.Equal("c1", record.ChannelID)
	req.Len(record.ByMessages, 1)
	req.Equal(15, record.ByMessages[0].Characters)
}

func TestFetchResult_Unknown(t *testing.T) {
	_, js := runJetStream(t)
	_, err := FetchResult(js, "nope")
	require.ErrorIs(t, err, ErrResultNotFound)
}
