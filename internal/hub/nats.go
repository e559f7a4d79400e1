// internal/hub/nats.go
package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erilali/spamcontest/internal/logger"
	"github.com/erilali/spamcontest/internal/message"
	"github.com/nats-io/nats.go"
)

const (
	StreamContests = "CONTESTS"
	StreamMessages = "CONTEST_MESSAGES"
	StreamResults  = "CONTEST_RESULTS"

	subjectStarted  = "contests.started.%s"
	subjectEnded    = "contests.ended.%s"
	subjectMessages = "contests.messages.%s"
	subjectResults  = "contests.results.%s"
)

// ErrResultNotFound is returned by FetchResult for unknown or unfinished contests.
var ErrResultNotFound = errors.New("contest result not found")

// EnsureStreams creates the journal streams, or updates them when they already exist.
func EnsureStreams(js nats.JetStreamContext, retention time.Duration, log *logger.Logger) error {
	streams := []struct {
		Name     string
		Subjects []string
	}{
		{Name: StreamContests, Subjects: []string{"contests.started.*", "contests.ended.*"}},
		{Name: StreamMessages, Subjects: []string{"contests.messages.*"}},
		{Name: StreamResults, Subjects: []string{"contests.results.*"}},
	}
	for _, s := range streams {
		streamConfig := &nats.StreamConfig{
			Name:     s.Name,
			Subjects: s.Subjects,
			Storage:  nats.FileStorage,
			MaxAge:   retention,
		}
		if _, err := js.StreamInfo(streamConfig.Name); err != nil {
			if _, err := js.AddStream(streamConfig); err != nil {
				return fmt.Errorf("creating stream %s: %w", s.Name, err)
			}
			log.Infof("Created stream: %s", s.Name)
			continue
		}
		if _, err := js.UpdateStream(streamConfig); err != nil {
			return fmt.Errorf("updating stream %s: %w", s.Name, err)
		}
		log.Infof("Updated stream: %s", s.Name)
	}
	return nil
}

// FetchResult reads the final tally of a contest from the journal.
func FetchResult(js nats.JetStreamContext, contestID string) (message.ResultRecord, error) {
	var record message.ResultRecord
	raw, err := js.GetLastMsg(StreamResults, fmt.Sprintf(subjectResults, contestID))
	if err != nil {
		if errors.Is(err, nats.ErrMsgNotFound) {
			return record, ErrResultNotFound
		}
		return record, fmt.Errorf("fetching result of contest %s: %w", contestID, err)
	}
	if err := json.Unmarshal(raw.Data, &record); err != nil {
		return record, fmt.Errorf("decoding result of contest %s: %w", contestID, err)
	}
	return record, nil
}

func (h *Hub) journaling() bool {
	return h.NatsConn != nil && h.Js != nil
}

// publish stores v on subject, waiting for the stream acknowledgement.
func (h *Hub) publish(subject string, v interface{}) {
	if !h.journaling() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.Logger.Errorf("Failed to marshal journal record for %s: %v", subject, err)
		return
	}
	if _, err := h.Js.Publish(subject, data); err != nil {
		h.Logger.Errorf("Failed to publish %s to NATS: %v", subject, err)
	}
}

// publishAsync is publish without waiting, for the per-message hot path.
func (h *Hub) publishAsync(subject string, v interface{}) {
	if !h.journaling() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.Logger.Errorf("Failed to marshal journal record for %s: %v", subject, err)
		return
	}
	if _, err := h.Js.PublishAsync(subject, data); err != nil {
		h.Logger.Errorf("Failed to publish %s to NATS: %v", subject, err)
	}
}
