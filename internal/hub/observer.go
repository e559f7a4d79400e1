// internal/hub/observer.go
package hub

import (
	"fmt"
	"time"

	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/message"
	"github.com/samber/lo"
)

func contestRecord(info contest.Info, status string) message.ContestRecord {
	return message.ContestRecord{
		ContestID:       info.ID,
		ChannelID:       string(info.ChannelID),
		DurationSeconds: int64(info.Duration / time.Second),
		Pinned:          info.Pinned,
		EndsAt:          info.EndsAt,
		Status:          status,
		Timestamp:       time.Now().Unix(),
	}
}

func standings(s []contest.Standing) []message.Standing {
	return lo.Map(s, func(item contest.Standing, _ int) message.Standing {
		return message.Standing{
			Rank:       item.Rank,
			AuthorID:   string(item.Author),
			Messages:   item.Count.Messages,
			Characters: item.Count.Characters,
		}
	})
}

// ContestStarted announces a new contest to observers and the journal.
func (h *Hub) ContestStarted(info contest.Info) {
	record := contestRecord(info, "started")
	h.BroadcastMessage(message.WSMessage{
		Version:   message.Version,
		Type:      message.TypeContestStarted,
		ContestID: info.ID,
		ChannelID: string(info.ChannelID),
		Data:      record,
	})
	h.publish(fmt.Sprintf(subjectStarted, info.ID), record)
	h.Logger.Infof("Contest %s started in channel %s", info.ID, info.ChannelID)
}

// MessageCounted journals a tallied message. Observers only see the final standings.
func (h *Hub) MessageCounted(info contest.Info, msg contest.Message) {
	h.publishAsync(fmt.Sprintf(subjectMessages, info.ID), message.CountedMessage{
		ContestID:  info.ID,
		ChannelID:  string(info.ChannelID),
		MessageID:  msg.ID,
		AuthorID:   string(msg.AuthorID),
		Characters: msg.Characters(),
		Timestamp:  time.Now().Unix(),
	})
}

// ContestFinished publishes the final standings.
func (h *Hub) ContestFinished(info contest.Info, result contest.Result) {
	record := message.ResultRecord{
		ContestID:    info.ID,
		ChannelID:    string(info.ChannelID),
		Outcome:      string(result.Outcome),
		Participants: result.Participants,
		ByMessages:   standings(result.ByMessages),
		ByCharacters: standings(result.ByCharacters),
		Timestamp:    time.Now().Unix(),
	}
	h.BroadcastMessage(message.WSMessage{
		Version:   message.Version,
		Type:      message.TypeContestFinished,
		ContestID: info.ID,
		ChannelID: string(info.ChannelID),
		Data:      record,
	})
	h.publish(fmt.Sprintf(subjectEnded, info.ID), contestRecord(info, string(result.Outcome)))
	h.publish(fmt.Sprintf(subjectResults, info.ID), record)
	h.Logger.Infof("Contest %s in channel %s ended (%s) with %d participant(s)",
		info.ID, info.ChannelID, result.Outcome, result.Participants)
}

// StartRaceLost is not interesting to observers.
func (h *Hub) StartRaceLost(contest.ChannelID) {}
