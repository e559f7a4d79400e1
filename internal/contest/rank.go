package contest

import (
	"cmp"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// SpamCount is the tally of one participant.
type SpamCount struct {
	Messages   int `json:"messages"`
	Characters int `json:"characters"`
}

// Counter accumulates per-author tallies of one contest. It is not safe for concurrent use; a
// session owns its counter exclusively.
type Counter struct {
	counts map[UserID]*SpamCount
	order  []UserID // first appearance, keeps tie order deterministic
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[UserID]*SpamCount)}
}

// Record counts one message of author with chars characters.
func (c *Counter) Record(author UserID, chars int) {
	count, ok := c.counts[author]
	if !ok {
		c.counts[author] = &SpamCount{Messages: 1, Characters: chars}
		c.order = append(c.order, author)
		return
	}
	count.Messages++
	count.Characters += chars
}

// Len is the number of distinct participants.
func (c *Counter) Len() int {
	return len(c.order)
}

// Count returns the tally of author.
func (c *Counter) Count(author UserID) (SpamCount, bool) {
	count, ok := c.counts[author]
	if !ok {
		return SpamCount{}, false
	}
	return *count, true
}

// Standing is one line of a ranking.
type Standing struct {
	Rank   int       `json:"rank"`
	Author UserID    `json:"author"`
	Count  SpamCount `json:"count"`
}

// rank orders participants by key ascending and assigns competition ranks: equal keys share the
// rank of the first member of their tier and the next tier starts at that rank plus the tier size.
func rank[K cmp.Ordered](c *Counter, key func(SpamCount) K) []Standing {
	standings := lo.Map(c.order, func(author UserID, _ int) Standing {
		return Standing{Author: author, Count: *c.counts[author]}
	})
	sort.SliceStable(standings, func(i, j int) bool {
		return key(standings[i].Count) < key(standings[j].Count)
	})
	for i := range standings {
		if i > 0 && key(standings[i].Count) == key(standings[i-1].Count) {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}

// RankingBy renders the ranking of c ordered by key ascending, one line per participant.
// Pass a negated key to put the highest value first.
func RankingBy[K cmp.Ordered](c *Counter, key func(SpamCount) K, display func(SpamCount) string) string {
	var sb strings.Builder
	for _, s := range rank(c, key) {
		fmt.Fprintf(&sb, "**%d.:** <@%s> (%s)\n", s.Rank, s.Author, display(s.Count))
	}
	return sb.String()
}

// Metric selects what a ranking is based on. Higher values rank first.
type Metric int

const (
	ByMessages Metric = iota
	ByCharacters
)

func (m Metric) value(c SpamCount) int {
	if m == ByCharacters {
		return c.Characters
	}
	return c.Messages
}

func (m Metric) String() string {
	if m == ByCharacters {
		return "characters"
	}
	return "messages"
}

// Ranking renders the ranking of c for metric, best first.
func (c *Counter) Ranking(m Metric) string {
	return RankingBy(c,
		func(sc SpamCount) int { return -m.value(sc) },
		func(sc SpamCount) string { return strconv.Itoa(m.value(sc)) },
	)
}

// Standings returns the ranking of c for metric, best first.
func (c *Counter) Standings(m Metric) []Standing {
	return rank(c, func(sc SpamCount) int { return -m.value(sc) })
}
