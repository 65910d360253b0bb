// Package poll aggregates poll posts and their vote replies into tallied
// results.
package poll

import (
	"errors"
	"fmt"
	"time"

	"github.com/AdsanTheGreat/org-social-go/blocks"
	"github.com/AdsanTheGreat/org-social-go/post"
	"github.com/AdsanTheGreat/org-social-go/util"
)

// Status is the lifecycle state of a poll.
type Status int

const (
	Active Status = iota
	Ended
)

func (s Status) String() string {
	if s == Ended {
		return "ended"
	}
	return "active"
}

var (
	// ErrNotAPoll is returned for posts without a poll deadline or
	// without any option lines.
	ErrNotAPoll = errors.New("post is not a poll")
	// ErrBadDeadline is returned when the poll deadline cannot be parsed.
	ErrBadDeadline = errors.New("unparseable poll deadline")
)

// Option is one poll choice with its tallied votes.
type Option struct {
	Label string
	Votes int
}

// Poll is a tallied poll: the owning post, its options and deadline, and
// the total number of counted votes.
type Poll struct {
	Post       *post.Post
	Options    []Option
	End        time.Time
	TotalVotes int
}

// StatusAt reports whether the poll is still open at the given time. The
// deadline itself counts as ended.
func (p *Poll) StatusAt(now time.Time) Status {
	if p.End.After(now) {
		return Active
	}
	return Ended
}

// Percentage returns the share of total votes for option i, 0 when
// nobody voted.
func (p *Poll) Percentage(i int) float64 {
	if p.TotalVotes == 0 {
		return 0
	}
	return float64(p.Options[i].Votes) / float64(p.TotalVotes) * 100
}

// voter identifies one participant for dedup purposes. Votes from the
// same nick on the same feed count once.
type voter struct {
	author string
	source string
}

// Extract tallies a poll post against the candidate posts, counting vote
// replies whose option matches one of the poll's options. Each voter's
// earliest vote counts; later votes from the same voter are ignored.
func Extract(pollPost *post.Post, candidates []*post.Post) (*Poll, error) {
	if pollPost.PollEnd() == "" {
		return nil, ErrNotAPoll
	}

	var pollBlock *blocks.Block
	for i, b := range pollPost.Blocks() {
		if b.Kind == blocks.Poll {
			pollBlock = &pollPost.Blocks()[i]
			break
		}
	}
	if pollBlock == nil || len(pollBlock.Options) == 0 {
		return nil, ErrNotAPoll
	}

	end, err := util.ParseTimestamp(pollPost.PollEnd())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDeadline, err)
	}

	p := &Poll{Post: pollPost, End: end}
	index := make(map[string]int, len(pollBlock.Options))
	for i, label := range pollBlock.Options {
		p.Options = append(p.Options, Option{Label: label})
		index[label] = i
	}

	// Earliest vote per voter wins.
	chosen := make(map[voter]*post.Post)
	for _, c := range candidates {
		if !isVoteFor(c, pollPost) {
			continue
		}
		if _, ok := index[c.PollOption()]; !ok {
			continue
		}
		v := voter{author: c.Author(), source: c.Source()}
		prev, ok := chosen[v]
		if !ok || earlier(c, prev) {
			chosen[v] = c
		}
	}

	for _, vote := range chosen {
		p.Options[index[vote.PollOption()]].Votes++
		p.TotalVotes++
	}

	return p, nil
}

// ExtractAll tallies every poll found in posts against the same set.
func ExtractAll(posts []*post.Post) []*Poll {
	var out []*Poll
	for _, p := range posts {
		if p.Type() != post.Poll {
			continue
		}
		tallied, err := Extract(p, posts)
		if err != nil {
			continue
		}
		out = append(out, tallied)
	}
	return out
}

// isVoteFor reports whether candidate is a vote reply targeting the poll
// post, by full source#id reference or bare id.
func isVoteFor(candidate, pollPost *post.Post) bool {
	if candidate.PollOption() == "" || candidate.ReplyTo() == "" {
		return false
	}
	return candidate.ReplyTo() == pollPost.FullID() || candidate.ReplyTo() == pollPost.ID()
}

// earlier reports whether a was posted before b, falling back to id
// ordering when either timestamp is unparseable.
func earlier(a, b *post.Post) bool {
	at, aok := a.Time()
	bt, bok := b.Time()
	if aok && bok {
		return at.Before(bt)
	}
	return a.ID() < b.ID()
}
