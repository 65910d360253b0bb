// Package notifications derives a notification list for one participant
// from an aggregated feed: who mentioned them, who replied to them.
package notifications

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AdsanTheGreat/org-social-go/feed"
	"github.com/AdsanTheGreat/org-social-go/post"
	"github.com/AdsanTheGreat/org-social-go/tokenizer"
)

// Type classifies what a notification is about. A single post produces
// at most one notification; a reply that also mentions collapses into
// MentionAndReply.
type Type string

const (
	Mention         Type = "mention"
	Reply           Type = "reply"
	MentionAndReply Type = "mention_and_reply"
)

// Notification is one event addressed to the local participant.
type Notification struct {
	ID        string
	Type      Type
	Post      *post.Post
	From      string
	CreatedAt time.Time
}

// Target identifies the participant notifications are built for: the
// URL their document is served from and their nick.
type Target struct {
	Source string
	Nick   string
}

// Build scans the feed for posts addressed to the target, newest first.
// The target's own posts never notify.
func Build(f *feed.Feed, target Target) []Notification {
	var out []Notification

	for p := range f.Chronological(feed.NewestFirst) {
		if p.Source() == target.Source {
			continue
		}

		mentioned := mentions(p, target)
		replied := repliesTo(f, p, target)

		var typ Type
		switch {
		case mentioned && replied:
			typ = MentionAndReply
		case replied:
			typ = Reply
		case mentioned:
			typ = Mention
		default:
			continue
		}

		created, _ := p.Time()
		out = append(out, Notification{
			ID:        uuid.NewString(),
			Type:      typ,
			Post:      p,
			From:      p.Author(),
			CreatedAt: created,
		})
	}

	return out
}

// mentions reports whether p mentions the target through a mention
// token pointing at their document. For posts that are not replies a
// literal @nick in plain text counts too, as a fallback for clients
// that never tokenize mentions.
func mentions(p *post.Post, target Target) bool {
	for _, tok := range p.Tokens() {
		switch tok.Kind {
		case tokenizer.Mention:
			if tok.URL == target.Source {
				return true
			}
			if target.Nick != "" && tok.Username == target.Nick {
				return true
			}
		case tokenizer.PlainText:
			if p.ReplyTo() != "" {
				continue
			}
			if target.Nick != "" && containsWord(tok.Text, "@"+target.Nick) {
				return true
			}
		}
	}
	return false
}

// repliesTo reports whether p replies to one of the target's posts. The
// reference is resolved through the feed so bare timestamp ids count,
// the same forms threading and poll tallying accept. An unresolvable
// reference still matches on the target's source prefix, for replies to
// posts older than what the feed holds.
func repliesTo(f *feed.Feed, p *post.Post, target Target) bool {
	ref := p.ReplyTo()
	if target.Source == "" || ref == "" {
		return false
	}

	if parent, ok := f.Lookup(ref); ok {
		return parent.Source() == target.Source
	}
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		if parent, ok := f.Lookup(ref[i+1:]); ok {
			return parent.Source() == target.Source
		}
	}
	return strings.HasPrefix(ref, target.Source+"#")
}

// containsWord looks for needle in s as a whole word, so @ada does not
// match inside @adapter.
func containsWord(s, needle string) bool {
	for i := 0; i+len(needle) <= len(s); i++ {
		j := strings.Index(s[i:], needle)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(needle)
		if end == len(s) || !isNickChar(s[end]) {
			return true
		}
		i = start
	}
	return false
}

func isNickChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
