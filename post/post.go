// Package post represents a single timestamped org-social entry, its
// parsed tokens and blocks, and its classification.
package post

import (
	"strings"
	"time"
	"unicode"

	"github.com/AdsanTheGreat/org-social-go/blocks"
	"github.com/AdsanTheGreat/org-social-go/tokenizer"
	"github.com/AdsanTheGreat/org-social-go/util"
)

// Type classifies a post by the combination of its metadata fields.
type Type int

const (
	Regular Type = iota
	Reply
	Reaction
	Poll
	PollVote
	SimplePollVote
)

func (t Type) String() string {
	switch t {
	case Regular:
		return "regular"
	case Reply:
		return "reply"
	case Reaction:
		return "reaction"
	case Poll:
		return "poll"
	case PollVote:
		return "poll_vote"
	case SimplePollVote:
		return "simple_poll_vote"
	}
	return "unknown"
}

// Post is one entry of an org-social document. The id doubles as the
// post's timestamp. Identity is the id alone; content changes only
// through SetContent, which re-derives tokens and blocks when the post
// was constructed with autoParse.
type Post struct {
	id         string
	lang       string
	tags       []string
	client     string
	replyTo    string
	pollEnd    string
	pollOption string
	mood       string
	content    string
	source     string
	author     string

	autoParse bool
	tokens    []tokenizer.Token
	blocks    []blocks.Block
}

// New constructs a post. autoParse controls whether tokens and blocks are
// derived immediately and kept up to date by SetContent; callers that
// only serialize posts can pass false and call ParseContent themselves.
// Library entry points default to autoParse=true.
func New(id, content string, autoParse bool) *Post {
	p := &Post{id: id, content: content, autoParse: autoParse}
	if autoParse {
		p.ParseContent()
	}
	return p
}

// FromSection parses a post from its "**" section lines: a :PROPERTIES:
// drawer followed by content. Content is always parsed here, since this
// is the document-ingestion path.
func FromSection(lines []string) *Post {
	p := &Post{autoParse: true}

	inProperties := false
	propertiesEnded := false
	var content []string

	for _, line := range lines {
		// Some clients put the drawer opener on the heading line itself.
		if strings.HasPrefix(line, "** :PROPERTIES:") || strings.HasPrefix(line, ":PROPERTIES:") {
			inProperties = true
			continue
		}
		if strings.HasPrefix(line, ":END:") {
			if inProperties {
				inProperties = false
				propertiesEnded = true
			}
			continue
		}
		if strings.TrimSpace(line) == "**" {
			continue
		}

		if inProperties && strings.HasPrefix(line, ":") {
			p.setProperty(line)
			continue
		}

		if propertiesEnded && (len(content) > 0 || line != "") {
			content = append(content, line)
		}
	}

	// Trailing blank lines are section padding, not content.
	for len(content) > 0 && strings.TrimSpace(content[len(content)-1]) == "" {
		content = content[:len(content)-1]
	}

	p.content = strings.Join(content, "\n")
	p.ParseContent()
	return p
}

func (p *Post) setProperty(line string) {
	name, value, found := strings.Cut(line, ": ")
	if !found {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		// Empty property values are absent, not empty strings.
		return
	}

	switch strings.TrimSpace(name) {
	case ":ID":
		p.id = value
	case ":LANG":
		p.lang = value
	case ":TAGS":
		p.tags = append(p.tags, strings.Fields(value)...)
	case ":CLIENT":
		p.client = value
	case ":REPLY_TO":
		p.replyTo = value
	case ":POLL_END":
		p.pollEnd = value
	case ":POLL_OPTION":
		p.pollOption = value
	case ":MOOD":
		p.mood = value
	}
}

// ParseContent derives tokens and blocks from the current content.
func (p *Post) ParseContent() {
	p.tokens = tokenizer.Tokenize(p.content)
	p.blocks = blocks.Parse(p.content, p.pollEnd)
}

func (p *Post) ID() string                 { return p.id }
func (p *Post) Lang() string               { return p.lang }
func (p *Post) Tags() []string             { return p.tags }
func (p *Post) Client() string             { return p.client }
func (p *Post) ReplyTo() string            { return p.replyTo }
func (p *Post) PollEnd() string            { return p.pollEnd }
func (p *Post) PollOption() string         { return p.pollOption }
func (p *Post) Mood() string               { return p.mood }
func (p *Post) Content() string            { return p.content }
func (p *Post) Source() string             { return p.source }
func (p *Post) Author() string             { return p.author }
func (p *Post) Tokens() []tokenizer.Token  { return p.tokens }
func (p *Post) Blocks() []blocks.Block     { return p.blocks }

func (p *Post) SetAuthor(author string)   { p.author = author }
func (p *Post) SetSource(source string)   { p.source = source }
func (p *Post) SetLang(lang string)       { p.lang = lang }
func (p *Post) SetTags(tags []string)     { p.tags = tags }
func (p *Post) SetClient(client string)   { p.client = client }
func (p *Post) SetMood(mood string)       { p.mood = mood }
func (p *Post) SetReplyTo(replyTo string) { p.replyTo = replyTo }

func (p *Post) SetPollEnd(pollEnd string) {
	p.pollEnd = pollEnd
	if p.autoParse {
		p.ParseContent()
	}
}

func (p *Post) SetPollOption(option string) { p.pollOption = option }

// SetContent replaces the post content. With autoParse the tokens and
// blocks are re-derived; without it they are cleared until ParseContent
// is called.
func (p *Post) SetContent(content string) {
	p.content = content
	if p.autoParse {
		p.ParseContent()
	} else {
		p.tokens = nil
		p.blocks = nil
	}
}

// Time returns the post's timestamp, derived from its id.
func (p *Post) Time() (time.Time, bool) {
	if p.id == "" {
		return time.Time{}, false
	}
	t, err := util.ParseTimestamp(p.id)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FullID returns source#id when the post has a source, the bare id
// otherwise. Replies across documents reference posts in this form.
func (p *Post) FullID() string {
	if p.source != "" {
		return p.source + "#" + p.id
	}
	return p.id
}

// Summary returns the content truncated to n runes, never cutting inside
// a multi-byte character.
func (p *Post) Summary(n int) string {
	return util.TruncateRunes(p.content, n)
}

// Type classifies the post from its field combination.
func (p *Post) Type() Type {
	switch {
	case p.pollEnd != "":
		return Poll
	case p.replyTo != "" && p.pollOption != "" && strings.TrimSpace(p.content) == "":
		return SimplePollVote
	case p.replyTo != "" && p.pollOption != "":
		return PollVote
	case p.replyTo != "" && isReactionContent(p.content):
		return Reaction
	case p.replyTo != "":
		return Reply
	}
	return Regular
}

// isReactionContent reports whether content is a bare emoji-style
// reaction: at most two runes, all symbols (allowing the variation
// selector that often trails emoji).
func isReactionContent(content string) bool {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) == 0 || len(runes) > 2 {
		return false
	}
	for _, r := range runes {
		if r == '️' || r >= 0x1F000 || unicode.IsSymbol(r) {
			continue
		}
		return false
	}
	return true
}

// OrgSocial serializes the post back to its org-social section form.
func (p *Post) OrgSocial() string {
	lines := []string{"**", ":PROPERTIES:"}

	if p.id != "" {
		lines = append(lines, ":ID: "+p.id)
	}
	if p.lang != "" {
		lines = append(lines, ":LANG: "+p.lang)
	}
	if len(p.tags) > 0 {
		lines = append(lines, ":TAGS: "+strings.Join(p.tags, " "))
	}
	if p.client != "" {
		lines = append(lines, ":CLIENT: "+p.client)
	}
	if p.replyTo != "" {
		lines = append(lines, ":REPLY_TO: "+p.replyTo)
	}
	if p.pollEnd != "" {
		lines = append(lines, ":POLL_END: "+p.pollEnd)
	}
	if p.pollOption != "" {
		lines = append(lines, ":POLL_OPTION: "+p.pollOption)
	}
	if p.mood != "" {
		lines = append(lines, ":MOOD: "+p.mood)
	}

	lines = append(lines, ":END:", "", p.content)
	return strings.Join(lines, "\n")
}

// NewReply builds a reply to the given target id, timestamped now.
func NewReply(replyTo, content string) *Post {
	p := New(util.CurrentTimestamp(), content, true)
	p.SetReplyTo(replyTo)
	p.SetClient(util.Name)
	return p
}

// NewVote builds a poll-vote reply for one option of the given poll post.
func NewVote(pollPostID, option, content string) *Post {
	p := NewReply(pollPostID, content)
	p.SetPollOption(option)
	return p
}
