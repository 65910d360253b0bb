package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/AdsanTheGreat/org-social-go/feed"
	"github.com/AdsanTheGreat/org-social-go/notifications"
	"github.com/AdsanTheGreat/org-social-go/parser"
	"github.com/AdsanTheGreat/org-social-go/util"
)

const (
	selfSrc = "https://alice.example/social.org"
	bobSrc  = "https://bob.example/social.org"
)

const selfDoc = `#+TITLE: Feed
#+NICK: alice

* Posts

**
:PROPERTIES:
:ID: 2025-05-01T08:00:00+00:00
:END:

my own post
`

const remoteDoc = `#+TITLE: Feed
#+NICK: bob

* Posts

**
:PROPERTIES:
:ID: 2025-05-01T12:00:00+00:00
:REPLY_TO: https://alice.example/social.org#2025-05-01T08:00:00+00:00
:END:

Agreed, [[org-social:https://alice.example/social.org][alice]]!

**
:PROPERTIES:
:ID: 2025-05-02T12:00:00+00:00
:POLL_END: 2030-01-01T12:00:00+00:00
:END:

Favorite color?
- [ ] Red
- [ ] Blue
`

// testSession is an in-memory terminal.
type testSession struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (s *testSession) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *testSession) Write(p []byte) (int, error) { return s.out.Write(p) }

// memStore keeps the local document in memory.
type memStore struct {
	doc   *parser.Document
	saved int
}

func (m *memStore) Load() (*parser.Document, error) { return m.doc, nil }
func (m *memStore) Save(doc *parser.Document) error {
	m.doc = doc
	m.saved++
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *testSession, *memStore) {
	t.Helper()

	self, _ := parser.ParseWithSource(selfDoc, selfSrc)
	remote, _ := parser.ParseWithSource(remoteDoc, bobSrc)
	f, err := feed.Combine(self, remote)
	if err != nil {
		t.Fatal(err)
	}

	session := &testSession{in: &bytes.Buffer{}, out: &bytes.Buffer{}}
	store := &memStore{doc: self}
	conf := &util.AppConfig{}
	h := NewHandler(session, store, f, notifications.Target{Source: selfSrc, Nick: "alice"}, conf)
	return h, session, store
}

func TestExecute_UnknownCommand(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"bogus"}); err == nil {
		t.Error("Expected error for unknown command")
	}
	if !strings.Contains(session.out.String(), "unknown command") {
		t.Errorf("Expected error message in output, got %q", session.out.String())
	}
}

func TestExecute_HelpOnNoArgs(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(session.out.String(), "Commands:") {
		t.Errorf("Expected help text, got %q", session.out.String())
	}
}

func TestTimeline_Text(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"timeline"}); err != nil {
		t.Fatal(err)
	}

	out := session.out.String()
	if !strings.Contains(out, "my own post") {
		t.Errorf("Expected own post in timeline, got %q", out)
	}
	if !strings.Contains(out, "bob") {
		t.Errorf("Expected author names in timeline, got %q", out)
	}
	if strings.Index(out, "Favorite color?") > strings.Index(out, "my own post") {
		t.Error("Expected newest post first")
	}
}

func TestTimeline_JSON(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"timeline", "--json"}); err != nil {
		t.Fatal(err)
	}

	var resp TimelineResponse
	if err := json.Unmarshal(session.out.Bytes(), &resp); err != nil {
		t.Fatalf("Expected valid JSON, got %v: %q", err, session.out.String())
	}
	if resp.Count != 3 {
		t.Errorf("Expected 3 posts, got %d", resp.Count)
	}
	if resp.Posts[0].Type != "poll" {
		t.Errorf("Expected newest post to be the poll, got %q", resp.Posts[0].Type)
	}
}

func TestTimeline_LimitFlag(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"timeline", "-n", "1", "--json"}); err != nil {
		t.Fatal(err)
	}

	var resp TimelineResponse
	if err := json.Unmarshal(session.out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected limit applied, got %d posts", resp.Count)
	}

	h2, _, _ := newTestHandler(t)
	if err := h2.Execute([]string{"timeline", "-n", "zero"}); err == nil {
		t.Error("Expected error for invalid -n value")
	}
}

func TestThreads_JSON(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"threads", "--json"}); err != nil {
		t.Fatal(err)
	}

	var resp ThreadsResponse
	if err := json.Unmarshal(session.out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Fatalf("Expected 2 threads, got %d", resp.Count)
	}

	var replyThread []ThreadPost
	for _, thread := range resp.Threads {
		if len(thread) == 2 {
			replyThread = thread
		}
	}
	if replyThread == nil {
		t.Fatal("Expected one thread with a reply")
	}
	if replyThread[0].Depth != 0 || replyThread[1].Depth != 1 {
		t.Errorf("Expected depths [0 1], got [%d %d]", replyThread[0].Depth, replyThread[1].Depth)
	}
}

func TestNotifications_JSON(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"notifications", "-j"}); err != nil {
		t.Fatal(err)
	}

	var resp NotificationsResponse
	if err := json.Unmarshal(session.out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Fatalf("Expected 1 notification, got %d", resp.Count)
	}
	if resp.Notifications[0].Type != "mention_and_reply" {
		t.Errorf("Expected mention_and_reply, got %q", resp.Notifications[0].Type)
	}
	if resp.Notifications[0].Actor != "bob" {
		t.Errorf("Expected actor bob, got %q", resp.Notifications[0].Actor)
	}
}

func TestPolls_JSON(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"polls", "--json"}); err != nil {
		t.Fatal(err)
	}

	var resp PollsResponse
	if err := json.Unmarshal(session.out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Fatalf("Expected 1 poll, got %d", resp.Count)
	}
	p := resp.Polls[0]
	if p.Status != "active" {
		t.Errorf("Expected active poll, got %q", p.Status)
	}
	if len(p.Options) != 2 || p.Options[0].Label != "Red" {
		t.Errorf("Expected options [Red Blue], got %+v", p.Options)
	}
}

func TestPost_AppendsToStore(t *testing.T) {
	h, session, store := newTestHandler(t)
	if err := h.Execute([]string{"post", "hello", "world"}); err != nil {
		t.Fatal(err)
	}

	if store.saved != 1 {
		t.Fatalf("Expected one save, got %d", store.saved)
	}
	last := store.doc.Posts[len(store.doc.Posts)-1]
	if last.Content() != "hello world" {
		t.Errorf("Expected message joined, got %q", last.Content())
	}
	if last.Author() != "alice" {
		t.Errorf("Expected author stamped, got %q", last.Author())
	}
	if !strings.Contains(session.out.String(), "Posted") {
		t.Errorf("Expected confirmation, got %q", session.out.String())
	}
}

func TestPost_FromStdin(t *testing.T) {
	h, session, store := newTestHandler(t)
	session.in.WriteString("piped message\n")

	if err := h.Execute([]string{"post", "-"}); err != nil {
		t.Fatal(err)
	}
	last := store.doc.Posts[len(store.doc.Posts)-1]
	if last.Content() != "piped message" {
		t.Errorf("Expected stdin message, got %q", last.Content())
	}
}

func TestPost_EmptyMessage(t *testing.T) {
	h, _, store := newTestHandler(t)
	if err := h.Execute([]string{"post", "  "}); err == nil {
		t.Error("Expected error for empty message")
	}
	if store.saved != 0 {
		t.Error("Expected nothing saved for empty message")
	}
}

func TestReply(t *testing.T) {
	h, _, store := newTestHandler(t)
	ref := bobSrc + "#2025-05-01T12:00:00+00:00"
	if err := h.Execute([]string{"reply", ref, "good", "point"}); err != nil {
		t.Fatal(err)
	}

	last := store.doc.Posts[len(store.doc.Posts)-1]
	if last.ReplyTo() != ref {
		t.Errorf("Expected reply target %q, got %q", ref, last.ReplyTo())
	}
	if last.Content() != "good point" {
		t.Errorf("Expected reply content, got %q", last.Content())
	}
}

func TestVote(t *testing.T) {
	h, _, store := newTestHandler(t)
	pollRef := bobSrc + "#2025-05-02T12:00:00+00:00"

	if err := h.Execute([]string{"vote", pollRef, "Red"}); err != nil {
		t.Fatal(err)
	}
	last := store.doc.Posts[len(store.doc.Posts)-1]
	if last.PollOption() != "Red" {
		t.Errorf("Expected vote option recorded, got %q", last.PollOption())
	}

	// Voting on a non-poll is rejected.
	h2, _, store2 := newTestHandler(t)
	if err := h2.Execute([]string{"vote", bobSrc + "#2025-05-01T12:00:00+00:00", "Red"}); err == nil {
		t.Error("Expected error voting on a non-poll")
	}
	if store2.saved != 0 {
		t.Error("Expected nothing saved for rejected vote")
	}
}

func TestRSS(t *testing.T) {
	h, session, _ := newTestHandler(t)
	if err := h.Execute([]string{"rss"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(session.out.String(), "<rss") {
		t.Errorf("Expected RSS document, got %q", session.out.String())
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{10, "just now"},
		{90, "1 minute ago"},
		{600, "10 minutes ago"},
		{7200, "2 hours ago"},
		{172800, "2 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatTimeAgo(time.Now().Add(-time.Duration(tt.seconds) * time.Second))
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
