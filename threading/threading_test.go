package threading

import (
	"testing"

	"github.com/AdsanTheGreat/org-social-go/post"
)

func mkPost(id, source, replyTo, content string) *post.Post {
	p := post.New(id, content, true)
	p.SetSource(source)
	p.SetReplyTo(replyTo)
	return p
}

const (
	aliceSrc = "https://alice.example/social.org"
	bobSrc   = "https://bob.example/social.org"
)

func TestBuild_AttachesReplies(t *testing.T) {
	root := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "root")
	reply := mkPost("2025-05-01T11:00:00+00:00", bobSrc, root.FullID(), "reply")
	nested := mkPost("2025-05-01T12:00:00+00:00", aliceSrc, reply.FullID(), "nested")

	v := Build([]*post.Post{root, reply, nested})
	if len(v.Roots()) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(v.Roots()))
	}

	r := v.Roots()[0]
	if r.Post.Content() != "root" {
		t.Errorf("Expected root post at top, got %q", r.Post.Content())
	}
	if len(r.Replies) != 1 || r.Replies[0].Post.Content() != "reply" {
		t.Fatalf("Expected reply attached to root, got %+v", r.Replies)
	}
	if len(r.Replies[0].Replies) != 1 || r.Replies[0].Replies[0].Post.Content() != "nested" {
		t.Errorf("Expected nested reply attached, got %+v", r.Replies[0].Replies)
	}
	if r.Size() != 3 {
		t.Errorf("Expected subtree size 3, got %d", r.Size())
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	root := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "root")
	reply := mkPost("2025-05-01T11:00:00+00:00", bobSrc, root.FullID(), "reply")

	// Reply listed before its parent.
	v := Build([]*post.Post{reply, root})
	if len(v.Roots()) != 1 {
		t.Fatalf("Expected reply attached regardless of input order, got %d roots", len(v.Roots()))
	}
	if len(v.Roots()[0].Replies) != 1 {
		t.Errorf("Expected 1 reply under root, got %d", len(v.Roots()[0].Replies))
	}
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	orphan := mkPost("2025-05-01T11:00:00+00:00", bobSrc, "https://gone.example/social.org#2025-01-01T00:00:00+00:00", "orphan")
	other := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "standalone")

	v := Build([]*post.Post{orphan, other})
	if len(v.Roots()) != 2 {
		t.Fatalf("Expected orphan promoted to root, got %d roots", len(v.Roots()))
	}
}

func TestBuild_TimestampFallbackResolution(t *testing.T) {
	root := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "root")
	// Reply references the right timestamp under the wrong source URL.
	reply := mkPost("2025-05-01T11:00:00+00:00", bobSrc, "https://moved.example/social.org#2025-05-01T10:00:00+00:00", "reply")

	v := Build([]*post.Post{root, reply})
	if len(v.Roots()) != 1 {
		t.Fatalf("Expected fallback match on timestamp, got %d roots", len(v.Roots()))
	}
	if len(v.Roots()[0].Replies) != 1 {
		t.Errorf("Expected reply attached via fallback, got %d", len(v.Roots()[0].Replies))
	}
}

func TestBuild_RootsSortedByLatestActivity(t *testing.T) {
	oldRoot := mkPost("2025-05-01T08:00:00+00:00", aliceSrc, "", "old thread")
	freshReply := mkPost("2025-05-03T12:00:00+00:00", bobSrc, oldRoot.FullID(), "fresh reply")
	quietRoot := mkPost("2025-05-02T10:00:00+00:00", bobSrc, "", "quiet thread")

	v := Build([]*post.Post{oldRoot, freshReply, quietRoot})
	if len(v.Roots()) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(v.Roots()))
	}
	if v.Roots()[0].Post.Content() != "old thread" {
		t.Errorf("Expected thread with the freshest reply first, got %q", v.Roots()[0].Post.Content())
	}
}

func TestBuild_RepliesChronological(t *testing.T) {
	root := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "root")
	late := mkPost("2025-05-01T13:00:00+00:00", bobSrc, root.FullID(), "late")
	early := mkPost("2025-05-01T11:00:00+00:00", bobSrc, root.FullID(), "early")

	v := Build([]*post.Post{root, late, early})
	replies := v.Roots()[0].Replies
	if len(replies) != 2 {
		t.Fatalf("Expected 2 replies, got %d", len(replies))
	}
	if replies[0].Post.Content() != "early" || replies[1].Post.Content() != "late" {
		t.Errorf("Expected replies oldest first, got [%q %q]", replies[0].Post.Content(), replies[1].Post.Content())
	}
}

func TestInsert_AttachesToExistingThread(t *testing.T) {
	root := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "root")
	v := Build([]*post.Post{root})

	v.Insert(mkPost("2025-05-01T11:00:00+00:00", bobSrc, root.FullID(), "new reply"))
	if len(v.Roots()) != 1 {
		t.Fatalf("Expected reply merged into existing thread, got %d roots", len(v.Roots()))
	}
	if len(v.Roots()[0].Replies) != 1 {
		t.Errorf("Expected 1 reply after insert, got %d", len(v.Roots()[0].Replies))
	}
}

func TestInsert_AdoptsWaitingOrphans(t *testing.T) {
	parentID := aliceSrc + "#2025-05-01T10:00:00+00:00"
	orphan := mkPost("2025-05-01T11:00:00+00:00", bobSrc, parentID, "early reply")
	v := Build([]*post.Post{orphan})
	if len(v.Roots()) != 1 {
		t.Fatal("Expected orphan as provisional root")
	}

	// The parent arrives later.
	v.Insert(mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "parent"))
	if len(v.Roots()) != 1 {
		t.Fatalf("Expected orphan adopted, got %d roots", len(v.Roots()))
	}
	r := v.Roots()[0]
	if r.Post.Content() != "parent" {
		t.Errorf("Expected parent as root, got %q", r.Post.Content())
	}
	if len(r.Replies) != 1 || r.Replies[0].Post.Content() != "early reply" {
		t.Errorf("Expected orphan under parent, got %+v", r.Replies)
	}
}

func TestWalk_DepthsAndOrder(t *testing.T) {
	root := mkPost("2025-05-01T10:00:00+00:00", aliceSrc, "", "root")
	a := mkPost("2025-05-01T11:00:00+00:00", bobSrc, root.FullID(), "a")
	b := mkPost("2025-05-01T12:00:00+00:00", bobSrc, root.FullID(), "b")
	aa := mkPost("2025-05-01T11:30:00+00:00", aliceSrc, a.FullID(), "aa")

	v := Build([]*post.Post{root, a, b, aa})

	var visited []string
	var depths []int
	v.Roots()[0].Walk(func(n *Node, depth int) {
		visited = append(visited, n.Post.Content())
		depths = append(depths, depth)
	})

	wantOrder := []string{"root", "a", "aa", "b"}
	wantDepth := []int{0, 1, 2, 1}
	for i := range wantOrder {
		if visited[i] != wantOrder[i] {
			t.Errorf("Visit %d: expected %q, got %q", i, wantOrder[i], visited[i])
		}
		if depths[i] != wantDepth[i] {
			t.Errorf("Visit %d: expected depth %d, got %d", i, wantDepth[i], depths[i])
		}
	}
}
