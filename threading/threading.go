// Package threading arranges posts into conversation trees by following
// reply references.
package threading

import (
	"sort"
	"strings"
	"time"

	"github.com/AdsanTheGreat/org-social-go/post"
)

// Node is one post within a conversation tree. Replies are ordered
// oldest first so a thread reads top to bottom.
type Node struct {
	Post    *post.Post
	Replies []*Node
}

// Walk visits the node and its whole subtree depth first. depth starts
// at 0 for the node itself.
func (n *Node) Walk(visit func(n *Node, depth int)) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(f.node, f.depth)
		// Push in reverse so replies are visited in order.
		for i := len(f.node.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Replies[i], f.depth + 1})
		}
	}
}

// LatestActivity returns the newest timestamp in the subtree. Posts
// without a parseable timestamp contribute the zero time.
func (n *Node) LatestActivity() time.Time {
	var latest time.Time
	n.Walk(func(c *Node, _ int) {
		if t, ok := c.Post.Time(); ok && t.After(latest) {
			latest = t
		}
	})
	return latest
}

// Size returns the number of posts in the subtree.
func (n *Node) Size() int {
	count := 0
	n.Walk(func(*Node, int) { count++ })
	return count
}

// View is a set of conversation trees built from a flat post list.
// Roots are ordered by latest activity, most recently active first.
// Replies whose target is not present become roots of their own.
type View struct {
	roots  []*Node
	byID   map[string]*Node // full source#id references
	byFrag map[string]*Node // bare timestamp ids, first seen wins
}

// Build threads the given posts. The input order does not matter;
// replies arriving before their parents still attach.
func Build(posts []*post.Post) *View {
	v := &View{
		byID:   make(map[string]*Node),
		byFrag: make(map[string]*Node),
	}

	nodes := make([]*Node, 0, len(posts))
	for _, p := range posts {
		n := &Node{Post: p}
		nodes = append(nodes, n)
		v.index(n)
	}

	for _, n := range nodes {
		if parent := v.resolveParent(n); parent != nil {
			parent.Replies = append(parent.Replies, n)
		} else {
			v.roots = append(v.roots, n)
		}
	}

	v.sort()
	return v
}

// Roots returns the top-level conversations, most recently active first.
func (v *View) Roots() []*Node { return v.roots }

// Insert adds one post to an existing view, re-attaching any current
// roots that were waiting for it as their parent.
func (v *View) Insert(p *post.Post) {
	n := &Node{Post: p}
	v.index(n)

	// Adopt orphans that reply to the new post.
	kept := v.roots[:0]
	for _, r := range v.roots {
		if r.Post.ReplyTo() != "" && v.resolveParent(r) == n {
			n.Replies = append(n.Replies, r)
			continue
		}
		kept = append(kept, r)
	}
	v.roots = kept

	if parent := v.resolveParent(n); parent != nil {
		parent.Replies = append(parent.Replies, n)
	} else {
		v.roots = append(v.roots, n)
	}

	v.sort()
}

func (v *View) index(n *Node) {
	v.byID[n.Post.FullID()] = n
	if id := n.Post.ID(); id != "" {
		if _, ok := v.byFrag[id]; !ok {
			v.byFrag[id] = n
		}
	}
}

// resolveParent finds the node a reply targets. Exact source#id match
// first, then the bare timestamp fragment, for feeds that reference a
// post without its source URL or whose source moved.
func (v *View) resolveParent(n *Node) *Node {
	target := n.Post.ReplyTo()
	if target == "" {
		return nil
	}
	if parent, ok := v.byID[target]; ok && parent != n {
		return parent
	}

	frag := target
	if i := strings.LastIndex(target, "#"); i >= 0 {
		frag = target[i+1:]
	}
	if parent, ok := v.byFrag[frag]; ok && parent != n {
		return parent
	}
	return nil
}

// sort orders roots by latest subtree activity (newest first) and every
// reply list chronologically (oldest first).
func (v *View) sort() {
	var order func(nodes []*Node, newestFirst bool)
	order = func(nodes []*Node, newestFirst bool) {
		sort.SliceStable(nodes, func(i, j int) bool {
			var ti, tj time.Time
			if newestFirst {
				ti, tj = nodes[i].LatestActivity(), nodes[j].LatestActivity()
				return ti.After(tj)
			}
			ti, _ = nodes[i].Post.Time()
			tj, _ = nodes[j].Post.Time()
			return ti.Before(tj)
		})
		for _, n := range nodes {
			order(n.Replies, false)
		}
	}
	order(v.roots, true)
}
