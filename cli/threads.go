package cli

import (
	"github.com/AdsanTheGreat/org-social-go/threading"
)

const defaultThreadsLimit = 10

// handleThreads shows conversations grouped by thread, most recently
// active first.
func (h *Handler) handleThreads(args []string) error {
	limit, err := parseLimit(args, defaultThreadsLimit)
	if err != nil {
		h.output.Error(err)
		return err
	}

	view := threading.Build(h.feed.Posts())
	roots := view.Roots()
	if len(roots) > limit {
		roots = roots[:limit]
	}

	if len(roots) == 0 {
		if h.output.IsJSON() {
			h.output.JSON(ThreadsResponse{
				Threads: [][]ThreadPost{},
				Count:   0,
			})
		} else {
			h.output.Println("No conversations.")
		}
		return nil
	}

	if h.output.IsJSON() {
		threads := make([][]ThreadPost, 0, len(roots))
		for _, root := range roots {
			var thread []ThreadPost
			root.Walk(func(n *threading.Node, depth int) {
				thread = append(thread, ThreadPost{
					TimelinePost: h.timelinePost(n.Post),
					Depth:        depth,
				})
			})
			threads = append(threads, thread)
		}
		h.output.JSON(ThreadsResponse{
			Threads: threads,
			Count:   len(threads),
		})
	} else {
		for _, root := range roots {
			root.Walk(func(n *threading.Node, depth int) {
				h.printPost(n.Post, depth)
			})
			h.output.Println("---")
		}
	}

	return nil
}
