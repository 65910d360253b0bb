package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdsanTheGreat/org-social-go/blocks"
	"github.com/AdsanTheGreat/org-social-go/feed"
	"github.com/AdsanTheGreat/org-social-go/post"
)

const defaultTimelineLimit = 20

// parseLimit reads an optional "-n <count>" flag.
func parseLimit(args []string, def int) (int, error) {
	limit := def
	for i := 0; i < len(args); i++ {
		if args[i] == "-n" && i+1 < len(args) {
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return 0, fmt.Errorf("invalid value for -n: %s", args[i+1])
			}
			if n < 1 {
				return 0, fmt.Errorf("-n must be at least 1")
			}
			limit = n
			i++ // Skip the next argument (the number)
		}
	}
	return limit, nil
}

// handleTimeline shows the combined timeline, newest first.
func (h *Handler) handleTimeline(args []string) error {
	limit, err := parseLimit(args, defaultTimelineLimit)
	if err != nil {
		h.output.Error(err)
		return err
	}

	var posts []*post.Post
	for p := range h.feed.Chronological(feed.NewestFirst) {
		if len(posts) >= limit {
			break
		}
		posts = append(posts, p)
	}

	if len(posts) == 0 {
		if h.output.IsJSON() {
			h.output.JSON(TimelineResponse{
				Posts: []TimelinePost{},
				Count: 0,
			})
		} else {
			h.output.Println("No posts in timeline.")
		}
		return nil
	}

	if h.output.IsJSON() {
		timelinePosts := make([]TimelinePost, 0, len(posts))
		for _, p := range posts {
			timelinePosts = append(timelinePosts, h.timelinePost(p))
		}
		h.output.JSON(TimelineResponse{
			Posts: timelinePosts,
			Count: len(timelinePosts),
		})
	} else {
		for _, p := range posts {
			h.printPost(p, 0)
		}
	}

	return nil
}

// timelinePost converts a post to its output form.
func (h *Handler) timelinePost(p *post.Post) TimelinePost {
	created, _ := p.Time()
	return TimelinePost{
		ID:        p.FullID(),
		Author:    h.authorName(p),
		Source:    p.Source(),
		Type:      p.Type().String(),
		Message:   blocks.Render(p.Blocks()),
		CreatedAt: created,
	}
}

// authorName resolves the display name for a post's author.
func (h *Handler) authorName(p *post.Post) string {
	if prof := h.feed.Author(p); prof != nil {
		return prof.String()
	}
	return p.Author()
}

// printPost writes one post in text form, indented for thread depth.
func (h *Handler) printPost(p *post.Post, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	header := h.authorName(p)
	if created, ok := p.Time(); ok {
		header = fmt.Sprintf("%s (%s)", header, FormatTimeAgo(created))
	}
	h.output.Print("%s%s\n", indent, header)

	for _, line := range strings.Split(blocks.Render(p.Blocks()), "\n") {
		h.output.Print("%s%s\n", indent, line)
	}
	h.output.Print("\n")
}
