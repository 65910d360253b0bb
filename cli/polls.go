package cli

import (
	"time"

	"github.com/AdsanTheGreat/org-social-go/poll"
)

const pollQuestionLength = 80

// handlePolls shows every poll in the feed with its current tally.
func (h *Handler) handlePolls(args []string) error {
	polls := poll.ExtractAll(h.feed.Posts())
	now := time.Now()

	if len(polls) == 0 {
		if h.output.IsJSON() {
			h.output.JSON(PollsResponse{
				Polls: []PollItem{},
				Count: 0,
			})
		} else {
			h.output.Println("No polls.")
		}
		return nil
	}

	if h.output.IsJSON() {
		items := make([]PollItem, 0, len(polls))
		for _, p := range polls {
			item := PollItem{
				ID:       p.Post.FullID(),
				Author:   h.authorName(p.Post),
				Question: p.Post.Summary(pollQuestionLength),
				Status:   p.StatusAt(now).String(),
				End:      p.End,
				Total:    p.TotalVotes,
			}
			for i, opt := range p.Options {
				item.Options = append(item.Options, PollOptionItem{
					Label:      opt.Label,
					Votes:      opt.Votes,
					Percentage: p.Percentage(i),
				})
			}
			items = append(items, item)
		}
		h.output.JSON(PollsResponse{
			Polls: items,
			Count: len(items),
		})
	} else {
		for _, p := range polls {
			h.output.Print("%s by %s [%s]\n", p.Post.Summary(pollQuestionLength), h.authorName(p.Post), p.StatusAt(now))
			for i, opt := range p.Options {
				h.output.Print("  %-20s %3d votes (%.0f%%)\n", opt.Label, opt.Votes, p.Percentage(i))
			}
			h.output.Print("  %d votes total, ends %s\n\n", p.TotalVotes, p.End.Format(time.RFC3339))
		}
	}

	return nil
}
