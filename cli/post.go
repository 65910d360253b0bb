package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/AdsanTheGreat/org-social-go/post"
	"github.com/AdsanTheGreat/org-social-go/util"
)

// handlePost appends a new post to the local document.
func (h *Handler) handlePost(args []string) error {
	message, err := h.readMessage(args)
	if err != nil {
		h.output.Error(err)
		return err
	}

	p := post.New(util.CurrentTimestamp(), message, true)
	p.SetClient(util.Name)
	return h.appendPost(p)
}

// handleReply appends a reply to the given post reference.
func (h *Handler) handleReply(args []string) error {
	if len(args) < 2 {
		err := fmt.Errorf("usage: reply <post-url#id> <message>")
		h.output.Error(err)
		return err
	}

	p := post.NewReply(args[0], strings.Join(args[1:], " "))
	return h.appendPost(p)
}

// handleVote appends a poll vote for the given option.
func (h *Handler) handleVote(args []string) error {
	if len(args) < 2 {
		err := fmt.Errorf("usage: vote <post-url#id> <option>")
		h.output.Error(err)
		return err
	}

	ref, option := args[0], strings.Join(args[1:], " ")
	pollPost, ok := h.feed.Lookup(ref)
	if !ok {
		err := fmt.Errorf("unknown post: %s", ref)
		h.output.Error(err)
		return err
	}
	if pollPost.Type() != post.Poll {
		err := fmt.Errorf("post %s is not a poll", ref)
		h.output.Error(err)
		return err
	}

	p := post.NewVote(ref, option, "")
	return h.appendPost(p)
}

// readMessage joins args into a message, reading from the session when
// the only argument is "-".
func (h *Handler) readMessage(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(h.session)
		if err != nil {
			return "", fmt.Errorf("reading message: %w", err)
		}
		args = []string{strings.TrimSpace(string(data))}
	}

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return "", fmt.Errorf("message cannot be empty")
	}
	return message, nil
}

// appendPost saves p into the local document and reports the result.
func (h *Handler) appendPost(p *post.Post) error {
	doc, err := h.store.Load()
	if err != nil {
		h.output.Error(err)
		return err
	}

	p.SetAuthor(doc.Profile.Nick())
	doc.Posts = append(doc.Posts, p)

	if err := h.store.Save(doc); err != nil {
		h.output.Error(err)
		return err
	}

	if h.output.IsJSON() {
		h.output.JSON(PostResponse{
			ID:      p.ID(),
			Message: p.Content(),
			ReplyTo: p.ReplyTo(),
			Option:  p.PollOption(),
		})
	} else {
		h.output.Success("Posted %s\n", p.ID())
	}
	return nil
}
