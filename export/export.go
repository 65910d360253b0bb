// Package export renders an aggregated feed as RSS or Atom.
package export

import (
	"time"

	"github.com/gorilla/feeds"

	feedpkg "github.com/AdsanTheGreat/org-social-go/feed"
	"github.com/AdsanTheGreat/org-social-go/post"
)

const itemTitleLength = 80

// Options describe the exported channel.
type Options struct {
	Title       string
	Link        string
	Description string
	Limit       int // 0 means all posts
}

// RSS renders the feed's posts as an RSS 2.0 document, newest first.
func RSS(f *feedpkg.Feed, opts Options) (string, error) {
	return build(f, opts).ToRss()
}

// Atom renders the feed's posts as an Atom document, newest first.
func Atom(f *feedpkg.Feed, opts Options) (string, error) {
	return build(f, opts).ToAtom()
}

func build(f *feedpkg.Feed, opts Options) *feeds.Feed {
	out := &feeds.Feed{
		Title:       opts.Title,
		Link:        &feeds.Link{Href: opts.Link},
		Description: opts.Description,
		Created:     time.Now(),
	}

	for p := range f.Chronological(feedpkg.NewestFirst) {
		if opts.Limit > 0 && len(out.Items) >= opts.Limit {
			break
		}
		out.Items = append(out.Items, item(f, p))
	}

	return out
}

func item(f *feedpkg.Feed, p *post.Post) *feeds.Item {
	created, _ := p.Time()

	it := &feeds.Item{
		Id:          p.FullID(),
		Title:       p.Summary(itemTitleLength),
		Link:        &feeds.Link{Href: p.Source()},
		Description: p.Content(),
		Created:     created,
	}
	if prof := f.Author(p); prof != nil {
		it.Author = &feeds.Author{Name: prof.String()}
	}
	return it
}
