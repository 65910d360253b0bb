// Package feed merges parsed org-social documents into one aggregated
// timeline with per-post author lookup.
package feed

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/AdsanTheGreat/org-social-go/parser"
	"github.com/AdsanTheGreat/org-social-go/post"
	"github.com/AdsanTheGreat/org-social-go/profile"
)

// ErrDuplicatePost is returned when an ingested post id is already held
// by a different identity. The colliding post is skipped, the rest of
// the document is still ingested.
var ErrDuplicatePost = errors.New("duplicate post id")

// Order selects the direction of the chronological view.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// Feed is an aggregation of posts from any number of documents. Posts
// are kept ordered newest first and are unique by id: re-ingesting a
// post from the same identity replaces it, a colliding id from another
// identity is rejected. Profiles with the same identity are shared
// between their documents.
type Feed struct {
	posts    []*post.Post
	byID     map[string]*post.Post
	byFullID map[string]*post.Post
	profiles map[profile.Key]*profile.Profile
	authors  map[*post.Post]*profile.Profile
}

func New() *Feed {
	return &Feed{
		byID:     make(map[string]*post.Post),
		byFullID: make(map[string]*post.Post),
		profiles: make(map[profile.Key]*profile.Profile),
		authors:  make(map[*post.Post]*profile.Profile),
	}
}

// Combine builds a feed from several parsed documents. Duplicate posts
// are reported but do not stop aggregation.
func Combine(docs ...*parser.Document) (*Feed, error) {
	f := New()
	var errs []error
	for _, doc := range docs {
		if err := f.Ingest(doc); err != nil {
			errs = append(errs, err)
		}
	}
	return f, errors.Join(errs...)
}

// Ingest adds a document's posts to the feed. A post whose id is held
// by another identity is skipped and reported with ErrDuplicatePost;
// the same identity re-posting an id replaces the earlier entry. The
// error never invalidates the feed.
func (f *Feed) Ingest(doc *parser.Document) error {
	prof := f.internProfile(doc.Profile)

	var errs []error
	for _, p := range doc.Posts {
		if existing, ok := f.byID[p.ID()]; ok {
			if f.authors[existing] != prof {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicatePost, p.ID()))
				continue
			}
			f.remove(existing)
		}
		f.byID[p.ID()] = p
		f.byFullID[p.FullID()] = p
		f.authors[p] = prof
		f.insert(p)
	}
	return errors.Join(errs...)
}

// internProfile returns the shared profile for this identity, keeping
// the first one seen.
func (f *Feed) internProfile(prof *profile.Profile) *profile.Profile {
	key := prof.Key()
	if existing, ok := f.profiles[key]; ok {
		return existing
	}
	f.profiles[key] = prof
	return prof
}

// insert places p into the newest-first order.
func (f *Feed) insert(p *post.Post) {
	lo, hi := 0, len(f.posts)
	for lo < hi {
		mid := (lo + hi) / 2
		if newer(p, f.posts[mid]) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	f.posts = append(f.posts, nil)
	copy(f.posts[lo+1:], f.posts[lo:])
	f.posts[lo] = p
}

// remove drops a replaced post and its index entries.
func (f *Feed) remove(p *post.Post) {
	delete(f.byID, p.ID())
	delete(f.byFullID, p.FullID())
	delete(f.authors, p)
	for i, q := range f.posts {
		if q == p {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			break
		}
	}
}

// newer reports whether a sorts before b in the newest-first order.
// Posts with unparseable timestamps fall back to id comparison, ties
// break on the id so the order is deterministic.
func newer(a, b *post.Post) bool {
	at, aok := a.Time()
	bt, bok := b.Time()
	switch {
	case aok && bok && !at.Equal(bt):
		return at.After(bt)
	case aok != bok:
		return aok
	}
	return a.ID() > b.ID()
}

// Len returns the number of posts in the feed.
func (f *Feed) Len() int { return len(f.posts) }

// Lookup returns the post with the given reference, accepting either a
// bare id or the full source#id form.
func (f *Feed) Lookup(ref string) (*post.Post, bool) {
	if p, ok := f.byFullID[ref]; ok {
		return p, true
	}
	p, ok := f.byID[ref]
	return p, ok
}

// Author returns the profile that authored p, nil for posts the feed
// does not know.
func (f *Feed) Author(p *post.Post) *profile.Profile {
	return f.authors[p]
}

// Profiles returns every distinct profile in the feed.
func (f *Feed) Profiles() []*profile.Profile {
	out := make([]*profile.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out
}

// Chronological iterates the feed in the given order. The sequence is
// restartable and reflects the feed at iteration time.
func (f *Feed) Chronological(order Order) iter.Seq[*post.Post] {
	return func(yield func(*post.Post) bool) {
		if order == OldestFirst {
			for i := len(f.posts) - 1; i >= 0; i-- {
				if !yield(f.posts[i]) {
					return
				}
			}
			return
		}
		for _, p := range f.posts {
			if !yield(p) {
				return
			}
		}
	}
}

// Between iterates posts whose timestamp lies in [from, to], inclusive
// on both ends, newest first. Posts without a parseable timestamp are
// skipped.
func (f *Feed) Between(from, to time.Time) iter.Seq[*post.Post] {
	return func(yield func(*post.Post) bool) {
		for _, p := range f.posts {
			t, ok := p.Time()
			if !ok || t.Before(from) || t.After(to) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// FromSource iterates posts fetched from one document URL, newest first.
func (f *Feed) FromSource(source string) iter.Seq[*post.Post] {
	return func(yield func(*post.Post) bool) {
		for _, p := range f.posts {
			if p.Source() != source {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Posts returns the posts newest first. The slice is shared, callers
// must not modify it.
func (f *Feed) Posts() []*post.Post { return f.posts }
