// Package parser turns a whole org-social document into its profile
// header and posts, and serializes them back.
package parser

import (
	"strings"

	"github.com/AdsanTheGreat/org-social-go/post"
	"github.com/AdsanTheGreat/org-social-go/profile"
)

// postsHeading separates the profile header from the post sections.
const postsHeading = "* Posts"

// Document is one parsed org-social file: the owner's profile and their
// posts in file order.
type Document struct {
	Profile *profile.Profile
	Posts   []*post.Post
}

// Parse splits content into the profile header and "**" post sections.
// Header warnings are returned alongside, parsing itself never fails:
// a file without a "* Posts" heading is all header, sections without a
// usable drawer still become posts with whatever fields they carry.
func Parse(content string) (*Document, []profile.ParseError) {
	lines := strings.Split(content, "\n")

	headerEnd := len(lines)
	for i, line := range lines {
		if strings.TrimSpace(line) == postsHeading {
			headerEnd = i
			break
		}
	}

	prof, warnings := profile.Parse(lines[:headerEnd])

	var posts []*post.Post
	var section []string
	flush := func() {
		if len(section) == 0 {
			return
		}
		p := post.FromSection(section)
		p.SetAuthor(prof.Nick())
		posts = append(posts, p)
		section = nil
	}

	started := false
	for i := headerEnd; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == postsHeading {
			continue
		}
		if strings.HasPrefix(line, "**") {
			flush()
			started = true
		}
		if started {
			section = append(section, line)
		}
	}
	flush()

	return &Document{Profile: prof, Posts: posts}, warnings
}

// ParseWithSource parses content and stamps every post and the profile
// with the URL the document was fetched from.
func ParseWithSource(content, source string) (*Document, []profile.ParseError) {
	doc, warnings := Parse(content)
	doc.Profile.SetSource(source)
	for _, p := range doc.Posts {
		p.SetSource(source)
	}
	return doc, warnings
}

// Serialize renders the document back to org-social text: header,
// "* Posts" heading, then each post section.
func Serialize(doc *Document) string {
	var b strings.Builder

	b.WriteString(doc.Profile.OrgHeader())
	b.WriteString("\n")
	b.WriteString(postsHeading)
	b.WriteString("\n")

	for _, p := range doc.Posts {
		b.WriteString(p.OrgSocial())
		b.WriteString("\n")
	}

	return b.String()
}
