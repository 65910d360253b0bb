// Package profile parses and represents the header of an org-social
// document: the identity and metadata of one participant.
package profile

import (
	"fmt"
	"strings"
)

// Follow is one followed participant: a nickname and the URL of their
// org-social document.
type Follow struct {
	Nick string
	URL  string
}

// Key is the identity of a profile. Two profiles with the same title and
// nick are the same participant no matter what the rest of the header
// says. Comparable, so it can be used as a map key.
type Key struct {
	Title string
	Nick  string
}

// ParseError records a malformed header field. It is a warning: the field
// is treated as absent and parsing continues.
type ParseError struct {
	Line  string
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed profile field %s in line %q", e.Field, e.Line)
}

// Profile is a participant's identity record. Immutable once parsed,
// except for the source URL which is attached after fetching.
type Profile struct {
	title       string
	nick        string
	description string
	avatar      string
	links       []string
	follows     []Follow
	contacts    []string
	source      string
}

// New builds a minimal profile. Mostly useful in tests and for
// constructing the local user before their document exists.
func New(title, nick string) *Profile {
	return &Profile{title: title, nick: nick}
}

// Parse extracts a profile from the header lines of an org-social
// document. Unknown fields are ignored, malformed ones are reported as
// warnings and skipped; parsing itself never fails.
func Parse(lines []string) (*Profile, []ParseError) {
	p := &Profile{}
	var warnings []ParseError

	for _, line := range lines {
		field, rest, found := strings.Cut(line, ":")
		if !found || !strings.HasPrefix(field, "#+") {
			continue
		}
		value := strings.TrimSpace(rest)
		if value == "" {
			// Empty values parse as absent, never as empty strings.
			continue
		}

		switch strings.TrimSpace(field) {
		case "#+TITLE":
			p.title = value
		case "#+NICK":
			p.nick = value
		case "#+DESCRIPTION":
			p.description = value
		case "#+AVATAR":
			p.avatar = value
		case "#+LINK":
			p.links = append(p.links, value)
		case "#+FOLLOW":
			nick, url, ok := strings.Cut(value, " ")
			if !ok || strings.TrimSpace(url) == "" {
				warnings = append(warnings, ParseError{Line: line, Field: "#+FOLLOW"})
				continue
			}
			p.follows = append(p.follows, Follow{Nick: nick, URL: strings.TrimSpace(url)})
		case "#+CONTACT":
			p.contacts = append(p.contacts, value)
		}
	}

	return p, warnings
}

func (p *Profile) Title() string       { return p.title }
func (p *Profile) Nick() string        { return p.nick }
func (p *Profile) Description() string { return p.description }
func (p *Profile) Avatar() string      { return p.avatar }
func (p *Profile) Links() []string     { return p.links }
func (p *Profile) Follows() []Follow   { return p.follows }
func (p *Profile) Contacts() []string  { return p.contacts }
func (p *Profile) Source() string      { return p.source }

func (p *Profile) SetSource(source string) { p.source = source }

// Key returns the profile's identity key.
func (p *Profile) Key() Key {
	return Key{Title: p.title, Nick: p.nick}
}

// Equal reports whether two profiles are the same identity, which depends
// only on title and nick.
func (p *Profile) Equal(o *Profile) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Key() == o.Key()
}

// OrgHeader serializes the profile back to org-social header lines.
func (p *Profile) OrgHeader() string {
	var lines []string

	if p.title != "" {
		lines = append(lines, "#+TITLE: "+p.title)
	}
	if p.nick != "" {
		lines = append(lines, "#+NICK: "+p.nick)
	}
	if p.description != "" {
		lines = append(lines, "#+DESCRIPTION: "+p.description)
	}
	if p.avatar != "" {
		lines = append(lines, "#+AVATAR: "+p.avatar)
	}
	for _, link := range p.links {
		lines = append(lines, "#+LINK: "+link)
	}
	for _, f := range p.follows {
		lines = append(lines, fmt.Sprintf("#+FOLLOW: %s %s", f.Nick, f.URL))
	}
	for _, contact := range p.contacts {
		lines = append(lines, "#+CONTACT: "+contact)
	}

	return strings.Join(lines, "\n")
}

func (p *Profile) String() string {
	if p.nick != "" {
		return p.nick
	}
	return p.title
}
