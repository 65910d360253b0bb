// Package tokenizer lexes org-social post content into a flat sequence of
// formatting tokens. Malformed or unterminated markup never fails; it
// degrades to plain text.
package tokenizer

import (
	"strings"
	"unicode"
)

// Kind identifies the token variant.
type Kind int

const (
	PlainText Kind = iota
	Bold
	Italic
	BoldItalic
	Underline
	Strikethrough
	InlineCode
	Verbatim
	Link
	Mention
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "plain_text"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold_italic"
	case Underline:
		return "underline"
	case Strikethrough:
		return "strikethrough"
	case InlineCode:
		return "inline_code"
	case Verbatim:
		return "verbatim"
	case Link:
		return "link"
	case Mention:
		return "mention"
	}
	return "unknown"
}

// Token is a single lexed span of post content.
type Token struct {
	Kind        Kind
	Text        string // literal text for plain/emphasis/code tokens
	URL         string // target for Link and Mention tokens
	Description string // optional display text for Link tokens
	Username    string // mentioned nick for Mention tokens
}

// mentionPrefix marks a bracketed link as an org-social mention:
// [[org-social:URL][username]]
const mentionPrefix = "org-social:"

// delimiters holds every paired formatting marker. All kinds share one
// matching implementation: first open pairs with first close, content must
// be non-empty and single-line, and a missing close degrades to plain text.
var delimiters = []struct {
	open  string
	close string
	kind  Kind
}{
	{"*/", "/*", BoldItalic},
	{"*", "*", Bold},
	{"/", "/", Italic},
	{"_", "_", Underline},
	{"+", "+", Strikethrough},
	{"~", "~", InlineCode},
	{"=", "=", Verbatim},
}

// delimiterStarts is the set of runes that can begin structured markup.
const delimiterStarts = "*/_+~=["

// Tokenizer scans content left to right over runes, so multi-byte
// characters are never split.
type Tokenizer struct {
	input []rune
	pos   int
}

func New(input string) *Tokenizer {
	return &Tokenizer{input: []rune(input)}
}

// Tokenize is a convenience wrapper around New(content).Tokenize().
func Tokenize(content string) []Token {
	return New(content).Tokenize()
}

// Tokenize consumes the whole input and returns the token sequence in
// document order.
func (t *Tokenizer) Tokenize() []Token {
	var tokens []Token
	for t.pos < len(t.input) {
		tokens = append(tokens, t.next())
	}
	return tokens
}

func (t *Tokenizer) next() Token {
	// Mentions take priority over links when both could match.
	if t.peek(2) == "[[" {
		if tok, ok := t.parseMention(); ok {
			return tok
		}
		if tok, ok := t.parseLink(); ok {
			return tok
		}
	}

	// Bare URLs win over italic, so https://x/y is not an italic span.
	if tok, ok := t.parseURL(); ok {
		return tok
	}

	for _, d := range delimiters {
		if t.peek(len(d.open)) == d.open {
			if tok, ok := t.parseDelimited(d.open, d.close, d.kind); ok {
				return tok
			}
		}
	}

	return t.parsePlain()
}

// parseDelimited handles every paired formatting kind with identical
// edge-case behavior: empty content, a newline inside the span, or a
// missing close all reject the match, leaving the open marker literal.
func (t *Tokenizer) parseDelimited(open, close string, kind Kind) (Token, bool) {
	saved := t.pos
	t.advance(len(open))
	start := t.pos

	for t.pos < len(t.input) {
		if t.peek(len(close)) == close {
			content := string(t.input[start:t.pos])
			if content == "" || strings.ContainsRune(content, '\n') {
				break
			}
			t.advance(len(close))
			return Token{Kind: kind, Text: content}, true
		}
		t.advance(1)
	}

	t.pos = saved
	return Token{}, false
}

// parseMention matches [[org-social:URL][username]].
func (t *Tokenizer) parseMention() (Token, bool) {
	saved := t.pos
	t.advance(2)
	start := t.pos

	for t.pos < len(t.input) {
		if t.peek(2) == "]]" {
			content := string(t.input[start:t.pos])
			bracket := strings.Index(content, "][")
			if bracket < 0 {
				break
			}
			urlPart := content[:bracket]
			username := content[bracket+2:]
			if !strings.HasPrefix(urlPart, mentionPrefix) {
				break
			}
			t.advance(2)
			return Token{
				Kind:     Mention,
				URL:      strings.TrimPrefix(urlPart, mentionPrefix),
				Username: username,
			}, true
		}
		t.advance(1)
	}

	t.pos = saved
	return Token{}, false
}

// parseLink matches [[url]] and [[url][description]].
func (t *Tokenizer) parseLink() (Token, bool) {
	saved := t.pos
	t.advance(2)
	start := t.pos

	for t.pos < len(t.input) {
		if t.peek(2) == "]]" {
			content := string(t.input[start:t.pos])
			t.advance(2)
			if bracket := strings.Index(content, "]["); bracket >= 0 {
				return Token{
					Kind:        Link,
					URL:         content[:bracket],
					Description: content[bracket+2:],
				}, true
			}
			return Token{Kind: Link, URL: content}, true
		}
		t.advance(1)
	}

	t.pos = saved
	return Token{}, false
}

// parseURL matches bare http:// and https:// URLs up to whitespace or a
// delimiter that commonly terminates them in running text.
func (t *Tokenizer) parseURL() (Token, bool) {
	if t.pos >= len(t.input) || !unicode.IsLetter(t.input[t.pos]) {
		return Token{}, false
	}

	rest := t.peek(8)
	var protoLen int
	switch {
	case strings.HasPrefix(rest, "https://"):
		protoLen = 8
	case strings.HasPrefix(rest, "http://"):
		protoLen = 7
	default:
		return Token{}, false
	}

	start := t.pos
	t.advance(protoLen)
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if unicode.IsSpace(ch) || strings.ContainsRune(`)]>"'*~`, ch) {
			break
		}
		t.advance(1)
	}

	return Token{Kind: Link, URL: string(t.input[start:t.pos])}, true
}

// parsePlain consumes a run of plain text. When called on a special
// character that no structured parser matched, that character is consumed
// literally and the run continues, so unterminated markup stays in one
// plain-text token.
func (t *Tokenizer) parsePlain() Token {
	start := t.pos

	// A failed special character is literal text.
	if t.pos < len(t.input) && strings.ContainsRune(delimiterStarts, t.input[t.pos]) {
		t.advance(1)
	}

	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if strings.ContainsRune(delimiterStarts, ch) {
			break
		}
		if unicode.IsLetter(ch) && t.urlAhead() {
			break
		}
		t.advance(1)
	}

	return Token{Kind: PlainText, Text: string(t.input[start:t.pos])}
}

// urlAhead reports whether a bare URL starts at the current position,
// without consuming input.
func (t *Tokenizer) urlAhead() bool {
	rest := t.peek(8)
	return strings.HasPrefix(rest, "https://") || strings.HasPrefix(rest, "http://")
}

func (t *Tokenizer) peek(n int) string {
	end := t.pos + n
	if end > len(t.input) {
		end = len(t.input)
	}
	return string(t.input[t.pos:end])
}

func (t *Tokenizer) advance(n int) {
	t.pos += n
	if t.pos > len(t.input) {
		t.pos = len(t.input)
	}
}
