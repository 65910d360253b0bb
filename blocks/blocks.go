// Package blocks groups post content into structural blocks: paragraphs,
// org fenced blocks and polls. Like the tokenizer, parsing never fails;
// anything malformed falls back into an ordinary paragraph.
package blocks

import (
	"fmt"
	"strings"

	"github.com/AdsanTheGreat/org-social-go/tokenizer"
)

// Kind identifies the block variant.
type Kind int

const (
	Paragraph Kind = iota
	Quote
	CodeBlock
	Example
	Poll
)

func (k Kind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case Quote:
		return "quote"
	case CodeBlock:
		return "code_block"
	case Example:
		return "example"
	case Poll:
		return "poll"
	}
	return "unknown"
}

// optionMarker starts a poll option line.
const optionMarker = "- [ ]"

// Block is one structural unit of post content.
type Block struct {
	Kind      Kind
	Lines     []string          // constituent source lines, fences excluded
	Tokens    []tokenizer.Token // parsed inline content, paragraphs only
	Language  string            // source language attribute of a code block
	Options   []string          // option labels of a poll block
	Collapsed bool
}

// Activatable reports whether the block can be collapsed in presentation.
// Paragraphs cannot; everything else can.
func (b *Block) Activatable() bool {
	return b.Kind != Paragraph
}

// Content returns the block's lines joined back together.
func (b *Block) Content() string {
	return strings.Join(b.Lines, "\n")
}

// Summary returns a short description used when the block is collapsed.
func (b *Block) Summary() string {
	switch b.Kind {
	case Quote:
		return "Quote block"
	case CodeBlock:
		if b.Language != "" {
			return fmt.Sprintf("Code block (%s)", b.Language)
		}
		return "Code block"
	case Example:
		return "Example block"
	case Poll:
		return fmt.Sprintf("Poll (%d options)", len(b.Options))
	}
	return "Block"
}

// Parse splits content into blocks. pollEnd is the owning post's poll
// deadline, empty when absent; option lines only form a Poll block when it
// is set, otherwise they stay in an ordinary paragraph.
func Parse(content string, pollEnd string) []Block {
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	var out []Block
	var para []string

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		out = append(out, Block{
			Kind:   Paragraph,
			Lines:  para,
			Tokens: tokenizer.Tokenize(strings.Join(para, "\n")),
		})
		para = nil
	}

	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if kind, lang, ok := fenceStart(trimmed); ok {
			if block, next, found := parseFenced(lines, i, kind, lang); found {
				flushPara()
				out = append(out, block)
				i = next
				continue
			}
			// Unterminated fence, the begin line is plain text.
		}

		if pollEnd != "" && strings.HasPrefix(trimmed, optionMarker) {
			flushPara()
			block, next := parsePoll(lines, i)
			out = append(out, block)
			i = next
			continue
		}

		if trimmed == "" {
			flushPara()
			i++
			continue
		}

		para = append(para, line)
		i++
	}
	flushPara()

	return out
}

// fenceStart recognizes "#+begin_quote", "#+begin_src lang" and
// "#+begin_example" in either case.
func fenceStart(line string) (Kind, string, bool) {
	lower := strings.ToLower(line)
	if !strings.HasPrefix(lower, "#+begin_") {
		return 0, "", false
	}

	rest := lower[len("#+begin_"):]
	name, attrs, _ := strings.Cut(rest, " ")

	switch name {
	case "quote":
		return Quote, "", true
	case "src":
		return CodeBlock, strings.TrimSpace(attrs), true
	case "example":
		return Example, "", true
	}
	return 0, "", false
}

// parseFenced collects lines until the matching #+end_ marker. Returns
// found=false when the fence is never closed.
func parseFenced(lines []string, start int, kind Kind, lang string) (Block, int, bool) {
	name := map[Kind]string{Quote: "quote", CodeBlock: "src", Example: "example"}[kind]
	end := "#+end_" + name

	var body []string
	for i := start + 1; i < len(lines); i++ {
		if strings.EqualFold(strings.TrimSpace(lines[i]), end) {
			return Block{Kind: kind, Lines: body, Language: lang}, i + 1, true
		}
		body = append(body, lines[i])
	}
	return Block{}, 0, false
}

// parsePoll collects a consecutive run of option lines.
func parsePoll(lines []string, start int) (Block, int) {
	var body []string
	var options []string

	i := start
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, optionMarker) {
			break
		}
		body = append(body, lines[i])
		label := strings.TrimSpace(trimmed[len(optionMarker):])
		if label != "" {
			options = append(options, label)
		}
	}

	return Block{Kind: Poll, Lines: body, Options: options}, i
}

// Render reassembles blocks into display text, replacing collapsed blocks
// with their one-line summary.
func Render(bs []Block) string {
	var parts []string
	for i := range bs {
		b := &bs[i]
		if b.Collapsed && b.Activatable() {
			parts = append(parts, fmt.Sprintf("[+] %s [...]", b.Summary()))
			continue
		}
		parts = append(parts, b.Content())
	}
	return strings.Join(parts, "\n")
}
