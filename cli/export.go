package cli

import (
	"github.com/AdsanTheGreat/org-social-go/export"
)

const (
	formatRSS  = "rss"
	formatAtom = "atom"
)

// handleExport renders the timeline as RSS or Atom. Text mode prints the
// raw document so it can be piped into a file.
func (h *Handler) handleExport(format string) error {
	opts := export.Options{
		Title:       h.self.Nick + "'s timeline",
		Link:        h.self.Source,
		Description: "combined org-social timeline",
	}

	var out string
	var err error
	if format == formatAtom {
		out, err = export.Atom(h.feed, opts)
	} else {
		out, err = export.RSS(h.feed, opts)
	}
	if err != nil {
		h.output.Error(err)
		return err
	}

	if h.output.IsJSON() {
		h.output.JSON(ExportResponse{Format: format, Document: out})
	} else {
		h.output.Println(out)
	}
	return nil
}
