package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/AdsanTheGreat/org-social-go/feed"
	"github.com/AdsanTheGreat/org-social-go/notifications"
	"github.com/AdsanTheGreat/org-social-go/parser"
	"github.com/AdsanTheGreat/org-social-go/util"
)

// Session is the minimal terminal the CLI runs against.
type Session interface {
	io.Reader
	io.Writer
}

// Store loads and saves the local user's org-social document.
type Store interface {
	Load() (*parser.Document, error)
	Save(*parser.Document) error
}

// Handler processes CLI commands against an aggregated feed.
type Handler struct {
	session  Session
	store    Store
	feed     *feed.Feed
	self     notifications.Target
	conf     *util.AppConfig
	output   *Output
	jsonMode bool
}

// NewHandler creates a new CLI handler.
func NewHandler(s Session, store Store, f *feed.Feed, self notifications.Target, conf *util.AppConfig) *Handler {
	return &Handler{
		session: s,
		store:   store,
		feed:    f,
		self:    self,
		conf:    conf,
	}
}

// Execute parses and executes a CLI command.
func (h *Handler) Execute(args []string) error {
	args, h.jsonMode = parseGlobalFlags(args)
	h.output = NewOutput(h.session, h.jsonMode)

	if len(args) == 0 {
		return h.showHelp()
	}

	cmd := strings.ToLower(args[0])
	cmdArgs := args[1:]

	switch cmd {
	case "post":
		return h.handlePost(cmdArgs)
	case "reply":
		return h.handleReply(cmdArgs)
	case "vote":
		return h.handleVote(cmdArgs)
	case "timeline":
		return h.handleTimeline(cmdArgs)
	case "threads":
		return h.handleThreads(cmdArgs)
	case "notifications":
		return h.handleNotifications(cmdArgs)
	case "polls":
		return h.handlePolls(cmdArgs)
	case "rss":
		return h.handleExport(formatRSS)
	case "atom":
		return h.handleExport(formatAtom)
	case "--help", "-h", "help":
		return h.showHelp()
	default:
		err := fmt.Errorf("unknown command: %s", cmd)
		h.output.Error(err)
		return err
	}
}

// parseGlobalFlags extracts global flags like --json from args.
func parseGlobalFlags(args []string) ([]string, bool) {
	jsonMode := false
	var filtered []string

	for _, arg := range args {
		switch arg {
		case "--json", "-j":
			jsonMode = true
		default:
			filtered = append(filtered, arg)
		}
	}

	return filtered, jsonMode
}

// showHelp displays help information.
func (h *Handler) showHelp() error {
	if h.output.IsJSON() {
		help := HelpResponse{
			Version: util.Name,
			Commands: []HelpCommand{
				{
					Name:        "post",
					Description: "Append a new post to your feed",
					Usage:       "post <message> or post -",
					Flags:       []string{"-: read message from stdin"},
				},
				{
					Name:        "reply",
					Description: "Reply to a post",
					Usage:       "reply <post-url#id> <message>",
				},
				{
					Name:        "vote",
					Description: "Vote in a poll",
					Usage:       "vote <post-url#id> <option>",
				},
				{
					Name:        "timeline",
					Description: "Show the combined timeline, newest first",
					Usage:       "timeline [-n <count>]",
					Flags:       []string{"-n <count>: limit number of posts (default 20)"},
				},
				{
					Name:        "threads",
					Description: "Show conversations grouped by thread",
					Usage:       "threads [-n <count>]",
					Flags:       []string{"-n <count>: limit number of threads (default 10)"},
				},
				{
					Name:        "notifications",
					Description: "Show mentions and replies addressed to you",
					Usage:       "notifications",
				},
				{
					Name:        "polls",
					Description: "Show polls and their current tallies",
					Usage:       "polls",
				},
				{
					Name:        "rss",
					Description: "Export the timeline as RSS",
					Usage:       "rss",
				},
				{
					Name:        "atom",
					Description: "Export the timeline as Atom",
					Usage:       "atom",
				},
				{
					Name:        "help",
					Description: "Show this help message",
					Usage:       "help",
				},
			},
			GlobalFlags: []string{
				"--json, -j: output in JSON format",
			},
		}
		h.output.JSON(help)
	} else {
		h.output.Println("org-social-go - plain-text decentralized social feeds")
		h.output.Println("")
		h.output.Println("Usage: org-social <command> [options]")
		h.output.Println("")
		h.output.Println("Commands:")
		h.output.Println("  post <message>        Append a new post to your feed")
		h.output.Println("  post -                Read message from stdin")
		h.output.Println("  reply <ref> <msg>     Reply to a post by url#id")
		h.output.Println("  vote <ref> <option>   Vote in a poll")
		h.output.Println("  timeline              Show the combined timeline")
		h.output.Println("  timeline -n <N>       Limit to N posts")
		h.output.Println("  threads               Show conversations by thread")
		h.output.Println("  notifications         Show mentions and replies")
		h.output.Println("  polls                 Show polls and tallies")
		h.output.Println("  rss                   Export the timeline as RSS")
		h.output.Println("  atom                  Export the timeline as Atom")
		h.output.Println("  help                  Show this help message")
		h.output.Println("")
		h.output.Println("Global flags:")
		h.output.Println("  --json, -j            Output in JSON format")
	}
	return nil
}
