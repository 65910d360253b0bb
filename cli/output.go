package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting responses in text or JSON format.
type Output struct {
	writer   io.Writer
	jsonMode bool
}

// NewOutput creates a new output handler.
func NewOutput(w io.Writer, jsonMode bool) *Output {
	return &Output{
		writer:   w,
		jsonMode: jsonMode,
	}
}

// IsJSON returns true if output is in JSON mode.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// Error outputs an error message.
func (o *Output) Error(err error) {
	if o.jsonMode {
		o.writeJSON(map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		fmt.Fprintf(o.writer, "Error: %v\n", err)
	}
}

// Success outputs a success message (text mode only, JSON uses specific methods).
func (o *Output) Success(format string, args ...interface{}) {
	if !o.jsonMode {
		fmt.Fprintf(o.writer, format, args...)
	}
}

// Print outputs a line (text mode only).
func (o *Output) Print(format string, args ...interface{}) {
	if !o.jsonMode {
		fmt.Fprintf(o.writer, format, args...)
	}
}

// Println outputs a line with newline (text mode only).
func (o *Output) Println(text string) {
	if !o.jsonMode {
		fmt.Fprintln(o.writer, text)
	}
}

// JSON outputs any value as JSON.
func (o *Output) JSON(v interface{}) {
	if o.jsonMode {
		o.writeJSON(v)
	}
}

// writeJSON marshals and writes JSON to the output.
func (o *Output) writeJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(o.writer, `{"error":"failed to marshal JSON: %s"}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(o.writer, string(data))
}

// PostResponse represents a post creation response.
type PostResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	ReplyTo string `json:"reply_to,omitempty"`
	Option  string `json:"option,omitempty"`
}

// TimelinePost represents a post in timeline output.
type TimelinePost struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Source    string    `json:"source,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineResponse represents the timeline output.
type TimelineResponse struct {
	Posts []TimelinePost `json:"posts"`
	Count int            `json:"count"`
}

// ThreadPost is one post of a conversation, with its nesting depth.
type ThreadPost struct {
	TimelinePost
	Depth int `json:"depth"`
}

// ThreadsResponse represents the threads output.
type ThreadsResponse struct {
	Threads [][]ThreadPost `json:"threads"`
	Count   int            `json:"count"`
}

// NotificationItem represents a notification in output.
type NotificationItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Actor       string    `json:"actor"`
	PostPreview string    `json:"post_preview,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationsResponse represents the notifications output.
type NotificationsResponse struct {
	Notifications []NotificationItem `json:"notifications"`
	Count         int                `json:"count"`
}

// PollOptionItem is one poll choice with its tally.
type PollOptionItem struct {
	Label      string  `json:"label"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// PollItem represents one poll in output.
type PollItem struct {
	ID       string           `json:"id"`
	Author   string           `json:"author"`
	Question string           `json:"question"`
	Status   string           `json:"status"`
	End      time.Time        `json:"end"`
	Options  []PollOptionItem `json:"options"`
	Total    int              `json:"total_votes"`
}

// PollsResponse represents the polls output.
type PollsResponse struct {
	Polls []PollItem `json:"polls"`
	Count int        `json:"count"`
}

// ExportResponse represents the rss/atom output in JSON mode.
type ExportResponse struct {
	Format   string `json:"format"`
	Document string `json:"document"`
}

// HelpCommand represents a command in help output.
type HelpCommand struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Usage       string   `json:"usage"`
	Flags       []string `json:"flags,omitempty"`
}

// HelpResponse represents the help output.
type HelpResponse struct {
	Version     string        `json:"version"`
	Commands    []HelpCommand `json:"commands"`
	GlobalFlags []string      `json:"global_flags"`
}

// FormatTimeAgo renders how long ago t was, in the coarsest unit that
// fits. Post ids carry full timestamps; this is only for display.
func FormatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return agoUnits(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return agoUnits(int(d.Hours()), "hour")
	}
	return agoUnits(int(d.Hours()/24), "day")
}

func agoUnits(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
