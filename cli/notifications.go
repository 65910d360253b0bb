package cli

import (
	"github.com/AdsanTheGreat/org-social-go/notifications"
)

const notificationPreviewLength = 60

// handleNotifications shows mentions and replies addressed to the local
// user.
func (h *Handler) handleNotifications(args []string) error {
	ns := notifications.Build(h.feed, h.self)

	if len(ns) == 0 {
		if h.output.IsJSON() {
			h.output.JSON(NotificationsResponse{
				Notifications: []NotificationItem{},
				Count:         0,
			})
		} else {
			h.output.Println("No notifications.")
		}
		return nil
	}

	if h.output.IsJSON() {
		items := make([]NotificationItem, 0, len(ns))
		for _, n := range ns {
			items = append(items, NotificationItem{
				ID:          n.ID,
				Type:        string(n.Type),
				Actor:       n.From,
				PostPreview: n.Post.Summary(notificationPreviewLength),
				CreatedAt:   n.CreatedAt,
			})
		}
		h.output.JSON(NotificationsResponse{
			Notifications: items,
			Count:         len(items),
		})
	} else {
		for _, n := range ns {
			var verb string
			switch n.Type {
			case notifications.Reply:
				verb = "replied to you"
			case notifications.Mention:
				verb = "mentioned you"
			case notifications.MentionAndReply:
				verb = "replied and mentioned you"
			}
			h.output.Print("%s %s (%s)\n", n.From, verb, FormatTimeAgo(n.CreatedAt))
			h.output.Print("  %s\n\n", n.Post.Summary(notificationPreviewLength))
		}
	}

	return nil
}
