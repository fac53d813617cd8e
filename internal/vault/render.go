package vault

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwinther/recollect/internal/api"
)

// renderDailyLog renders one day of lifelogs: a level-1 date heading, then
// each record's body joined by blank lines, in fetch order.
func renderDailyLog(day string, logs []api.Lifelog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", day)

	for _, l := range logs {
		body := strings.TrimSpace(l.Markdown)
		if body == "" {
			body = strings.TrimSpace(l.Title)
		}
		if body == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}

	return b.String()
}

// renderConversations renders one day of conversations: one section per
// conversation with its summary and a bulleted, role-tagged transcript.
func renderConversations(day string, convs []api.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversations: %s\n", day)

	for _, cv := range convs {
		fmt.Fprintf(&b, "\n## %s\n", conversationTitle(cv))

		if !cv.StartTime.IsZero() {
			fmt.Fprintf(&b, "\nStarted %s\n", cv.StartTime.UTC().Format(time.RFC3339))
		}

		if len(cv.Messages) > 0 {
			b.WriteString("\n")
			for _, m := range cv.Messages {
				role := strings.TrimSpace(m.Role)
				if role == "" {
					role = "unknown"
				}
				fmt.Fprintf(&b, "- **%s:** %s\n", role, strings.TrimSpace(m.Text))
			}
		} else if strings.TrimSpace(cv.Summary) != "" {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(cv.Summary))
		}
	}

	return b.String()
}

func conversationTitle(cv api.Conversation) string {
	if s := strings.TrimSpace(cv.ShortSummary); s != "" {
		return s
	}
	if s := strings.TrimSpace(cv.Summary); s != "" {
		return firstLine(s)
	}
	if cv.ID != "" {
		return "Conversation " + cv.ID
	}
	return "Conversation"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
