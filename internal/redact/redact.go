// Package redact scrubs configured patterns out of fetched records before
// they are rendered into the vault. Recorder transcripts routinely carry
// phone numbers, addresses, and names that should not land in plain files.
package redact

import (
	"fmt"
	"regexp"

	"github.com/mwinther/recollect/internal/api"
)

const placeholder = "[REDACTED]"

// Compile compiles a list of regex pattern strings.
// Returns an error if any pattern is invalid.
func Compile(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Apply replaces all matches of the compiled patterns in text with [REDACTED].
func Apply(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllString(text, placeholder)
	}
	return text
}

// Lifelogs scrubs every text field of the given logs in place.
func Lifelogs(logs []api.Lifelog, patterns []*regexp.Regexp) {
	if len(patterns) == 0 {
		return
	}
	for i := range logs {
		logs[i].Title = Apply(logs[i].Title, patterns)
		logs[i].Markdown = Apply(logs[i].Markdown, patterns)
	}
}

// Conversations scrubs every text field of the given conversations in place,
// including each transcript message.
func Conversations(convs []api.Conversation, patterns []*regexp.Regexp) {
	if len(patterns) == 0 {
		return
	}
	for i := range convs {
		convs[i].Summary = Apply(convs[i].Summary, patterns)
		convs[i].ShortSummary = Apply(convs[i].ShortSummary, patterns)
		for j := range convs[i].Messages {
			convs[i].Messages[j].Text = Apply(convs[i].Messages[j].Text, patterns)
		}
	}
}
