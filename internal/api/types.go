package api

import "time"

// Lifelog is one daily-log record. Immutable once fetched.
type Lifelog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Conversation is one recorded conversation with its transcript.
type Conversation struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	ShortSummary string    `json:"shortSummary"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Messages     []Message `json:"messages"`
}

// Message is one role-tagged utterance inside a conversation.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}
