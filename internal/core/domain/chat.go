package domain

import "time"

// Answer is a synthesised reply grounded in retrieved study material.
type Answer struct {
	Query     string    `json:"query" yaml:"query"`
	Text      string    `json:"answer" yaml:"answer"`
	Sources   []Source  `json:"sources" yaml:"sources"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ChatExchange is a persisted question/answer pair.
type ChatExchange struct {
	ID        string    `json:"id" yaml:"id"`
	Query     string    `json:"query" yaml:"query"`
	Answer    string    `json:"answer" yaml:"answer"`
	Sources   []Source  `json:"sources" yaml:"sources"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ExchangeOf converts an answer into its history record.
func ExchangeOf(id string, a *Answer) ChatExchange {
	return ChatExchange{
		ID:        id,
		Query:     a.Query,
		Answer:    a.Text,
		Sources:   a.Sources,
		Timestamp: a.Timestamp,
	}
}
