package history

import "time"

// Paths are the three files that make up one history record.
type Paths struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Meta   string `json:"meta"`
}

// Meta is written once per successful transform and never mutated.
type Meta struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Title      string    `json:"title"`
	Intent     string    `json:"intent"`
	Mode       string    `json:"mode"`
	IncludeRaw bool      `json:"include_raw"`
	TitleHint  string    `json:"title_hint,omitempty"`
	InputChars int       `json:"input_chars"`
	DurationMs int64     `json:"duration_ms"`
	Warnings   []string  `json:"warnings"`
	Paths      Paths     `json:"paths"`
}

// Entry is a fully loaded record.
type Entry struct {
	Input  string
	Output string
	Meta   Meta
}

func (m Meta) normalized() Meta {
	if m.Warnings == nil {
		m.Warnings = []string{}
	}
	return m
}
