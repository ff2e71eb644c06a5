package transform

import (
	"fmt"
	"strings"
)

// MaxInputChars is the upper bound on Request.Text, in Unicode code points.
const MaxInputChars = 20_000

type Intent string

const (
	IntentAuto         Intent = "auto"
	IntentMeeting      Intent = "meeting"
	IntentRequirements Intent = "requirements"
	IntentIncident     Intent = "incident"
	IntentStudy        Intent = "study"
	IntentDraftArticle Intent = "draftarticle"
	IntentChatSummary  Intent = "chatsummary"
	IntentGeneric      Intent = "generic"
)

var intents = []Intent{
	IntentAuto,
	IntentMeeting,
	IntentRequirements,
	IntentIncident,
	IntentStudy,
	IntentDraftArticle,
	IntentChatSummary,
	IntentGeneric,
}

func Intents() []Intent { return append([]Intent(nil), intents...) }

// ParseIntent accepts any casing. An empty string yields IntentAuto.
func ParseIntent(raw string) (Intent, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return IntentAuto, nil
	}
	for _, i := range intents {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", raw)
}

type Mode string

const (
	ModeBalanced Mode = "balanced"
	ModeStrict   Mode = "strict"
	ModeCompact  Mode = "compact"
	ModeVerbose  Mode = "verbose"
)

var modes = []Mode{ModeBalanced, ModeStrict, ModeCompact, ModeVerbose}

func Modes() []Mode { return append([]Mode(nil), modes...) }

// ParseMode accepts any casing. An empty string yields ModeBalanced.
func ParseMode(raw string) (Mode, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ModeBalanced, nil
	}
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", raw)
}

// Request is a single transform job. Build it with NewRequest to get the
// defaults.
type Request struct {
	Text       string `json:"text" validate:"notblank,max=20000"`
	Intent     Intent `json:"intent" validate:"omitempty,oneof=auto meeting requirements incident study draftarticle chatsummary generic"`
	Mode       Mode   `json:"mode" validate:"omitempty,oneof=balanced strict compact verbose"`
	IncludeRaw bool   `json:"include_raw"`
	TitleHint  string `json:"title_hint,omitempty"`
}

func NewRequest(text string) Request {
	return Request{
		Text:       text,
		Intent:     IntentAuto,
		Mode:       ModeBalanced,
		IncludeRaw: true,
	}
}

func (r Request) intent() Intent {
	if r.Intent == "" {
		return IntentAuto
	}
	return r.Intent
}

func (r Request) mode() Mode {
	if r.Mode == "" {
		return ModeBalanced
	}
	return r.Mode
}
