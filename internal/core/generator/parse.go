package generator

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxActions bounds every action list returned to callers.
	MaxActions = 4
	// MinFragmentLen is the shortest line kept by the line-split strategy.
	MinFragmentLen = 10
)

var errEmptyAfterCleanup = errors.New("completion empty after markdown cleanup")

var (
	boldRe    = regexp.MustCompile(`\*\*`)
	italicRe  = regexp.MustCompile(`\*([^*\n]+)\*`)
	underRe   = regexp.MustCompile(`__`)
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)

	listMarkerRe = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s*`)
	// inlineMarkerRe finds list markers that start a new item mid-line,
	// as in "1. Call them 2. Refund them" or "- Call - Refund".
	inlineMarkerRe = regexp.MustCompile(`(?:^|\s)(?:\d+[.)]|[-*+•])\s+`)
)

// StripMarkdown removes bold, italic, underline and heading markers and trims
// the result. Everything else is kept verbatim.
func StripMarkdown(s string) string {
	s = boldRe.ReplaceAllString(s, "")
	s = italicRe.ReplaceAllString(s, "$1")
	s = underRe.ReplaceAllString(s, "")
	s = headingRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ActionStrategy extracts an action list from free-form model output.
// ok is false when the strategy found nothing usable.
type ActionStrategy interface {
	Parse(text string) (actions []string, ok bool)
}

// JSONArrayStrategy decodes the substring between the first '[' and the last
// ']'. Every element must be a string; an empty array is rejected.
type JSONArrayStrategy struct {
	Max int
}

func (s JSONArrayStrategy) Parse(text string) ([]string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, false
	}

	var raw []any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}

	actions := make([]string, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			return nil, false
		}
		actions = append(actions, str)
	}
	return truncate(actions, s.Max), true
}

// LineSplitStrategy splits on newlines, bullets, dashes and numbering, strips
// list markers and quotes, and drops fragments shorter than MinLen runes.
type LineSplitStrategy struct {
	MinLen int
	Max    int
}

func (s LineSplitStrategy) Parse(text string) ([]string, bool) {
	var parts []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		parts = append(parts, inlineMarkerRe.Split(line, -1)...)
	}

	var actions []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = listMarkerRe.ReplaceAllString(p, "")
		p = strings.Trim(p, " \t\"'`,[]")
		if utf8.RuneCountInString(p) < s.MinLen {
			continue
		}
		actions = append(actions, p)
		if s.Max > 0 && len(actions) == s.Max {
			break
		}
	}
	return actions, len(actions) > 0
}

// Strategies applied, in order, to a successful actions completion.
var (
	DefaultJSONArray ActionStrategy = JSONArrayStrategy{Max: MaxActions}
	DefaultLineSplit ActionStrategy = LineSplitStrategy{MinLen: MinFragmentLen, Max: MaxActions}
)

func truncate(actions []string, limit int) []string {
	if limit > 0 && len(actions) > limit {
		return actions[:limit]
	}
	return actions
}
