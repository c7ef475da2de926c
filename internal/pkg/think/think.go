// Package think strips model reasoning traces from raw output. Some
// backends wrap the model's internal chain of thought in a
// <think>...</think> pair that must not be shown as the answer.
package think

import (
	"regexp"
	"strings"
)

var thinkRe = regexp.MustCompile(`(?is)<think>(.*?)</think>`)

type Parsed struct {
	// Visible is the full text with every think span removed, trimmed.
	Visible string
	// Reasoning is the inner text of the first think span, trimmed.
	Reasoning string
}

// Split separates an answer into its visible part and the optional
// reasoning trace. Fragments are joined first so callers accumulating
// streaming deltas can pass them directly. Split is idempotent: running
// it on its own Visible output changes nothing.
func Split(fragments ...string) Parsed {
	text := strings.Join(fragments, "")

	match := thinkRe.FindStringSubmatch(text)
	if match == nil {
		return Parsed{Visible: strings.TrimSpace(text)}
	}

	return Parsed{
		Visible:   strings.TrimSpace(thinkRe.ReplaceAllString(text, "")),
		Reasoning: strings.TrimSpace(match[1]),
	}
}
