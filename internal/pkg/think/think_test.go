package think_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offlinellm/client-go/internal/pkg/think"
)

func TestSplitExtractsFirstSpan(t *testing.T) {
	parsed := think.Split("A<think>B</think>C")

	assert.Equal(t, "AC", parsed.Visible)
	assert.Equal(t, "B", parsed.Reasoning)
}

func TestSplitWithoutTag(t *testing.T) {
	parsed := think.Split("  plain answer \n")

	assert.Equal(t, "plain answer", parsed.Visible)
	assert.Empty(t, parsed.Reasoning)
}

func TestSplitRemovesAllSpansKeepsFirstReasoning(t *testing.T) {
	parsed := think.Split("a<think>one</think>b<think>two</think>c")

	assert.Equal(t, "abc", parsed.Visible)
	assert.Equal(t, "one", parsed.Reasoning)
}

func TestSplitCaseInsensitive(t *testing.T) {
	parsed := think.Split("x<THINK>hidden</THINK>y")

	assert.Equal(t, "xy", parsed.Visible)
	assert.Equal(t, "hidden", parsed.Reasoning)
}

func TestSplitSpansNewlines(t *testing.T) {
	parsed := think.Split("before\n<think>line one\nline two</think>\nafter")

	assert.Equal(t, "before\n\nafter", parsed.Visible)
	assert.Equal(t, "line one\nline two", parsed.Reasoning)
}

func TestSplitJoinsStreamingFragments(t *testing.T) {
	parsed := think.Split("A<thi", "nk>B</th", "ink>C")

	assert.Equal(t, "AC", parsed.Visible)
	assert.Equal(t, "B", parsed.Reasoning)
}

func TestSplitIdempotent(t *testing.T) {
	inputs := []string{
		"A<think>B</think>C",
		"no tags at all",
		"  <think>only reasoning</think>  ",
		"x<think>a</think>y<think>b</think>z",
	}

	for _, input := range inputs {
		first := think.Split(input)
		second := think.Split(first.Visible)

		assert.Equal(t, first.Visible, second.Visible, "input %q", input)
		assert.Empty(t, second.Reasoning, "input %q", input)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	parsed := think.Split("")

	assert.Empty(t, parsed.Visible)
	assert.Empty(t, parsed.Reasoning)
}
