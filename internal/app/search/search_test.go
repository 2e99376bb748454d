package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/app/model"
)

var transcript = []model.Utterance{
	{Speaker: "A", Text: "The budget review is next week."},
	{Speaker: "B", Text: "Budget cuts hit the budget hard."},
	{Speaker: "A", Text: "Nothing else to add."},
}

func TestFindOrdersMatchesByUtteranceThenOffset(t *testing.T) {
	matches := Find(transcript, "budget", true)
	require.Len(t, matches, 3)

	assert.Equal(t, 0, matches[0].UtteranceIndex)
	assert.Equal(t, 4, matches[0].CharStart)
	assert.Equal(t, 1, matches[1].UtteranceIndex)
	assert.Equal(t, 0, matches[1].CharStart)
	assert.Equal(t, 1, matches[2].UtteranceIndex)
	assert.Equal(t, 20, matches[2].CharStart)

	for _, m := range matches {
		assert.Equal(t, m.CharStart+len("budget"), m.CharEnd)
	}
}

func TestFindCaseSensitive(t *testing.T) {
	assert.Len(t, Find(transcript, "budget", false), 2)
	assert.Len(t, Find(transcript, "Budget", false), 1)
}

func TestFindEmptyTermOrNoMatches(t *testing.T) {
	assert.Empty(t, Find(transcript, "", true))
	assert.Empty(t, Find(transcript, "quarterly", true))
	assert.Empty(t, Find(nil, "budget", true))
}

func TestFindOffsetsIndexOriginalText(t *testing.T) {
	// 'İ' lowercases to a different byte length, so offsets computed against
	// a lowered copy of the text would drift.
	utterances := []model.Utterance{
		{Speaker: "A", Text: "İstanbul flight, then istanbul hotel"},
	}

	matches := Find(utterances, "istanbul", true)
	require.Len(t, matches, 2)

	assert.Equal(t, 0, matches[0].CharStart)
	assert.Equal(t, len("İstanbul"), matches[0].CharEnd)
	assert.Equal(t, "İstanbul", utterances[0].Text[matches[0].CharStart:matches[0].CharEnd])

	second := utterances[0].Text[matches[1].CharStart:matches[1].CharEnd]
	assert.Equal(t, "istanbul", second)
}

func TestNextWrapsCyclically(t *testing.T) {
	matches := Find(transcript, "budget", true) // 3 matches

	assert.Equal(t, 0, Next(matches, -1))
	assert.Equal(t, 1, Next(matches, 0))
	assert.Equal(t, 2, Next(matches, 1))
	assert.Equal(t, 0, Next(matches, 2), "next past the last match wraps to the first")
}

func TestPrevWrapsCyclically(t *testing.T) {
	matches := Find(transcript, "budget", true)

	assert.Equal(t, 2, Prev(matches, -1))
	assert.Equal(t, 2, Prev(matches, 0), "prev before the first match wraps to the last")
	assert.Equal(t, 0, Prev(matches, 1))
	assert.Equal(t, 1, Prev(matches, 2))
}

func TestSingleMatchWrapsToItself(t *testing.T) {
	matches := Find(transcript, "review", true)
	require.Len(t, matches, 1)

	assert.Equal(t, 0, Next(matches, 0))
	assert.Equal(t, 0, Prev(matches, 0))
}

func TestNavigationWithNoMatches(t *testing.T) {
	assert.Equal(t, -1, Next(nil, 0))
	assert.Equal(t, -1, Prev(nil, 0))
}
