package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"meetscribe/internal/app/model"
)

// Match locates one occurrence of a search term inside a transcript. Derived
// per query, never persisted.
type Match struct {
	UtteranceIndex int
	CharStart      int
	CharEnd        int
}

// Find locates every occurrence of term across the utterances, in utterance
// order and left-to-right within each utterance.
func Find(utterances []model.Utterance, term string, caseInsensitive bool) []Match {
	if term == "" {
		return nil
	}

	var matches []Match
	for i, u := range utterances {
		for _, s := range scan(u.Text, term, caseInsensitive) {
			matches = append(matches, Match{
				UtteranceIndex: i,
				CharStart:      s.start,
				CharEnd:        s.end,
			})
		}
	}
	return matches
}

type span struct{ start, end int }

// scan finds non-overlapping occurrences left to right. Case folding happens
// per rune during comparison, never on a lowered copy of the text, so the
// byte offsets always index the original string even for runes whose
// lowercase form has a different length.
func scan(text, term string, caseInsensitive bool) []span {
	var out []span
	if !caseInsensitive {
		offset := 0
		for {
			idx := strings.Index(text[offset:], term)
			if idx < 0 {
				break
			}
			start := offset + idx
			out = append(out, span{start: start, end: start + len(term)})
			offset = start + len(term)
		}
		return out
	}

	termRunes := []rune(term)
	for i := 0; i < len(text); {
		if end, ok := matchFoldAt(text, i, termRunes); ok {
			out = append(out, span{start: i, end: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return out
}

// matchFoldAt reports whether term matches text at byte offset at, ignoring
// case, and returns the byte offset just past the match.
func matchFoldAt(text string, at int, term []rune) (int, bool) {
	j := at
	for _, tr := range term {
		if j >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[j:])
		if unicode.ToLower(r) != unicode.ToLower(tr) {
			return 0, false
		}
		j += size
	}
	return j, true
}

// Next steps to the following match, wrapping past the last one back to the
// first. A single match wraps to itself. Returns -1 when there are no
// matches.
func Next(matches []Match, current int) int {
	if len(matches) == 0 {
		return -1
	}
	if current < 0 {
		return 0
	}
	return (current + 1) % len(matches)
}

// Prev steps to the preceding match, wrapping before the first one to the
// last.
func Prev(matches []Match, current int) int {
	if len(matches) == 0 {
		return -1
	}
	if current < 0 {
		return len(matches) - 1
	}
	return (current - 1 + len(matches)) % len(matches)
}
