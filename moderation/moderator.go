// Package moderation masks blacklisted words in message content before
// any event is derived from it.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"studychat/errors"
)

// Moderator holds a prebuilt Aho-Corasick automaton over the normalized
// word list. Matching is case-insensitive and skips punctuation noise
// between letters; replacement preserves the original content length.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

func NewModerator(words []string, replacement rune) (*Moderator, error) {
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		normalized, _ := normalize(word)
		if len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, replacement: replacement}, nil
}

// Censor returns content with every blacklisted span masked, plus the
// normalized words that matched.
func (m *Moderator) Censor(content string) (string, []string) {
	normalized, index := normalize(content)
	if len(normalized) == 0 {
		return content, nil
	}

	terms := m.matcher.MultiPatternSearch(normalized, false)
	if len(terms) == 0 {
		return content, nil
	}

	runes := []rune(content)
	found := make([]string, 0, len(terms))
	for _, term := range terms {
		found = append(found, string(term.Word))

		start := term.Pos
		end := start + len(term.Word)
		if start < 0 || end > len(index) {
			continue
		}
		// Map normalized positions back to original rune positions.
		for i := index[start]; i <= index[end-1]; i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes), found
}

// normalize lowercases content and drops non-alphanumeric runes, keeping
// a map from normalized positions back to original rune positions.
func normalize(content string) ([]rune, []int) {
	runes := []rune(content)
	normalized := make([]rune, 0, len(runes))
	index := make([]int, 0, len(runes))
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
		index = append(index, i)
	}
	return normalized, index
}
