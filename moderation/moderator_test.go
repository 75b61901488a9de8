package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"studychat/errors"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name:     "Uppercase with internal punctuation",
			input:    "Look at the B.A.D.G.E.R !",
			expected: "Look at the *********** !",
			words:    []string{"badger"},
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			words:    []string{"badger"},
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
			words:    []string{"badger"},
		},
		{
			name:     "Nothing to censor",
			input:    "Posting messages is amazing",
			expected: "Posting messages is amazing",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			censored, found := mod.Censor(tt.input)
			require.Equal(t, tt.expected, censored)
			require.Equal(t, tt.words, found)
		})
	}
}

func TestModerator_Empty_Dictionary(t *testing.T) {
	_, err := NewModerator(nil, replacementChar)
	require.ErrorIs(t, err, errors.ErrEmptyWords)
}

func TestModerator_Empty_Content(t *testing.T) {
	mod, err := NewModerator([]string{"badger"}, replacementChar)
	require.NoError(t, err)

	censored, found := mod.Censor("   ")
	require.Equal(t, "   ", censored)
	require.Nil(t, found)
}
