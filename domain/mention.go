package domain

import "regexp"

// A handle is recognized after whitespace: " @alice" matches, "a@b" does not.
// The leading boundary is deliberate and mirrors how users type mentions.
var mentionPattern = regexp.MustCompile(`\s@([\w_-]+)`)

// ExtractMentions returns every mentioned handle in text, left to right.
// Duplicates are kept: mentioning the same user twice yields two entries.
// No mentions found is not an error, the result is simply empty.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	handles := make([]string, 0, len(matches))
	for _, match := range matches {
		handles = append(handles, match[1])
	}
	return handles
}
