// Package whitelist parses the group "whitelist" setting, a comma separated list of
// email(Position) terms, and answers who is on it.
//
// The list is parsed on every call and never stored in parsed form.
package whitelist

import "strings"

const (
	termSeparator = ","
	positionOpen  = "("
	positionClose = ")"
)

// Entry is one whitelisted email. Position is empty for a bare email.
type Entry struct {
	Email    string `json:"email"`
	Position string `json:"position"`
}

// Parse splits raw into entries.
//
// Each comma separated term is cut at its first "(": the left side is the email, the right side
// minus one trailing ")" is the position. Both sides are trimmed, parentheses inside the position
// are kept. Blank terms and terms without an email are skipped.
func Parse(raw string) []Entry {
	var entries []Entry

	for _, term := range strings.Split(raw, termSeparator) {
		email, position, _ := strings.Cut(term, positionOpen)

		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}

		position = strings.TrimSpace(position)
		position = strings.TrimSpace(strings.TrimSuffix(position, positionClose))

		entries = append(entries, Entry{Email: email, Position: position})
	}

	return entries
}

// Lookup returns the position of the first entry whose email equals email exactly.
// The comparison is case-sensitive; email is trimmed first.
func Lookup(entries []Entry, email string) (string, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", false
	}

	for _, e := range entries {
		if e.Email == email {
			return e.Position, true
		}
	}

	return "", false
}

// Labelled returns a copy of entries where blank positions read fallback.
func Labelled(entries []Entry, fallback string) []Entry {
	out := make([]Entry, len(entries))

	for i, e := range entries {
		if e.Position == "" {
			e.Position = fallback
		}

		out[i] = e
	}

	return out
}
