package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []Entry
	}{
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{
			name: "positions and bare email",
			raw:  "a@x.edu(GSI), b@x.edu",
			want: []Entry{
				{Email: "a@x.edu", Position: "GSI"},
				{Email: "b@x.edu", Position: ""},
			},
		},
		{
			name: "whitespace everywhere",
			raw:  "  a@x.edu ( Lab Assistant )  ,\tb@x.edu\n",
			want: []Entry{
				{Email: "a@x.edu", Position: "Lab Assistant"},
				{Email: "b@x.edu", Position: ""},
			},
		},
		{
			name: "blank terms are skipped",
			raw:  ",, a@x.edu(GSI),  ,",
			want: []Entry{
				{Email: "a@x.edu", Position: "GSI"},
			},
		},
		{
			name: "term without email is skipped",
			raw:  "(GSI), b@x.edu(Reader)",
			want: []Entry{
				{Email: "b@x.edu", Position: "Reader"},
			},
		},
		{
			name: "embedded parentheses are kept",
			raw:  "a@x.edu(GSI (Head))",
			want: []Entry{
				{Email: "a@x.edu", Position: "GSI (Head)"},
			},
		},
		{
			name: "missing closing parenthesis",
			raw:  "a@x.edu(GSI",
			want: []Entry{
				{Email: "a@x.edu", Position: "GSI"},
			},
		},
		{
			name: "empty parentheses",
			raw:  "a@x.edu()",
			want: []Entry{
				{Email: "a@x.edu", Position: ""},
			},
		},
		{
			name: "duplicates are kept in order",
			raw:  "a@x.edu(GSI), a@x.edu(Reader)",
			want: []Entry{
				{Email: "a@x.edu", Position: "GSI"},
				{Email: "a@x.edu", Position: "Reader"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.raw))
		})
	}
}

func TestLookup(t *testing.T) {
	entries := Parse("a@x.edu(GSI), a@x.edu(Reader), b@x.edu")

	testCases := []struct {
		name         string
		email        string
		wantPosition string
		wantOK       bool
	}{
		{name: "first match wins", email: "a@x.edu", wantPosition: "GSI", wantOK: true},
		{name: "bare email", email: "b@x.edu", wantPosition: "", wantOK: true},
		{name: "case sensitive", email: "A@x.edu", wantOK: false},
		{name: "trimmed input", email: " b@x.edu ", wantPosition: "", wantOK: true},
		{name: "unknown", email: "c@x.edu", wantOK: false},
		{name: "empty", email: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			position, ok := Lookup(entries, tc.email)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantPosition, position)
		})
	}
}

func TestLabelled(t *testing.T) {
	entries := Parse("a@x.edu(GSI), b@x.edu")

	labelled := Labelled(entries, "Member")

	assert.Equal(t, []Entry{
		{Email: "a@x.edu", Position: "GSI"},
		{Email: "b@x.edu", Position: "Member"},
	}, labelled)

	// the parsed entries are left untouched
	assert.Equal(t, "", entries[1].Position)
}
