package interpret

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		raw        string
		wantSpeech string
		wantClue   string
	}{
		{
			name:       "strict marker",
			raw:        "Hello there.|||JOURNAL: Found a clue",
			wantSpeech: "Hello there.",
			wantClue:   "Found a clue",
		},
		{
			name:       "strict marker no clue text",
			raw:        "Nothing more to say.|||JOURNAL:",
			wantSpeech: "Nothing more to say.",
			wantClue:   "",
		},
		{
			name:       "loose marker with lowercase label",
			raw:        "Text|||Journal: something",
			wantSpeech: "Text",
			wantClue:   "something",
		},
		{
			name:       "loose marker mentions journal without label",
			raw:        "I saw him.||| for the JOURNAL maybe",
			wantSpeech: "I saw him.",
			wantClue:   "for the JOURNAL maybe",
		},
		{
			name:       "loose marker without journal mention",
			raw:        "Go away.||| ignore this",
			wantSpeech: "Go away.",
			wantClue:   "",
		},
		{
			name:       "no marker",
			raw:        "The woods are quiet tonight.",
			wantSpeech: "The woods are quiet tonight.",
			wantClue:   "",
		},
		{
			name:       "no marker keeps whitespace verbatim",
			raw:        "  padded reply  ",
			wantSpeech: "  padded reply  ",
			wantClue:   "",
		},
		{
			name:       "empty input",
			raw:        "",
			wantSpeech: "",
			wantClue:   "",
		},
		{
			name:       "marker first",
			raw:        "|||JOURNAL: Only a clue",
			wantSpeech: "",
			wantClue:   "Only a clue",
		},
		{
			name:       "strict wins over a later loose marker",
			raw:        "A|||JOURNAL: clue ||| trailing",
			wantSpeech: "A",
			wantClue:   "clue ||| trailing",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tc.raw)
			if got.Speech != tc.wantSpeech {
				t.Errorf("Parse(%q).Speech = %q, want %q", tc.raw, got.Speech, tc.wantSpeech)
			}
			if got.Clue != tc.wantClue {
				t.Errorf("Parse(%q).Clue = %q, want %q", tc.raw, got.Clue, tc.wantClue)
			}
			if got.HasClue() != (tc.wantClue != "") {
				t.Errorf("Parse(%q).HasClue() = %v", tc.raw, got.HasClue())
			}
		})
	}
}
