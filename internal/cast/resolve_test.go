package cast

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  Character
		ok    bool
	}{
		{"full name", "Anya the Herbalist", AnyaTheHerbalist, true},
		{"full name lowercase", "guard captain", GuardCaptain, true},
		{"first name only", "anya", AnyaTheHerbalist, true},
		{"first name mixed case", "Vikram", VikramTheHunter, true},
		{"role token", "captain", GuardCaptain, true},
		{"trailing space", "  amar  ", AmarTheElder, true},
		{"phonetic misspelling", "vikrum", VikramTheHunter, true},
		{"phonetic first name", "deeya", DiyaTheWeaver, true},
		{"typo full name", "ishan the miller", IshaanTheMiller, true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"stranger", "kabir", "", false},
		{"gibberish", "zzzzqqq", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(tc.input)
			if ok != tc.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestResolvePrefersExactOverPhonetic(t *testing.T) {
	t.Parallel()

	// "diya" is an exact first-name match and must not be outranked by any
	// phonetically similar cast member.
	got, ok := Resolve("diya")
	if !ok || got != DiyaTheWeaver {
		t.Fatalf("Resolve(diya) = %q, %v; want Diya the Weaver", got, ok)
	}
}
