package cast

import (
	"strings"
	"testing"
)

func TestDeathSchedule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		character Character
		day       int
		dead      bool
	}{
		{VikramTheHunter, 1, false},
		{VikramTheHunter, 2, true},
		{VikramTheHunter, 4, true},
		{DiyaTheWeaver, 2, false},
		{DiyaTheWeaver, 3, true},
		{AmarTheElder, 3, false},
		{AmarTheElder, 4, true},
		{IshaanTheMiller, 4, false},
		{AnyaTheHerbalist, 4, false},
		{GuardCaptain, 4, false},
	}
	for _, tc := range cases {
		if got := IsDead(tc.character, tc.day); got != tc.dead {
			t.Errorf("IsDead(%s, %d) = %v, want %v", tc.character, tc.day, got, tc.dead)
		}
	}
}

func TestAliveAndDead(t *testing.T) {
	t.Parallel()

	if got := len(Alive(1)); got != 6 {
		t.Fatalf("Alive(1) has %d members, want 6", got)
	}
	if got := len(Alive(2)); got != 5 {
		t.Fatalf("Alive(2) has %d members, want 5", got)
	}
	if got := len(Alive(4)); got != 3 {
		t.Fatalf("Alive(4) has %d members, want 3", got)
	}

	dead := Dead(3)
	if len(dead) != 2 {
		t.Fatalf("Dead(3) = %v, want two members", dead)
	}
	if dead[0] != VikramTheHunter || dead[1] != DiyaTheWeaver {
		t.Fatalf("Dead(3) = %v, want [Vikram, Diya] in presentation order", dead)
	}
}

func TestVictimOn(t *testing.T) {
	t.Parallel()

	if c, ok := VictimOn(2); !ok || c != VikramTheHunter {
		t.Fatalf("VictimOn(2) = %q, %v; want Vikram", c, ok)
	}
	if _, ok := VictimOn(1); ok {
		t.Fatal("VictimOn(1) should report no victim")
	}
}

func TestImpostorSchedule(t *testing.T) {
	t.Parallel()

	if _, ok := ImpostorOn(1); ok {
		t.Fatal("day 1 should have no impostor")
	}
	if c, _ := ImpostorOn(2); c != DiyaTheWeaver {
		t.Fatalf("ImpostorOn(2) = %q, want Diya", c)
	}
	if c, _ := ImpostorOn(3); c != AmarTheElder {
		t.Fatalf("ImpostorOn(3) = %q, want Amar", c)
	}
	// Beyond the scripted entries the final-act default applies.
	for _, day := range []int{4, 5, 9} {
		c, ok := ImpostorOn(day)
		if !ok || c != AnyaTheHerbalist {
			t.Fatalf("ImpostorOn(%d) = %q, %v; want final-act Anya", day, c, ok)
		}
	}
	if !IsImpostor(AnyaTheHerbalist, 4) {
		t.Fatal("IsImpostor(Anya, 4) = false, want true")
	}
	if IsImpostor(AnyaTheHerbalist, 2) {
		t.Fatal("IsImpostor(Anya, 2) = true, want false")
	}
}

func TestPersonaPromptCoverage(t *testing.T) {
	t.Parallel()

	// Exact-match coverage per character; absent days mean unavailable.
	coverage := map[Character][]int{
		IshaanTheMiller:  {1, 2, 3},
		AnyaTheHerbalist: {1, 2, 3},
		VikramTheHunter:  {1},
		DiyaTheWeaver:    {1, 2},
		AmarTheElder:     {1, 2, 3},
		GuardCaptain:     {1},
	}
	for c, days := range coverage {
		for _, d := range days {
			if p, ok := PersonaPrompt(c, d); !ok || p == "" {
				t.Errorf("PersonaPrompt(%s, %d) missing", c, d)
			}
		}
	}
	if _, ok := PersonaPrompt(VikramTheHunter, 2); ok {
		t.Fatal("Vikram should have no day-2 persona")
	}
	if _, ok := PersonaPrompt(GuardCaptain, 4); ok {
		t.Fatal("Guard Captain should have no day-4 persona")
	}
}

func TestImpostorPrompt(t *testing.T) {
	t.Parallel()

	p := ImpostorPrompt(DiyaTheWeaver, 2)
	if !strings.Contains(p, "Diya the Weaver") {
		t.Fatal("impostor prompt should name the worn character")
	}
	if !strings.Contains(p, "Day 2") {
		t.Fatal("impostor prompt should carry the day")
	}
	if !strings.Contains(p, "Duskvale") {
		t.Fatal("impostor prompt should include world knowledge")
	}
}

func TestFallbackReply(t *testing.T) {
	t.Parallel()

	r := FallbackReply(AmarTheElder, 1)
	if r.Speech == "" || r.Clue == "" {
		t.Fatalf("FallbackReply(Amar, 1) = %+v, want speech and clue", r)
	}

	r = FallbackReply(VikramTheHunter, 3)
	if r.Speech != GenericFallbackReply {
		t.Fatalf("uncovered pair should yield generic reply, got %q", r.Speech)
	}
	if r.Clue != "" {
		t.Fatalf("generic reply should carry no clue, got %q", r.Clue)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	if !Valid(GuardCaptain) {
		t.Fatal("Guard Captain should be valid")
	}
	if Valid(Character("Kabir")) {
		t.Fatal("Kabir is not part of the living cast")
	}
}
