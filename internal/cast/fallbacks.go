package cast

import "fmt"

// DeadReply is the fixed response for any character already found dead on the
// requested day. No model call is made and no history is recorded.
const DeadReply = "(This character is dead. You find only silence.)"

// UnavailableReply is the sentinel for a character with no persona defined
// for the requested day. Not an error; no model call is made.
const UnavailableReply = "The spirits are silent. (Character unavailable or dead)"

// GenericFallbackReply is the in-character stall used when the model backend
// fails and no canned entry exists for the (character, day) pair.
const GenericFallbackReply = "I... I cannot speak right now. (Server Error)"

// DeadClue is the canned journal clue auto-generated when a player
// interrogates a character already found dead.
func DeadClue(c Character) string {
	return fmt.Sprintf("%s confirmed dead", c)
}

// CannedReply is a pre-authored (speech, clue) pair served when the model
// backend is unreachable, so a turn never fails outright.
type CannedReply struct {
	Speech string
	Clue   string // empty means no journal entry
}

// cannedReplies keys pre-authored replies by (character, day). Coverage
// mirrors the persona table: only pairs a live model call could reach.
var cannedReplies = map[Character]map[int]CannedReply{
	IshaanTheMiller: {
		1: {
			Speech: "Arrey, I told you already — Kabir stood at the treeline like a statue, bhai. I am not going near those woods.",
			Clue:   "Kabir stood motionless at treeline",
		},
		2: {
			Speech: "Go away! The door stays barred. Vikram is dead and I heard the screaming and I did nothing.",
			Clue:   "Ishaan heard screaming, hid",
		},
		3: {
			Speech: "Hanuman protect us. Diya too... it is one of us now, bhai. One of us.",
			Clue:   "Ishaan suspects the living",
		},
	},
	AnyaTheHerbalist: {
		1: {
			Speech: "Kabir came to me sleepless, ji. He spoke of shedding his skin. That is not a sickness of the body.",
			Clue:   "Kabir spoke of shedding skin",
		},
		2: {
			Speech: "The cuts were a blade's work, ji, but no man drives a blade that deep.",
			Clue:   "Blade wounds, inhuman strength",
		},
		3: {
			Speech: "I brew poisons now, not medicines. Diya saw someone walking wrong. Remember that.",
			Clue:   "Diya saw someone walking wrong",
		},
	},
	VikramTheHunter: {
		1: {
			Speech: "Hmph. Kabir moved like a predator wearing a man. I should have loosed the arrow.",
			Clue:   "Vikram suspected Kabir for weeks",
		},
	},
	DiyaTheWeaver: {
		1: {
			Speech: "He asked... when people sleep. When the guard changes. His eyes were like a doll's...",
			Clue:   "Kabir asked about sleep, guard shifts",
		},
		2: {
			Speech: "It moved like liquid... tall, but bent wrong. Please don't leave me alone.",
			Clue:   "Killer moved wrong, bent figure",
		},
	},
	AmarTheElder: {
		1: {
			Speech: "A Rakshasa, beta. It kills, then wears the skin to walk among us. Kabir sought that power.",
			Clue:   "Rakshasa wears victims' skins",
		},
		2: {
			Speech: "The hunter became the hunted, as the verse foretold. Watch for the small mistakes, beta.",
			Clue:   "Look for flaws in behaviour",
		},
		3: {
			Speech: "Trust no one now, beta. Not even me. The demon may be in this very room.",
			Clue:   "Amar says trust no one",
		},
	},
	GuardCaptain: {
		1: {
			Speech: "Interrogate the households one by one and report back to the guard house. One of them is wearing a stolen face.",
			Clue:   "Captain: question every house",
		},
	},
}

// FallbackReply returns the canned reply for (c, day), or the generic
// cannot-speak stall with no clue when the table has no entry.
func FallbackReply(c Character, day int) CannedReply {
	if days, ok := cannedReplies[c]; ok {
		if r, ok := days[day]; ok {
			return r
		}
	}
	return CannedReply{Speech: GenericFallbackReply}
}
