// Package cast holds the static narrative data for the Duskvale mystery:
// the closed set of village characters, the scripted death and impostor
// schedules, per-day persona prompts, the shared world knowledge, and the
// canned replies used when the model backend is unavailable.
//
// Everything in this package is immutable after process start and safe for
// unlimited concurrent reads.
package cast

// Character identifies one of the six villagers. The set is closed; requests
// naming anyone else are rejected at the transport layer after fuzzy
// resolution fails.
type Character string

const (
	IshaanTheMiller  Character = "Ishaan the Miller"
	AnyaTheHerbalist Character = "Anya the Herbalist"
	VikramTheHunter  Character = "Vikram the Hunter"
	DiyaTheWeaver    Character = "Diya the Weaver"
	AmarTheElder     Character = "Amar the Elder"
	GuardCaptain     Character = "Guard Captain"
)

// Characters lists the full cast in presentation order.
var Characters = []Character{
	IshaanTheMiller,
	AnyaTheHerbalist,
	VikramTheHunter,
	DiyaTheWeaver,
	AmarTheElder,
	GuardCaptain,
}

// deathSchedule maps a day to the character found dead that morning.
// A character scheduled to die on day D is unreachable for every day >= D.
var deathSchedule = map[int]Character{
	2: VikramTheHunter, // the hunter becomes the hunted
	3: DiyaTheWeaver,   // saw too much
	4: AmarTheElder,    // knew the truth
}

// impostorSchedule maps a day to the character secretly worn by the
// skinwalker on that day. Days without an entry below FinalActDay have no
// impostor among the reachable cast.
var impostorSchedule = map[int]Character{
	2: DiyaTheWeaver,
	3: AmarTheElder,
}

// FinalActDay is the cutoff beyond the scripted schedule. From this day on,
// absent an explicit entry, the skinwalker has settled into its final skin.
const FinalActDay = 4

// finalActImpostor is the default impostor assumed for days >= FinalActDay
// that have no scheduled entry.
const finalActImpostor = AnyaTheHerbalist

// Valid reports whether c names a member of the closed cast.
func Valid(c Character) bool {
	for _, known := range Characters {
		if known == c {
			return true
		}
	}
	return false
}

// DeathDay returns the scripted day on which c is found dead, and whether c
// is scripted to die at all.
func DeathDay(c Character) (int, bool) {
	for day, victim := range deathSchedule {
		if victim == c {
			return day, true
		}
	}
	return 0, false
}

// VictimOn returns the character found dead on the morning of day, if any.
func VictimOn(day int) (Character, bool) {
	c, ok := deathSchedule[day]
	return c, ok
}

// IsDead reports whether c is unreachable on day: true once the scripted
// death day has arrived.
func IsDead(c Character, day int) bool {
	deathDay, ok := DeathDay(c)
	return ok && day >= deathDay
}

// Alive returns the cast members still reachable on day, in presentation
// order.
func Alive(day int) []Character {
	out := make([]Character, 0, len(Characters))
	for _, c := range Characters {
		if !IsDead(c, day) {
			out = append(out, c)
		}
	}
	return out
}

// Dead returns the cast members already found dead by day, in presentation
// order.
func Dead(day int) []Character {
	var out []Character
	for _, c := range Characters {
		if IsDead(c, day) {
			out = append(out, c)
		}
	}
	return out
}

// ImpostorOn returns the character the skinwalker is wearing on day, and
// whether there is one at all. Scheduled entries win; from FinalActDay
// onward the final-act impostor is assumed for unscheduled days.
func ImpostorOn(day int) (Character, bool) {
	if c, ok := impostorSchedule[day]; ok {
		return c, true
	}
	if day >= FinalActDay {
		return finalActImpostor, true
	}
	return "", false
}

// IsImpostor reports whether c is the skinwalker's disguise on day.
func IsImpostor(c Character, day int) bool {
	impostor, ok := ImpostorOn(day)
	return ok && impostor == c
}
