package progression

// Stat is one of the five leveled character channels.
type Stat string

const (
	StatSTR Stat = "STR" // fitness
	StatVIT Stat = "VIT" // health
	StatINT Stat = "INT" // learning
	StatWIS Stat = "WIS" // discipline
	StatCHA Stat = "CHA" // social
)

// Stats lists every primary stat in display order.
var Stats = []Stat{StatSTR, StatVIT, StatINT, StatWIS, StatCHA}

func (s Stat) IsValid() bool {
	switch s {
	case StatSTR, StatVIT, StatINT, StatWIS, StatCHA:
		return true
	default:
		return false
	}
}

// State is a user's full progression snapshot. It is a value: update
// functions take a State and return a new one, and the host persists
// whatever comes back.
type State struct {
	XP      map[Stat]int
	TotalXP int
	RR      int
	// Counters maintained alongside the stats, feeding achievement
	// conditions.
	WeeksApplied int
}

// NewState returns an empty progression state.
func NewState() State {
	return State{XP: map[Stat]int{}}
}

// Clone deep-copies the state so updates never alias the input.
func (s State) Clone() State {
	xp := make(map[Stat]int, len(s.XP))
	for k, v := range s.XP {
		xp[k] = v
	}
	s.XP = xp
	return s
}

// StatLevel returns the stat's current level from its accumulated XP.
func (s State) StatLevel(stat Stat) int {
	return LevelForXP(s.XP[stat])
}

// Level returns the aggregate character level from total XP.
func (s State) Level() int {
	return LevelForXP(s.TotalXP)
}

// StatSnapshot describes one leveled channel for display.
type StatSnapshot struct {
	Stat      Stat
	Level     int
	XP        int // XP inside the current level
	XPForNext int // XP still needed to reach the next level
}

// Snapshot expands a stat into its level and intra-level XP window.
func (s State) Snapshot(stat Stat) StatSnapshot {
	total := s.XP[stat]
	level := LevelForXP(total)
	floor := XPRequiredForLevel(level)
	next := XPRequiredForLevel(level + 1)
	return StatSnapshot{
		Stat:      stat,
		Level:     level,
		XP:        total - floor,
		XPForNext: next - total,
	}
}
