package progression

// Level returns the number of ladder thresholds reached by totalXP. The first
// threshold is 0, so level 1 is the floor for a new user rather than 0. The
// level stops growing at the top of the ladder.
func (e *Engine) Level(totalXP int) int {
	level := 0
	for _, threshold := range e.thresholds {
		if totalXP < threshold {
			break
		}
		level++
	}
	return level
}

// MaxLevel is the highest reachable level.
func (e *Engine) MaxLevel() int {
	return len(e.thresholds)
}

// LevelProgress describes XP within the current level.
type LevelProgress struct {
	Level   int
	Floor   int
	Ceiling int
	Max     bool
}

// Fraction returns how far xp is between Floor and Ceiling, in [0,1].
func (p LevelProgress) Fraction(xp int) float64 {
	if p.Max || p.Ceiling <= p.Floor {
		return 1
	}
	f := float64(xp-p.Floor) / float64(p.Ceiling-p.Floor)
	return min(max(f, 0), 1)
}

// Progress returns the XP bounds of the level containing totalXP.
func (e *Engine) Progress(totalXP int) LevelProgress {
	level := e.Level(totalXP)
	p := LevelProgress{Level: level}
	if level > 0 {
		p.Floor = e.thresholds[level-1]
	}
	if level >= len(e.thresholds) {
		p.Ceiling = p.Floor
		p.Max = true
		return p
	}
	p.Ceiling = e.thresholds[level]
	return p
}
