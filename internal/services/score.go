package services

import "github.com/pmarinho/classxp/internal/models"

// PointsTable maps each criterion to its XP value. The table is injected into
// the scoring paths and treated as immutable after construction.
type PointsTable map[models.CheckType]int

// DefaultPoints returns the stock point values.
func DefaultPoints() PointsTable {
	return PointsTable{
		models.CheckPresence:    10,
		models.CheckTask:        20,
		models.CheckInClassTask: 15,
		models.CheckVerse:       40,
		models.CheckBehavior:    15,
		models.CheckMaterial:    15,
	}
}

// EffectiveChecks applies the presence gate: when the student is absent every
// participation-dependent check counts as false, whatever was stored.
func EffectiveChecks(c models.StudentChecks) models.StudentChecks {
	if c.Presence {
		return c
	}
	return models.StudentChecks{}
}

// CountDailyTasks returns how many of the six weekday slots are checked.
// Keys outside the known weekday set are ignored.
func CountDailyTasks(dt models.DailyTasks) int {
	n := 0
	for _, k := range models.WeekdayKeys {
		if dt[k] {
			n++
		}
	}
	return n
}

// checkDone reports whether a criterion counts as completed, honoring the
// class task mode. In daily mode the task criterion is completed when at
// least one weekday slot is checked.
func checkDone(c models.StudentChecks, t models.CheckType, taskMode string) bool {
	if t == models.CheckTask && taskMode == models.TaskModeDaily {
		return CountDailyTasks(c.DailyTasks) > 0
	}
	return c.Get(t)
}

// DailyScore sums the point values of every tracked, completed criterion for
// one student on one session date. In daily task mode each checked weekday
// counts as one whole task point event.
func DailyScore(checks models.StudentChecks, tracked map[models.CheckType]bool, taskMode string, points PointsTable) int {
	checks = EffectiveChecks(checks)
	score := 0
	for _, t := range models.AllChecks {
		if !tracked[t] {
			continue
		}
		if t == models.CheckTask && taskMode == models.TaskModeDaily {
			score += CountDailyTasks(checks.DailyTasks) * points[t]
			continue
		}
		if checks.Get(t) {
			score += points[t]
		}
	}
	return score
}

// CompletionPercent is the share of tracked criteria completed on one session
// date, in [0,100]. Presence counts as one of the tracked criteria. A class
// tracking nothing yields 0, never a division by zero.
func CompletionPercent(checks models.StudentChecks, tracked map[models.CheckType]bool, taskMode string) float64 {
	checks = EffectiveChecks(checks)
	total, done := 0, 0
	for _, t := range models.AllChecks {
		if !tracked[t] {
			continue
		}
		total++
		if checkDone(checks, t, taskMode) {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// XPPerLevel is the fixed XP threshold of every level; there is no
// level-dependent curve.
const XPPerLevel = 100

// LevelFromXP converts cumulative XP into the level progression shown on the
// student card. Negative XP is clamped to zero.
func LevelFromXP(xp int) (level, levelXP, xpPercent int) {
	if xp < 0 {
		xp = 0
	}
	level = xp / XPPerLevel
	levelXP = xp % XPPerLevel
	xpPercent = levelXP
	if xpPercent > 100 {
		xpPercent = 100
	}
	return level, levelXP, xpPercent
}
