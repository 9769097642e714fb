package models

// CheckType identifies one trackable evaluation dimension in a class session.
type CheckType string

const (
	CheckPresence    CheckType = "presence"
	CheckVerse       CheckType = "verse"
	CheckBehavior    CheckType = "behavior"
	CheckMaterial    CheckType = "material"
	CheckInClassTask CheckType = "inClassTask"
	CheckTask        CheckType = "task"
)

// AllChecks lists every criterion in display order.
var AllChecks = []CheckType{CheckPresence, CheckVerse, CheckBehavior, CheckMaterial, CheckInClassTask, CheckTask}

// KnownCheck reports whether t is one of the closed set of criteria.
func KnownCheck(t CheckType) bool {
	for _, c := range AllChecks {
		if c == t {
			return true
		}
	}
	return false
}

// Task tracking modes. In "unique" mode the task criterion is a single
// per-session boolean; in "daily" mode it is graded per weekday.
const (
	TaskModeUnique = "unique"
	TaskModeDaily  = "daily"
)

// WeekdayKeys are the six weekday abbreviations used by daily task mode.
// Sunday is the session day itself and has no slot.
var WeekdayKeys = []string{"mon", "tue", "wed", "thu", "fri", "sat"}

// KnownWeekday reports whether k is one of the six weekday keys.
func KnownWeekday(k string) bool {
	for _, w := range WeekdayKeys {
		if w == k {
			return true
		}
	}
	return false
}

// DailyTasks maps a weekday key to whether the take-home task was done that day.
type DailyTasks map[string]bool

// StudentChecks holds one student's checklist for a single session date.
// The zero value means "no checks recorded".
type StudentChecks struct {
	Presence    bool       `json:"presence"`
	Verse       bool       `json:"verse"`
	Behavior    bool       `json:"behavior"`
	Material    bool       `json:"material"`
	InClassTask bool       `json:"inClassTask"`
	Task        bool       `json:"task"`
	DailyTasks  DailyTasks `json:"dailyTasks,omitempty"`
}

// Get returns the stored value for a boolean criterion.
func (c StudentChecks) Get(t CheckType) bool {
	switch t {
	case CheckPresence:
		return c.Presence
	case CheckVerse:
		return c.Verse
	case CheckBehavior:
		return c.Behavior
	case CheckMaterial:
		return c.Material
	case CheckInClassTask:
		return c.InClassTask
	case CheckTask:
		return c.Task
	}
	return false
}

// Set stores the value for a boolean criterion. Unknown criteria are ignored.
func (c *StudentChecks) Set(t CheckType, v bool) {
	switch t {
	case CheckPresence:
		c.Presence = v
	case CheckVerse:
		c.Verse = v
	case CheckBehavior:
		c.Behavior = v
	case CheckMaterial:
		c.Material = v
	case CheckInClassTask:
		c.InClassTask = v
	case CheckTask:
		c.Task = v
	}
}

// Clone returns a copy that shares no mutable state with the receiver.
func (c StudentChecks) Clone() StudentChecks {
	out := c
	if c.DailyTasks != nil {
		out.DailyTasks = make(DailyTasks, len(c.DailyTasks))
		for k, v := range c.DailyTasks {
			out.DailyTasks[k] = v
		}
	}
	return out
}

// Student is one enrolled student. TotalXP is cumulative across all committed
// sessions; Checks is only the currently open session's snapshot.
type Student struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	BirthDate string        `json:"birthDate,omitempty"` // YYYY-MM-DD
	TotalXP   int           `json:"totalXp"`
	Checks    StudentChecks `json:"checks"`
}

type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassConfig describes one class: who attends it, who teaches it and which
// criteria are tracked. Untracked criteria are excluded from every rate
// computation, not merely hidden.
type ClassConfig struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Color        string             `json:"color,omitempty"`
	Teachers     []Teacher          `json:"teachers,omitempty"`
	TrackedItems map[CheckType]bool `json:"trackedItems"`
	TaskMode     string             `json:"taskMode,omitempty"`
	Students     []Student          `json:"students"`
}

// Clone returns a copy that shares no mutable state with the receiver.
func (c ClassConfig) Clone() ClassConfig {
	out := c
	if c.Teachers != nil {
		out.Teachers = append([]Teacher(nil), c.Teachers...)
	}
	if c.TrackedItems != nil {
		out.TrackedItems = make(map[CheckType]bool, len(c.TrackedItems))
		for k, v := range c.TrackedItems {
			out.TrackedItems[k] = v
		}
	}
	if c.Students != nil {
		out.Students = make([]Student, len(c.Students))
		for i, st := range c.Students {
			st.Checks = st.Checks.Clone()
			out.Students[i] = st
		}
	}
	return out
}

// Student returns the enrolled student with the given id, or nil.
func (c *ClassConfig) Student(id string) *Student {
	for i := range c.Students {
		if c.Students[i].ID == id {
			return &c.Students[i]
		}
	}
	return nil
}

// Lesson status values.
const (
	LessonHeld      = "held"
	LessonCancelled = "cancelled"
)

// DailyLesson records what happened (or did not happen) on one session date.
// No entry at all means "unknown": neither held nor cancelled.
type DailyLesson struct {
	TeacherID          string `json:"teacherId,omitempty"`
	Title              string `json:"title,omitempty"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}

// XPEvent is one per-criterion XP delta recorded when a session is committed.
// Storing true deltas keeps the XP-by-criterion report exact instead of
// approximated from totals.
type XPEvent struct {
	ClassID   string    `json:"classId"`
	StudentID string    `json:"studentId"`
	DateKey   string    `json:"dateKey"`
	Criterion CheckType `json:"criterion"`
	Points    int       `json:"points"`
}

// Document is the single persisted record-store document. It is read and
// written wholesale; there is no partial update.
type Document struct {
	Classes        []ClassConfig                                  `json:"classes"`
	Lessons        map[string]map[string]DailyLesson              `json:"lessons"`
	StudentRecords map[string]map[string]map[string]StudentChecks `json:"studentRecords"`
	XPEvents       []XPEvent                                      `json:"xpEvents,omitempty"`
}

// EmptyDocument returns the document a fresh deployment starts from.
func EmptyDocument() *Document {
	return &Document{
		Classes:        []ClassConfig{},
		Lessons:        map[string]map[string]DailyLesson{},
		StudentRecords: map[string]map[string]map[string]StudentChecks{},
	}
}
