package services

import "github.com/pmarinho/classxp/internal/models"

// RecordStore abstracts the persistence operations required by RecordService.
type RecordStore interface {
	GetClass(id string) *models.ClassConfig
	UpdateClass(c *models.ClassConfig) bool
	GetChecks(classID, dateKey, studentID string) (models.StudentChecks, bool)
	PutChecks(classID, dateKey, studentID string, c models.StudentChecks)
	GetLesson(classID, dateKey string) (models.DailyLesson, bool)
	SetLesson(classID, dateKey string, l models.DailyLesson)
	ListChecksByDate(classID, dateKey string) map[string]models.StudentChecks
	AddXPEvents(evs []models.XPEvent)
	HasXPEvents(classID, dateKey string) bool
}

// RecordService owns the per-session checklist workflow: toggling checks,
// setting lesson status and committing a session into XP.
type RecordService struct {
	store  RecordStore
	points PointsTable
}

func NewRecordService(store RecordStore, points PointsTable) *RecordService {
	return &RecordService{store: store, points: points}
}

func (s *RecordService) lookup(classID, dateKey, studentID string) (*models.ClassConfig, *models.Student, error) {
	cls := s.store.GetClass(classID)
	if cls == nil {
		return nil, nil, NewNotFoundError("class not found")
	}
	if _, err := models.ParseDateKey(dateKey); err != nil {
		return nil, nil, NewInvalidError("dateKey must be YYYY-MM-DD")
	}
	st := cls.Student(studentID)
	if st == nil {
		return nil, nil, NewNotFoundError("student not found")
	}
	return cls, st, nil
}

// ToggleCheck sets one boolean criterion for a (student, date). The record is
// created on first toggle and mutated in place afterwards. Non-presence
// criteria cannot be checked while the student is marked absent; clearing
// presence clears everything else for that date.
func (s *RecordService) ToggleCheck(classID, dateKey, studentID string, criterion models.CheckType, value bool) (models.StudentChecks, error) {
	cls, st, err := s.lookup(classID, dateKey, studentID)
	if err != nil {
		return models.StudentChecks{}, err
	}
	if !models.KnownCheck(criterion) {
		return models.StudentChecks{}, NewInvalidError("unknown criterion: " + string(criterion))
	}
	if !cls.TrackedItems[criterion] {
		return models.StudentChecks{}, NewInvalidError("criterion is not tracked for this class")
	}
	if criterion == models.CheckTask && cls.TaskMode == models.TaskModeDaily {
		return models.StudentChecks{}, NewInvalidError("task is graded per weekday for this class")
	}

	chk, _ := s.store.GetChecks(classID, dateKey, studentID)
	if criterion != models.CheckPresence && value && !chk.Presence {
		return models.StudentChecks{}, NewInvalidError("student is absent on this date")
	}
	chk.Set(criterion, value)
	if criterion == models.CheckPresence && !value {
		chk = models.StudentChecks{}
	}
	s.store.PutChecks(classID, dateKey, studentID, chk)

	// mirror the toggled session as the student's open-session snapshot
	st.Checks = chk.Clone()
	s.store.UpdateClass(cls)
	return chk, nil
}

// ToggleDailyTask sets one weekday slot of the take-home task for a class in
// daily task mode.
func (s *RecordService) ToggleDailyTask(classID, dateKey, studentID, weekday string, value bool) (models.StudentChecks, error) {
	cls, st, err := s.lookup(classID, dateKey, studentID)
	if err != nil {
		return models.StudentChecks{}, err
	}
	if cls.TaskMode != models.TaskModeDaily {
		return models.StudentChecks{}, NewInvalidError("class does not grade tasks per weekday")
	}
	if !cls.TrackedItems[models.CheckTask] {
		return models.StudentChecks{}, NewInvalidError("criterion is not tracked for this class")
	}
	if !models.KnownWeekday(weekday) {
		return models.StudentChecks{}, NewInvalidError("unknown weekday: " + weekday)
	}

	chk, _ := s.store.GetChecks(classID, dateKey, studentID)
	if value && !chk.Presence {
		return models.StudentChecks{}, NewInvalidError("student is absent on this date")
	}
	if chk.DailyTasks == nil {
		chk.DailyTasks = models.DailyTasks{}
	}
	chk.DailyTasks[weekday] = value
	s.store.PutChecks(classID, dateKey, studentID, chk)

	st.Checks = chk.Clone()
	s.store.UpdateClass(cls)
	return chk, nil
}

// SetLesson records a lesson as held or cancelled for a (class, date).
func (s *RecordService) SetLesson(classID, dateKey string, lesson models.DailyLesson) error {
	if s.store.GetClass(classID) == nil {
		return NewNotFoundError("class not found")
	}
	if _, err := models.ParseDateKey(dateKey); err != nil {
		return NewInvalidError("dateKey must be YYYY-MM-DD")
	}
	if lesson.Status != models.LessonHeld && lesson.Status != models.LessonCancelled {
		return NewInvalidError("status must be held or cancelled")
	}
	s.store.SetLesson(classID, dateKey, lesson)
	return nil
}

// CommitResult reports what a session commit awarded.
type CommitResult struct {
	ClassID   string `json:"classId"`
	DateKey   string `json:"dateKey"`
	AwardedXP int    `json:"awardedXp"`
	Students  int    `json:"students"` // students that earned XP
}

// CommitSession converts every student's recorded checks for one date into
// cumulative XP plus per-criterion XP events, and closes the open-session
// snapshots. A session that already awarded XP cannot be committed again.
func (s *RecordService) CommitSession(classID, dateKey string) (*CommitResult, error) {
	cls := s.store.GetClass(classID)
	if cls == nil {
		return nil, NewNotFoundError("class not found")
	}
	if _, err := models.ParseDateKey(dateKey); err != nil {
		return nil, NewInvalidError("dateKey must be YYYY-MM-DD")
	}
	if l, ok := s.store.GetLesson(classID, dateKey); ok && l.Status == models.LessonCancelled {
		return nil, NewInvalidError("lesson was cancelled on this date")
	}
	if s.store.HasXPEvents(classID, dateKey) {
		return nil, NewConflictError("session already committed")
	}

	recs := s.store.ListChecksByDate(classID, dateKey)
	result := &CommitResult{ClassID: classID, DateKey: dateKey}
	events := []models.XPEvent{}
	for i := range cls.Students {
		st := &cls.Students[i]
		chk := EffectiveChecks(recs[st.ID])
		earned := 0
		for _, t := range models.AllChecks {
			if !cls.TrackedItems[t] {
				continue
			}
			points := 0
			if t == models.CheckTask && cls.TaskMode == models.TaskModeDaily {
				points = CountDailyTasks(chk.DailyTasks) * s.points[t]
			} else if chk.Get(t) {
				points = s.points[t]
			}
			if points == 0 {
				continue
			}
			events = append(events, models.XPEvent{
				ClassID:   classID,
				StudentID: st.ID,
				DateKey:   dateKey,
				Criterion: t,
				Points:    points,
			})
			earned += points
		}
		if earned > 0 {
			st.TotalXP += earned
			result.AwardedXP += earned
			result.Students++
		}
		st.Checks = models.StudentChecks{}
	}
	s.store.AddXPEvents(events)
	s.store.UpdateClass(cls)
	return result, nil
}
