package services

import (
	"time"

	"github.com/pmarinho/classxp/internal/models"
)

// ReportStore abstracts the reads needed to shape the report views.
type ReportStore interface {
	ListClasses() []*models.ClassConfig
	GetClass(id string) *models.ClassConfig
	GetChecks(classID, dateKey, studentID string) (models.StudentChecks, bool)
	GetLesson(classID, dateKey string) (models.DailyLesson, bool)
	ListChecksByDate(classID, dateKey string) map[string]models.StudentChecks
	ListXPEvents(classID, studentID string) []models.XPEvent
}

// ReportService shapes aggregation output into the report views. It adds no
// numeric rules of its own beyond age arithmetic.
type ReportService struct {
	store ReportStore
	stats *StatsService
}

func NewReportService(store ReportStore, stats *StatsService) *ReportService {
	return &ReportService{store: store, stats: stats}
}

// AgeAt returns the age in whole years at the given date, or false when the
// birth date does not parse. Both dates are normalized to midday UTC before
// comparing, so a birthday counts from the day itself.
func AgeAt(birthDate string, at time.Time) (int, bool) {
	b, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return 0, false
	}
	b = time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	at = time.Date(at.Year(), at.Month(), at.Day(), 12, 0, 0, 0, time.UTC)
	age := at.Year() - b.Year()
	if at.Month() < b.Month() || (at.Month() == b.Month() && at.Day() < b.Day()) {
		age--
	}
	return age, true
}

// ClassOverview is one card of the overview report.
type ClassOverview struct {
	ClassID         string       `json:"classId"`
	Name            string       `json:"name"`
	Color           string       `json:"color,omitempty"`
	StudentCount    int          `json:"studentCount"`
	MeanAge         float64      `json:"meanAge"`
	YoungestStudent string       `json:"youngestStudent,omitempty"`
	OldestStudent   string       `json:"oldestStudent,omitempty"`
	Month           *PeriodStats `json:"month"`
}

// Overview builds the per-class summary cards for the current month.
func (s *ReportService) Overview(today time.Time, opts StatsOptions) []ClassOverview {
	start, end := models.MonthKeys(today.Year(), today.Month())
	out := []ClassOverview{}
	for _, cls := range s.store.ListClasses() {
		ov := ClassOverview{
			ClassID:      cls.ID,
			Name:         cls.Name,
			Color:        cls.Color,
			StudentCount: len(cls.Students),
		}
		ageSum, aged := 0, 0
		var youngest, oldest *models.Student
		for i := range cls.Students {
			st := &cls.Students[i]
			age, ok := AgeAt(st.BirthDate, today)
			if !ok {
				continue
			}
			ageSum += age
			aged++
			if youngest == nil || st.BirthDate > youngest.BirthDate {
				youngest = st
			}
			if oldest == nil || st.BirthDate < oldest.BirthDate {
				oldest = st
			}
		}
		if aged > 0 {
			ov.MeanAge = float64(ageSum) / float64(aged)
			ov.YoungestStudent = youngest.Name
			ov.OldestStudent = oldest.Name
		}
		if stats, err := s.stats.PeriodStats(cls.ID, start, end, opts); err == nil {
			ov.Month = stats
		}
		out = append(out, ov)
	}
	return out
}

// GridRow is one student row of the monthly grid.
type GridRow struct {
	StudentID   string                          `json:"studentId"`
	StudentName string                          `json:"studentName"`
	Checks      map[string]models.StudentChecks `json:"checks"` // keyed by date key
}

// MonthlyGrid maps every Sunday of a month to per-student checks for tabular
// display. Direct lookup only; no aggregation happens here.
type MonthlyGrid struct {
	ClassID string                        `json:"classId"`
	Year    int                           `json:"year"`
	Month   int                           `json:"month"`
	Sundays []string                      `json:"sundays"`
	Lessons map[string]models.DailyLesson `json:"lessons,omitempty"`
	Rows    []GridRow                     `json:"rows"`
}

func (s *ReportService) MonthlyGrid(classID string, year int, month time.Month) (*MonthlyGrid, error) {
	cls := s.store.GetClass(classID)
	if cls == nil {
		return nil, NewNotFoundError("class not found")
	}
	grid := &MonthlyGrid{
		ClassID: classID,
		Year:    year,
		Month:   int(month),
		Sundays: models.SundaysOfMonth(year, month),
		Lessons: map[string]models.DailyLesson{},
		Rows:    make([]GridRow, 0, len(cls.Students)),
	}
	for _, st := range cls.Students {
		grid.Rows = append(grid.Rows, GridRow{
			StudentID:   st.ID,
			StudentName: st.Name,
			Checks:      map[string]models.StudentChecks{},
		})
	}
	for _, sunday := range grid.Sundays {
		if l, ok := s.store.GetLesson(classID, sunday); ok {
			grid.Lessons[sunday] = l
		}
		recs := s.store.ListChecksByDate(classID, sunday)
		for i := range grid.Rows {
			if chk, ok := recs[grid.Rows[i].StudentID]; ok {
				grid.Rows[i].Checks[sunday] = chk
			}
		}
	}
	return grid, nil
}

// CriterionTrend compares one student's completion rate against the class
// average for a single criterion.
type CriterionTrend struct {
	Criterion  models.CheckType `json:"criterion"`
	StudentAvg float64          `json:"studentAvg"`
	ClassAvg   float64          `json:"classAvg"`
}

// TrendReport is the individual monthly trend view.
type TrendReport struct {
	ClassID   string           `json:"classId"`
	StudentID string           `json:"studentId"`
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Sessions  int              `json:"sessions"`
	Criteria  []CriterionTrend `json:"criteria"`
}

// IndividualTrend computes per-criterion student and class averages for one
// month, using the same presence-gated applicability as the period rollup.
func (s *ReportService) IndividualTrend(classID, studentID string, year int, month time.Month, opts StatsOptions) (*TrendReport, error) {
	cls := s.store.GetClass(classID)
	if cls == nil {
		return nil, NewNotFoundError("class not found")
	}
	if cls.Student(studentID) == nil {
		return nil, NewNotFoundError("student not found")
	}
	start, end := models.MonthKeys(year, month)
	dates, err := s.stats.SessionDates(classID, start, end, opts)
	if err != nil {
		return nil, err
	}

	type rate struct{ applicable, done int }
	studentRates := map[models.CheckType]*rate{}
	classRates := map[models.CheckType]*rate{}
	for _, t := range models.AllChecks {
		if cls.TrackedItems[t] {
			studentRates[t] = &rate{}
			classRates[t] = &rate{}
		}
	}

	for _, date := range dates {
		recs := s.store.ListChecksByDate(classID, date)
		for _, st := range cls.Students {
			chk := recs[st.ID]
			for t := range classRates {
				if t == models.CheckPresence {
					// presence is applicable on every session slot
					classRates[t].applicable++
					if chk.Presence {
						classRates[t].done++
					}
				} else if chk.Presence {
					classRates[t].applicable++
					if checkDone(chk, t, cls.TaskMode) {
						classRates[t].done++
					}
				}
				if st.ID != studentID {
					continue
				}
				if t == models.CheckPresence {
					studentRates[t].applicable++
					if chk.Presence {
						studentRates[t].done++
					}
				} else if chk.Presence {
					studentRates[t].applicable++
					if checkDone(chk, t, cls.TaskMode) {
						studentRates[t].done++
					}
				}
			}
		}
	}

	report := &TrendReport{
		ClassID:   classID,
		StudentID: studentID,
		Year:      year,
		Month:     int(month),
		Sessions:  len(dates),
		Criteria:  []CriterionTrend{},
	}
	pct := func(r *rate) float64 {
		if r.applicable == 0 {
			return 0
		}
		return float64(r.done) / float64(r.applicable) * 100
	}
	for _, t := range models.AllChecks {
		if !cls.TrackedItems[t] {
			continue
		}
		report.Criteria = append(report.Criteria, CriterionTrend{
			Criterion:  t,
			StudentAvg: pct(studentRates[t]),
			ClassAvg:   pct(classRates[t]),
		})
	}
	return report, nil
}

// XPSlice is one bar of the XP composition chart.
type XPSlice struct {
	Criterion models.CheckType `json:"criterion"`
	XP        int              `json:"xp"`
}

// XPReport is the per-student XP composition and level projection.
type XPReport struct {
	ClassID      string    `json:"classId"`
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	TotalXP      int       `json:"totalXp"`
	Level        int       `json:"level"`
	LevelXP      int       `json:"levelXp"`
	XPPercent    int       `json:"xpPercent"`
	Breakdown    []XPSlice `json:"breakdown"`
	Unattributed int       `json:"unattributed,omitempty"`
}

// XPBreakdown sums the stored per-criterion XP events for a student. XP that
// predates event tracking shows up as a single deterministic unattributed
// remainder instead of a fabricated composition.
func (s *ReportService) XPBreakdown(classID, studentID string) (*XPReport, error) {
	cls := s.store.GetClass(classID)
	if cls == nil {
		return nil, NewNotFoundError("class not found")
	}
	st := cls.Student(studentID)
	if st == nil {
		return nil, NewNotFoundError("student not found")
	}
	byCriterion := map[models.CheckType]int{}
	attributed := 0
	for _, e := range s.store.ListXPEvents(classID, studentID) {
		byCriterion[e.Criterion] += e.Points
		attributed += e.Points
	}
	report := &XPReport{
		ClassID:     classID,
		StudentID:   studentID,
		StudentName: st.Name,
		TotalXP:     st.TotalXP,
		Breakdown:   []XPSlice{},
	}
	report.Level, report.LevelXP, report.XPPercent = LevelFromXP(st.TotalXP)
	for _, t := range models.AllChecks {
		if xp, ok := byCriterion[t]; ok {
			report.Breakdown = append(report.Breakdown, XPSlice{Criterion: t, XP: xp})
		}
	}
	if rest := st.TotalXP - attributed; rest > 0 {
		report.Unattributed = rest
	}
	return report, nil
}
