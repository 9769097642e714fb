package services

import (
	"sort"

	"github.com/pmarinho/classxp/internal/models"
)

// StatsStore abstracts the reads needed to aggregate a class over a period.
type StatsStore interface {
	GetClass(id string) *models.ClassConfig
	ListDates(classID string) []string
	GetLesson(classID, dateKey string) (models.DailyLesson, bool)
	ListChecksByDate(classID, dateKey string) map[string]models.StudentChecks
}

// StatsOptions tunes aggregation behavior.
type StatsOptions struct {
	// IncludeCancelled keeps cancelled-lesson dates in every rate
	// denominator, reproducing the legacy reports. The default excludes
	// them from the session set entirely.
	IncludeCancelled bool
}

// StudentRank is one row of the top-student ranking.
type StudentRank struct {
	Name     string  `json:"name"`
	AvgScore float64 `json:"avgScore"`
}

// PeriodStats is the class-level rollup over a closed date interval.
type PeriodStats struct {
	Sessions       int                          `json:"sessions"`
	AttendanceRate float64                      `json:"attendanceRate"`
	CriteriaRates  map[models.CheckType]float64 `json:"criteriaRates"`
	TopStudents    []StudentRank                `json:"topStudents"`
}

const topStudentCount = 3

type StatsService struct {
	store StatsStore
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// SessionDates returns the recorded session dates of a class inside the
// inclusive [start, end] interval, sorted ascending. Cancelled-lesson dates
// are dropped unless opts says otherwise.
func (s *StatsService) SessionDates(classID, start, end string, opts StatsOptions) ([]string, error) {
	from, err := models.ParseDateKey(start)
	if err != nil {
		return nil, NewInvalidError("start must be YYYY-MM-DD")
	}
	to, err := models.ParseDateKey(end)
	if err != nil {
		return nil, NewInvalidError("end must be YYYY-MM-DD")
	}
	out := []string{}
	for _, key := range s.store.ListDates(classID) {
		d, err := models.ParseDateKey(key)
		if err != nil {
			continue // malformed historical key, skip rather than fail the report
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		if !opts.IncludeCancelled {
			if l, ok := s.store.GetLesson(classID, key); ok && l.Status == models.LessonCancelled {
				continue
			}
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

// PeriodStats aggregates one class over [start, end]:
//
//   - attendance rate over all (session, student) slots;
//   - per-criterion completion rates, where participation criteria are only
//     applicable on slots where the student was present;
//   - top students ranked by their mean daily completion fraction.
//
// Empty classes and empty periods yield zero rates and an empty ranking;
// nothing here ever divides by zero.
func (s *StatsService) PeriodStats(classID, start, end string, opts StatsOptions) (*PeriodStats, error) {
	cls := s.store.GetClass(classID)
	if cls == nil {
		return nil, NewNotFoundError("class not found")
	}
	dates, err := s.SessionDates(classID, start, end, opts)
	if err != nil {
		return nil, err
	}

	stats := &PeriodStats{
		Sessions:      len(dates),
		CriteriaRates: map[models.CheckType]float64{},
		TopStudents:   []StudentRank{},
	}
	for t, on := range cls.TrackedItems {
		if on {
			stats.CriteriaRates[t] = 0
		}
	}

	students := cls.Students
	slots := len(dates) * len(students)
	if slots == 0 {
		return stats, nil
	}

	present := 0
	applicable := map[models.CheckType]int{}
	completed := map[models.CheckType]int{}
	type studentAcc struct {
		sum  float64
		days int
	}
	perStudent := map[string]*studentAcc{}

	for _, date := range dates {
		recs := s.store.ListChecksByDate(classID, date)
		for _, st := range students {
			chk := recs[st.ID] // zero value when nothing was recorded
			if chk.Presence {
				present++
			}
			dayApplicable, dayDone := 0, 0
			for _, t := range models.AllChecks {
				if t == models.CheckPresence || !cls.TrackedItems[t] {
					continue
				}
				if !chk.Presence {
					continue // presence gates applicability
				}
				dayApplicable++
				applicable[t]++
				if checkDone(chk, t, cls.TaskMode) {
					completed[t]++
					dayDone++
				}
			}
			if dayApplicable > 0 {
				acc := perStudent[st.ID]
				if acc == nil {
					acc = &studentAcc{}
					perStudent[st.ID] = acc
				}
				acc.sum += float64(dayDone) / float64(dayApplicable) * 100
				acc.days++
			}
		}
	}

	stats.AttendanceRate = float64(present) / float64(slots) * 100
	if cls.TrackedItems[models.CheckPresence] {
		stats.CriteriaRates[models.CheckPresence] = stats.AttendanceRate
	}
	for t, n := range applicable {
		if n > 0 {
			stats.CriteriaRates[t] = float64(completed[t]) / float64(n) * 100
		}
	}

	// Students with no applicable days carry no average; they are left out
	// of the ranking instead of being dragged to zero.
	ranks := []StudentRank{}
	for _, st := range students {
		acc := perStudent[st.ID]
		if acc == nil || acc.days == 0 {
			continue
		}
		ranks = append(ranks, StudentRank{Name: st.Name, AvgScore: acc.sum / float64(acc.days)})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].AvgScore != ranks[j].AvgScore {
			return ranks[i].AvgScore > ranks[j].AvgScore
		}
		return ranks[i].Name < ranks[j].Name
	})
	if len(ranks) > topStudentCount {
		ranks = ranks[:topStudentCount]
	}
	stats.TopStudents = ranks
	return stats, nil
}
