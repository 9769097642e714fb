package services

import (
	"sort"

	"github.com/pmarinho/classxp/internal/models"
)

// stubStore is a map-backed store shared by the service tests. It implements
// every per-service store interface so one fixture can drive a whole flow.
type stubStore struct {
	classes  map[string]*models.ClassConfig
	order    []string
	lessons  map[string]map[string]models.DailyLesson
	checks   map[string]map[string]map[string]models.StudentChecks // classID -> dateKey -> studentID
	events   []models.XPEvent
	restored *models.Document
}

func newStubStore() *stubStore {
	return &stubStore{
		classes: map[string]*models.ClassConfig{},
		lessons: map[string]map[string]models.DailyLesson{},
		checks:  map[string]map[string]map[string]models.StudentChecks{},
	}
}

func (s *stubStore) AddClass(c *models.ClassConfig) {
	if _, ok := s.classes[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.classes[c.ID] = c
}

func (s *stubStore) UpdateClass(c *models.ClassConfig) bool {
	if _, ok := s.classes[c.ID]; !ok {
		return false
	}
	s.classes[c.ID] = c
	return true
}

func (s *stubStore) DeleteClass(id string) bool {
	if _, ok := s.classes[id]; !ok {
		return false
	}
	delete(s.classes, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *stubStore) GetClass(id string) *models.ClassConfig { return s.classes[id] }

func (s *stubStore) ListClasses() []*models.ClassConfig {
	out := []*models.ClassConfig{}
	for _, id := range s.order {
		if c, ok := s.classes[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *stubStore) SetLesson(classID, dateKey string, l models.DailyLesson) {
	if s.lessons[classID] == nil {
		s.lessons[classID] = map[string]models.DailyLesson{}
	}
	s.lessons[classID][dateKey] = l
}

func (s *stubStore) GetLesson(classID, dateKey string) (models.DailyLesson, bool) {
	l, ok := s.lessons[classID][dateKey]
	return l, ok
}

func (s *stubStore) GetChecks(classID, dateKey, studentID string) (models.StudentChecks, bool) {
	c, ok := s.checks[classID][dateKey][studentID]
	return c, ok
}

func (s *stubStore) PutChecks(classID, dateKey, studentID string, c models.StudentChecks) {
	if s.checks[classID] == nil {
		s.checks[classID] = map[string]map[string]models.StudentChecks{}
	}
	if s.checks[classID][dateKey] == nil {
		s.checks[classID][dateKey] = map[string]models.StudentChecks{}
	}
	s.checks[classID][dateKey][studentID] = c
}

// ListDates enumerates only dates with check records, like the real store;
// lesson-only dates are not sessions.
func (s *stubStore) ListDates(classID string) []string {
	out := []string{}
	for date := range s.checks[classID] {
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}

func (s *stubStore) ListChecksByDate(classID, dateKey string) map[string]models.StudentChecks {
	out := map[string]models.StudentChecks{}
	for sid, c := range s.checks[classID][dateKey] {
		out[sid] = c
	}
	return out
}

func (s *stubStore) AddXPEvents(evs []models.XPEvent) {
	s.events = append(s.events, evs...)
}

func (s *stubStore) ListXPEvents(classID, studentID string) []models.XPEvent {
	out := []models.XPEvent{}
	for _, e := range s.events {
		if e.ClassID == classID && e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out
}

func (s *stubStore) HasXPEvents(classID, dateKey string) bool {
	for _, e := range s.events {
		if e.ClassID == classID && e.DateKey == dateKey {
			return true
		}
	}
	return false
}

func (s *stubStore) Snapshot() *models.Document {
	doc := models.EmptyDocument()
	for _, c := range s.ListClasses() {
		doc.Classes = append(doc.Classes, c.Clone())
	}
	for cid, byDate := range s.lessons {
		doc.Lessons[cid] = map[string]models.DailyLesson{}
		for date, l := range byDate {
			doc.Lessons[cid][date] = l
		}
	}
	for cid, byDate := range s.checks {
		doc.StudentRecords[cid] = map[string]map[string]models.StudentChecks{}
		for date, bySid := range byDate {
			doc.StudentRecords[cid][date] = map[string]models.StudentChecks{}
			for sid, c := range bySid {
				doc.StudentRecords[cid][date][sid] = c.Clone()
			}
		}
	}
	doc.XPEvents = append([]models.XPEvent{}, s.events...)
	return doc
}

func (s *stubStore) Restore(doc *models.Document) {
	s.restored = doc
	s.classes = map[string]*models.ClassConfig{}
	s.order = nil
	for i := range doc.Classes {
		c := doc.Classes[i].Clone()
		s.AddClass(&c)
	}
	s.lessons = doc.Lessons
	s.checks = doc.StudentRecords
	s.events = doc.XPEvents
}

// seedClass registers a two-student class tracking everything in unique mode.
func seedClass(s *stubStore, id string) *models.ClassConfig {
	c := &models.ClassConfig{
		ID:           id,
		Name:         "Sunday Class",
		TrackedItems: allTracked(),
		TaskMode:     models.TaskModeUnique,
		Students: []models.Student{
			{ID: "stA", Name: "Ana"},
			{ID: "stB", Name: "Bruno"},
		},
	}
	s.AddClass(c)
	return c
}
