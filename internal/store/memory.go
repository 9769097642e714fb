package store

import (
	"sort"
	"sync"

	"github.com/pmarinho/classxp/internal/models"
)

// RecordKey is the composite key of one student's checks for one session.
// The persisted document nests these three levels as dynamic maps; in memory
// we index by the explicit triple so missing-key handling stays visible.
type RecordKey struct {
	ClassID   string
	DateKey   string
	StudentID string
}

type memoryStore struct {
	mu      sync.RWMutex
	classes map[string]*models.ClassConfig
	order   []string // class insertion order, for stable listings
	lessons map[string]map[string]models.DailyLesson
	checks  map[RecordKey]models.StudentChecks
	dates   map[string]map[string]bool // classID -> set of recorded date keys
	events  []models.XPEvent
}

// New returns an empty in-memory store.
func New() Store {
	return &memoryStore{
		classes: map[string]*models.ClassConfig{},
		lessons: map[string]map[string]models.DailyLesson{},
		checks:  map[RecordKey]models.StudentChecks{},
		dates:   map[string]map[string]bool{},
	}
}

func (s *memoryStore) AddClass(c *models.ClassConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.classes[c.ID] = c
}

func (s *memoryStore) UpdateClass(c *models.ClassConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[c.ID]; !ok {
		return false
	}
	s.classes[c.ID] = c
	return true
}

// DeleteClass removes the class config only. Its lessons, records and XP
// events stay behind for historical integrity; readers treat the dangling
// references as contributing zero.
func (s *memoryStore) DeleteClass(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memoryStore) GetClass(id string) *models.ClassConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes[id]
}

func (s *memoryStore) ListClasses() []*models.ClassConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ClassConfig, 0, len(s.order))
	for _, id := range s.order {
		if c, ok := s.classes[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *memoryStore) SetLesson(classID, dateKey string, l models.DailyLesson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lessons[classID] == nil {
		s.lessons[classID] = map[string]models.DailyLesson{}
	}
	s.lessons[classID][dateKey] = l
}

func (s *memoryStore) GetLesson(classID, dateKey string) (models.DailyLesson, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lessons[classID][dateKey]
	return l, ok
}

func (s *memoryStore) GetChecks(classID, dateKey, studentID string) (models.StudentChecks, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checks[RecordKey{classID, dateKey, studentID}]
	return c.Clone(), ok
}

func (s *memoryStore) PutChecks(classID, dateKey, studentID string, c models.StudentChecks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[RecordKey{classID, dateKey, studentID}] = c.Clone()
	if s.dates[classID] == nil {
		s.dates[classID] = map[string]bool{}
	}
	s.dates[classID][dateKey] = true
}

func (s *memoryStore) ListDates(classID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.dates[classID]))
	for d := range s.dates[classID] {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (s *memoryStore) ListChecksByDate(classID, dateKey string) map[string]models.StudentChecks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]models.StudentChecks{}
	for k, c := range s.checks {
		if k.ClassID == classID && k.DateKey == dateKey {
			out[k.StudentID] = c.Clone()
		}
	}
	return out
}

func (s *memoryStore) AddXPEvents(evs []models.XPEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evs...)
}

func (s *memoryStore) ListXPEvents(classID, studentID string) []models.XPEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.XPEvent{}
	for _, e := range s.events {
		if e.ClassID == classID && e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out
}

// HasXPEvents reports whether a session has already awarded XP; it doubles as
// the committed marker for a (class, date) pair.
func (s *memoryStore) HasXPEvents(classID, dateKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ClassID == classID && e.DateKey == dateKey {
			return true
		}
	}
	return false
}

// Snapshot renders the store as the nested wire document.
func (s *memoryStore) Snapshot() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := models.EmptyDocument()
	for _, id := range s.order {
		if c, ok := s.classes[id]; ok {
			doc.Classes = append(doc.Classes, c.Clone())
		}
	}
	for cid, byDate := range s.lessons {
		if len(byDate) == 0 {
			continue
		}
		doc.Lessons[cid] = map[string]models.DailyLesson{}
		for dk, l := range byDate {
			doc.Lessons[cid][dk] = l
		}
	}
	for k, c := range s.checks {
		if doc.StudentRecords[k.ClassID] == nil {
			doc.StudentRecords[k.ClassID] = map[string]map[string]models.StudentChecks{}
		}
		if doc.StudentRecords[k.ClassID][k.DateKey] == nil {
			doc.StudentRecords[k.ClassID][k.DateKey] = map[string]models.StudentChecks{}
		}
		doc.StudentRecords[k.ClassID][k.DateKey][k.StudentID] = c.Clone()
	}
	doc.XPEvents = append([]models.XPEvent(nil), s.events...)
	return doc
}

// Restore replaces the entire store content with the given document.
func (s *memoryStore) Restore(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes = map[string]*models.ClassConfig{}
	s.order = nil
	s.lessons = map[string]map[string]models.DailyLesson{}
	s.checks = map[RecordKey]models.StudentChecks{}
	s.dates = map[string]map[string]bool{}
	s.events = nil
	if doc == nil {
		return
	}
	for _, c := range doc.Classes {
		cc := c.Clone()
		s.classes[cc.ID] = &cc
		s.order = append(s.order, cc.ID)
	}
	for cid, byDate := range doc.Lessons {
		s.lessons[cid] = map[string]models.DailyLesson{}
		for dk, l := range byDate {
			s.lessons[cid][dk] = l
		}
	}
	for cid, byDate := range doc.StudentRecords {
		for dk, bySid := range byDate {
			for sid, c := range bySid {
				s.checks[RecordKey{cid, dk, sid}] = c.Clone()
				if s.dates[cid] == nil {
					s.dates[cid] = map[string]bool{}
				}
				s.dates[cid][dk] = true
			}
		}
	}
	s.events = append([]models.XPEvent(nil), doc.XPEvents...)
}
