package store

import (
	"reflect"
	"testing"

	"github.com/pmarinho/classxp/internal/models"
)

func testClass(id string) *models.ClassConfig {
	return &models.ClassConfig{
		ID:           id,
		Name:         "Class " + id,
		TrackedItems: map[models.CheckType]bool{models.CheckPresence: true},
		TaskMode:     models.TaskModeUnique,
		Students:     []models.Student{{ID: "s1", Name: "Ana"}},
	}
}

func TestClassLifecycle(t *testing.T) {
	s := New()
	s.AddClass(testClass("a"))
	s.AddClass(testClass("b"))

	if got := s.GetClass("a"); got == nil || got.Name != "Class a" {
		t.Fatalf("GetClass = %+v", got)
	}
	if s.GetClass("missing") != nil {
		t.Fatalf("expected nil for missing class")
	}

	list := s.ListClasses()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("listing not in insertion order: %+v", list)
	}

	c := testClass("a")
	c.Name = "Renamed"
	if !s.UpdateClass(c) {
		t.Fatalf("UpdateClass failed")
	}
	if s.GetClass("a").Name != "Renamed" {
		t.Fatalf("update not applied")
	}
	if s.UpdateClass(testClass("missing")) {
		t.Fatalf("UpdateClass of unknown class succeeded")
	}

	if !s.DeleteClass("a") || s.DeleteClass("a") {
		t.Fatalf("DeleteClass semantics broken")
	}
	if len(s.ListClasses()) != 1 {
		t.Fatalf("class not removed from listing")
	}
}

func TestChecksMissingKeyIsZero(t *testing.T) {
	s := New()
	chk, ok := s.GetChecks("c1", "2024-06-02", "s1")
	if ok {
		t.Fatalf("expected ok=false for missing record")
	}
	if !reflect.DeepEqual(chk, models.StudentChecks{}) {
		t.Fatalf("missing record = %+v, want zero value", chk)
	}
	if len(s.ListChecksByDate("c1", "2024-06-02")) != 0 {
		t.Fatalf("expected empty map for unrecorded date")
	}
	if len(s.ListDates("c1")) != 0 {
		t.Fatalf("expected no dates for unknown class")
	}
}

func TestPutChecksIndexesDates(t *testing.T) {
	s := New()
	s.PutChecks("c1", "2024-06-09", "s1", models.StudentChecks{Presence: true})
	s.PutChecks("c1", "2024-06-02", "s1", models.StudentChecks{Presence: true})
	s.PutChecks("c1", "2024-06-02", "s2", models.StudentChecks{})
	s.PutChecks("c2", "2024-06-02", "s1", models.StudentChecks{})

	dates := s.ListDates("c1")
	if len(dates) != 2 || dates[0] != "2024-06-02" || dates[1] != "2024-06-09" {
		t.Fatalf("dates = %v, want sorted unique keys", dates)
	}
	byDate := s.ListChecksByDate("c1", "2024-06-02")
	if len(byDate) != 2 {
		t.Fatalf("records on 06-02 = %+v, want both students", byDate)
	}
	if !byDate["s1"].Presence {
		t.Fatalf("s1 record lost: %+v", byDate["s1"])
	}
}

func TestPutChecksClonesInput(t *testing.T) {
	s := New()
	in := models.StudentChecks{Presence: true, DailyTasks: models.DailyTasks{"mon": true}}
	s.PutChecks("c1", "2024-06-02", "s1", in)

	// mutating the caller's map must not leak into the store
	in.DailyTasks["tue"] = true
	got, _ := s.GetChecks("c1", "2024-06-02", "s1")
	if got.DailyTasks["tue"] {
		t.Fatalf("store shares the caller's daily-task map")
	}
}

func TestDeleteClassKeepsHistory(t *testing.T) {
	s := New()
	s.AddClass(testClass("c1"))
	s.PutChecks("c1", "2024-06-02", "s1", models.StudentChecks{Presence: true})
	s.AddXPEvents([]models.XPEvent{{ClassID: "c1", StudentID: "s1", DateKey: "2024-06-02", Criterion: models.CheckPresence, Points: 10}})

	if !s.DeleteClass("c1") {
		t.Fatalf("DeleteClass failed")
	}
	if _, ok := s.GetChecks("c1", "2024-06-02", "s1"); !ok {
		t.Fatalf("records purged with the class")
	}
	if !s.HasXPEvents("c1", "2024-06-02") {
		t.Fatalf("events purged with the class")
	}
}

func TestXPEvents(t *testing.T) {
	s := New()
	s.AddXPEvents([]models.XPEvent{
		{ClassID: "c1", StudentID: "s1", DateKey: "2024-06-02", Criterion: models.CheckPresence, Points: 10},
		{ClassID: "c1", StudentID: "s2", DateKey: "2024-06-02", Criterion: models.CheckPresence, Points: 10},
		{ClassID: "c1", StudentID: "s1", DateKey: "2024-06-09", Criterion: models.CheckVerse, Points: 40},
	})

	evs := s.ListXPEvents("c1", "s1")
	if len(evs) != 2 {
		t.Fatalf("events for s1 = %+v", evs)
	}
	if !s.HasXPEvents("c1", "2024-06-09") {
		t.Fatalf("expected committed marker for 06-09")
	}
	if s.HasXPEvents("c1", "2024-06-16") {
		t.Fatalf("unexpected committed marker for a date with no events")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New()
	s.AddClass(testClass("c1"))
	s.SetLesson("c1", "2024-06-09", models.DailyLesson{Status: models.LessonCancelled})
	s.PutChecks("c1", "2024-06-02", "s1", models.StudentChecks{Presence: true, DailyTasks: models.DailyTasks{"mon": true}})
	s.AddXPEvents([]models.XPEvent{{ClassID: "c1", StudentID: "s1", DateKey: "2024-06-02", Criterion: models.CheckPresence, Points: 10}})

	doc := s.Snapshot()

	other := New()
	other.Restore(doc)
	if !reflect.DeepEqual(other.Snapshot(), doc) {
		t.Fatalf("round trip diverged:\n got %+v\nwant %+v", other.Snapshot(), doc)
	}
	if got := other.ListDates("c1"); len(got) != 1 || got[0] != "2024-06-02" {
		t.Fatalf("dates index not rebuilt: %v", got)
	}
	if l, ok := other.GetLesson("c1", "2024-06-09"); !ok || l.Status != models.LessonCancelled {
		t.Fatalf("lesson lost in round trip: %+v ok=%v", l, ok)
	}
}

func TestRestoreNilResets(t *testing.T) {
	s := New()
	s.AddClass(testClass("c1"))
	s.Restore(nil)
	if len(s.ListClasses()) != 0 {
		t.Fatalf("restore(nil) kept classes")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New()
	s.AddClass(testClass("c1"))
	doc := s.Snapshot()
	doc.Classes[0].Name = "Mutated"
	if s.GetClass("c1").Name != "Class c1" {
		t.Fatalf("snapshot shares state with the store")
	}
}
