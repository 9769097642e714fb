// Package store holds the in-memory record store: classes, lessons and
// per-student daily checks, plus the XP event log. It is the single writable
// copy of the persisted document; persistence reads and writes it wholesale
// through Snapshot and Restore.
package store

import (
	"github.com/pmarinho/classxp/internal/models"
	"github.com/pmarinho/classxp/internal/services"
)

// Store is the full surface the services are wired against. Each service
// declares its own narrow subset; this interface is their union.
type Store interface {
	AddClass(c *models.ClassConfig)
	UpdateClass(c *models.ClassConfig) bool
	DeleteClass(id string) bool
	GetClass(id string) *models.ClassConfig
	ListClasses() []*models.ClassConfig

	SetLesson(classID, dateKey string, l models.DailyLesson)
	GetLesson(classID, dateKey string) (models.DailyLesson, bool)

	GetChecks(classID, dateKey, studentID string) (models.StudentChecks, bool)
	PutChecks(classID, dateKey, studentID string, c models.StudentChecks)
	ListDates(classID string) []string
	ListChecksByDate(classID, dateKey string) map[string]models.StudentChecks

	AddXPEvents(evs []models.XPEvent)
	ListXPEvents(classID, studentID string) []models.XPEvent
	HasXPEvents(classID, dateKey string) bool

	Snapshot() *models.Document
	Restore(doc *models.Document)
}

// The memory store must satisfy every service-side store contract.
var (
	_ Store                = (*memoryStore)(nil)
	_ services.ClassStore  = (*memoryStore)(nil)
	_ services.RecordStore = (*memoryStore)(nil)
	_ services.StatsStore  = (*memoryStore)(nil)
	_ services.ReportStore = (*memoryStore)(nil)
	_ services.BackupStore = (*memoryStore)(nil)
)
