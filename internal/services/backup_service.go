package services

import (
	"encoding/json"
	"time"

	"github.com/pmarinho/classxp/internal/models"
)

// BackupStore abstracts whole-document snapshot and restore.
type BackupStore interface {
	Snapshot() *models.Document
	Restore(doc *models.Document)
}

// ExportResult is a downloadable artifact.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BackupService serializes the whole record document for download and
// restores uploads after validating their shape.
type BackupService struct {
	store BackupStore
}

func NewBackupService(store BackupStore) *BackupService {
	return &BackupService{store: store}
}

// Export serializes the current document, named with the export date.
func (s *BackupService) Export(now time.Time) (*ExportResult, error) {
	doc := s.store.Snapshot()
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    "classxp-backup-" + models.FormatDateKey(now) + ".json",
		ContentType: "application/json; charset=utf-8",
		Data:        b,
	}, nil
}

var requiredBackupKeys = []string{"classes", "lessons", "studentRecords"}

// Import validates an uploaded backup and replaces the document wholesale.
// A file missing any of the three top-level keys is rejected as corrupt
// before anything is touched.
func (s *BackupService) Import(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return NewInvalidError("corrupt backup: not a JSON object")
	}
	for _, k := range requiredBackupKeys {
		if _, ok := probe[k]; !ok {
			return NewInvalidError("corrupt backup: missing " + k)
		}
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return NewInvalidError("corrupt backup: " + err.Error())
	}
	s.store.Restore(&doc)
	return nil
}
