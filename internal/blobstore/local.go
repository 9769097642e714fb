package blobstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pmarinho/classxp/internal/models"
)

// Local persists the record document straight into a Backend, for self-hosted
// deployments that do not talk to an external blob service.
type Local struct {
	backend Backend
}

func NewLocal(backend Backend) *Local {
	return &Local{backend: backend}
}

var _ Persister = (*Local)(nil)

// Load reads the stored document, initializing an empty one on first use.
func (l *Local) Load(ctx context.Context) (*models.Document, error) {
	data, ok, err := l.backend.GetBlob(DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("blob read: %w", err)
	}
	if !ok {
		doc := models.EmptyDocument()
		if err := l.Save(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("blob decode: %w", err)
	}
	return &doc, nil
}

// Save overwrites the stored document.
func (l *Local) Save(_ context.Context, doc *models.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := l.backend.PutBlob(DocumentKey, b); err != nil {
		return fmt.Errorf("blob write: %w", err)
	}
	return nil
}
