package persist

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/internal/storage"
	"github.com/relacore/relacore/pkg/relation"
)

// Manifest describes one archived snapshot.
type Manifest struct {
	SnapshotID string    `json:"snapshot_id"`
	TableName  string    `json:"table_name"`
	Rows       int       `json:"rows"`
	ObjectPath string    `json:"object_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// Archive encodes a table and uploads it to object storage under
// snapshots/<table>/<uuid>, writing a manifest alongside. It returns the
// manifest on success.
func Archive(ctx context.Context, store storage.ObjectStorage, t *relation.Table) (*Manifest, error) {
	data, err := Encode(t)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		SnapshotID: uuid.NewString(),
		TableName:  t.Name(),
		Rows:       t.Size(),
		CreatedAt:  time.Now().UTC(),
	}
	m.ObjectPath = path.Join("snapshots", t.Name(), m.SnapshotID+".snap")

	if err := store.Put(ctx, m.ObjectPath, data); err != nil {
		return nil, errors.NewStorageError(errors.CodeUploadFailed, "snapshot upload failed", err)
	}

	manifestBytes, err := json.Marshal(m)
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeUploadFailed, "manifest encode failed", err)
	}
	manifestPath := path.Join("snapshots", t.Name(), m.SnapshotID+".manifest.json")
	if err := store.Put(ctx, manifestPath, manifestBytes); err != nil {
		return nil, errors.NewStorageError(errors.CodeUploadFailed, "manifest upload failed", err)
	}
	return m, nil
}

// Retrieve downloads and decodes an archived snapshot by its manifest.
func Retrieve(ctx context.Context, store storage.ObjectStorage, m *Manifest) (*relation.Table, error) {
	data, err := store.Get(ctx, m.ObjectPath)
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeDownloadFailed, "snapshot download failed", err)
	}
	return Decode(data)
}
