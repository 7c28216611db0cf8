// Package persist saves and loads tables through the Table public read API:
// a snappy-compressed binary snapshot format, CSV and JSON export, and a
// SQLite exporter. The engine itself stays in-memory; this package is the
// serialization collaborator around it.
package persist

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"

	"github.com/golang/snappy"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/relation"
	"github.com/relacore/relacore/pkg/types"
)

// snapshotMagic identifies a Relacore snapshot file; the byte after it is
// the format version.
var snapshotMagic = []byte("RELSNAP")

const snapshotVersion = byte(1)

// snapshot is the on-disk form of a table. Row values are carried in their
// canonical string encoding and re-typed by the domain on load, so 64-bit
// integers survive the trip exactly.
type snapshot struct {
	Name   string     `json:"name"`
	Schema []string   `json:"schema"`
	Domain []int      `json:"domain"`
	Key    []string   `json:"key"`
	Rows   [][]string `json:"rows"`
}

// Encode serializes a table into the snapshot format.
func Encode(t *relation.Table) ([]byte, error) {
	snap := snapshot{
		Name:   t.Name(),
		Schema: t.Schema(),
		Key:    t.Key(),
		Domain: make([]int, len(t.Domain())),
		Rows:   make([][]string, t.Size()),
	}
	for i, tag := range t.Domain() {
		snap.Domain[i] = int(tag)
	}
	for i := 0; i < t.Size(); i++ {
		row := t.Row(i)
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		snap.Rows[i] = rec
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeUploadFailed, "snapshot encode failed", err)
	}

	var buf bytes.Buffer
	buf.Write(snapshotMagic)
	buf.WriteByte(snapshotVersion)
	buf.Write(snappy.Encode(nil, payload))
	return buf.Bytes(), nil
}

// Decode reconstructs a table from snapshot bytes.
func Decode(data []byte) (*relation.Table, error) {
	if len(data) < len(snapshotMagic)+1 || !bytes.HasPrefix(data, snapshotMagic) {
		return nil, errors.NewStorageError(errors.CodeCorruptSnapshot, "bad snapshot header", nil)
	}
	if v := data[len(snapshotMagic)]; v != snapshotVersion {
		return nil, errors.NewStorageError(errors.CodeCorruptSnapshot,
			"unsupported snapshot version "+strconv.Itoa(int(v)), nil)
	}

	payload, err := snappy.Decode(nil, data[len(snapshotMagic)+1:])
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeCorruptSnapshot, "snapshot decompress failed", err)
	}

	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.NewStorageError(errors.CodeCorruptSnapshot, "snapshot decode failed", err)
	}

	domain := make(types.Domain, len(snap.Domain))
	for i, tag := range snap.Domain {
		domain[i] = types.Type(tag)
	}

	rows := make([]types.Tuple, len(snap.Rows))
	for i, rec := range snap.Rows {
		tup := make(types.Tuple, len(rec))
		for j, s := range rec {
			v, err := types.ParseValue(domain[j], s)
			if err != nil {
				return nil, errors.NewStorageError(errors.CodeCorruptSnapshot, "bad cell value", err)
			}
			tup[j] = v
		}
		rows[i] = tup
	}

	return relation.New(snap.Name, snap.Schema, domain, snap.Key, rows), nil
}

// SaveFile writes a table snapshot to a file.
func SaveFile(t *relation.Table, path string) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "snapshot write failed", err)
	}
	return nil
}

// LoadFile reads a table snapshot from a file.
func LoadFile(path string) (*relation.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeDownloadFailed, "snapshot read failed", err)
	}
	return Decode(data)
}
