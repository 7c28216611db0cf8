// Package journal provides an append-only mutation log for durable
// acknowledgment of table writes. Each Add, Update and Delete is framed as a
// length-prefixed, CRC-guarded JSON record; Replay reapplies a journal onto
// a freshly built table to recover its state.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/relacore/relacore/internal/errors"
)

// Op identifies the kind of mutation a record carries.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Record is a single journaled mutation. Tuple cells travel in their
// canonical string encoding and are re-typed by the table's domain on
// replay.
type Record struct {
	Seq       uint64   `json:"seq"`
	Table     string   `json:"table"`
	Op        Op       `json:"op"`
	Row       []string `json:"row,omitempty"`
	Attr      string   `json:"attr,omitempty"`
	Match     string   `json:"match,omitempty"`
	NewValue  string   `json:"new_value,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// Journal is an append-only log file for one table's mutations.
type Journal struct {
	path string
	file *os.File
	seq  uint64
	mu   sync.Mutex
}

// Open opens or creates the journal for the named table under dir. The
// sequence counter resumes from the last readable record.
func Open(dir, table string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewJournalError(errors.CodeAppendFailed, "journal dir create failed", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.journal", table))
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.NewJournalError(errors.CodeAppendFailed, "journal open failed", err)
	}

	j := &Journal{path: path, file: file}

	recs, err := ReadRecords(path)
	if err != nil {
		file.Close()
		return nil, err
	}
	if n := len(recs); n > 0 {
		j.seq = recs[n-1].Seq
	}

	return j, nil
}

// Append writes a record to the journal and fsyncs it. The record's sequence
// number is assigned here and returned.
func (j *Journal) Append(rec *Record) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	rec.Seq = j.seq
	rec.Timestamp = time.Now().UnixNano()

	payload, err := json.Marshal(rec)
	if err != nil {
		return 0, errors.NewJournalError(errors.CodeAppendFailed, "record encode failed", err)
	}

	// Frame: [length:4 LE][crc32:4 LE][payload]
	crc := checksum(payload)
	if err := binary.Write(j.file, binary.LittleEndian, uint32(len(payload))); err != nil {
		return 0, errors.NewJournalError(errors.CodeAppendFailed, "length write failed", err)
	}
	if err := binary.Write(j.file, binary.LittleEndian, crc); err != nil {
		return 0, errors.NewJournalError(errors.CodeAppendFailed, "crc write failed", err)
	}
	if _, err := j.file.Write(payload); err != nil {
		return 0, errors.NewJournalError(errors.CodeAppendFailed, "payload write failed", err)
	}
	if err := j.file.Sync(); err != nil {
		return 0, errors.NewJournalError(errors.CodeAppendFailed, "fsync failed", err)
	}

	return j.seq, nil
}

// Seq returns the sequence number of the last appended record.
func (j *Journal) Seq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Close fsyncs and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return errors.NewJournalError(errors.CodeAppendFailed, "fsync on close failed", err)
	}
	err := j.file.Close()
	j.file = nil
	if err != nil {
		return errors.NewJournalError(errors.CodeAppendFailed, "close failed", err)
	}
	return nil
}

// ReadRecords reads every intact record from a journal file. A truncated
// tail stops the scan; a CRC mismatch skips the damaged record.
func ReadRecords(path string) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewJournalError(errors.CodeReplayFailed, "journal open failed", err)
	}
	defer file.Close()

	var recs []*Record
	for {
		var length uint32
		if err := binary.Read(file, binary.LittleEndian, &length); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.NewJournalError(errors.CodeReplayFailed, "length read failed", err)
		}

		var crc uint32
		if err := binary.Read(file, binary.LittleEndian, &crc); err != nil {
			return nil, errors.NewJournalError(errors.CodeReplayFailed, "crc read failed", err)
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(file, payload); err != nil {
			// Truncated write, stop at the last intact record.
			break
		}

		if computed := checksum(payload); computed != crc {
			log.Printf("journal: crc mismatch in %s, skipping record", path)
			continue
		}

		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			log.Printf("journal: undecodable record in %s, skipping", path)
			continue
		}
		recs = append(recs, &rec)
	}

	return recs, nil
}

// checksum computes CRC32 over a payload using the IEEE polynomial.
func checksum(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc ^= uint32(b)
		for i := 0; i < 8; i++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
	}
	return crc ^ 0xFFFFFFFF
}
