package journal

import (
	"log"
	"time"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/relation"
	"github.com/relacore/relacore/pkg/types"
)

// Tracked pairs a table with its journal: every mutation that takes effect
// on the table is appended to the journal before being acknowledged.
type Tracked struct {
	table   *relation.Table
	journal *Journal
}

// Track wraps a table so its mutations flow through the journal.
func Track(t *relation.Table, j *Journal) *Tracked {
	return &Tracked{table: t, journal: j}
}

// Table returns the underlying table.
func (tr *Tracked) Table() *relation.Table { return tr.table }

// Add inserts a tuple and journals it when the insert is accepted.
func (tr *Tracked) Add(tup types.Tuple) (bool, error) {
	if !tr.table.Add(tup) {
		return false, nil
	}
	_, err := tr.journal.Append(&Record{
		Table: tr.table.Name(),
		Op:    OpAdd,
		Row:   encodeRow(tup),
	})
	return true, err
}

// Update replaces attr's value on every tuple currently holding matchValue,
// journaling the change when at least one tuple was touched.
func (tr *Tracked) Update(attr string, newValue, matchValue types.Value) (bool, error) {
	if !tr.table.Update(attr, newValue, matchValue) {
		return false, nil
	}
	_, err := tr.journal.Append(&Record{
		Table:    tr.table.Name(),
		Op:       OpUpdate,
		Attr:     attr,
		Match:    matchValue.String(),
		NewValue: newValue.String(),
	})
	return true, err
}

// Delete removes every tuple the predicate accepts, journaling each removed
// tuple so replay can reproduce the deletion without the predicate.
func (tr *Tracked) Delete(pred func(types.Tuple) bool) (int, error) {
	var removed []types.Tuple
	n := tr.table.Delete(func(tup types.Tuple) bool {
		if pred(tup) {
			removed = append(removed, tup.Clone())
			return true
		}
		return false
	})
	for _, tup := range removed {
		if _, err := tr.journal.Append(&Record{
			Table: tr.table.Name(),
			Op:    OpDelete,
			Row:   encodeRow(tup),
		}); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Replay reapplies every intact journal record onto the table and returns
// the count of applied records. Records for other tables and records that
// no longer apply are skipped with a diagnostic.
func Replay(path string, t *relation.Table) (int, error) {
	start := time.Now()

	recs, err := ReadRecords(path)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, rec := range recs {
		if rec.Table != t.Name() {
			continue
		}
		ok, err := apply(rec, t)
		if err != nil {
			log.Printf("journal: replay of record %d failed: %v", rec.Seq, err)
			continue
		}
		if ok {
			applied++
		}
	}

	log.Printf("journal: replayed %d of %d records onto %s in %v",
		applied, len(recs), t.Name(), time.Since(start))
	return applied, nil
}

// apply runs a single record against the table.
func apply(rec *Record, t *relation.Table) (bool, error) {
	switch rec.Op {
	case OpAdd:
		tup, err := decodeRow(rec.Row, t.Domain())
		if err != nil {
			return false, err
		}
		return t.Add(tup), nil

	case OpUpdate:
		pos := t.Pos(rec.Attr)
		if pos < 0 {
			return false, errors.NewJournalError(errors.CodeReplayFailed,
				"unknown attribute "+rec.Attr, nil)
		}
		tag := t.Domain()[pos]
		match, err := types.ParseValue(tag, rec.Match)
		if err != nil {
			return false, errors.NewJournalError(errors.CodeReplayFailed, "bad match value", err)
		}
		newVal, err := types.ParseValue(tag, rec.NewValue)
		if err != nil {
			return false, errors.NewJournalError(errors.CodeReplayFailed, "bad new value", err)
		}
		return t.Update(rec.Attr, newVal, match), nil

	case OpDelete:
		tup, err := decodeRow(rec.Row, t.Domain())
		if err != nil {
			return false, err
		}
		want := tup.KeyString()
		n := t.Delete(func(row types.Tuple) bool {
			return row.KeyString() == want
		})
		return n > 0, nil

	default:
		return false, errors.NewJournalError(errors.CodeReplayFailed,
			"unknown op "+string(rec.Op), nil)
	}
}

func encodeRow(tup types.Tuple) []string {
	out := make([]string, len(tup))
	for i, v := range tup {
		out[i] = v.String()
	}
	return out
}

func decodeRow(cells []string, domain types.Domain) (types.Tuple, error) {
	if len(cells) != len(domain) {
		return nil, errors.NewJournalError(errors.CodeReplayFailed,
			"journaled row arity does not match domain", nil)
	}
	tup := make(types.Tuple, len(cells))
	for i, s := range cells {
		v, err := types.ParseValue(domain[i], s)
		if err != nil {
			return nil, errors.NewJournalError(errors.CodeReplayFailed, "bad journaled cell", err)
		}
		tup[i] = v
	}
	return tup, nil
}
