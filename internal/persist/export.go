package persist

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/relation"
	"github.com/relacore/relacore/pkg/types"
)

// WriteCSV renders a table as CSV: a header line of attribute names, then
// one line per tuple.
func WriteCSV(t *relation.Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Schema()); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "csv write failed", err)
	}
	for i := 0; i < t.Size(); i++ {
		row := t.Row(i)
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return errors.NewStorageError(errors.CodeUploadFailed, "csv write failed", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "csv flush failed", err)
	}
	return nil
}

// ReadCSV builds a table from CSV produced by WriteCSV (or any file whose
// header matches the given schema order), typing each cell by the domain.
func ReadCSV(r io.Reader, name string, domain types.Domain, key string) (*relation.Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeDownloadFailed, "csv header read failed", err)
	}
	if len(header) != len(domain) {
		return nil, errors.NewValidationError(errors.CodeInvalidSchema,
			"csv header arity does not match domain")
	}

	var rows []types.Tuple
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewStorageError(errors.CodeDownloadFailed, "csv read failed", err)
		}
		tup := make(types.Tuple, len(rec))
		for j, s := range rec {
			v, err := types.ParseValue(domain[j], s)
			if err != nil {
				return nil, errors.NewValidationError(errors.CodeTypeMismatch,
					"csv cell "+s+" does not parse as "+domain[j].String())
			}
			tup[j] = v
		}
		rows = append(rows, tup)
	}

	return relation.New(name, header, domain, types.SplitSchema(key), rows), nil
}

// WriteJSON renders a table as a JSON array of attribute-keyed objects.
func WriteJSON(t *relation.Table, w io.Writer) error {
	schema := t.Schema()
	out := make([]map[string]interface{}, t.Size())
	for i := 0; i < t.Size(); i++ {
		row := t.Row(i)
		obj := make(map[string]interface{}, len(row))
		for j, v := range row {
			obj[schema[j]] = nativeOf(v)
		}
		out[i] = obj
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "json write failed", err)
	}
	return nil
}

// nativeOf unwraps a value to its plain Go form for JSON rendering.
func nativeOf(v types.Value) interface{} {
	switch x := v.(type) {
	case types.DoubleVal:
		return float64(x)
	case types.IntVal:
		return int32(x)
	case types.LongVal:
		return int64(x)
	case types.TimeVal:
		return time.Time(x).Format(time.RFC3339Nano)
	default:
		return v.String()
	}
}
