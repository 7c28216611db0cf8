package relation

import (
	"log"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/types"
)

// Linkage records that one foreign-key attribute of this table must
// reference the primary key of another table. A foreign key is never
// composite.
type Linkage struct {
	FKey string
	Ref  *Table
}

// AddLinkage registers a foreign-key linkage. The linkage is consulted on
// every Add that follows; existing rows are not re-validated. The referenced
// table needs a primary index for the checks to pass.
func (t *Table) AddLinkage(fkey string, ref *Table) error {
	if _, ok := t.colPos[fkey]; !ok {
		return errors.NewIntegrityError(errors.CodeUnknownAttribute,
			"foreign key attribute "+fkey+" not in schema of "+t.name)
	}
	if len(ref.key) != 1 {
		return errors.NewIntegrityError(errors.CodeCompositeForeignKey,
			"referenced table "+ref.name+" must have a single-attribute key")
	}
	t.linkages = append(t.linkages, Linkage{FKey: fkey, Ref: ref})
	return nil
}

// Linkages returns the registered foreign-key linkages.
func (t *Table) Linkages() []Linkage { return t.linkages }

// ReferenceCheck validates that, for every registered linkage, the tuple's
// foreign-key value exists in the referenced table's primary index. The
// bloom filter rejects definite misses before the index probe. Enforcement
// happens in Add only; deleting a referenced row does not cascade.
func (t *Table) ReferenceCheck(tup types.Tuple) bool {
	for _, ln := range t.linkages {
		p, ok := t.colPos[ln.FKey]
		if !ok || p >= len(tup) {
			log.Printf("relation: table %s: linkage %q has no matching column", t.name, ln.FKey)
			return false
		}
		k := types.Key(tup[p].String())
		if !ln.Ref.containsKey(k) {
			log.Printf("relation: table %s: foreign key %s=%q not present in %s",
				t.name, ln.FKey, tup[p], ln.Ref.name)
			return false
		}
	}
	return true
}
