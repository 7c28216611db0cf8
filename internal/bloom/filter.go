// Package bloom provides a probabilistic membership filter over primary-key
// encodings. Reference checks consult it as a fast-negative path before
// probing the primary index.
package bloom

import (
	"math"

	"github.com/spaolacci/murmur3"
)

// Filter is a fixed-size bloom filter keyed by string key encodings.
// It guarantees no false negatives: a key that was added always tests true.
// The filter is rebuilt together with the primary index and is not safe for
// concurrent mutation; the owning table serializes writes.
type Filter struct {
	bits      []uint64
	numBits   uint64
	numHashes uint64
	count     uint64
}

// New creates a filter sized for the expected number of keys and target
// false positive rate.
//
// Sizing follows the standard formulas:
//   - m = -n * ln(p) / (ln 2)^2
//   - k = (m/n) * ln 2
func New(expectedKeys int, targetFPR float64) *Filter {
	if expectedKeys <= 0 {
		expectedKeys = 1024
	}
	if targetFPR <= 0 || targetFPR >= 1 {
		targetFPR = 0.01
	}

	n := float64(expectedKeys)
	m := -n * math.Log(targetFPR) / (math.Ln2 * math.Ln2)
	k := (m / n) * math.Ln2

	numBits := int(math.Ceil(m))
	if numBits < 64 {
		numBits = 64
	}
	numHashes := int(math.Ceil(k))
	if numHashes < 1 {
		numHashes = 1
	}

	numWords := (numBits + 63) / 64
	return &Filter{
		bits:      make([]uint64, numWords),
		numBits:   uint64(numWords * 64),
		numHashes: uint64(numHashes),
	}
}

// Add inserts a key encoding into the filter.
func (f *Filter) Add(key string) {
	h1, h2 := hash128(key)
	for i := uint64(0); i < f.numHashes; i++ {
		pos := (h1 + i*h2) % f.numBits
		f.bits[pos/64] |= 1 << (pos % 64)
	}
	f.count++
}

// MayContain tests whether a key might be present. False means the key is
// definitely absent.
func (f *Filter) MayContain(key string) bool {
	h1, h2 := hash128(key)
	for i := uint64(0); i < f.numHashes; i++ {
		pos := (h1 + i*h2) % f.numBits
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of keys added.
func (f *Filter) Count() uint64 { return f.count }

// FalsePositiveRate estimates the current false positive rate from the fill
// ratio: (1 - e^(-k*n/m))^k.
func (f *Filter) FalsePositiveRate() float64 {
	if f.count == 0 {
		return 0
	}
	k := float64(f.numHashes)
	n := float64(f.count)
	m := float64(f.numBits)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// hash128 computes a murmur3 128-bit hash split into the two 64-bit values
// used for double hashing.
func hash128(key string) (uint64, uint64) {
	h := murmur3.New128()
	h.Write([]byte(key))
	return h.Sum128()
}
