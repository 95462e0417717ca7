// Package serial computes the next serial to assign from the mapping keys
// already present in the store.
//
// The store has no atomic counter, so the highest serial found by a full
// namespace scan acts as the high-water mark. Two concurrent allocations can
// observe the same snapshot and return the same serial; the later write then
// overwrites the earlier mapping. Deployments that need strict uniqueness use
// an atomic counter source instead (see adapter/sequence).
package serial

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/vadimbarashkov/url-shortener-kv/internal/codec"
	"github.com/vadimbarashkov/url-shortener-kv/internal/keyspace"
)

// DefaultInitial is the serial assigned when the store holds no mappings.
const DefaultInitial uint64 = 1

// Next returns the serial following the highest one encoded in keys, or
// initial when keys contain no mapping key. Keys of other namespaces or
// kinds are ignored. The keys slice is not modified.
func Next(keys []string, initial uint64) (uint64, error) {
	const op = "serial.Next"

	top, ok := HighWaterMark(keys)
	if !ok {
		return initial, nil
	}

	if top == math.MaxUint64 {
		return 0, fmt.Errorf("%s: serial space exhausted: %w", op, codec.ErrEncodingOverflow)
	}

	return max(top+1, initial), nil
}

// HighWaterMark returns the highest serial encoded in keys.
// It reports false when keys contain no mapping key.
func HighWaterMark(keys []string) (uint64, bool) {
	mappingKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := keyspace.ParseMappingKey(key); ok {
			mappingKeys = append(mappingKeys, key)
		}
	}

	if len(mappingKeys) == 0 {
		return 0, false
	}

	// Fixed-width keys: descending lexicographic order is descending serial order.
	slices.SortFunc(mappingKeys, func(a, b string) int {
		return strings.Compare(b, a)
	})

	top, _ := keyspace.ParseMappingKey(mappingKeys[0])
	return top, true
}

type keyLister interface {
	ListMappingKeys(ctx context.Context) ([]string, error)
}

// Scanner allocates serials by scanning every mapping key of the store.
type Scanner struct {
	lister  keyLister
	initial uint64
}

func NewScanner(lister keyLister, initial uint64) *Scanner {
	return &Scanner{
		lister:  lister,
		initial: initial,
	}
}

// NextSerial lists the mapping namespace and returns the next free serial.
func (s *Scanner) NextSerial(ctx context.Context) (uint64, error) {
	const op = "serial.Scanner.NextSerial"

	keys, err := s.lister.ListMappingKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to list mapping keys: %w", op, err)
	}

	next, err := Next(keys, s.initial)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return next, nil
}
